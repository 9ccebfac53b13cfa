package repository

import (
	"context"

	"gorm.io/gorm"

	"clearbill/backend/internal/model"
)

// SignOffRepository 签核记录数据访问接口
// 只追加：不提供更新或删除方法
type SignOffRepository interface {
	Create(ctx context.Context, signOff *model.SignOff) error
	ListByPeriod(ctx context.Context, periodID string) ([]model.SignOff, error)
}

type signOffRepo struct {
	db *gorm.DB
}

// NewSignOffRepo 创建 SignOffRepository 实例
func NewSignOffRepo(db *gorm.DB) SignOffRepository {
	return &signOffRepo{db: db}
}

func (r *signOffRepo) Create(ctx context.Context, signOff *model.SignOff) error {
	return r.db.WithContext(ctx).Create(signOff).Error
}

func (r *signOffRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.SignOff, error) {
	var signOffs []model.SignOff
	err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("signed_at ASC").
		Find(&signOffs).Error
	return signOffs, err
}
