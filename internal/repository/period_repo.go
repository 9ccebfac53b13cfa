package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clearbill/backend/internal/model"
)

// PeriodRepository 会计期间数据访问接口
type PeriodRepository interface {
	Create(ctx context.Context, period *model.Period) error
	GetByID(ctx context.Context, id string) (*model.Period, error)
	GetByYearMonth(ctx context.Context, year, month int) (*model.Period, error)
	List(ctx context.Context) ([]model.Period, error)
	// CloseIfOpen 以 status='open' 为条件做比较交换式更新，返回受影响行数。
	// 并发关账时恰好一方成功：输掉的一方得到 0 行。
	CloseIfOpen(ctx context.Context, id string, closedBy string, closeDate time.Time) (int64, error)
}

type periodRepo struct {
	db *gorm.DB
}

// NewPeriodRepo 创建 PeriodRepository 实例
func NewPeriodRepo(db *gorm.DB) PeriodRepository {
	return &periodRepo{db: db}
}

func (r *periodRepo) Create(ctx context.Context, period *model.Period) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *periodRepo) GetByID(ctx context.Context, id string) (*model.Period, error) {
	var period model.Period
	err := r.db.WithContext(ctx).
		Where("period_id = ?", id).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepo) GetByYearMonth(ctx context.Context, year, month int) (*model.Period, error) {
	var period model.Period
	err := r.db.WithContext(ctx).
		Where("year = ? AND month = ?", year, month).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepo) List(ctx context.Context) ([]model.Period, error) {
	var periods []model.Period
	err := r.db.WithContext(ctx).
		Order("year DESC, month DESC").
		Find(&periods).Error
	return periods, err
}

func (r *periodRepo) CloseIfOpen(ctx context.Context, id string, closedBy string, closeDate time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Period{}).
		Where("period_id = ? AND status = ?", id, model.PeriodStatusOpen).
		Updates(map[string]interface{}{
			"status":     model.PeriodStatusClosed,
			"close_date": closeDate,
			"closed_by":  closedBy,
			"updated_at": gorm.Expr("NOW()"),
			"updated_by": closedBy,
		})
	return result.RowsAffected, result.Error
}
