package repository

import (
	"context"

	"gorm.io/gorm"

	"clearbill/backend/internal/model"
)

// ChecklistItemRepository 月结清单项数据访问接口
type ChecklistItemRepository interface {
	// BatchCreate 批量创建清单项
	// 与期间创建同属一个逻辑操作时，必须在已有事务的 *gorm.DB 上调用
	// （通过 Repository.WithTx 注入事务连接）
	BatchCreate(ctx context.Context, items []model.ChecklistItem) error
	ListByPeriod(ctx context.Context, periodID string) ([]model.ChecklistItem, error)
	GetByPeriodAndName(ctx context.Context, periodID, name string) (*model.ChecklistItem, error)
	Update(ctx context.Context, item *model.ChecklistItem) error
	CountIncomplete(ctx context.Context, periodID string) (int64, error)
}

type checklistItemRepo struct {
	db *gorm.DB
}

// NewChecklistItemRepo 创建 ChecklistItemRepository 实例
func NewChecklistItemRepo(db *gorm.DB) ChecklistItemRepository {
	return &checklistItemRepo{db: db}
}

func (r *checklistItemRepo) BatchCreate(ctx context.Context, items []model.ChecklistItem) error {
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *checklistItemRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.ChecklistItem, error) {
	var items []model.ChecklistItem
	err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("sort_order ASC").
		Find(&items).Error
	return items, err
}

func (r *checklistItemRepo) GetByPeriodAndName(ctx context.Context, periodID, name string) (*model.ChecklistItem, error) {
	var item model.ChecklistItem
	err := r.db.WithContext(ctx).
		Where("period_id = ? AND name = ?", periodID, name).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *checklistItemRepo) Update(ctx context.Context, item *model.ChecklistItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *checklistItemRepo) CountIncomplete(ctx context.Context, periodID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChecklistItem{}).
		Where("period_id = ? AND is_completed = ?", periodID, false).
		Count(&count).Error
	return count, err
}
