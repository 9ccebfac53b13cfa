package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clearbill/backend/internal/dto"
	"clearbill/backend/internal/model"
	"clearbill/backend/internal/repository"
)

// ── 会计期间模块业务错误 ──

var (
	ErrPeriodNotFound      = errors.New("会计期间不存在")
	ErrPeriodAlreadyExists = errors.New("该月份的会计期间已存在")
	ErrPeriodClosed        = errors.New("会计期间已关账，禁止修改")
	ErrPeriodAlreadyClosed = errors.New("会计期间已关账")
	ErrChecklistIncomplete = errors.New("月结清单未全部完成")
)

// ChecklistIncompleteError 关账被拒时携带未完成项名称，供调用方逐项提示
type ChecklistIncompleteError struct {
	Remaining []string
}

func (e *ChecklistIncompleteError) Error() string {
	return fmt.Sprintf("月结清单未全部完成，剩余: %s", strings.Join(e.Remaining, ", "))
}

// Unwrap 使 errors.Is(err, ErrChecklistIncomplete) 成立
func (e *ChecklistIncompleteError) Unwrap() error { return ErrChecklistIncomplete }

// PeriodService 会计期间业务接口
type PeriodService interface {
	// GetOrNone 查询某月期间，不存在时返回 (nil, nil)
	GetOrNone(ctx context.Context, year, month int) (*dto.PeriodResponse, error)
	// Create 创建 open 期间并在同一事务内按标准模板实例化清单
	Create(ctx context.Context, req *dto.CreatePeriodRequest, actor string) (*dto.PeriodResponse, error)
	// Close 关账事务：重新校验闸门后，原子地写入签核记录并翻转期间状态
	Close(ctx context.Context, periodID, signedBy, notes string) (*dto.ClosePeriodResponse, error)
}

type periodService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPeriodService 创建 PeriodService 实例
func NewPeriodService(repo *repository.Repository, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, logger: logger}
}

// DaysRemaining 距期间月末的剩余天数，仅派生计算，不落库
func DaysRemaining(period *model.Period, today time.Time) int {
	return period.LastDay().Day() - today.Day()
}

// ────────────────────── GetOrNone ──────────────────────

func (s *periodService) GetOrNone(ctx context.Context, year, month int) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByYearMonth(ctx, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询期间失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, err
	}

	return toPeriodResponse(period, time.Now()), nil
}

// ────────────────────── Create ──────────────────────

func (s *periodService) Create(ctx context.Context, req *dto.CreatePeriodRequest, actor string) (*dto.PeriodResponse, error) {
	// 先查重，给出确定性的业务错误；并发窗口由 (year, month) 唯一约束兜底
	if _, err := s.repo.Period.GetByYearMonth(ctx, req.Year, req.Month); err == nil {
		return nil, ErrPeriodAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询期间失败", zap.Int("year", req.Year), zap.Int("month", req.Month), zap.Error(err))
		return nil, err
	}

	period := &model.Period{
		Year:   req.Year,
		Month:  req.Month,
		Status: model.PeriodStatusOpen,
	}
	period.CreatedBy = &actor
	period.UpdatedBy = &actor

	// 期间与标准清单必须同生共死：同一事务内完成
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Period.Create(ctx, period); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPeriodAlreadyExists
		}
		s.logger.Error("创建期间失败", zap.Int("year", req.Year), zap.Int("month", req.Month), zap.Error(err))
		return nil, err
	}

	items := model.ChecklistTemplate(period.PeriodID)
	for i := range items {
		items[i].CreatedBy = &actor
		items[i].UpdatedBy = &actor
	}
	if err := txRepo.ChecklistItem.BatchCreate(ctx, items); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("实例化标准清单失败", zap.String("period_id", period.PeriodID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("会计期间已创建",
		zap.String("period_id", period.PeriodID),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Int("checklist_items", len(items)),
	)

	return toPeriodResponse(period, time.Now()), nil
}

// ────────────────────── Close ──────────────────────

func (s *periodService) Close(ctx context.Context, periodID, signedBy, notes string) (*dto.ClosePeriodResponse, error) {
	// 1. 重新加载期间，拒绝缺失或已关账
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询期间失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	if period.IsClosed() {
		return nil, ErrPeriodAlreadyClosed
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	// 2. 闸门在事务内重查：不信任调用方可能过期的快照
	items, err := txRepo.ChecklistItem.ListByPeriod(ctx, periodID)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("查询月结清单失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	if satisfied, remaining := gateStatus(items); !satisfied {
		if tx != nil {
			tx.Rollback()
		}
		return nil, &ChecklistIncompleteError{Remaining: remaining}
	}

	// 3. 原子写：签核记录 + 状态比较交换，两者同事务生效
	now := time.Now()
	signOff := &model.SignOff{
		PeriodID: periodID,
		SignedBy: signedBy,
		SignedAt: now,
	}
	if notes != "" {
		signOff.Notes = &notes
	}
	if err := txRepo.SignOff.Create(ctx, signOff); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入签核记录失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}

	rows, err := txRepo.Period.CloseIfOpen(ctx, periodID, signedBy, now)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新期间状态失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	if rows == 0 {
		// 并发关账：另一事务抢先翻转了状态，本次连同签核记录一起回滚
		if tx != nil {
			tx.Rollback()
		}
		return nil, ErrPeriodAlreadyClosed
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("会计期间已关账",
		zap.String("period_id", periodID),
		zap.Int("year", period.Year),
		zap.Int("month", period.Month),
		zap.String("signed_by", signedBy),
	)

	closeDate := now
	period.Status = model.PeriodStatusClosed
	period.CloseDate = &closeDate
	period.ClosedBy = &signedBy

	return &dto.ClosePeriodResponse{
		Period:  *toPeriodResponse(period, now),
		SignOff: *toSignOffResponse(signOff),
	}, nil
}

// ── 内部辅助方法 ──

func toPeriodResponse(period *model.Period, today time.Time) *dto.PeriodResponse {
	resp := &dto.PeriodResponse{
		ID:            period.PeriodID,
		Year:          period.Year,
		Month:         period.Month,
		Status:        period.Status,
		ClosedBy:      period.ClosedBy,
		DaysRemaining: DaysRemaining(period, today),
		CreatedAt:     period.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     period.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if period.CloseDate != nil {
		formatted := period.CloseDate.Format("2006-01-02")
		resp.CloseDate = &formatted
	}
	return resp
}

func toSignOffResponse(signOff *model.SignOff) *dto.SignOffResponse {
	return &dto.SignOffResponse{
		ID:       signOff.SignOffID,
		PeriodID: signOff.PeriodID,
		SignedBy: signOff.SignedBy,
		SignedAt: signOff.SignedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Notes:    signOff.Notes,
	}
}
