package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clearbill/backend/internal/dto"
	"clearbill/backend/internal/model"
	"clearbill/backend/internal/repository"
)

// ── 月结清单模块业务错误 ──

var (
	ErrItemNotFound    = errors.New("清单项不存在")
	ErrItemAutoManaged = errors.New("该清单项由系统自动核对，不允许手工勾选")
)

// 系统自动核对完成时记录的责任人标识
const actorSystem = "system"

// ChecklistService 月结清单业务接口
type ChecklistService interface {
	// LoadItems 按 sort_order 返回期间的全部清单项
	LoadItems(ctx context.Context, periodID string) (*dto.ChecklistResponse, error)
	// ApplyAutoChecks 对未完成的自动核对项套用规则集结论。
	// 单调：从不把已完成项打回未完成；幂等：数据不变时重复调用为空操作；
	// 期间已关账时整体为空操作。
	ApplyAutoChecks(ctx context.Context, periodID string) error
	// ToggleManual 手工勾选/取消非自动项
	ToggleManual(ctx context.Context, periodID, itemName string, completed bool, actor string) (*dto.ChecklistItemResponse, error)
	// MarkCompletedByArtifact 报表装配完成后的副作用式勾选；重复勾选为空操作
	MarkCompletedByArtifact(ctx context.Context, periodID, itemName, actor string) error
	// GateStatus 关账闸门：全部清单项完成且清单非空时为 true，同时返回未完成项名称
	GateStatus(ctx context.Context, periodID string) (bool, []string, error)
}

type checklistService struct {
	repo    *repository.Repository
	ruleSet *AutoCheckRuleSet
	logger  *zap.Logger
}

// NewChecklistService 创建 ChecklistService 实例
func NewChecklistService(repo *repository.Repository, ruleSet *AutoCheckRuleSet, logger *zap.Logger) ChecklistService {
	return &checklistService{repo: repo, ruleSet: ruleSet, logger: logger}
}

// ────────────────────── LoadItems ──────────────────────

func (s *checklistService) LoadItems(ctx context.Context, periodID string) (*dto.ChecklistResponse, error) {
	if _, err := s.loadPeriod(ctx, periodID); err != nil {
		return nil, err
	}

	items, err := s.repo.ChecklistItem.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询月结清单失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}

	satisfied, remaining := gateStatus(items)

	result := make([]dto.ChecklistItemResponse, 0, len(items))
	for i := range items {
		result = append(result, *toChecklistItemResponse(&items[i]))
	}

	return &dto.ChecklistResponse{
		Items:         result,
		GateSatisfied: satisfied,
		Remaining:     remaining,
	}, nil
}

// ────────────────────── ApplyAutoChecks ──────────────────────

func (s *checklistService) ApplyAutoChecks(ctx context.Context, periodID string) error {
	period, err := s.loadPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	// 关账期间只读：整体空操作，而非报错（本方法随页面加载高频触发）
	if period.IsClosed() {
		return nil
	}

	items, err := s.repo.ChecklistItem.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询月结清单失败", zap.String("period_id", periodID), zap.Error(err))
		return err
	}

	verdicts := s.ruleSet.Evaluate(ctx, period.Year, period.Month)

	for i := range items {
		item := &items[i]
		if !item.IsAutoCheckable || item.IsCompleted {
			continue
		}
		// 仅 Satisfied 触发完成；Unknown / Unsatisfied 均保持现状
		if verdicts[item.Name] != VerdictSatisfied {
			continue
		}

		now := time.Now()
		actor := actorSystem
		item.IsCompleted = true
		item.CompletedAt = &now
		item.CompletedBy = &actor
		item.UpdatedBy = &actor

		if err := s.repo.ChecklistItem.Update(ctx, item); err != nil {
			s.logger.Error("自动核对写入失败",
				zap.String("period_id", periodID),
				zap.String("item", item.Name),
				zap.Error(err),
			)
			return err
		}
	}

	return nil
}

// ────────────────────── ToggleManual ──────────────────────

func (s *checklistService) ToggleManual(ctx context.Context, periodID, itemName string, completed bool, actor string) (*dto.ChecklistItemResponse, error) {
	period, err := s.loadPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.IsClosed() {
		return nil, ErrPeriodClosed
	}

	item, err := s.getItem(ctx, periodID, itemName)
	if err != nil {
		return nil, err
	}
	if item.IsAutoCheckable {
		return nil, ErrItemAutoManaged
	}

	if completed {
		now := time.Now()
		item.IsCompleted = true
		item.CompletedAt = &now
		item.CompletedBy = &actor
	} else {
		item.IsCompleted = false
		item.CompletedAt = nil
		item.CompletedBy = nil
	}
	item.UpdatedBy = &actor

	if err := s.repo.ChecklistItem.Update(ctx, item); err != nil {
		s.logger.Error("更新清单项失败",
			zap.String("period_id", periodID),
			zap.String("item", itemName),
			zap.Error(err),
		)
		return nil, err
	}

	return toChecklistItemResponse(item), nil
}

// ────────────────────── MarkCompletedByArtifact ──────────────────────

func (s *checklistService) MarkCompletedByArtifact(ctx context.Context, periodID, itemName, actor string) error {
	period, err := s.loadPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if period.IsClosed() {
		return ErrPeriodClosed
	}

	item, err := s.getItem(ctx, periodID, itemName)
	if err != nil {
		return err
	}
	// 幂等：已完成即空操作
	if item.IsCompleted {
		return nil
	}

	now := time.Now()
	item.IsCompleted = true
	item.CompletedAt = &now
	item.CompletedBy = &actor
	item.UpdatedBy = &actor

	if err := s.repo.ChecklistItem.Update(ctx, item); err != nil {
		s.logger.Error("报表副作用勾选失败",
			zap.String("period_id", periodID),
			zap.String("item", itemName),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// ────────────────────── GateStatus ──────────────────────

func (s *checklistService) GateStatus(ctx context.Context, periodID string) (bool, []string, error) {
	if _, err := s.loadPeriod(ctx, periodID); err != nil {
		return false, nil, err
	}

	items, err := s.repo.ChecklistItem.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询月结清单失败", zap.String("period_id", periodID), zap.Error(err))
		return false, nil, err
	}

	satisfied, remaining := gateStatus(items)
	return satisfied, remaining, nil
}

// ── 内部辅助方法 ──

func (s *checklistService) loadPeriod(ctx context.Context, periodID string) (*model.Period, error) {
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询期间失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}
	return period, nil
}

func (s *checklistService) getItem(ctx context.Context, periodID, itemName string) (*model.ChecklistItem, error) {
	item, err := s.repo.ChecklistItem.GetByPeriodAndName(ctx, periodID, itemName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		s.logger.Error("查询清单项失败",
			zap.String("period_id", periodID),
			zap.String("item", itemName),
			zap.Error(err),
		)
		return nil, err
	}
	return item, nil
}

// gateStatus 关账闸门判定：清单为空视为未满足，绝不空洞为真
func gateStatus(items []model.ChecklistItem) (bool, []string) {
	remaining := make([]string, 0)
	for i := range items {
		if !items[i].IsCompleted {
			remaining = append(remaining, items[i].Name)
		}
	}
	if len(items) == 0 {
		return false, remaining
	}
	return len(remaining) == 0, remaining
}

func toChecklistItemResponse(item *model.ChecklistItem) *dto.ChecklistItemResponse {
	resp := &dto.ChecklistItemResponse{
		ID:              item.ChecklistItemID,
		PeriodID:        item.PeriodID,
		Name:            item.Name,
		Description:     item.Description,
		IsCompleted:     item.IsCompleted,
		CompletedBy:     item.CompletedBy,
		IsAutoCheckable: item.IsAutoCheckable,
		SortOrder:       item.SortOrder,
	}
	if item.CompletedAt != nil {
		formatted := item.CompletedAt.UTC().Format("2006-01-02T15:04:05Z")
		resp.CompletedAt = &formatted
	}
	return resp
}
