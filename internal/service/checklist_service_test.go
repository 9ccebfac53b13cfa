package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"clearbill/backend/internal/model"
	"clearbill/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestChecklistService() (ChecklistService, *mockPeriodRepo, *mockChecklistItemRepo, *mockOperationalRepo) {
	periodRepo := newMockPeriodRepo()
	itemRepo := newMockChecklistItemRepo()
	feed := newMockOperationalRepo()
	repo := &repository.Repository{
		Period:        periodRepo,
		ChecklistItem: itemRepo,
		SignOff:       newMockSignOffRepo(),
		Operational:   feed,
	}
	logger := zap.NewNop()
	ruleSet := NewAutoCheckRuleSet(feed, logger)
	svc := NewChecklistService(repo, ruleSet, logger)
	return svc, periodRepo, itemRepo, feed
}

// seedPeriodWithTemplate 写入一个 open 期间及标准清单
func seedPeriodWithTemplate(periodRepo *mockPeriodRepo, itemRepo *mockChecklistItemRepo, year, month int) string {
	period := &model.Period{Year: year, Month: month, Status: model.PeriodStatusOpen}
	_ = periodRepo.Create(context.Background(), period)
	_ = itemRepo.BatchCreate(context.Background(), model.ChecklistTemplate(period.PeriodID))
	return period.PeriodID
}

// ── LoadItems 测试 ──

func TestChecklistService_LoadItems_Success(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	result, err := svc.LoadItems(context.Background(), periodID)
	if err != nil {
		t.Fatalf("LoadItems 应成功: %v", err)
	}
	if len(result.Items) != 6 {
		t.Fatalf("期望6个清单项，实际=%d", len(result.Items))
	}
	// 按 sort_order 返回
	for i, item := range result.Items {
		if item.SortOrder != i+1 {
			t.Errorf("期望第%d项 sort_order=%d，实际=%d", i, i+1, item.SortOrder)
		}
	}
	if result.Items[0].Name != model.ItemSubmitClaims {
		t.Errorf("期望首项为 %s，实际=%s", model.ItemSubmitClaims, result.Items[0].Name)
	}
	if result.GateSatisfied {
		t.Error("新建清单不应满足关账闸门")
	}
	if len(result.Remaining) != 6 {
		t.Errorf("期望6个未完成项，实际=%d", len(result.Remaining))
	}
}

func TestChecklistService_LoadItems_PeriodNotFound(t *testing.T) {
	svc, _, _, _ := setupTestChecklistService()

	_, err := svc.LoadItems(context.Background(), "nonexistent")
	if !errors.Is(err, ErrPeriodNotFound) {
		t.Errorf("期望 ErrPeriodNotFound，实际: %v", err)
	}
}

// ── ApplyAutoChecks 测试 ──

func TestChecklistService_ApplyAutoChecks_CompletesSatisfiedItems(t *testing.T) {
	svc, periodRepo, itemRepo, feed := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)
	feed.unresolvedDenials = 2 // 拒付未清，对应规则不满足

	if err := svc.ApplyAutoChecks(context.Background(), periodID); err != nil {
		t.Fatalf("ApplyAutoChecks 应成功: %v", err)
	}

	items, _ := itemRepo.ListByPeriod(context.Background(), periodID)
	byName := make(map[string]model.ChecklistItem)
	for _, item := range items {
		byName[item.Name] = item
	}

	if !byName[model.ItemSubmitClaims].IsCompleted {
		t.Error("理赔单全部提交时应自动完成对应清单项")
	}
	if byName[model.ItemSubmitClaims].CompletedBy == nil || *byName[model.ItemSubmitClaims].CompletedBy != actorSystem {
		t.Error("自动完成的清单项 completed_by 应为 system")
	}
	if byName[model.ItemResolveDenials].IsCompleted {
		t.Error("存在未处理拒付时不应自动完成对应清单项")
	}
	if !byName[model.ItemReconcilePayments].IsCompleted {
		t.Error("款项全部对账时应自动完成对应清单项")
	}
	// 手工项不受自动核对影响
	if byName[model.ItemReviewARAging].IsCompleted {
		t.Error("手工项不应被自动核对勾选")
	}
}

func TestChecklistService_ApplyAutoChecks_Monotonic(t *testing.T) {
	svc, periodRepo, itemRepo, feed := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	// 第一次核对：全部满足，自动项全部完成
	if err := svc.ApplyAutoChecks(context.Background(), periodID); err != nil {
		t.Fatalf("ApplyAutoChecks 应成功: %v", err)
	}

	// 经营数据倒退，规则不再满足
	feed.unsubmittedClaims = 5
	if err := svc.ApplyAutoChecks(context.Background(), periodID); err != nil {
		t.Fatalf("ApplyAutoChecks 应成功: %v", err)
	}

	item, _ := itemRepo.GetByPeriodAndName(context.Background(), periodID, model.ItemSubmitClaims)
	if !item.IsCompleted {
		t.Error("自动核对必须单调：已完成项不得被打回未完成")
	}
}

func TestChecklistService_ApplyAutoChecks_UnknownKeepsState(t *testing.T) {
	svc, periodRepo, itemRepo, feed := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)
	feed.countErr = errors.New("数据源不可用")

	if err := svc.ApplyAutoChecks(context.Background(), periodID); err != nil {
		t.Fatalf("数据源失败不应使 ApplyAutoChecks 整体报错: %v", err)
	}

	items, _ := itemRepo.ListByPeriod(context.Background(), periodID)
	for _, item := range items {
		if item.IsCompleted {
			t.Errorf("结论为 Unknown 时不应勾选任何清单项: %s", item.Name)
		}
	}
}

func TestChecklistService_ApplyAutoChecks_ClosedPeriodNoop(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)
	periodRepo.periods[periodID].Status = model.PeriodStatusClosed

	if err := svc.ApplyAutoChecks(context.Background(), periodID); err != nil {
		t.Fatalf("已关账期间 ApplyAutoChecks 应为空操作而非报错: %v", err)
	}

	items, _ := itemRepo.ListByPeriod(context.Background(), periodID)
	for _, item := range items {
		if item.IsCompleted {
			t.Errorf("已关账期间不应有任何清单项被修改: %s", item.Name)
		}
	}
}

// ── ToggleManual 测试 ──

func TestChecklistService_ToggleManual_Success(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	result, err := svc.ToggleManual(context.Background(), periodID, model.ItemReviewARAging, true, "王会计")
	if err != nil {
		t.Fatalf("ToggleManual 应成功: %v", err)
	}
	if !result.IsCompleted {
		t.Error("勾选后清单项应为已完成")
	}
	if result.CompletedBy == nil || *result.CompletedBy != "王会计" {
		t.Error("completed_by 应记录操作人")
	}
	if result.CompletedAt == nil {
		t.Error("completed_at 应记录完成时间")
	}
}

func TestChecklistService_ToggleManual_Uncheck(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	if _, err := svc.ToggleManual(context.Background(), periodID, model.ItemReviewARAging, true, "王会计"); err != nil {
		t.Fatalf("勾选应成功: %v", err)
	}
	result, err := svc.ToggleManual(context.Background(), periodID, model.ItemReviewARAging, false, "王会计")
	if err != nil {
		t.Fatalf("取消勾选应成功: %v", err)
	}
	if result.IsCompleted {
		t.Error("取消后清单项应为未完成")
	}
	if result.CompletedAt != nil || result.CompletedBy != nil {
		t.Error("取消后完成时间与完成人应清空")
	}
}

func TestChecklistService_ToggleManual_AutoManagedRejected(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	_, err := svc.ToggleManual(context.Background(), periodID, model.ItemSubmitClaims, true, "王会计")
	if !errors.Is(err, ErrItemAutoManaged) {
		t.Errorf("期望 ErrItemAutoManaged，实际: %v", err)
	}
}

func TestChecklistService_ToggleManual_ClosedPeriodRejected(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)
	periodRepo.periods[periodID].Status = model.PeriodStatusClosed

	_, err := svc.ToggleManual(context.Background(), periodID, model.ItemReviewARAging, true, "王会计")
	if !errors.Is(err, ErrPeriodClosed) {
		t.Errorf("期望 ErrPeriodClosed，实际: %v", err)
	}
}

func TestChecklistService_ToggleManual_ItemNotFound(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	_, err := svc.ToggleManual(context.Background(), periodID, "不存在的清单项", true, "王会计")
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("期望 ErrItemNotFound，实际: %v", err)
	}
}

// ── MarkCompletedByArtifact 测试 ──

func TestChecklistService_MarkCompletedByArtifact_Success(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	if err := svc.MarkCompletedByArtifact(context.Background(), periodID, model.ItemDownloadReports, "王会计"); err != nil {
		t.Fatalf("MarkCompletedByArtifact 应成功: %v", err)
	}

	item, _ := itemRepo.GetByPeriodAndName(context.Background(), periodID, model.ItemDownloadReports)
	if !item.IsCompleted {
		t.Error("报表下载后对应清单项应为已完成")
	}
}

func TestChecklistService_MarkCompletedByArtifact_Idempotent(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	if err := svc.MarkCompletedByArtifact(context.Background(), periodID, model.ItemDownloadReports, "王会计"); err != nil {
		t.Fatalf("首次勾选应成功: %v", err)
	}
	first, _ := itemRepo.GetByPeriodAndName(context.Background(), periodID, model.ItemDownloadReports)
	firstAt := *first.CompletedAt

	time.Sleep(time.Millisecond)
	if err := svc.MarkCompletedByArtifact(context.Background(), periodID, model.ItemDownloadReports, "李出纳"); err != nil {
		t.Fatalf("重复勾选应为空操作: %v", err)
	}

	second, _ := itemRepo.GetByPeriodAndName(context.Background(), periodID, model.ItemDownloadReports)
	if !second.CompletedAt.Equal(firstAt) {
		t.Error("重复勾选不应改写原完成时间")
	}
	if *second.CompletedBy != "王会计" {
		t.Errorf("重复勾选不应改写原完成人，实际=%s", *second.CompletedBy)
	}
}

func TestChecklistService_MarkCompletedByArtifact_ClosedPeriodRejected(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)
	periodRepo.periods[periodID].Status = model.PeriodStatusClosed

	err := svc.MarkCompletedByArtifact(context.Background(), periodID, model.ItemDownloadReports, "王会计")
	if !errors.Is(err, ErrPeriodClosed) {
		t.Errorf("期望 ErrPeriodClosed，实际: %v", err)
	}
}

// ── GateStatus 测试 ──

func TestChecklistService_GateStatus_EmptyChecklistNotSatisfied(t *testing.T) {
	svc, periodRepo, _, _ := setupTestChecklistService()
	period := &model.Period{Year: 2024, Month: 1, Status: model.PeriodStatusOpen}
	_ = periodRepo.Create(context.Background(), period)
	// 期间存在但清单为空

	satisfied, remaining, err := svc.GateStatus(context.Background(), period.PeriodID)
	if err != nil {
		t.Fatalf("GateStatus 应成功: %v", err)
	}
	if satisfied {
		t.Error("空清单不得满足关账闸门")
	}
	if len(remaining) != 0 {
		t.Errorf("空清单无未完成项，实际=%d", len(remaining))
	}
}

func TestChecklistService_GateStatus_AllCompleted(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	for _, item := range itemRepo.items {
		item.IsCompleted = true
	}

	satisfied, remaining, err := svc.GateStatus(context.Background(), periodID)
	if err != nil {
		t.Fatalf("GateStatus 应成功: %v", err)
	}
	if !satisfied {
		t.Error("全部完成时应满足关账闸门")
	}
	if len(remaining) != 0 {
		t.Errorf("全部完成时不应有未完成项，实际=%v", remaining)
	}
}

func TestChecklistService_GateStatus_PartialRemaining(t *testing.T) {
	svc, periodRepo, itemRepo, _ := setupTestChecklistService()
	periodID := seedPeriodWithTemplate(periodRepo, itemRepo, 2024, 1)

	for _, item := range itemRepo.items {
		if item.Name != model.ItemFinalReviewSignOff {
			item.IsCompleted = true
		}
	}

	satisfied, remaining, err := svc.GateStatus(context.Background(), periodID)
	if err != nil {
		t.Fatalf("GateStatus 应成功: %v", err)
	}
	if satisfied {
		t.Error("存在未完成项时不应满足关账闸门")
	}
	if len(remaining) != 1 || remaining[0] != model.ItemFinalReviewSignOff {
		t.Errorf("期望剩余项为 [%s]，实际=%v", model.ItemFinalReviewSignOff, remaining)
	}
}
