package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"clearbill/backend/internal/model"
)

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	periods map[string]*model.Period
}

func newMockPeriodRepo() *mockPeriodRepo {
	return &mockPeriodRepo{periods: make(map[string]*model.Period)}
}

func (m *mockPeriodRepo) Create(_ context.Context, period *model.Period) error {
	for _, p := range m.periods {
		if p.Year == period.Year && p.Month == period.Month {
			return gorm.ErrDuplicatedKey
		}
	}
	if period.PeriodID == "" {
		period.PeriodID = fmt.Sprintf("period-%04d-%02d", period.Year, period.Month)
	}
	period.CreatedAt = time.Now()
	period.UpdatedAt = time.Now()
	m.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id string) (*model.Period, error) {
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) GetByYearMonth(_ context.Context, year, month int) (*model.Period, error) {
	for _, p := range m.periods {
		if p.Year == year && p.Month == month {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) List(_ context.Context) ([]model.Period, error) {
	var result []model.Period
	for _, p := range m.periods {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPeriodRepo) CloseIfOpen(_ context.Context, id string, closedBy string, closeDate time.Time) (int64, error) {
	p, ok := m.periods[id]
	if !ok || p.Status != model.PeriodStatusOpen {
		return 0, nil
	}
	p.Status = model.PeriodStatusClosed
	p.CloseDate = &closeDate
	p.ClosedBy = &closedBy
	p.UpdatedBy = &closedBy
	return 1, nil
}

// ── Mock ChecklistItemRepository ──

type mockChecklistItemRepo struct {
	items map[string]*model.ChecklistItem

	updateErr error // 注入后 Update 固定失败
}

func newMockChecklistItemRepo() *mockChecklistItemRepo {
	return &mockChecklistItemRepo{items: make(map[string]*model.ChecklistItem)}
}

func (m *mockChecklistItemRepo) BatchCreate(_ context.Context, items []model.ChecklistItem) error {
	for i := range items {
		item := items[i]
		if item.ChecklistItemID == "" {
			item.ChecklistItemID = fmt.Sprintf("item-%s-%d", item.PeriodID, item.SortOrder)
		}
		m.items[item.ChecklistItemID] = &item
	}
	return nil
}

func (m *mockChecklistItemRepo) ListByPeriod(_ context.Context, periodID string) ([]model.ChecklistItem, error) {
	var result []model.ChecklistItem
	for _, item := range m.items {
		if item.PeriodID == periodID {
			result = append(result, *item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (m *mockChecklistItemRepo) GetByPeriodAndName(_ context.Context, periodID, name string) (*model.ChecklistItem, error) {
	for _, item := range m.items {
		if item.PeriodID == periodID && item.Name == name {
			copied := *item
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChecklistItemRepo) Update(_ context.Context, item *model.ChecklistItem) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *item
	m.items[item.ChecklistItemID] = &copied
	return nil
}

func (m *mockChecklistItemRepo) CountIncomplete(_ context.Context, periodID string) (int64, error) {
	var count int64
	for _, item := range m.items {
		if item.PeriodID == periodID && !item.IsCompleted {
			count++
		}
	}
	return count, nil
}

// ── Mock SignOffRepository ──

type mockSignOffRepo struct {
	signOffs []*model.SignOff

	createErr error
}

func newMockSignOffRepo() *mockSignOffRepo {
	return &mockSignOffRepo{}
}

func (m *mockSignOffRepo) Create(_ context.Context, signOff *model.SignOff) error {
	if m.createErr != nil {
		return m.createErr
	}
	if signOff.SignOffID == "" {
		signOff.SignOffID = fmt.Sprintf("signoff-%d", len(m.signOffs)+1)
	}
	m.signOffs = append(m.signOffs, signOff)
	return nil
}

func (m *mockSignOffRepo) ListByPeriod(_ context.Context, periodID string) ([]model.SignOff, error) {
	var result []model.SignOff
	for _, s := range m.signOffs {
		if s.PeriodID == periodID {
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── Mock OperationalRepository ──

// mockOperationalRepo 经营数据只读 Mock。
// countErr 模拟数据源整体不可用；sectionErr 按区块注入报表数据拉取失败。
type mockOperationalRepo struct {
	unsubmittedClaims    int64
	unresolvedDenials    int64
	unreconciledPayments int64
	countErr             error

	arRows           []model.ARAgingRow
	claimRows        []model.Claim
	denialRows       []model.ClaimDenial
	paymentRows      []model.Payment
	productivityRows []model.ProductivityRow
	sectionErr       map[string]error
}

func newMockOperationalRepo() *mockOperationalRepo {
	return &mockOperationalRepo{sectionErr: make(map[string]error)}
}

func (m *mockOperationalRepo) UnsubmittedClaimCount(_ context.Context, _, _ int) (int64, error) {
	return m.unsubmittedClaims, m.countErr
}

func (m *mockOperationalRepo) UnresolvedDenialCount(_ context.Context, _, _ int) (int64, error) {
	return m.unresolvedDenials, m.countErr
}

func (m *mockOperationalRepo) UnreconciledPaymentCount(_ context.Context, _, _ int) (int64, error) {
	return m.unreconciledPayments, m.countErr
}

func (m *mockOperationalRepo) ARAgingRows(_ context.Context, _, _ int) ([]model.ARAgingRow, error) {
	if err := m.sectionErr[SectionARAging]; err != nil {
		return nil, err
	}
	return m.arRows, nil
}

func (m *mockOperationalRepo) ClaimStatusRows(_ context.Context, _, _ int) ([]model.Claim, error) {
	if err := m.sectionErr[SectionClaimsStatus]; err != nil {
		return nil, err
	}
	return m.claimRows, nil
}

func (m *mockOperationalRepo) DenialRows(_ context.Context, _, _ int) ([]model.ClaimDenial, error) {
	if err := m.sectionErr[SectionDenials]; err != nil {
		return nil, err
	}
	return m.denialRows, nil
}

func (m *mockOperationalRepo) PaymentRows(_ context.Context, _, _ int) ([]model.Payment, error) {
	if err := m.sectionErr[SectionPayments]; err != nil {
		return nil, err
	}
	return m.paymentRows, nil
}

func (m *mockOperationalRepo) ProductivityRows(_ context.Context, _, _ int) ([]model.ProductivityRow, error) {
	if err := m.sectionErr[SectionProductivity]; err != nil {
		return nil, err
	}
	return m.productivityRows, nil
}
