package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clearbill/backend/internal/model"
)

// OperationalRepository 经营数据只读接口
// 理赔/拒付/到账数据由主 CRM 拥有，月结工作流只按期间月份做聚合读取。
// 所有方法都应被视为可失败的网络调用：自动核对规则在出错时报告 unknown，
// 报表装配器在出错时跳过对应区块并记录警告。
type OperationalRepository interface {
	// ── 自动核对规则消费的聚合计数 ──
	UnsubmittedClaimCount(ctx context.Context, year, month int) (int64, error)
	UnresolvedDenialCount(ctx context.Context, year, month int) (int64, error)
	UnreconciledPaymentCount(ctx context.Context, year, month int) (int64, error)

	// ── 报表区块数据集 ──
	ARAgingRows(ctx context.Context, year, month int) ([]model.ARAgingRow, error)
	ClaimStatusRows(ctx context.Context, year, month int) ([]model.Claim, error)
	DenialRows(ctx context.Context, year, month int) ([]model.ClaimDenial, error)
	PaymentRows(ctx context.Context, year, month int) ([]model.Payment, error)
	ProductivityRows(ctx context.Context, year, month int) ([]model.ProductivityRow, error)
}

type operationalRepo struct {
	db *gorm.DB
}

// NewOperationalRepo 创建 OperationalRepository 实例
func NewOperationalRepo(db *gorm.DB) OperationalRepository {
	return &operationalRepo{db: db}
}

// monthRange 期间月份的 [起, 止) 时间区间
func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (r *operationalRepo) UnsubmittedClaimCount(ctx context.Context, year, month int) (int64, error) {
	_, end := monthRange(year, month)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Claim{}).
		Where("submitted = ? AND service_date < ?", false, end).
		Count(&count).Error
	return count, err
}

func (r *operationalRepo) UnresolvedDenialCount(ctx context.Context, year, month int) (int64, error) {
	start, end := monthRange(year, month)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ClaimDenial{}).
		Where("denied_at >= ? AND denied_at < ? AND resolution IS NULL", start, end).
		Count(&count).Error
	return count, err
}

func (r *operationalRepo) UnreconciledPaymentCount(ctx context.Context, year, month int) (int64, error) {
	start, end := monthRange(year, month)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("received_at >= ? AND received_at < ? AND reconciled = ?", start, end, false).
		Count(&count).Error
	return count, err
}

func (r *operationalRepo) ARAgingRows(ctx context.Context, year, month int) ([]model.ARAgingRow, error) {
	_, end := monthRange(year, month)
	var rows []model.ARAgingRow
	// 以期间月末为基准日，按客户分桶汇总未回款理赔金额
	err := r.db.WithContext(ctx).Raw(`
		SELECT client_name,
		       COALESCE(SUM(amount) FILTER (WHERE ? - service_date <= 30), 0)                          AS bucket_current,
		       COALESCE(SUM(amount) FILTER (WHERE ? - service_date BETWEEN 31 AND 60), 0)              AS bucket_31_60,
		       COALESCE(SUM(amount) FILTER (WHERE ? - service_date BETWEEN 61 AND 90), 0)              AS bucket_61_90,
		       COALESCE(SUM(amount) FILTER (WHERE ? - service_date > 90), 0)                           AS bucket_over_90,
		       COALESCE(SUM(amount), 0)                                                                AS total_unpaid
		FROM claims
		WHERE status NOT IN ('paid') AND service_date < ?
		GROUP BY client_name
		ORDER BY client_name`,
		end, end, end, end, end,
	).Scan(&rows).Error
	return rows, err
}

func (r *operationalRepo) ClaimStatusRows(ctx context.Context, year, month int) ([]model.Claim, error) {
	start, end := monthRange(year, month)
	var claims []model.Claim
	err := r.db.WithContext(ctx).
		Where("service_date >= ? AND service_date < ?", start, end).
		Order("service_date ASC, client_name ASC").
		Find(&claims).Error
	return claims, err
}

func (r *operationalRepo) DenialRows(ctx context.Context, year, month int) ([]model.ClaimDenial, error) {
	start, end := monthRange(year, month)
	var denials []model.ClaimDenial
	err := r.db.WithContext(ctx).
		Where("denied_at >= ? AND denied_at < ?", start, end).
		Order("denied_at ASC").
		Find(&denials).Error
	return denials, err
}

func (r *operationalRepo) PaymentRows(ctx context.Context, year, month int) ([]model.Payment, error) {
	start, end := monthRange(year, month)
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("received_at >= ? AND received_at < ?", start, end).
		Order("received_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *operationalRepo) ProductivityRows(ctx context.Context, year, month int) ([]model.ProductivityRow, error) {
	start, end := monthRange(year, month)
	var rows []model.ProductivityRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT operator,
		       COALESCE(SUM(claims_submitted), 0) AS claims_submitted,
		       COALESCE(SUM(payments_posted), 0)  AS payments_posted
		FROM (
			SELECT submitted_by AS operator, COUNT(*) AS claims_submitted, 0 AS payments_posted
			FROM claims
			WHERE submitted = TRUE AND submitted_by IS NOT NULL
			  AND service_date >= ? AND service_date < ?
			GROUP BY submitted_by
			UNION ALL
			SELECT posted_by AS operator, 0 AS claims_submitted, COUNT(*) AS payments_posted
			FROM payments
			WHERE posted_by IS NOT NULL
			  AND received_at >= ? AND received_at < ?
			GROUP BY posted_by
		) t
		GROUP BY operator
		ORDER BY operator`,
		start, end, start, end,
	).Scan(&rows).Error
	return rows, err
}
