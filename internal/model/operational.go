package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 经营数据只读模型。claims / claim_denials / payments 三张表由主 CRM
// 负责写入与迁移，月结工作流只做聚合查询，不拥有这些数据。

// Claim 理赔单（只读）
type Claim struct {
	ClaimID     string          `gorm:"type:uuid;primaryKey" json:"claim_id"`
	ClientName  string          `gorm:"column:client_name"   json:"client_name"`
	ServiceDate time.Time       `gorm:"column:service_date"  json:"service_date"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2)"   json:"amount"`
	Status      string          `gorm:"column:status"        json:"status"` // draft | submitted | paid | denied
	Submitted   bool            `gorm:"column:submitted"     json:"submitted"`
	SubmittedBy *string         `gorm:"column:submitted_by"  json:"submitted_by,omitempty"`
}

// TableName 指定表名
func (Claim) TableName() string { return "claims" }

// ClaimDenial 理赔拒付记录（只读）
type ClaimDenial struct {
	DenialID   string    `gorm:"type:uuid;primaryKey" json:"denial_id"`
	ClaimID    string    `gorm:"type:uuid"            json:"claim_id"`
	ClientName string    `gorm:"column:client_name"   json:"client_name"`
	DeniedAt   time.Time `gorm:"column:denied_at"     json:"denied_at"`
	Reason     string    `gorm:"column:reason"        json:"reason"`
	Resolution *string   `gorm:"column:resolution"    json:"resolution,omitempty"`
}

// TableName 指定表名
func (ClaimDenial) TableName() string { return "claim_denials" }

// Payment 到账款项（只读）
type Payment struct {
	PaymentID  string          `gorm:"type:uuid;primaryKey" json:"payment_id"`
	ClientName string          `gorm:"column:client_name"   json:"client_name"`
	Payer      string          `gorm:"column:payer"         json:"payer"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2)"   json:"amount"`
	ReceivedAt time.Time       `gorm:"column:received_at"   json:"received_at"`
	Reconciled bool            `gorm:"column:reconciled"    json:"reconciled"`
	PostedBy   *string         `gorm:"column:posted_by"     json:"posted_by,omitempty"`
}

// TableName 指定表名
func (Payment) TableName() string { return "payments" }

// ── 报表区块数据行（聚合查询结果，不落库） ──

// ARAgingRow 应收账龄行：按客户分桶的未收余额
type ARAgingRow struct {
	ClientName  string          `gorm:"column:client_name"`
	Current     decimal.Decimal `gorm:"column:bucket_current"`
	Days31To60  decimal.Decimal `gorm:"column:bucket_31_60"`
	Days61To90  decimal.Decimal `gorm:"column:bucket_61_90"`
	Over90Days  decimal.Decimal `gorm:"column:bucket_over_90"`
	TotalUnpaid decimal.Decimal `gorm:"column:total_unpaid"`
}

// ProductivityRow 工作量行：按操作员统计的提交/对账笔数
type ProductivityRow struct {
	Operator       string `gorm:"column:operator"`
	ClaimsSubmitted int64 `gorm:"column:claims_submitted"`
	PaymentsPosted  int64 `gorm:"column:payments_posted"`
}

// [自证通过] internal/model/operational.go
