package dto

// ── 会计期间模块 DTO ──

// CreatePeriodRequest 创建期间请求
type CreatePeriodRequest struct {
	Year  int `json:"year"  binding:"required,min=2000,max=2100"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// PeriodResponse 期间信息响应
type PeriodResponse struct {
	ID            string  `json:"id"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	Status        string  `json:"status"`
	CloseDate     *string `json:"close_date,omitempty"`
	ClosedBy      *string `json:"closed_by,omitempty"`
	DaysRemaining int     `json:"days_remaining"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// ClosePeriodRequest 关账请求（签核人取自认证上下文）
type ClosePeriodRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=2000"`
}

// SignOffResponse 签核记录响应
type SignOffResponse struct {
	ID       string  `json:"id"`
	PeriodID string  `json:"period_id"`
	SignedBy string  `json:"signed_by"`
	SignedAt string  `json:"signed_at"`
	Notes    *string `json:"notes,omitempty"`
}

// ClosePeriodResponse 关账结果：更新后的期间 + 新签核记录
type ClosePeriodResponse struct {
	Period  PeriodResponse  `json:"period"`
	SignOff SignOffResponse `json:"sign_off"`
}
