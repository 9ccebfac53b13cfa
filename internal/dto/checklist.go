package dto

// ── 月结清单模块 DTO ──

// ToggleChecklistItemRequest 手工勾选/取消清单项请求
type ToggleChecklistItemRequest struct {
	Name      string `json:"name"      binding:"required,min=1,max=100"`
	Completed *bool  `json:"completed" binding:"required"`
}

// ChecklistItemResponse 清单项响应
type ChecklistItemResponse struct {
	ID              string  `json:"id"`
	PeriodID        string  `json:"period_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	IsCompleted     bool    `json:"is_completed"`
	CompletedAt     *string `json:"completed_at,omitempty"`
	CompletedBy     *string `json:"completed_by,omitempty"`
	IsAutoCheckable bool    `json:"is_auto_checkable"`
	SortOrder       int     `json:"sort_order"`
}

// ChecklistResponse 清单整体响应：有序清单项 + 关账闸门状态
type ChecklistResponse struct {
	Items         []ChecklistItemResponse `json:"items"`
	GateSatisfied bool                    `json:"gate_satisfied"`
	Remaining     []string                `json:"remaining"` // 未完成项名称
}
