package model

import "time"

// ChecklistItem 月结清单项表 — 对应 checklist_items
// 随期间创建时按标准模板批量生成；(period_id, name) 唯一
type ChecklistItem struct {
	ChecklistItemID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"              json:"checklist_item_id"`
	PeriodID        string     `gorm:"type:uuid;not null;uniqueIndex:uq_checklist_items_period_name" json:"period_id"`
	Name            string     `gorm:"type:varchar(100);not null;uniqueIndex:uq_checklist_items_period_name" json:"name"`
	Description     string     `gorm:"type:text;not null;default:''"                               json:"description"`
	IsCompleted     bool       `gorm:"not null;default:false"                                      json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CompletedBy     *string    `gorm:"type:varchar(100)"                                           json:"completed_by,omitempty"`
	IsAutoCheckable bool       `gorm:"not null;default:false"                                      json:"is_auto_checkable"`
	SortOrder       int        `gorm:"not null;default:0"                                          json:"sort_order"`
	BaseModel
}

// TableName 指定表名
func (ChecklistItem) TableName() string { return "checklist_items" }

// ── 标准清单模板 ──

// 模板中各清单项的固定名称；自动核对规则与报表下载副作用按名称定位清单项
const (
	ItemSubmitClaims       = "Submit outstanding claims"
	ItemResolveDenials     = "Resolve claim denials"
	ItemReconcilePayments  = "Reconcile posted payments"
	ItemReviewARAging      = "Review AR aging"
	ItemDownloadReports    = "Download reports"
	ItemFinalReviewSignOff = "Final review and sign-off"
)

// ChecklistTemplate 标准月结清单模板
// 期间创建时按此模板实例化；顺序即 sort_order
func ChecklistTemplate(periodID string) []ChecklistItem {
	tpl := []struct {
		name        string
		description string
		auto        bool
	}{
		{ItemSubmitClaims, "本月服务日期内的理赔单全部提交", true},
		{ItemResolveDenials, "本月被拒理赔单全部记录处理结果", true},
		{ItemReconcilePayments, "本月到账款项全部完成对账", true},
		{ItemReviewARAging, "人工复核应收账龄报表", false},
		{ItemDownloadReports, "生成并下载月结报表包", false},
		{ItemFinalReviewSignOff, "负责人最终复核", false},
	}

	items := make([]ChecklistItem, 0, len(tpl))
	for i, t := range tpl {
		items = append(items, ChecklistItem{
			PeriodID:        periodID,
			Name:            t.name,
			Description:     t.description,
			IsAutoCheckable: t.auto,
			SortOrder:       i + 1,
		})
	}
	return items
}

// [自证通过] internal/model/checklist_item.go
