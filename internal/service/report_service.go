package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"clearbill/backend/internal/model"
	"clearbill/backend/internal/repository"
)

// ── 月结报表模块业务错误 ──

var (
	ErrNoSectionsSelected = errors.New("未选择任何报表区块")
	ErrReportGenerateFail = errors.New("生成报表文件失败")
)

// 报表区块固定目录；渲染顺序即此处声明顺序
const (
	SectionARAging      = "ar_aging"
	SectionClaimsStatus = "claims_status"
	SectionDenials      = "denials"
	SectionPayments     = "payments"
	SectionProductivity = "productivity"
)

var sectionCatalogue = []string{
	SectionARAging,
	SectionClaimsStatus,
	SectionDenials,
	SectionPayments,
	SectionProductivity,
}

var sectionTitles = map[string]string{
	SectionARAging:      "AR Aging",
	SectionClaimsStatus: "Claims Status",
	SectionDenials:      "Denials",
	SectionPayments:     "Payments",
	SectionProductivity: "Productivity",
}

// ReportService 月结报表包业务接口
//
// 设计说明：
//   - 报表包为单个 .xlsx 工作簿，每个选中区块一个 Sheet
//   - 单个区块的数据拉取失败只跳过该区块并记录警告，残缺报表优于没有报表
//   - 渲染成功后尽力勾选 "Download reports" 清单项；勾选失败只追加警告，
//     绝不反过来废弃已生成的报表
type ReportService interface {
	// Assemble 装配报表包，返回 (文件内容, 建议文件名, 区块级警告, error)
	Assemble(ctx context.Context, year, month int, sections []string, actor string) (*bytes.Buffer, string, []string, error)
}

type reportService struct {
	repo           *repository.Repository
	checklist      ChecklistService
	sectionTimeout time.Duration
	logger         *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, checklist ChecklistService, sectionTimeout time.Duration, logger *zap.Logger) ReportService {
	return &reportService{
		repo:           repo,
		checklist:      checklist,
		sectionTimeout: sectionTimeout,
		logger:         logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Assemble — 装配月结报表包
// ═══════════════════════════════════════════════════════════

func (s *reportService) Assemble(ctx context.Context, year, month int, sections []string, actor string) (*bytes.Buffer, string, []string, error) {
	if len(sections) == 0 {
		return nil, "", nil, ErrNoSectionsSelected
	}

	// 按固定目录顺序去重整序；未知区块名在 DTO 校验层已拦截
	selected := make(map[string]bool, len(sections))
	for _, sec := range sections {
		selected[sec] = true
	}

	warnings := make([]string, 0)

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	rendered := 0
	for _, sec := range sectionCatalogue {
		if !selected[sec] {
			continue
		}

		if err := s.renderSection(ctx, f, sec, year, month, headerStyle); err != nil {
			s.logger.Warn("报表区块拉取失败，跳过该区块",
				zap.String("section", sec),
				zap.Int("year", year),
				zap.Int("month", month),
				zap.Error(err),
			)
			warnings = append(warnings, fmt.Sprintf("区块 %s 数据拉取失败，已跳过: %v", sec, err))
			continue
		}
		rendered++
	}

	// 删除默认 Sheet1 并激活首个区块
	f.DeleteSheet("Sheet1")
	if rendered > 0 {
		for _, sec := range sectionCatalogue {
			if selected[sec] {
				if idx, err := f.GetSheetIndex(sectionTitles[sec]); err == nil && idx >= 0 {
					f.SetActiveSheet(idx)
					break
				}
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入报表文件失败", zap.Error(err))
		return nil, "", nil, ErrReportGenerateFail
	}

	filename := fmt.Sprintf("month_end_reports_%04d-%02d.xlsx", year, month)

	// 报表已生成：勾选清单项属于尽力而为的副作用
	warnings = append(warnings, s.markDownloadItem(ctx, year, month, actor)...)

	return buf, filename, warnings, nil
}

// renderSection 在独立超时内拉取并渲染单个区块
func (s *reportService) renderSection(ctx context.Context, f *excelize.File, sec string, year, month int, headerStyle int) error {
	sectionCtx, cancel := context.WithTimeout(ctx, s.sectionTimeout)
	defer cancel()

	var (
		headers []string
		rows    [][]interface{}
		err     error
	)

	switch sec {
	case SectionARAging:
		headers = []string{"Client", "Current", "31-60 Days", "61-90 Days", "Over 90 Days", "Total Unpaid"}
		var data []model.ARAgingRow
		data, err = s.repo.Operational.ARAgingRows(sectionCtx, year, month)
		for _, r := range data {
			rows = append(rows, []interface{}{
				r.ClientName,
				formatAmount(r.Current),
				formatAmount(r.Days31To60),
				formatAmount(r.Days61To90),
				formatAmount(r.Over90Days),
				formatAmount(r.TotalUnpaid),
			})
		}
	case SectionClaimsStatus:
		headers = []string{"Client", "Service Date", "Amount", "Status", "Submitted"}
		var data []model.Claim
		data, err = s.repo.Operational.ClaimStatusRows(sectionCtx, year, month)
		for _, r := range data {
			submitted := "No"
			if r.Submitted {
				submitted = "Yes"
			}
			rows = append(rows, []interface{}{
				r.ClientName,
				formatDate(r.ServiceDate),
				formatAmount(r.Amount),
				r.Status,
				submitted,
			})
		}
	case SectionDenials:
		headers = []string{"Client", "Denied At", "Reason", "Resolution"}
		var data []model.ClaimDenial
		data, err = s.repo.Operational.DenialRows(sectionCtx, year, month)
		for _, r := range data {
			resolution := ""
			if r.Resolution != nil {
				resolution = *r.Resolution
			}
			rows = append(rows, []interface{}{
				r.ClientName,
				formatDate(r.DeniedAt),
				r.Reason,
				resolution,
			})
		}
	case SectionPayments:
		headers = []string{"Client", "Payer", "Amount", "Received At", "Reconciled"}
		var data []model.Payment
		data, err = s.repo.Operational.PaymentRows(sectionCtx, year, month)
		for _, r := range data {
			reconciled := "No"
			if r.Reconciled {
				reconciled = "Yes"
			}
			rows = append(rows, []interface{}{
				r.ClientName,
				r.Payer,
				formatAmount(r.Amount),
				formatDate(r.ReceivedAt),
				reconciled,
			})
		}
	case SectionProductivity:
		headers = []string{"Operator", "Claims Submitted", "Payments Posted"}
		var data []model.ProductivityRow
		data, err = s.repo.Operational.ProductivityRows(sectionCtx, year, month)
		for _, r := range data {
			rows = append(rows, []interface{}{r.Operator, r.ClaimsSubmitted, r.PaymentsPosted})
		}
	}
	if err != nil {
		return err
	}

	sheetName := sectionTitles[sec]
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — %04d/%02d", sheetName, year, month))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
		f.SetColWidth(sheetName, colName(i), colName(i), 18)
	}

	// 数据行；空数据集渲染为 "no records"，不算错误
	if len(rows) == 0 {
		f.SetCellValue(sheetName, "A3", "no records")
		return nil
	}
	for rowIdx, row := range rows {
		for colIdx, v := range row {
			f.SetCellValue(sheetName, cell(colName(colIdx), rowIdx+3), v)
		}
	}

	return nil
}

// markDownloadItem 渲染成功后的清单副作用；任何失败只转化为警告
func (s *reportService) markDownloadItem(ctx context.Context, year, month int, actor string) []string {
	period, err := s.repo.Period.GetByYearMonth(ctx, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 该月尚未初始化期间：无清单可勾选，不算警告
			return nil
		}
		return []string{fmt.Sprintf("查询期间失败，清单项未勾选: %v", err)}
	}

	if err := s.checklist.MarkCompletedByArtifact(ctx, period.PeriodID, model.ItemDownloadReports, actor); err != nil {
		s.logger.Warn("报表清单项勾选失败（报表本身已生成）",
			zap.String("period_id", period.PeriodID),
			zap.Error(err),
		)
		return []string{fmt.Sprintf("清单项 %q 勾选失败: %v", model.ItemDownloadReports, err)}
	}

	return nil
}

// ── 辅助函数 ──

// formatAmount 金额格式化：千分位 + 两位小数
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}

	out := b.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// formatDate 日期格式化：日/月/年，与地区设置无关
func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
