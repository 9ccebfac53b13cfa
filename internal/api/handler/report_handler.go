package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"clearbill/backend/internal/dto"
	"clearbill/backend/internal/service"
	"clearbill/backend/pkg/response"
)

// ReportHandler 月结报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// GenerateReportPack 生成并下载月结报表包
// POST /api/v1/reports/month-end
// 区块级失败不阻塞下载：跳过的区块名通过 X-Report-Warnings 响应头返回
func (h *ReportHandler) GenerateReportPack(c *gin.Context) {
	var req dto.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerName, ok := MustGetUserName(c)
	if !ok {
		return
	}

	buf, filename, warnings, err := h.reportSvc.Assemble(c.Request.Context(), req.Year, req.Month, req.Sections, callerName)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	if len(warnings) > 0 {
		c.Header("X-Report-Warnings", url.QueryEscape(strings.Join(warnings, "; ")))
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoSectionsSelected):
		response.BadRequest(c, 16001, "未选择任何报表区块")
	case errors.Is(err, service.ErrReportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
