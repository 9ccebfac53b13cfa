package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"clearbill/backend/internal/dto"
	"clearbill/backend/internal/service"
	"clearbill/backend/pkg/response"
)

// PeriodHandler 会计期间模块 HTTP 处理器
type PeriodHandler struct {
	periodSvc service.PeriodService
}

// NewPeriodHandler 创建 PeriodHandler
func NewPeriodHandler(periodSvc service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc}
}

// GetPeriod 查询某月会计期间
// GET /api/v1/periods?year=2024&month=1
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.GetOrNone(c.Request.Context(), year, month)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}
	if period == nil {
		response.NotFound(c, 14001, "会计期间不存在")
		return
	}

	response.OK(c, period)
}

// CreatePeriod 创建会计期间（同时实例化标准月结清单）
// POST /api/v1/periods
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerName, ok := MustGetUserName(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.Create(c.Request.Context(), &req, callerName)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.Created(c, period)
}

// ClosePeriod 关账：校验闸门后原子写入签核记录并翻转状态
// POST /api/v1/periods/:id/close
func (h *PeriodHandler) ClosePeriod(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "期间ID不能为空")
		return
	}

	var req dto.ClosePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerName, ok := MustGetUserName(c)
	if !ok {
		return
	}

	result, err := h.periodSvc.Close(c.Request.Context(), id, callerName, req.Notes)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, result)
}

// handlePeriodError 统一处理会计期间模块业务错误
func (h *PeriodHandler) handlePeriodError(c *gin.Context, err error) {
	var incomplete *service.ChecklistIncompleteError

	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 14001, "会计期间不存在")
	case errors.As(err, &incomplete):
		response.ErrorWithDetails(c, http.StatusConflict, 14004, "月结清单未全部完成，无法关账",
			strings.Join(incomplete.Remaining, ", "))
	case errors.Is(err, service.ErrChecklistIncomplete):
		response.Conflict(c, 14004, "月结清单未全部完成，无法关账")
	case errors.Is(err, service.ErrPeriodAlreadyExists):
		response.Conflict(c, 14002, "该月份的会计期间已存在")
	case errors.Is(err, service.ErrPeriodAlreadyClosed):
		response.Conflict(c, 14003, "会计期间已关账")
	case errors.Is(err, service.ErrPeriodClosed):
		response.Conflict(c, 14003, "会计期间已关账，禁止修改")
	default:
		response.InternalError(c)
	}
}

// parseYearMonth 从 Query 中解析并校验 year / month
func parseYearMonth(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		response.BadRequest(c, 10001, "year 参数无效")
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(c, 10001, "month 参数无效")
		return 0, 0, false
	}
	return year, month, true
}
