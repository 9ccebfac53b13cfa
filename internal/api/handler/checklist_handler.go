package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"clearbill/backend/internal/dto"
	"clearbill/backend/internal/service"
	"clearbill/backend/pkg/response"
)

// ChecklistHandler 月结清单模块 HTTP 处理器
type ChecklistHandler struct {
	checklistSvc service.ChecklistService
}

// NewChecklistHandler 创建 ChecklistHandler
func NewChecklistHandler(checklistSvc service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklistSvc: checklistSvc}
}

// GetChecklist 获取期间月结清单（加载时先套用自动核对规则）
// GET /api/v1/periods/:id/checklist
func (h *ChecklistHandler) GetChecklist(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "期间ID不能为空")
		return
	}

	// 自动核对随加载刷新；失败不阻塞清单展示，由下一次加载重试
	if err := h.checklistSvc.ApplyAutoChecks(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPeriodNotFound) {
			response.NotFound(c, 14001, "会计期间不存在")
			return
		}
	}

	checklist, err := h.checklistSvc.LoadItems(c.Request.Context(), id)
	if err != nil {
		h.handleChecklistError(c, err)
		return
	}

	response.OK(c, checklist)
}

// ToggleItem 手工勾选/取消清单项
// PUT /api/v1/periods/:id/checklist
func (h *ChecklistHandler) ToggleItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "期间ID不能为空")
		return
	}

	var req dto.ToggleChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerName, ok := MustGetUserName(c)
	if !ok {
		return
	}

	item, err := h.checklistSvc.ToggleManual(c.Request.Context(), id, req.Name, *req.Completed, callerName)
	if err != nil {
		h.handleChecklistError(c, err)
		return
	}

	response.OK(c, item)
}

// RunAutoChecks 手动触发自动核对并返回最新清单
// POST /api/v1/periods/:id/auto-checks
func (h *ChecklistHandler) RunAutoChecks(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "期间ID不能为空")
		return
	}

	if err := h.checklistSvc.ApplyAutoChecks(c.Request.Context(), id); err != nil {
		h.handleChecklistError(c, err)
		return
	}

	checklist, err := h.checklistSvc.LoadItems(c.Request.Context(), id)
	if err != nil {
		h.handleChecklistError(c, err)
		return
	}

	response.OK(c, checklist)
}

// handleChecklistError 统一处理月结清单模块业务错误
func (h *ChecklistHandler) handleChecklistError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 14001, "会计期间不存在")
	case errors.Is(err, service.ErrPeriodClosed):
		response.Conflict(c, 14003, "会计期间已关账，禁止修改")
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(c, 15001, "清单项不存在")
	case errors.Is(err, service.ErrItemAutoManaged):
		response.BadRequest(c, 15002, "该清单项由系统自动核对，不允许手工勾选")
	default:
		response.InternalError(c)
	}
}
