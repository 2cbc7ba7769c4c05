package dto

// ── 通知模块 DTO ──

// NotificationEventResponse 单条通知审计记录响应
type NotificationEventResponse struct {
	ID            string `json:"id"`
	RecipientType string `json:"recipient_type"`
	RecipientID   string `json:"recipient_id"`
	EventType     string `json:"event_type"`
	Channel       string `json:"channel"`
	Outcome       string `json:"outcome"`
	Detail        string `json:"detail,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// NotificationListRequest 通知审计查询请求
type NotificationListRequest struct {
	RecipientType string `form:"recipient_type" binding:"required,oneof=client master operator"`
	RecipientID   string `form:"recipient_id"   binding:"required"`
	Limit         int    `form:"limit"          binding:"omitempty,min=1,max=200"`
}
