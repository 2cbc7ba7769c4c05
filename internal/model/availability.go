package model

import "time"

// WeeklyTemplate 每周默认排班模板 — 对应 weekly_templates
// 每行表示某个星期几的一个可用时间段；同一天允许多行，
// 解析时统一做归并，不假定存储即有序无重叠。
type WeeklyTemplate struct {
	TemplateID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"template_id"`
	MasterID   string `gorm:"type:uuid;not null;index:idx_tpl_master_day"    json:"master_id"`
	DayOfWeek  int    `gorm:"type:smallint;not null;index:idx_tpl_master_day" json:"day_of_week"` // 0=周一 … 6=周日
	StartTime  string `gorm:"type:time;not null"                             json:"start_time"`
	EndTime    string `gorm:"type:time;not null"                             json:"end_time"`
	BaseModel

	// 关联
	Master *Master `gorm:"foreignKey:MasterID;references:MasterID" json:"master,omitempty"`
}

// TableName 指定表名
func (WeeklyTemplate) TableName() string { return "weekly_templates" }

// DateOverride 指定日期的排班例外 — 对应 date_overrides
// 对该日期完全取代模板：Blocked 表示整天停用，否则以 Ranges 为准。
// 同一 (师傅, 日期) 最多一条。
type DateOverride struct {
	OverrideID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"override_id"`
	MasterID   string    `gorm:"type:uuid;not null;uniqueIndex:uq_override_md"       json:"master_id"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:uq_override_md"       json:"date"`
	Blocked    bool      `gorm:"not null;default:false"                              json:"blocked"`
	Reason     string    `gorm:"type:varchar(200)"                                   json:"reason,omitempty"`
	BaseModel

	// 关联
	Ranges []OverrideRange `gorm:"foreignKey:OverrideID" json:"ranges,omitempty"`
}

// TableName 指定表名
func (DateOverride) TableName() string { return "date_overrides" }

// OverrideRange 例外日期的可用时间段 — 对应 date_override_ranges
type OverrideRange struct {
	RangeID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"range_id"`
	OverrideID string `gorm:"type:uuid;not null"                             json:"override_id"`
	StartTime  string `gorm:"type:time;not null"                             json:"start_time"`
	EndTime    string `gorm:"type:time;not null"                             json:"end_time"`
}

// TableName 指定表名
func (OverrideRange) TableName() string { return "date_override_ranges" }

// [自证通过] internal/model/availability.go
