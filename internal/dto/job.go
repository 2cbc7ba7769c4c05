package dto

import "errors"

// ── 工单模块 DTO ──

// CreateJobRequest 创建工单（客户预约请求）
type CreateJobRequest struct {
	ClientName         string   `json:"client_name"         binding:"required,min=2,max=100"`
	ClientPhone        string   `json:"client_phone"        binding:"required,e164"`
	Category           string   `json:"category"            binding:"required,min=2,max=50"`
	City               string   `json:"city"                binding:"required,min=2,max=50"`
	Address            string   `json:"address"             binding:"required,max=300"`
	ProblemDescription string   `json:"problem_description" binding:"required,max=2000"`
	PreferredDate      *string  `json:"preferred_date"      binding:"omitempty,len=10"`
	PreferredStart     *string  `json:"preferred_start"     binding:"omitempty,len=5"`
	PreferredEnd       *string  `json:"preferred_end"       binding:"omitempty,len=5"`
	DurationMinutes    int      `json:"duration_minutes"    binding:"omitempty,min=15,max=480"`
	EstimatedPrice     *float64 `json:"estimated_price"     binding:"omitempty,min=0"`
}

// Validate 业务规则校验：偏好时段必须成对出现
func (r *CreateJobRequest) Validate() error {
	if (r.PreferredStart == nil) != (r.PreferredEnd == nil) {
		return errors.New("偏好开始与结束时间必须同时指定")
	}
	if r.PreferredStart != nil && r.PreferredDate == nil {
		return errors.New("指定偏好时段时必须同时指定日期")
	}
	return nil
}

// JobListRequest 工单列表查询请求
type JobListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending assigned on_the_way arrived in_progress completed cancelled"`
	City   string `form:"city"   binding:"omitempty,max=50"`
}

// UpdateJobStatusRequest 更新工单状态请求（终端侧）
type UpdateJobStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=on_the_way arrived in_progress completed"`
}

// JobResponse 工单响应
type JobResponse struct {
	ID                 string   `json:"id"`
	ClientName         string   `json:"client_name"`
	ClientPhone        string   `json:"client_phone"`
	Category           string   `json:"category"`
	City               string   `json:"city"`
	Address            string   `json:"address"`
	ProblemDescription string   `json:"problem_description,omitempty"`
	Status             string   `json:"status"`
	MasterID           *string  `json:"master_id,omitempty"`
	MasterName         string   `json:"master_name,omitempty"`
	PreferredDate      *string  `json:"preferred_date,omitempty"`
	EstimatedPrice     *float64 `json:"estimated_price,omitempty"`
	MasterEarnings     *float64 `json:"master_earnings,omitempty"`
	DurationMinutes    int      `json:"duration_minutes"`
	CreatedAt          string   `json:"created_at"`
}

// AssignJobResponse 派单结果响应
type AssignJobResponse struct {
	Job      JobResponse      `json:"job"`
	Booking  *BookingResponse `json:"booking,omitempty"`
	Attempts int              `json:"attempts"`
}

// JobStatsResponse 工单状态统计响应
type JobStatsResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}
