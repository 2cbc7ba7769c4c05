package dto

// ── 预约模块 DTO ──

// CommitBookingRequest 提交预约请求
type CommitBookingRequest struct {
	MasterID        string `json:"master_id"        binding:"required,uuid"`
	JobID           string `json:"job_id"           binding:"required,uuid"`
	Date            string `json:"date"             binding:"required,len=10"`
	StartTime       string `json:"start_time"       binding:"required,len=5"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=15,max=480"`
}

// BookingResponse 预约响应
type BookingResponse struct {
	ID              string `json:"id"`
	MasterID        string `json:"master_id"`
	JobID           string `json:"job_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

// BookingListRequest 预约列表查询请求
type BookingListRequest struct {
	From string `form:"from" binding:"required,len=10"`
	To   string `form:"to"   binding:"required,len=10"`
	City string `form:"city" binding:"omitempty,max=50"`
}
