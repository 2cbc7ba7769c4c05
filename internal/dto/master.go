package dto

// ── 师傅模块 DTO ──

// RegisterMasterRequest 注册师傅请求
type RegisterMasterRequest struct {
	FullName          string   `json:"full_name"          binding:"required,min=2,max=100"`
	Phone             string   `json:"phone"              binding:"required,e164"`
	Specializations   []string `json:"specializations"    binding:"required,min=1"`
	City              string   `json:"city"               binding:"required,min=2,max=50"`
	PreferredChannels []string `json:"preferred_channels" binding:"omitempty,dive,oneof=telegram sms email"`
	TelegramChatID    string   `json:"telegram_chat_id"   binding:"omitempty,max=32"`
	Email             string   `json:"email"              binding:"omitempty,email"`
}

// UpdateMasterRequest 更新师傅信息请求
type UpdateMasterRequest struct {
	FullName          *string   `json:"full_name"          binding:"omitempty,min=2,max=100"`
	Specializations   *[]string `json:"specializations"    binding:"omitempty,min=1"`
	City              *string   `json:"city"               binding:"omitempty,min=2,max=50"`
	Rating            *float64  `json:"rating"             binding:"omitempty,min=0,max=5"`
	PreferredChannels *[]string `json:"preferred_channels" binding:"omitempty,dive,oneof=telegram sms email"`
	TelegramChatID    *string   `json:"telegram_chat_id"   binding:"omitempty,max=32"`
	Email             *string   `json:"email"              binding:"omitempty,email"`
	IsActive          *bool     `json:"is_active"`
}

// MasterResponse 师傅信息响应
type MasterResponse struct {
	ID                       string   `json:"id"`
	FullName                 string   `json:"full_name"`
	Phone                    string   `json:"phone"`
	Specializations          []string `json:"specializations"`
	City                     string   `json:"city"`
	Rating                   float64  `json:"rating"`
	PreferredChannels        []string `json:"preferred_channels"`
	IsActive                 bool     `json:"is_active"`
	TerminalActive           bool     `json:"terminal_active"`
	LastScheduleConfirmation *string  `json:"last_schedule_confirmation,omitempty"`
	CreatedAt                string   `json:"created_at"`
}

// ActivateTerminalResponse 激活终端响应（含终端访问 Token）
type ActivateTerminalResponse struct {
	Master        MasterResponse `json:"master"`
	TerminalToken string         `json:"terminal_token"`
}

// MasterStatisticsResponse 师傅统计响应
type MasterStatisticsResponse struct {
	MasterID      string  `json:"master_id"`
	CompletedJobs int64   `json:"completed_jobs"`
	Rating        float64 `json:"rating"`
	TodayBookings int64   `json:"today_bookings"`
}

// ConfirmScheduleResponse 排班确认响应
type ConfirmScheduleResponse struct {
	Confirmed   bool   `json:"confirmed"`
	ConfirmedAt string `json:"confirmed_at"`
}

// SearchMastersRequest 按专长/城市搜索某日可接单师傅
// start/end 可选，同时给出时要求整段空闲
type SearchMastersRequest struct {
	Category string `form:"category" binding:"required"`
	City     string `form:"city"     binding:"required"`
	Date     string `form:"date"     binding:"required,len=10"`
	Start    string `form:"start"    binding:"omitempty,len=5"`
	End      string `form:"end"      binding:"omitempty,len=5"`
}

// CandidateResponse 搜索结果中的候选师傅，按分数降序
type CandidateResponse struct {
	MasterID string     `json:"master_id"`
	FullName string     `json:"full_name"`
	Rating   float64    `json:"rating"`
	Load     int64      `json:"load"`
	Date     string     `json:"date"`
	Slot     ClockRange `json:"slot"`
}
