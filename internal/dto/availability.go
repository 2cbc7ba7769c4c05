package dto

import "errors"

// ── 可用性模块 DTO ──

// ClockRange 挂钟时段，HH:MM 格式，半开区间 [start, end)
type ClockRange struct {
	Start string `json:"start" binding:"required,len=5"`
	End   string `json:"end"   binding:"required,len=5"`
}

// SetWeeklyTemplateRequest 设置每周模板请求，按星期整体替换
type SetWeeklyTemplateRequest struct {
	// day_of_week: 0=周一 ... 6=周日
	DayOfWeek int          `json:"day_of_week" binding:"min=0,max=6"`
	Ranges    []ClockRange `json:"ranges"      binding:"required"`
}

// SetDateOverrideRequest 设置单日覆盖请求
// blocked=true 表示整日封闭，此时 ranges 必须为空
type SetDateOverrideRequest struct {
	Date    string       `json:"date"    binding:"required,len=10"`
	Blocked bool         `json:"blocked"`
	Ranges  []ClockRange `json:"ranges"  binding:"omitempty"`
}

// Validate 业务规则校验：封闭日不允许附带时段
func (r *SetDateOverrideRequest) Validate() error {
	if r.Blocked && len(r.Ranges) > 0 {
		return errors.New("封闭日不能同时指定可用时段")
	}
	return nil
}

// ResolveAvailabilityRequest 解析某日可用性请求
type ResolveAvailabilityRequest struct {
	Date string `form:"date" binding:"required,len=10"`
}

// AvailabilityResponse 某日可用性响应
type AvailabilityResponse struct {
	MasterID string       `json:"master_id"`
	Date     string       `json:"date"`
	Source   string       `json:"source"` // template / override / blocked
	Ranges   []ClockRange `json:"ranges"`
}

// WeeklyTemplateResponse 每周模板响应
type WeeklyTemplateResponse struct {
	DayOfWeek int          `json:"day_of_week"`
	Ranges    []ClockRange `json:"ranges"`
}
