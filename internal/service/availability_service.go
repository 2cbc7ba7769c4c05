package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Heallshoking/ai-service-platform/config"
	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/model"
	"github.com/Heallshoking/ai-service-platform/internal/repository"
)

// ── 可用性模块业务错误 ──

var (
	ErrInvalidAvailability = errors.New("排班时段非法")
	ErrBadDate             = errors.New("日期格式非法，应为 YYYY-MM-DD")
)

// 可用性来源
const (
	SourceTemplate = "template"
	SourceOverride = "override"
	SourceBlocked  = "blocked"
)

// ResolvedDay 某师傅某日的解析结果
type ResolvedDay struct {
	MasterID string
	Date     time.Time
	Source   string
	// Ranges 归并后的基础可用区间，升序且互不相邻重叠
	Ranges []model.TimeRange
}

// AvailabilityService 排班与可用性业务接口
type AvailabilityService interface {
	// SeedDefaults 为新师傅写入默认每周模板（配置给定的工作日与时段）
	SeedDefaults(ctx context.Context, masterID string) error
	GetWeeklyTemplates(ctx context.Context, masterID string) ([]dto.WeeklyTemplateResponse, error)
	// SetWeeklyTemplate 整体替换师傅某个星期几的模板时段
	SetWeeklyTemplate(ctx context.Context, masterID string, req *dto.SetWeeklyTemplateRequest) error
	// SetOverride 写入单日例外，对该日期完全取代模板
	SetOverride(ctx context.Context, masterID string, req *dto.SetDateOverrideRequest) error
	DeleteOverride(ctx context.Context, masterID string, date string) error

	// Resolve 解析某日的基础可用区间：有例外取例外，否则取模板
	Resolve(ctx context.Context, masterID string, date time.Time) (*ResolvedDay, error)
	// ResolveResponse Resolve 的 DTO 包装
	ResolveResponse(ctx context.Context, masterID string, date string) (*dto.AvailabilityResponse, error)
	// FreeRanges 基础可用区间扣除当日 confirmed 预订（含路途缓冲）后的空闲区间
	FreeRanges(ctx context.Context, masterID string, date time.Time) ([]model.TimeRange, error)
	// IsFree 判断区间在扣除预订后是否完全空闲
	IsFree(ctx context.Context, masterID string, date time.Time, rng model.TimeRange) (bool, error)
}

type availabilityService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AvailabilityService {
	return &availabilityService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── 模板维护 ──────────────────────

func (s *availabilityService) SeedDefaults(ctx context.Context, masterID string) error {
	sc := s.cfg.Schedule
	templates := make([]model.WeeklyTemplate, 0, len(sc.WorkingDays))
	for _, day := range sc.WorkingDays {
		templates = append(templates, model.WeeklyTemplate{
			MasterID:  masterID,
			DayOfWeek: day,
			StartTime: sc.DefaultStart,
			EndTime:   sc.DefaultEnd,
		})
	}
	if err := s.repo.Availability.ReplaceTemplates(ctx, masterID, templates); err != nil {
		s.logger.Error("写入默认排班模板失败", zap.String("master_id", masterID), zap.Error(err))
		return err
	}
	return nil
}

func (s *availabilityService) GetWeeklyTemplates(ctx context.Context, masterID string) ([]dto.WeeklyTemplateResponse, error) {
	rows, err := s.repo.Availability.ListTemplates(ctx, masterID)
	if err != nil {
		return nil, err
	}

	// 按星期聚合
	byDay := make(map[int][]dto.ClockRange)
	for _, row := range rows {
		byDay[row.DayOfWeek] = append(byDay[row.DayOfWeek], dto.ClockRange{
			Start: row.StartTime,
			End:   row.EndTime,
		})
	}
	out := make([]dto.WeeklyTemplateResponse, 0, len(byDay))
	for day := 0; day <= 6; day++ {
		if ranges, ok := byDay[day]; ok {
			out = append(out, dto.WeeklyTemplateResponse{DayOfWeek: day, Ranges: ranges})
		}
	}
	return out, nil
}

func (s *availabilityService) SetWeeklyTemplate(ctx context.Context, masterID string, req *dto.SetWeeklyTemplateRequest) error {
	ranges, err := parseClockRanges(req.Ranges)
	if err != nil {
		return err
	}

	// 保留其他星期的模板，仅替换目标星期
	existing, err := s.repo.Availability.ListTemplates(ctx, masterID)
	if err != nil {
		return err
	}
	next := make([]model.WeeklyTemplate, 0, len(existing)+len(ranges))
	for _, row := range existing {
		if row.DayOfWeek != req.DayOfWeek {
			next = append(next, model.WeeklyTemplate{
				MasterID:  masterID,
				DayOfWeek: row.DayOfWeek,
				StartTime: row.StartTime,
				EndTime:   row.EndTime,
			})
		}
	}
	for _, r := range ranges {
		next = append(next, model.WeeklyTemplate{
			MasterID:  masterID,
			DayOfWeek: req.DayOfWeek,
			StartTime: model.FormatClock(r.Start),
			EndTime:   model.FormatClock(r.End),
		})
	}

	if err := s.repo.Availability.ReplaceTemplates(ctx, masterID, next); err != nil {
		s.logger.Error("替换每周模板失败",
			zap.String("master_id", masterID),
			zap.Int("day_of_week", req.DayOfWeek),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *availabilityService) SetOverride(ctx context.Context, masterID string, req *dto.SetDateOverrideRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAvailability, err)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	ranges, err := parseClockRanges(req.Ranges)
	if err != nil {
		return err
	}

	ov := &model.DateOverride{
		MasterID: masterID,
		Date:     date,
		Blocked:  req.Blocked,
	}
	for _, r := range ranges {
		ov.Ranges = append(ov.Ranges, model.OverrideRange{
			StartTime: model.FormatClock(r.Start),
			EndTime:   model.FormatClock(r.End),
		})
	}
	if err := s.repo.Availability.UpsertOverride(ctx, ov); err != nil {
		s.logger.Error("写入单日例外失败",
			zap.String("master_id", masterID),
			zap.String("date", req.Date),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *availabilityService) DeleteOverride(ctx context.Context, masterID string, dateStr string) error {
	date, err := parseDate(dateStr)
	if err != nil {
		return err
	}
	return s.repo.Availability.DeleteOverride(ctx, masterID, date)
}

// ────────────────────── 解析 ──────────────────────

func (s *availabilityService) Resolve(ctx context.Context, masterID string, date time.Time) (*ResolvedDay, error) {
	if _, err := s.repo.Master.GetByID(ctx, masterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMasterNotFound
		}
		return nil, err
	}

	ov, err := s.repo.Availability.GetOverride(ctx, masterID, date)
	if err != nil {
		return nil, err
	}
	if ov != nil {
		if ov.Blocked {
			return &ResolvedDay{MasterID: masterID, Date: date, Source: SourceBlocked}, nil
		}
		ranges := make([]model.TimeRange, 0, len(ov.Ranges))
		for _, row := range ov.Ranges {
			r, err := model.NewTimeRange(row.StartTime, row.EndTime)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidAvailability, err)
			}
			ranges = append(ranges, r)
		}
		return &ResolvedDay{
			MasterID: masterID,
			Date:     date,
			Source:   SourceOverride,
			Ranges:   normalizeRanges(ranges),
		}, nil
	}

	rows, err := s.repo.Availability.ListTemplatesByDay(ctx, masterID, weekdayIndex(date))
	if err != nil {
		return nil, err
	}
	ranges := make([]model.TimeRange, 0, len(rows))
	for _, row := range rows {
		r, err := model.NewTimeRange(row.StartTime, row.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAvailability, err)
		}
		ranges = append(ranges, r)
	}
	return &ResolvedDay{
		MasterID: masterID,
		Date:     date,
		Source:   SourceTemplate,
		Ranges:   normalizeRanges(ranges),
	}, nil
}

func (s *availabilityService) ResolveResponse(ctx context.Context, masterID string, dateStr string) (*dto.AvailabilityResponse, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	day, err := s.Resolve(ctx, masterID, date)
	if err != nil {
		return nil, err
	}
	resp := &dto.AvailabilityResponse{
		MasterID: masterID,
		Date:     dateStr,
		Source:   day.Source,
		Ranges:   make([]dto.ClockRange, 0, len(day.Ranges)),
	}
	for _, r := range day.Ranges {
		resp.Ranges = append(resp.Ranges, dto.ClockRange{
			Start: model.FormatClock(r.Start),
			End:   model.FormatClock(r.End),
		})
	}
	return resp, nil
}

func (s *availabilityService) FreeRanges(ctx context.Context, masterID string, date time.Time) ([]model.TimeRange, error) {
	day, err := s.Resolve(ctx, masterID, date)
	if err != nil {
		return nil, err
	}
	if len(day.Ranges) == 0 {
		return nil, nil
	}

	bookings, err := s.repo.Booking.ListConfirmed(ctx, masterID, date)
	if err != nil {
		return nil, err
	}
	busy := make([]model.TimeRange, 0, len(bookings))
	for _, b := range bookings {
		r, err := b.Range()
		if err != nil {
			return nil, err
		}
		busy = append(busy, inflateRange(r, s.cfg.Assign.TravelBuffer))
	}
	return subtractRanges(day.Ranges, busy), nil
}

func (s *availabilityService) IsFree(ctx context.Context, masterID string, date time.Time, rng model.TimeRange) (bool, error) {
	free, err := s.FreeRanges(ctx, masterID, date)
	if err != nil {
		return false, err
	}
	for _, f := range free {
		if f.Covers(rng) {
			return true, nil
		}
	}
	return false, nil
}

// ────────────────────── 区间运算 ──────────────────────

// normalizeRanges 排序并归并相邻/重叠的区间
func normalizeRanges(ranges []model.TimeRange) []model.TimeRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]model.TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []model.TimeRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// subtractRanges 从 base（已归并升序）中扣除 busy 区间
func subtractRanges(base, busy []model.TimeRange) []model.TimeRange {
	if len(busy) == 0 {
		return base
	}
	busy = normalizeRanges(busy)

	var out []model.TimeRange
	for _, b := range base {
		cur := b
		for _, u := range busy {
			if !cur.Overlaps(u) {
				continue
			}
			if u.Start > cur.Start {
				out = append(out, model.TimeRange{Start: cur.Start, End: u.Start})
			}
			if u.End >= cur.End {
				cur = model.TimeRange{} // 完全吃掉
				break
			}
			cur = model.TimeRange{Start: u.End, End: cur.End}
		}
		if cur.End > cur.Start {
			out = append(out, cur)
		}
	}
	return out
}

// inflateRange 按路途缓冲向两侧扩张区间，夹在 [0, 24h) 以内
func inflateRange(r model.TimeRange, buffer int) model.TimeRange {
	if buffer <= 0 {
		return r
	}
	start := r.Start - buffer
	if start < 0 {
		start = 0
	}
	end := r.End + buffer
	if end > 24*60 {
		end = 24 * 60
	}
	return model.TimeRange{Start: start, End: end}
}

// weekdayIndex 将 time.Weekday 换算到 0=周一 … 6=周日
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// parseDate 解析 YYYY-MM-DD
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// parseClockRanges 解析并校验 DTO 时段：格式合法且互不重叠
func parseClockRanges(in []dto.ClockRange) ([]model.TimeRange, error) {
	ranges := make([]model.TimeRange, 0, len(in))
	for _, cr := range in {
		r, err := model.NewTimeRange(cr.Start, cr.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAvailability, err)
		}
		ranges = append(ranges, r)
	}
	// 相邻（首尾相接）允许，真正相交拒绝
	sorted := make([]model.TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return nil, fmt.Errorf("%w: 时段之间存在重叠", ErrInvalidAvailability)
		}
	}
	return ranges, nil
}

// [自证通过] internal/service/availability_service.go
