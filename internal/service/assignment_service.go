package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Heallshoking/ai-service-platform/config"
	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/model"
	"github.com/Heallshoking/ai-service-platform/internal/repository"
	"github.com/Heallshoking/ai-service-platform/pkg/mq"
)

// ── 派单模块业务错误 ──

var (
	// ErrNoQualifiedMasters 没有任何师傅满足专长/城市/终端条件
	ErrNoQualifiedMasters = errors.New("没有符合条件的师傅")
	// ErrNoFreeSlot 候选师傅均无法提供空闲槽位
	ErrNoFreeSlot    = errors.New("候选师傅均无可用时段")
	ErrJobNotPending = errors.New("订单不在待派单状态")
)

// 派单前瞻天数：未指定偏好日期时，从今天起最多向后找这么多天
const assignLookaheadDays = 14

// Candidate 参与排序的候选师傅
type Candidate struct {
	Master model.Master
	// Load 目标日期的 confirmed 预订数
	Load int64
	// Slot 该候选可承接的具体槽位
	Date time.Time
	Slot model.TimeRange
}

// RankCandidates 纯函数排序：评分降序 → 当日负载升序 → master_id 升序。
// 三级排序键构成全序，同样的输入永远给出同样的顺序。
func RankCandidates(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Master.Rating != b.Master.Rating {
			return a.Master.Rating > b.Master.Rating
		}
		if a.Load != b.Load {
			return a.Load < b.Load
		}
		return a.Master.MasterID < b.Master.MasterID
	})
	return out
}

// AssignmentService 候选搜索与派单编排业务接口
type AssignmentService interface {
	// Search 列出指定日期内空闲的合格候选，已按分数排好序。
	// rng 为 nil 时不限时段，当日有任意空闲即入选。
	Search(ctx context.Context, category, city string, date time.Time, rng *model.TimeRange) ([]Candidate, error)
	// SearchResponse 面向 HTTP 的搜索入口，负责解析日期与时段参数
	SearchResponse(ctx context.Context, req *dto.SearchMastersRequest) ([]dto.CandidateResponse, error)
	// AssignJob 为订单完成整条派单链：搜索 → 逐候选提交 → 更新订单 → 通知
	AssignJob(ctx context.Context, jobID string) (*dto.AssignJobResponse, error)
}

type assignmentService struct {
	cfg          *config.Config
	repo         *repository.Repository
	availability AvailabilityService
	booking      BookingService
	notification NotificationService
	publisher    *mq.Publisher // 可为 nil：未启用 MQ 时只走库内状态
	logger       *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(
	cfg *config.Config,
	repo *repository.Repository,
	availability AvailabilityService,
	booking BookingService,
	notification NotificationService,
	publisher *mq.Publisher,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{
		cfg:          cfg,
		repo:         repo,
		availability: availability,
		booking:      booking,
		notification: notification,
		publisher:    publisher,
		logger:       logger,
	}
}

// ────────────────────── Search ──────────────────────

func (s *assignmentService) Search(ctx context.Context, category, city string, date time.Time, rng *model.TimeRange) ([]Candidate, error) {
	masters, err := s.repo.Master.ListQualified(ctx, category, city)
	if err != nil {
		return nil, err
	}

	var cands []Candidate
	for _, m := range masters {
		slot, ok, err := s.candidateSlot(ctx, m.MasterID, date, rng)
		if err != nil {
			if errors.Is(err, ErrInvalidAvailability) {
				// 单个师傅的排班数据非法不应中断整体筛选
				s.logger.Warn("师傅排班数据非法，跳过", zap.String("master_id", m.MasterID), zap.Error(err))
				continue
			}
			return nil, err
		}
		if !ok {
			continue
		}
		load, err := s.repo.Booking.CountConfirmed(ctx, m.MasterID, date)
		if err != nil {
			return nil, err
		}
		cands = append(cands, Candidate{Master: m, Load: load, Date: date, Slot: slot})
	}
	return RankCandidates(cands), nil
}

// candidateSlot 判断师傅当日能否承接：指定时段要求整段空闲，
// 未指定时取当日第一个空闲时段。
func (s *assignmentService) candidateSlot(ctx context.Context, masterID string, date time.Time, rng *model.TimeRange) (model.TimeRange, bool, error) {
	if rng != nil {
		free, err := s.availability.IsFree(ctx, masterID, date, *rng)
		if err != nil || !free {
			return model.TimeRange{}, false, err
		}
		return *rng, true, nil
	}
	ranges, err := s.availability.FreeRanges(ctx, masterID, date)
	if err != nil || len(ranges) == 0 {
		return model.TimeRange{}, false, err
	}
	return ranges[0], true, nil
}

// SearchResponse HTTP 搜索入口：解析参数后复用 Search
func (s *assignmentService) SearchResponse(ctx context.Context, req *dto.SearchMastersRequest) ([]dto.CandidateResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrBadDate
	}

	var rng *model.TimeRange
	if req.Start != "" && req.End != "" {
		r, err := model.NewTimeRange(req.Start, req.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAvailability, err)
		}
		rng = &r
	}

	cands, err := s.Search(ctx, req.Category, req.City, date, rng)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CandidateResponse, 0, len(cands))
	for _, c := range cands {
		out = append(out, dto.CandidateResponse{
			MasterID: c.Master.MasterID,
			FullName: c.Master.FullName,
			Rating:   c.Master.Rating,
			Load:     c.Load,
			Date:     c.Date.Format("2006-01-02"),
			Slot: dto.ClockRange{
				Start: model.FormatClock(c.Slot.Start),
				End:   model.FormatClock(c.Slot.End),
			},
		})
	}
	return out, nil
}

// ────────────────────── AssignJob ──────────────────────

func (s *assignmentService) AssignJob(ctx context.Context, jobID string) (*dto.AssignJobResponse, error) {
	job, err := s.repo.Job.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if job.Status != model.JobStatusPending {
		return nil, ErrJobNotPending
	}

	duration := job.DurationMinutes
	if duration <= 0 {
		duration = s.cfg.Assign.DefaultLength
	}

	// 槽位提交失败后不盲目重试同一候选，而是剔除已试过的师傅重新搜索排序，
	// 这样每一轮都基于最新的可用性做决策
	var (
		booking  *model.Booking
		winner   *model.Master
		attempts int
	)
	maxAttempts := s.cfg.Assign.MaxAttempts
	tried := make(map[string]struct{})
	for attempts < maxAttempts {
		cands, err := s.collectCandidates(ctx, job, duration)
		if err != nil {
			if errors.Is(err, ErrNoQualifiedMasters) || errors.Is(err, ErrNoFreeSlot) {
				if attempts == 0 {
					s.reportAssignmentFailure(ctx, job, err)
					return nil, err
				}
				break
			}
			return nil, err
		}

		var next *Candidate
		for i := range cands {
			if _, ok := tried[cands[i].Master.MasterID]; !ok {
				next = &cands[i]
				break
			}
		}
		if next == nil {
			break
		}

		attempts++
		b, err := s.booking.CommitSlot(ctx, next.Master.MasterID, job.JobID, next.Date, next.Slot)
		if err != nil {
			if errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrSlotBusy) {
				s.logger.Info("候选槽位提交失败，重新搜索",
					zap.String("job_id", job.JobID),
					zap.String("master_id", next.Master.MasterID),
					zap.Error(err))
				tried[next.Master.MasterID] = struct{}{}
				continue
			}
			return nil, err
		}
		booking = b
		m := next.Master
		winner = &m
		break
	}

	if booking == nil {
		s.reportAssignmentFailure(ctx, job, ErrNoFreeSlot)
		return nil, ErrNoFreeSlot
	}

	// 更新订单归属
	job.Status = model.JobStatusAssigned
	job.MasterID = &winner.MasterID
	if err := s.repo.Job.Update(ctx, job); err != nil {
		s.logger.Error("更新订单归属失败", zap.String("job_id", job.JobID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("派单成功",
		zap.String("job_id", job.JobID),
		zap.String("master_id", winner.MasterID),
		zap.String("date", booking.Date.Format("2006-01-02")),
		zap.String("start_time", booking.StartTime),
		zap.Int("attempts", attempts))

	s.notifyAssigned(ctx, job, winner, booking)
	s.publishAssigned(ctx, job, winner, booking)

	resp := &dto.AssignJobResponse{
		Job:      *toJobResponse(job),
		Booking:  toBookingResponse(booking),
		Attempts: attempts,
	}
	return resp, nil
}

// collectCandidates 确定目标日期与槽位并收集排序后的候选。
// 指定了偏好日期/时段就只看那一天；否则从今天起向后找第一个有候选的日期。
func (s *assignmentService) collectCandidates(ctx context.Context, job *model.Job, duration int) ([]Candidate, error) {
	if job.PreferredDate != nil {
		date := *job.PreferredDate
		if job.PreferredStart != nil && job.PreferredEnd != nil {
			rng, err := model.NewTimeRange(*job.PreferredStart, *job.PreferredEnd)
			if err != nil {
				return nil, err
			}
			cands, err := s.Search(ctx, job.Category, job.City, date, &rng)
			if err != nil {
				return nil, err
			}
			if len(cands) == 0 {
				return nil, ErrNoFreeSlot
			}
			return cands, nil
		}
		return s.searchFirstFit(ctx, job, date, duration)
	}

	today := time.Now().Truncate(24 * time.Hour)
	for d := 0; d < assignLookaheadDays; d++ {
		cands, err := s.searchFirstFit(ctx, job, today.AddDate(0, 0, d), duration)
		if err != nil {
			if errors.Is(err, ErrNoFreeSlot) {
				continue
			}
			return nil, err
		}
		return cands, nil
	}
	return nil, ErrNoFreeSlot
}

// searchFirstFit 对每个合格师傅取当日第一个能容纳 duration 的空闲槽位
func (s *assignmentService) searchFirstFit(ctx context.Context, job *model.Job, date time.Time, duration int) ([]Candidate, error) {
	masters, err := s.repo.Master.ListQualified(ctx, job.Category, job.City)
	if err != nil {
		return nil, err
	}
	if len(masters) == 0 {
		return nil, ErrNoQualifiedMasters
	}

	var cands []Candidate
	for _, m := range masters {
		free, err := s.availability.FreeRanges(ctx, m.MasterID, date)
		if err != nil {
			if errors.Is(err, ErrInvalidAvailability) {
				s.logger.Warn("师傅排班数据非法，跳过", zap.String("master_id", m.MasterID), zap.Error(err))
				continue
			}
			return nil, err
		}
		slot, ok := firstFit(free, duration)
		if !ok {
			continue
		}
		load, err := s.repo.Booking.CountConfirmed(ctx, m.MasterID, date)
		if err != nil {
			return nil, err
		}
		cands = append(cands, Candidate{Master: m, Load: load, Date: date, Slot: slot})
	}
	if len(cands) == 0 {
		return nil, ErrNoFreeSlot
	}
	return RankCandidates(cands), nil
}

// firstFit 返回第一个能容纳 duration 分钟的槽位
func firstFit(free []model.TimeRange, duration int) (model.TimeRange, bool) {
	for _, r := range free {
		if r.End-r.Start >= duration {
			return model.TimeRange{Start: r.Start, End: r.Start + duration}, true
		}
	}
	return model.TimeRange{}, false
}

// ────────────────────── 通知与事件 ──────────────────────

func (s *assignmentService) notifyAssigned(ctx context.Context, job *model.Job, m *model.Master, b *model.Booking) {
	data := map[string]string{
		"job_id":       job.JobID,
		"category":     job.Category,
		"city":         job.City,
		"address":      job.Address,
		"client_name":  job.ClientName,
		"client_phone": job.ClientPhone,
		"master_name":  m.FullName,
		"rating":       strconv.FormatFloat(m.Rating, 'f', 1, 64),
		"date":         b.Date.Format("2006-01-02"),
		"start_time":   b.StartTime,
	}
	if _, err := s.notification.NotifyMaster(ctx, m, model.NotifyNewJobAssigned, data); err != nil {
		s.logger.Warn("通知师傅新订单失败", zap.String("job_id", job.JobID), zap.Error(err))
	}
	if _, err := s.notification.NotifyClient(ctx, job, model.NotifyMasterAssigned, data); err != nil {
		s.logger.Warn("通知客户派单结果失败", zap.String("job_id", job.JobID), zap.Error(err))
	}
}

func (s *assignmentService) publishAssigned(ctx context.Context, job *model.Job, m *model.Master, b *model.Booking) {
	if s.publisher == nil {
		return
	}
	payload := map[string]any{
		"job_id":     job.JobID,
		"master_id":  m.MasterID,
		"booking_id": b.BookingID,
		"date":       b.Date.Format("2006-01-02"),
		"start_time": b.StartTime,
	}
	if err := s.publisher.PublishJSON(ctx, "job.assigned", payload); err != nil {
		s.logger.Warn("发布派单事件失败", zap.String("job_id", job.JobID), zap.Error(err))
	}
}

func (s *assignmentService) reportAssignmentFailure(ctx context.Context, job *model.Job, cause error) {
	data := map[string]string{
		"job_id":   job.JobID,
		"category": job.Category,
		"city":     job.City,
		"reason":   cause.Error(),
	}
	if _, err := s.notification.NotifyOperator(ctx, model.NotifyAssignmentFailed, data); err != nil {
		s.logger.Warn("通知运营派单失败事件失败", zap.String("job_id", job.JobID), zap.Error(err))
	}

	// 客户不能只得到沉默，明确告知暂无可安排的师傅
	clientData := map[string]string{
		"client_name": job.ClientName,
		"category":    job.Category,
	}
	if _, err := s.notification.NotifyClient(ctx, job, model.NotifyNoAvailability, clientData); err != nil {
		s.logger.Warn("通知客户无可用师傅失败", zap.String("job_id", job.JobID), zap.Error(err))
	}

	if s.publisher != nil {
		if err := s.publisher.PublishJSON(ctx, "assignment.failed", data); err != nil {
			s.logger.Warn("发布派单失败事件失败", zap.String("job_id", job.JobID), zap.Error(err))
		}
	}
}

// [自证通过] internal/service/assignment_service.go
