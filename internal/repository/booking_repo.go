package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Heallshoking/ai-service-platform/internal/model"
)

// BookingRepository 预订数据访问接口
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// ListConfirmed 列出师傅某天的全部 confirmed 预订
	ListConfirmed(ctx context.Context, masterID string, date time.Time) ([]model.Booking, error)
	// CountConfirmed 统计师傅某天的 confirmed 预订数（负载指标）
	CountConfirmed(ctx context.Context, masterID string, date time.Time) (int64, error)
	// GetConfirmedByJob 取订单名下的 confirmed 预订，没有时返回 gorm.ErrRecordNotFound
	GetConfirmedByJob(ctx context.Context, jobID string) (*model.Booking, error)
	// ListByMasterBetween 列出师傅在日期区间内的 confirmed 预订（ICS 导出）
	ListByMasterBetween(ctx context.Context, masterID string, from, to time.Time) ([]model.Booking, error)
	// ListBetween 列出全部师傅在日期区间内的预订（运营导出），city 为空时不过滤
	ListBetween(ctx context.Context, from, to time.Time, city string) ([]model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) error
}

type bookingRepo struct {
	db *gorm.DB
}

// NewBookingRepo 创建 BookingRepository 实例
func NewBookingRepo(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).Where("booking_id = ?", id).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepo) ListConfirmed(ctx context.Context, masterID string, date time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("master_id = ? AND date = ? AND status = ?", masterID, date.Format("2006-01-02"), model.BookingStatusConfirmed).
		Order("start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) CountConfirmed(ctx context.Context, masterID string, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("master_id = ? AND date = ? AND status = ?", masterID, date.Format("2006-01-02"), model.BookingStatusConfirmed).
		Count(&count).Error
	return count, err
}

func (r *bookingRepo) GetConfirmedByJob(ctx context.Context, jobID string) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND status = ?", jobID, model.BookingStatusConfirmed).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepo) ListByMasterBetween(ctx context.Context, masterID string, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("master_id = ? AND status = ? AND date BETWEEN ? AND ?",
			masterID, model.BookingStatusConfirmed, from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date ASC, start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) ListBetween(ctx context.Context, from, to time.Time, city string) ([]model.Booking, error) {
	var bookings []model.Booking
	db := r.db.WithContext(ctx).
		Preload("Master").
		Preload("Job").
		Where("date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if city != "" {
		db = db.Joins("JOIN masters ON masters.master_id = bookings.master_id").
			Where("masters.city = ?", city)
	}
	err := db.Order("date ASC, start_time ASC").Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) Update(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}
