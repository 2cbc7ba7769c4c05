package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Heallshoking/ai-service-platform/internal/model"
)

// MasterRepository 师傅数据访问接口
type MasterRepository interface {
	Create(ctx context.Context, master *model.Master) error
	GetByID(ctx context.Context, id string) (*model.Master, error)
	GetByPhone(ctx context.Context, phone string) (*model.Master, error)
	// ListQualified 列出持有指定专长且启用终端的在册师傅；city 为空时不过滤城市
	ListQualified(ctx context.Context, specialization, city string) ([]model.Master, error)
	Update(ctx context.Context, master *model.Master) error
	SetTerminalActive(ctx context.Context, id string, active bool) error
	ConfirmSchedule(ctx context.Context, id string, at time.Time) error
	// ListStaleConfirmations 列出最后一次排班确认早于 before（或从未确认）的活跃师傅
	ListStaleConfirmations(ctx context.Context, before time.Time) ([]model.Master, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type masterRepo struct {
	db *gorm.DB
}

// NewMasterRepo 创建 MasterRepository 实例
func NewMasterRepo(db *gorm.DB) MasterRepository {
	return &masterRepo{db: db}
}

func (r *masterRepo) Create(ctx context.Context, master *model.Master) error {
	return r.db.WithContext(ctx).Create(master).Error
}

func (r *masterRepo) GetByID(ctx context.Context, id string) (*model.Master, error) {
	var m model.Master
	err := r.db.WithContext(ctx).Where("master_id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *masterRepo) GetByPhone(ctx context.Context, phone string) (*model.Master, error) {
	var m model.Master
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *masterRepo) ListQualified(ctx context.Context, specialization, city string) ([]model.Master, error) {
	var masters []model.Master
	db := r.db.WithContext(ctx).
		Where("is_active = ? AND terminal_active = ?", true, true).
		Where("specializations LIKE ?", "%"+specialization+"%")
	if city != "" {
		db = db.Where("city = ?", city)
	}
	err := db.Order("master_id ASC").Find(&masters).Error
	return masters, err
}

func (r *masterRepo) Update(ctx context.Context, master *model.Master) error {
	return r.db.WithContext(ctx).Save(master).Error
}

func (r *masterRepo) SetTerminalActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Master{}).
		Where("master_id = ?", id).
		Update("terminal_active", active).Error
}

func (r *masterRepo) ConfirmSchedule(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Master{}).
		Where("master_id = ?", id).
		Update("last_schedule_confirmation", at).Error
}

func (r *masterRepo) ListStaleConfirmations(ctx context.Context, before time.Time) ([]model.Master, error) {
	var masters []model.Master
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND terminal_active = ?", true, true).
		Where("last_schedule_confirmation IS NULL OR last_schedule_confirmation < ?", before).
		Order("master_id ASC").
		Find(&masters).Error
	return masters, err
}

func (r *masterRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Master{}).
		Where("master_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
