package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Heallshoking/ai-service-platform/internal/model"
)

// AvailabilityRepository 排班模板与例外数据访问接口
type AvailabilityRepository interface {
	// ListTemplates 列出师傅的全部每周模板行
	ListTemplates(ctx context.Context, masterID string) ([]model.WeeklyTemplate, error)
	// ListTemplatesByDay 列出师傅某个星期几的模板行
	ListTemplatesByDay(ctx context.Context, masterID string, dayOfWeek int) ([]model.WeeklyTemplate, error)
	// ReplaceTemplates 以新模板整体替换师傅现有模板（事务内先删后插）
	ReplaceTemplates(ctx context.Context, masterID string, templates []model.WeeklyTemplate) error
	// GetOverride 查询师傅指定日期的例外；不存在时返回 (nil, nil)
	GetOverride(ctx context.Context, masterID string, date time.Time) (*model.DateOverride, error)
	// UpsertOverride 写入或覆盖 (师傅, 日期) 的例外；同键旧例外及其区间被替换
	UpsertOverride(ctx context.Context, override *model.DateOverride) error
	DeleteOverride(ctx context.Context, masterID string, date time.Time) error
}

type availabilityRepo struct {
	db *gorm.DB
}

// NewAvailabilityRepo 创建 AvailabilityRepository 实例
func NewAvailabilityRepo(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepo{db: db}
}

func (r *availabilityRepo) ListTemplates(ctx context.Context, masterID string) ([]model.WeeklyTemplate, error) {
	var templates []model.WeeklyTemplate
	err := r.db.WithContext(ctx).
		Where("master_id = ?", masterID).
		Order("day_of_week ASC, start_time ASC").
		Find(&templates).Error
	return templates, err
}

func (r *availabilityRepo) ListTemplatesByDay(ctx context.Context, masterID string, dayOfWeek int) ([]model.WeeklyTemplate, error) {
	var templates []model.WeeklyTemplate
	err := r.db.WithContext(ctx).
		Where("master_id = ? AND day_of_week = ?", masterID, dayOfWeek).
		Order("start_time ASC").
		Find(&templates).Error
	return templates, err
}

func (r *availabilityRepo) ReplaceTemplates(ctx context.Context, masterID string, templates []model.WeeklyTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("master_id = ?", masterID).Delete(&model.WeeklyTemplate{}).Error; err != nil {
			return err
		}
		if len(templates) == 0 {
			return nil
		}
		return tx.Create(&templates).Error
	})
}

func (r *availabilityRepo) GetOverride(ctx context.Context, masterID string, date time.Time) (*model.DateOverride, error) {
	var ov model.DateOverride
	err := r.db.WithContext(ctx).
		Preload("Ranges").
		Where("master_id = ? AND date = ?", masterID, date.Format("2006-01-02")).
		First(&ov).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ov, nil
}

func (r *availabilityRepo) UpsertOverride(ctx context.Context, override *model.DateOverride) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.DateOverride
		err := tx.Where("master_id = ? AND date = ?", override.MasterID, override.Date.Format("2006-01-02")).
			First(&existing).Error
		switch {
		case err == nil:
			// 先清理旧例外及其区间，再整体写入新例外
			if err := tx.Where("override_id = ?", existing.OverrideID).Delete(&model.OverrideRange{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 无旧例外，直接创建
		default:
			return err
		}
		return tx.Create(override).Error
	})
}

func (r *availabilityRepo) DeleteOverride(ctx context.Context, masterID string, date time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ov model.DateOverride
		err := tx.Where("master_id = ? AND date = ?", masterID, date.Format("2006-01-02")).First(&ov).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("override_id = ?", ov.OverrideID).Delete(&model.OverrideRange{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ov).Error
	})
}
