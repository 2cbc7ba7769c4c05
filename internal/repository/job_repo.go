package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Heallshoking/ai-service-platform/internal/model"
)

// JobRepository 订单数据访问接口
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// List 按状态与城市过滤订单；空串表示不过滤
	List(ctx context.Context, status, city string) ([]model.Job, error)
	ListByMaster(ctx context.Context, masterID string, status string) ([]model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	// CountByStatus 按状态统计订单数（平台统计）
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type jobRepo struct {
	db *gorm.DB
}

// NewJobRepo 创建 JobRepository 实例
func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).Preload("Master").Where("job_id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) List(ctx context.Context, status, city string) ([]model.Job, error) {
	var jobs []model.Job
	db := r.db.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if city != "" {
		db = db.Where("city = ?", city)
	}
	err := db.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *jobRepo) ListByMaster(ctx context.Context, masterID string, status string) ([]model.Job, error) {
	var jobs []model.Job
	db := r.db.WithContext(ctx).Where("master_id = ?", masterID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *jobRepo) Update(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *jobRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, rw := range rows {
		result[rw.Status] = rw.Count
	}
	return result, nil
}
