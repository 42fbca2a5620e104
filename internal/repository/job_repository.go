package repository

import (
	"context"

	"tailor_shop/internal/models"

	"gorm.io/gorm"
)

type JobFilter struct {
	Status   string
	TailorID uint
	Stage    string
	// Light skips loading the bill of every job.
	Light bool
}

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uint) (*models.Job, error)
	GetByBillID(ctx context.Context, billID uint) (*models.Job, error)
	GetAll(ctx context.Context, f JobFilter) ([]models.Job, error)
	Save(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id uint) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Omit("Bill").Create(job).Error
}

func (r *jobRepository) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Preload("WorkflowStages").
		Preload("Bill.Items").
		First(&job, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (r *jobRepository) GetByBillID(ctx context.Context, billID uint) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Preload("WorkflowStages").
		Where("bill_id = ?", billID).
		First(&job).Error
	if err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (r *jobRepository) GetAll(ctx context.Context, f JobFilter) ([]models.Job, error) {
	var jobs []models.Job
	q := r.db.WithContext(ctx).Preload("WorkflowStages")
	if !f.Light {
		q = q.Preload("Bill.Items")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TailorID != 0 {
		q = q.Where("tailor_id = ?", f.TailorID)
	}
	if f.Stage != "" {
		q = q.Where("current_stage = ?", f.Stage)
	}
	err := q.Order("updated_at DESC").Find(&jobs).Error
	return jobs, err
}

// Save writes the job row and upserts its stage rows.
func (r *jobRepository) Save(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("WorkflowStages", "Bill").Save(job).Error; err != nil {
			return err
		}
		for i := range job.WorkflowStages {
			job.WorkflowStages[i].JobID = job.ID
			if err := tx.Save(&job.WorkflowStages[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *jobRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Job{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
