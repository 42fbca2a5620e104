package repository

import (
	"context"

	"tailor_shop/internal/models"

	"gorm.io/gorm"
)

type TailorRepository interface {
	Create(ctx context.Context, tailor *models.Tailor) error
	GetByID(ctx context.Context, id uint) (*models.Tailor, error)
	GetAll(ctx context.Context) ([]models.Tailor, error)
	Update(ctx context.Context, tailor *models.Tailor) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

type tailorRepository struct {
	db *gorm.DB
}

func NewTailorRepository(db *gorm.DB) TailorRepository {
	return &tailorRepository{db: db}
}

func (r *tailorRepository) Create(ctx context.Context, tailor *models.Tailor) error {
	return r.db.WithContext(ctx).Create(tailor).Error
}

func (r *tailorRepository) GetByID(ctx context.Context, id uint) (*models.Tailor, error) {
	var tailor models.Tailor
	if err := r.db.WithContext(ctx).First(&tailor, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tailor, nil
}

func (r *tailorRepository) GetAll(ctx context.Context) ([]models.Tailor, error) {
	var tailors []models.Tailor
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tailors).Error
	return tailors, err
}

func (r *tailorRepository) Update(ctx context.Context, tailor *models.Tailor) error {
	return r.db.WithContext(ctx).Save(tailor).Error
}

func (r *tailorRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Tailor{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tailorRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Tailor{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
