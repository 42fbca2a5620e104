package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
)

// SettingsService reads and writes the shop's named settings documents.
// Missing documents fall back to the defaults printed on receipts.
type SettingsService interface {
	UPI(ctx context.Context) (*models.UPISettings, error)
	UpdateUPI(ctx context.Context, in models.UPISettings, userID uint) (*models.UPISettings, error)
	Business(ctx context.Context) (*models.BusinessSettings, error)
	UpdateBusiness(ctx context.Context, in models.BusinessSettings, userID uint) (*models.BusinessSettings, error)
}

type settingsService struct {
	settings repository.SettingRepository
}

func NewSettingsService(settings repository.SettingRepository) SettingsService {
	return &settingsService{settings: settings}
}

func (s *settingsService) UPI(ctx context.Context) (*models.UPISettings, error) {
	out := models.DefaultUPI()
	if err := s.load(ctx, models.SettingUPI, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *settingsService) UpdateUPI(ctx context.Context, in models.UPISettings, userID uint) (*models.UPISettings, error) {
	in.UPIID = strings.TrimSpace(in.UPIID)
	if in.UPIID == "" || !strings.Contains(in.UPIID, "@") {
		return nil, fmt.Errorf("%w: upi_id must look like name@bank", ErrInvalidInput)
	}
	if strings.TrimSpace(in.BusinessName) == "" {
		in.BusinessName = models.DefaultUPI().BusinessName
	}
	if err := s.store(ctx, models.SettingUPI, in, userID); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *settingsService) Business(ctx context.Context) (*models.BusinessSettings, error) {
	out := models.DefaultBusiness()
	if err := s.load(ctx, models.SettingBusiness, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *settingsService) UpdateBusiness(ctx context.Context, in models.BusinessSettings, userID uint) (*models.BusinessSettings, error) {
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	if in.BusinessName == "" {
		return nil, fmt.Errorf("%w: business_name is required", ErrInvalidInput)
	}
	if err := s.store(ctx, models.SettingBusiness, in, userID); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *settingsService) load(ctx context.Context, key string, dest interface{}) error {
	setting, err := s.settings.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(setting.Value), dest); err != nil {
		return fmt.Errorf("failed to decode %s settings: %w", key, err)
	}
	return nil
}

func (s *settingsService) store(ctx context.Context, key string, value interface{}, userID uint) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.settings.Upsert(ctx, &models.Setting{Key: key, Value: string(b), UpdatedBy: userID})
}
