package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
)

type TailorInput struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	Experience     string `json:"experience"`
	Status         string `json:"status"`
}

type TailorService interface {
	List(ctx context.Context) ([]models.Tailor, error)
	Get(ctx context.Context, id uint) (*models.Tailor, error)
	Create(ctx context.Context, in TailorInput) (*models.Tailor, error)
	Update(ctx context.Context, id uint, in TailorInput) (*models.Tailor, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Tailor, error)
	Delete(ctx context.Context, id uint) error
	Jobs(ctx context.Context, id uint) ([]models.Job, error)
}

type tailorService struct {
	tailors repository.TailorRepository
	jobs    repository.JobRepository
	cache   Cache
}

func NewTailorService(tailors repository.TailorRepository, jobs repository.JobRepository, cache Cache) TailorService {
	return &tailorService{tailors: tailors, jobs: jobs, cache: cache}
}

func (s *tailorService) List(ctx context.Context) ([]models.Tailor, error) {
	tailors, err := s.tailors.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.GetAll(ctx, repository.JobFilter{Light: true})
	if err != nil {
		return nil, err
	}
	byTailor := jobsByTailor(jobs)
	for i := range tailors {
		withJobStats(&tailors[i], byTailor[tailors[i].ID])
	}
	return tailors, nil
}

func (s *tailorService) Get(ctx context.Context, id uint) (*models.Tailor, error) {
	tailor, err := s.tailors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.GetAll(ctx, repository.JobFilter{TailorID: id, Light: true})
	if err != nil {
		return nil, err
	}
	withJobStats(tailor, jobs)
	return tailor, nil
}

func (s *tailorService) Create(ctx context.Context, in TailorInput) (*models.Tailor, error) {
	tailor := &models.Tailor{Status: string(models.TailorActive)}
	if err := fillTailor(tailor, in); err != nil {
		return nil, err
	}
	if err := s.tailors.Create(ctx, tailor); err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache)
	return tailor, nil
}

func (s *tailorService) Update(ctx context.Context, id uint, in TailorInput) (*models.Tailor, error) {
	tailor, err := s.tailors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fillTailor(tailor, in); err != nil {
		return nil, err
	}
	if err := s.tailors.Update(ctx, tailor); err != nil {
		return nil, err
	}
	return tailor, nil
}

func fillTailor(t *models.Tailor, in TailorInput) error {
	name, phone := strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone)
	if name == "" || phone == "" {
		return fmt.Errorf("%w: tailor name and phone are required", ErrInvalidInput)
	}
	if in.Status != "" {
		if !models.TailorStatus(in.Status).Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
		}
		t.Status = in.Status
	}
	t.Name = name
	t.Phone = phone
	t.Email = in.Email
	t.Specialization = in.Specialization
	t.Experience = in.Experience
	return nil
}

func (s *tailorService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Tailor, error) {
	if !models.TailorStatus(status).Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.tailors.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.tailors.GetByID(ctx, id)
}

func (s *tailorService) Delete(ctx context.Context, id uint) error {
	if err := s.tailors.Delete(ctx, id); err != nil {
		return err
	}
	invalidateStats(ctx, s.cache)
	return nil
}

func (s *tailorService) Jobs(ctx context.Context, id uint) ([]models.Job, error) {
	if _, err := s.tailors.GetByID(ctx, id); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.GetAll(ctx, repository.JobFilter{TailorID: id})
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		ordered(&jobs[i])
	}
	return jobs, nil
}

func jobsByTailor(jobs []models.Job) map[uint][]models.Job {
	out := make(map[uint][]models.Job)
	for _, j := range jobs {
		if j.TailorID != nil {
			out[*j.TailorID] = append(out[*j.TailorID], j)
		}
	}
	return out
}

func withJobStats(t *models.Tailor, jobs []models.Job) {
	t.TotalJobs = len(jobs)
	t.CompletedJobs = 0
	for _, j := range jobs {
		if !isActive(j) {
			t.CompletedJobs++
		}
	}
	t.PendingJobs = t.TotalJobs - t.CompletedJobs
	t.CompletionRate = completionRate(t.CompletedJobs, t.TotalJobs)
}

// completionRate is a percentage rounded to one decimal.
func completionRate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(done)*1000/float64(total)) / 10
}
