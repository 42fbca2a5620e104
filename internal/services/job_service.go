package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"tailor_shop/internal/events"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"tailor_shop/pkg/billing"
	"tailor_shop/pkg/workflow"
)

type JobInput struct {
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	BillID        *uint            `json:"bill_id"`
	TailorID      *uint            `json:"tailor_id"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Items         []models.JobItem `json:"items"`
	Instructions  string           `json:"instructions"`
	Priority      string           `json:"priority"`
	DueDate       string           `json:"due_date"`
}

type JobStats struct {
	TotalJobs int             `json:"total_jobs"`
	ByStatus  map[string]int  `json:"by_status"`
	ByStage   workflow.Counts `json:"by_stage"`
}

type WorkflowView struct {
	JobID              uint                  `json:"job_id"`
	CurrentStage       workflow.Stage        `json:"current_stage"`
	ProgressPercentage float64               `json:"progress_percentage"`
	WorkflowStages     []workflow.StageEntry `json:"workflow_stages"`
}

type JobService interface {
	List(ctx context.Context, f repository.JobFilter) ([]models.Job, error)
	Get(ctx context.Context, id uint) (*models.Job, error)
	Create(ctx context.Context, in JobInput) (*models.Job, error)
	CreateForBill(ctx context.Context, bill *models.Bill) (*models.Job, error)
	Update(ctx context.Context, id uint, in JobInput) (*models.Job, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Job, error)
	UpdateStage(ctx context.Context, id uint, stage string, u workflow.Update) (*models.Job, error)
	Workflow(ctx context.Context, id uint) (*WorkflowView, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*JobStats, error)
}

type jobService struct {
	jobs         repository.JobRepository
	tailors      repository.TailorRepository
	settings     SettingsService
	notifier     Notifier
	publisher    events.Publisher
	recorder     Recorder
	cache        Cache
	enforceOrder bool
	log          *slog.Logger
}

type JobServiceConfig struct {
	EnforceOrder bool
}

func NewJobService(
	jobs repository.JobRepository,
	tailors repository.TailorRepository,
	settings SettingsService,
	notifier Notifier,
	publisher events.Publisher,
	recorder Recorder,
	cache Cache,
	cfg JobServiceConfig,
	log *slog.Logger,
) JobService {
	if publisher == nil {
		publisher = events.Noop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &jobService{
		jobs:         jobs,
		tailors:      tailors,
		settings:     settings,
		notifier:     notifier,
		publisher:    publisher,
		recorder:     recorder,
		cache:        cache,
		enforceOrder: cfg.EnforceOrder,
		log:          log,
	}
}

func (s *jobService) List(ctx context.Context, f repository.JobFilter) ([]models.Job, error) {
	jobs, err := s.jobs.GetAll(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		ordered(&jobs[i])
	}
	return jobs, nil
}

func (s *jobService) Get(ctx context.Context, id uint) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ordered(job)
	return job, nil
}

func (s *jobService) Create(ctx context.Context, in JobInput) (*models.Job, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	job := &models.Job{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		BillID:        in.BillID,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Items:         in.Items,
		Instructions:  in.Instructions,
		DueDate:       in.DueDate,
		Status:        string(models.JobAssigned),
		AssignedDate:  now(),
	}
	if err := setPriority(job, in.Priority); err != nil {
		return nil, err
	}
	if err := s.assignTailor(ctx, job, in.TailorID); err != nil {
		return nil, err
	}
	return s.create(ctx, job)
}

// CreateForBill opens the production job of a new bill: four pending stages
// starting at cutting.
func (s *jobService) CreateForBill(ctx context.Context, bill *models.Bill) (*models.Job, error) {
	items := make(models.JobItems, 0, len(bill.Items))
	kinds := make([]string, 0, len(bill.Items))
	for _, it := range bill.Items {
		items = append(items, models.JobItem{
			Type:         it.Type,
			Description:  it.Description,
			Quantity:     it.Quantity,
			Measurements: it.Measurements,
		})
		kinds = append(kinds, it.Type)
	}
	billID := bill.ID
	job := &models.Job{
		Title:         fmt.Sprintf("Bill #%s - %s", billing.FormatBillNo(bill.BillNo), strings.Join(kinds, ", ")),
		BillID:        &billID,
		CustomerName:  bill.CustomerName,
		CustomerPhone: bill.CustomerPhone,
		Items:         items,
		Instructions:  bill.SpecialInstructions,
		DueDate:       bill.DueDate,
		Priority:      string(models.PriorityMedium),
		Status:        string(models.JobAssigned),
		AssignedDate:  now(),
	}
	return s.create(ctx, job)
}

func (s *jobService) create(ctx context.Context, job *models.Job) (*models.Job, error) {
	job.CurrentStage = workflow.Cutting
	job.SetEntries(workflow.NewStages())
	job.ProgressPercentage = 0
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache)
	if err := s.publisher.Publish(ctx, events.JobCreated, job); err != nil {
		s.log.Warn("failed to publish job event", "job_id", job.ID, "err", err)
	}
	return job, nil
}

func (s *jobService) Update(ctx context.Context, id uint, in JobInput) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		job.Title = t
	}
	job.Description = in.Description
	job.Instructions = in.Instructions
	if in.DueDate != "" {
		job.DueDate = in.DueDate
	}
	if in.CustomerName != "" {
		job.CustomerName = in.CustomerName
	}
	if in.CustomerPhone != "" {
		job.CustomerPhone = in.CustomerPhone
	}
	if in.Items != nil {
		job.Items = in.Items
	}
	if in.Priority != "" {
		if err := setPriority(job, in.Priority); err != nil {
			return nil, err
		}
	}
	if in.TailorID != nil {
		if err := s.assignTailor(ctx, job, in.TailorID); err != nil {
			return nil, err
		}
	}
	job.Bill = nil
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}
	ordered(job)
	return job, nil
}

// UpdateStatus sets the job level status. Delivered is only reachable this
// way; it never comes out of stage recomputation.
func (s *jobService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Job, error) {
	if !models.JobStatus(status).Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Status = status
	if status == string(models.JobCompleted) || status == string(models.JobDelivered) {
		if job.CompletedDate == nil {
			t := now()
			job.CompletedDate = &t
		}
	} else {
		job.CompletedDate = nil
	}
	job.Bill = nil
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache)
	if status == string(models.JobDelivered) {
		if err := s.publisher.Publish(ctx, events.JobDelivered, job); err != nil {
			s.log.Warn("failed to publish job event", "job_id", job.ID, "err", err)
		}
	}
	ordered(job)
	return job, nil
}

// UpdateStage applies a transition to one stage of a job and recomputes the
// job's current stage, progress and status.
func (s *jobService) UpdateStage(ctx context.Context, id uint, stage string, u workflow.Update) (*models.Job, error) {
	name := workflow.Stage(stage)
	if !name.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}
	if !u.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, u.Status)
	}

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entries := job.Entries()
	if s.enforceOrder {
		if err := workflow.CheckOrder(entries, name, u.Status); err != nil {
			return nil, err
		}
	}

	if u.AssignedTailor != "" && u.AssignedTailorName == "" {
		if tid, err := strconv.ParseUint(u.AssignedTailor, 10, 64); err == nil {
			if t, err := s.tailors.GetByID(ctx, uint(tid)); err == nil {
				u.AssignedTailorName = t.Name
				u.AssignedTailorPhone = t.Phone
			}
		}
	}

	at := now()
	entries, err = workflow.Apply(entries, name, u, at)
	if err != nil {
		return nil, err
	}
	if name == workflow.Finishing && u.Status == workflow.Completed {
		if st := workflow.StatusOf(entries, workflow.Packaging); st != workflow.InProgress && st != workflow.Completed {
			entries, _ = workflow.Apply(entries, workflow.Packaging, workflow.Update{Status: workflow.Pending}, at)
		}
	}

	job.SetEntries(entries)
	job.CurrentStage = workflow.CurrentStage(entries)
	job.ProgressPercentage = workflow.Progress(entries)
	recomputeStatus(job, entries)

	bill := job.Bill
	job.Bill = nil
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}
	job.Bill = bill
	invalidateStats(ctx, s.cache)
	s.recorder.StageUpdated(string(name), string(u.Status))

	ev := events.StageEvent{
		JobID:        job.ID,
		BillID:       job.BillID,
		Stage:        name,
		Status:       u.Status,
		CurrentStage: job.CurrentStage,
		Progress:     job.ProgressPercentage,
		JobStatus:    job.Status,
		At:           at,
	}
	if err := s.publisher.Publish(ctx, events.StageUpdated, ev); err != nil {
		s.log.Warn("failed to publish stage event", "job_id", job.ID, "err", err)
	}
	if name == workflow.Packaging && u.Status == workflow.Completed {
		s.notifyReady(ctx, job)
	}

	ordered(job)
	return job, nil
}

func recomputeStatus(job *models.Job, entries []workflow.StageEntry) {
	if job.Status == string(models.JobDelivered) {
		return
	}
	switch {
	case workflow.AllCompleted(entries):
		job.Status = string(models.JobCompleted)
		if job.CompletedDate == nil {
			t := now()
			job.CompletedDate = &t
		}
	case workflow.Started(entries):
		job.Status = string(models.JobInProgress)
		job.CompletedDate = nil
	default:
		job.Status = string(models.JobAssigned)
		job.CompletedDate = nil
	}
}

func (s *jobService) notifyReady(ctx context.Context, job *models.Job) {
	if s.notifier == nil || job.CustomerPhone == "" {
		return
	}
	business := models.DefaultBusiness().BusinessName
	if s.settings != nil {
		if b, err := s.settings.Business(ctx); err == nil && b.BusinessName != "" {
			business = b.BusinessName
		}
	}

	ref := job.Title
	if job.Bill != nil {
		ref = "Bill #" + billing.FormatBillNo(job.Bill.BillNo)
	}
	msg := fmt.Sprintf("Dear %s, your order (%s) is ready for delivery. Thank you for choosing %s.",
		job.CustomerName, ref, business)

	err := s.notifier.SendTextMessage(ctx, job.CustomerPhone, msg)
	s.recorder.Notification(err == nil)
	if err != nil {
		s.log.Warn("failed to notify customer", "job_id", job.ID, "err", err)
	}
}

func (s *jobService) Workflow(ctx context.Context, id uint) (*WorkflowView, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entries := job.Entries()
	return &WorkflowView{
		JobID:              job.ID,
		CurrentStage:       workflow.CurrentStage(entries),
		ProgressPercentage: workflow.Progress(entries),
		WorkflowStages:     entries,
	}, nil
}

func (s *jobService) Delete(ctx context.Context, id uint) error {
	if err := s.jobs.Delete(ctx, id); err != nil {
		return err
	}
	invalidateStats(ctx, s.cache)
	return nil
}

func (s *jobService) Stats(ctx context.Context) (*JobStats, error) {
	jobs, err := s.jobs.GetAll(ctx, repository.JobFilter{Light: true})
	if err != nil {
		return nil, err
	}
	stats := &JobStats{TotalJobs: len(jobs), ByStatus: map[string]int{}}
	for _, j := range jobs {
		stats.ByStatus[j.Status]++
		if isActive(j) {
			stats.ByStage.Add(j.CurrentStage)
		}
	}
	return stats, nil
}

func (s *jobService) assignTailor(ctx context.Context, job *models.Job, tailorID *uint) error {
	if tailorID == nil || *tailorID == 0 {
		job.TailorID = nil
		job.TailorName = ""
		job.TailorPhone = ""
		return nil
	}
	tailor, err := s.tailors.GetByID(ctx, *tailorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: tailor %d does not exist", ErrInvalidInput, *tailorID)
		}
		return err
	}
	id := tailor.ID
	job.TailorID = &id
	job.TailorName = tailor.Name
	job.TailorPhone = tailor.Phone
	return nil
}

func setPriority(job *models.Job, p string) error {
	switch models.JobPriority(p) {
	case "":
		job.Priority = string(models.PriorityMedium)
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		job.Priority = p
	default:
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, p)
	}
	return nil
}

// ordered sorts the stage rows of job into production order and fills the
// bill number of an embedded bill.
func ordered(job *models.Job) {
	entries := job.Entries()
	job.SetEntries(entries)
	if job.Bill != nil {
		job.Bill.BillNoStr = billing.FormatBillNo(job.Bill.BillNo)
	}
}

func isActive(j models.Job) bool {
	return j.Status != string(models.JobCompleted) && j.Status != string(models.JobDelivered)
}
