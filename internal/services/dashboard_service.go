package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"tailor_shop/pkg/workflow"

	"github.com/shopspring/decimal"
)

const recentUpdatesLimit = 10

type DashboardStats struct {
	TotalCustomers int     `json:"total_customers"`
	TotalBills     int     `json:"total_bills"`
	TotalTailors   int     `json:"total_tailors"`
	TotalJobs      int     `json:"total_jobs"`
	PendingJobs    int     `json:"pending_jobs"`
	TodayBills     int     `json:"today_bills"`
	TotalRevenue   float64 `json:"total_revenue"`
}

type StageUpdate struct {
	JobID        uint           `json:"id"`
	Title        string         `json:"title"`
	CurrentStage workflow.Stage `json:"current_stage"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type OverdueJob struct {
	JobID        uint           `json:"id"`
	Title        string         `json:"title"`
	DueDate      string         `json:"due_date"`
	CurrentStage workflow.Stage `json:"current_stage"`
	Priority     string         `json:"priority"`
}

type WorkflowDashboard struct {
	StageStats      workflow.Counts `json:"stage_stats"`
	RecentUpdates   []StageUpdate   `json:"recent_updates"`
	OverdueJobs     []OverdueJob    `json:"overdue_jobs"`
	TotalActiveJobs int             `json:"total_active_jobs"`
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	Workflow(ctx context.Context) (*WorkflowDashboard, error)
}

type dashboardService struct {
	customers repository.CustomerRepository
	bills     repository.BillRepository
	tailors   repository.TailorRepository
	jobs      repository.JobRepository
	cache     Cache
	ttl       time.Duration
	log       *slog.Logger
}

func NewDashboardService(
	customers repository.CustomerRepository,
	bills repository.BillRepository,
	tailors repository.TailorRepository,
	jobs repository.JobRepository,
	cache Cache,
	ttl time.Duration,
	log *slog.Logger,
) DashboardService {
	return &dashboardService{
		customers: customers,
		bills:     bills,
		tailors:   tailors,
		jobs:      jobs,
		cache:     cache,
		ttl:       ttl,
		log:       log,
	}
}

// Stats serves the headline counters, cached until the next write or ttl.
func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		if err := s.cache.GetJSON(ctx, dashboardStatsKey, &cached); err == nil {
			return &cached, nil
		}
	}

	customers, err := s.customers.Count(ctx)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.GetAll(ctx, repository.BillFilter{})
	if err != nil {
		return nil, err
	}
	tailors, err := s.tailors.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.GetAll(ctx, repository.JobFilter{Light: true})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalCustomers: int(customers),
		TotalBills:     len(bills),
		TotalTailors:   len(tailors),
		TotalJobs:      len(jobs),
	}
	today := now().Format(dateLayout)
	revenue := decimal.Zero
	for _, b := range bills {
		if b.CreatedAt.Format(dateLayout) == today {
			stats.TodayBills++
		}
		if b.Status != string(models.BillCancelled) {
			revenue = revenue.Add(decimal.NewFromFloat(b.Total))
		}
	}
	stats.TotalRevenue = revenue.Round(2).InexactFloat64()
	for _, j := range jobs {
		if isActive(j) {
			stats.PendingJobs++
		}
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, dashboardStatsKey, stats, s.ttl); err != nil {
			s.log.Warn("failed to cache dashboard stats", "err", err)
		}
	}
	return stats, nil
}

func (s *dashboardService) Workflow(ctx context.Context) (*WorkflowDashboard, error) {
	jobs, err := s.jobs.GetAll(ctx, repository.JobFilter{Light: true})
	if err != nil {
		return nil, err
	}
	out := &WorkflowDashboard{RecentUpdates: []StageUpdate{}, OverdueJobs: []OverdueJob{}}
	today := now().Format(dateLayout)

	active := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if !isActive(j) {
			continue
		}
		active = append(active, j)
		out.StageStats.Add(j.CurrentStage)
		if j.DueDate != "" && j.DueDate < today {
			out.OverdueJobs = append(out.OverdueJobs, OverdueJob{
				JobID:        j.ID,
				Title:        j.Title,
				DueDate:      j.DueDate,
				CurrentStage: j.CurrentStage,
				Priority:     j.Priority,
			})
		}
	}
	out.TotalActiveJobs = len(active)

	sort.SliceStable(jobs, func(a, b int) bool { return jobs[a].UpdatedAt.After(jobs[b].UpdatedAt) })
	for _, j := range jobs {
		if len(out.RecentUpdates) == recentUpdatesLimit {
			break
		}
		out.RecentUpdates = append(out.RecentUpdates, StageUpdate{
			JobID:        j.ID,
			Title:        j.Title,
			CurrentStage: j.CurrentStage,
			UpdatedAt:    j.UpdatedAt,
		})
	}
	sort.SliceStable(out.OverdueJobs, func(a, b int) bool { return out.OverdueJobs[a].DueDate < out.OverdueJobs[b].DueDate })
	return out, nil
}
