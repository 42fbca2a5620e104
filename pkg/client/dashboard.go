package client

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"tailor_shop/pkg/workflow"
)

type DashboardService struct {
	c *Client
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out DashboardStats
	if err := s.c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Overview is everything the home screen shows.
type Overview struct {
	Stats       DashboardStats
	Workflow    WorkflowDashboard
	Bills       []Bill
	Jobs        []Job
	StageCounts workflow.Counts
	Revenue     float64
	Advance     float64
	Outstanding float64
	ActiveJobs  int
	RecentBills []Bill
}

const recentBills = 5

// Overview fetches stats, the workflow dashboard, bills and jobs in
// parallel. Any failure fails the whole overview.
func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}

	var ov Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.Stats(gctx)
		if err != nil {
			return err
		}
		ov.Stats = *st
		return nil
	})
	g.Go(func() error {
		wd, err := s.c.Workflow.Dashboard(gctx)
		if err != nil {
			return err
		}
		ov.Workflow = *wd
		return nil
	})
	g.Go(func() error {
		bills, err := s.c.Bills.List(gctx)
		if err != nil {
			return err
		}
		ov.Bills = bills
		return nil
	})
	g.Go(func() error {
		jobs, err := s.c.Jobs.List(gctx, JobFilter{Light: true})
		if err != nil {
			return err
		}
		ov.Jobs = jobs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summarize(&ov)
	return &ov, nil
}

func summarize(ov *Overview) {
	revenue, advance, outstanding := decimal.Zero, decimal.Zero, decimal.Zero
	for _, b := range ov.Bills {
		if b.Status == "cancelled" {
			continue
		}
		revenue = revenue.Add(decimal.NewFromFloat(b.Total))
		advance = advance.Add(decimal.NewFromFloat(b.Advance))
		outstanding = outstanding.Add(decimal.NewFromFloat(b.Balance))
	}
	ov.Revenue = revenue.Round(2).InexactFloat64()
	ov.Advance = advance.Round(2).InexactFloat64()
	ov.Outstanding = outstanding.Round(2).InexactFloat64()

	stages := make([]workflow.Stage, 0, len(ov.Jobs))
	for _, j := range ov.Jobs {
		if j.Status == "completed" || j.Status == "delivered" {
			continue
		}
		stages = append(stages, j.CurrentStage)
	}
	ov.StageCounts = workflow.CountByStage(stages...)
	ov.ActiveJobs = len(stages)

	n := min(recentBills, len(ov.Bills))
	ov.RecentBills = ov.Bills[:n]
}
