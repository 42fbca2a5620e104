package client

import (
	"context"
	"net/http"
)

type WorkflowService struct {
	c *Client
}

type BackfillRequest struct {
	DryRun bool `json:"dry_run"`
	Limit  int  `json:"limit,omitempty"`
}

type BackfillResult struct {
	Created         int  `json:"created"`
	SkippedExisting int  `json:"skipped_existing"`
	DryRun          bool `json:"dry_run"`
}

func (s *WorkflowService) Dashboard(ctx context.Context) (*WorkflowDashboard, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out WorkflowDashboard
	if err := s.c.do(ctx, http.MethodGet, "/workflow/dashboard", nil, &out); err != nil {
		return nil, err
	}
	if out.RecentUpdates == nil {
		out.RecentUpdates = []StageUpdate{}
	}
	if out.OverdueJobs == nil {
		out.OverdueJobs = []OverdueJob{}
	}
	return &out, nil
}

// Backfill creates production jobs for bills that have none.
func (s *WorkflowService) Backfill(ctx context.Context, req BackfillRequest) (*BackfillResult, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out BackfillResult
	if err := s.c.do(ctx, http.MethodPost, "/workflow/backfill", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
