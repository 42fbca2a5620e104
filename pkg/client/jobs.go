package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"tailor_shop/pkg/workflow"
)

type JobService struct {
	c *Client
}

// JobFilter narrows a job listing. Light asks the server to skip the
// embedded bill of every job.
type JobFilter struct {
	Status   string
	TailorID ID
	Stage    workflow.Stage
	Light    bool
}

func (f JobFilter) query() string {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.TailorID != "" {
		v.Set("tailor_id", f.TailorID.String())
	}
	if f.Stage != "" {
		v.Set("stage", string(f.Stage))
	}
	if f.Light {
		v.Set("light", "true")
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// WorkflowView is the workflow detail of a single job.
type WorkflowView struct {
	JobID              ID                    `json:"job_id"`
	CurrentStage       workflow.Stage        `json:"current_stage"`
	ProgressPercentage float64               `json:"progress_percentage"`
	WorkflowStages     []workflow.StageEntry `json:"workflow_stages"`
}

// List uses a longer timeout since job listings are the heaviest payload.
func (s *JobService) List(ctx context.Context, f JobFilter) ([]Job, error) {
	return fetchList[Job](ctx, s.c, "/jobs"+f.query(), "jobs", withRequestTimeout(jobListTimeout))
}

func (s *JobService) Get(ctx context.Context, id ID) (*Job, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Job
	if err := s.c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *JobService) Create(ctx context.Context, in JobInput) (*Job, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Job
	if err := s.c.do(ctx, http.MethodPost, "/jobs", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *JobService) Update(ctx context.Context, id ID, in JobInput) (*Job, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Job
	if err := s.c.do(ctx, http.MethodPut, "/jobs/"+url.PathEscape(id.String()), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus sets the job level status, e.g. "delivered".
func (s *JobService) UpdateStatus(ctx context.Context, id ID, status string) (*Job, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Job
	body := map[string]string{"status": status}
	if err := s.c.do(ctx, http.MethodPut, "/jobs/"+url.PathEscape(id.String())+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *JobService) UpdateWorkflowStage(ctx context.Context, id ID, stage workflow.Stage, u workflow.Update) (*Job, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Job
	endpoint := "/jobs/" + url.PathEscape(id.String()) + "/workflow/" + url.PathEscape(string(stage))
	if err := s.c.do(ctx, http.MethodPut, endpoint, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *JobService) Workflow(ctx context.Context, id ID) (*WorkflowView, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out WorkflowView
	if err := s.c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id.String())+"/workflow", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *JobService) Delete(ctx context.Context, id ID) error {
	if err := s.c.RequireSession(); err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodDelete, "/jobs/"+url.PathEscape(id.String()), nil, nil)
}

func (s *JobService) Stats(ctx context.Context) (*JobStats, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out JobStats
	if err := s.c.do(ctx, http.MethodGet, "/jobs/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchStage returns a copy of jobs where only the stage entry of job id
// reflects u. Current stage and progress of that job are recomputed. The
// input slice is not modified.
func PatchStage(jobs []Job, id ID, stage workflow.Stage, u workflow.Update, now time.Time) ([]Job, error) {
	out := make([]Job, len(jobs))
	copy(out, jobs)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		stages, err := workflow.Apply(out[i].WorkflowStages, stage, u, now)
		if err != nil {
			return nil, err
		}
		out[i].WorkflowStages = stages
		out[i].CurrentStage = workflow.CurrentStage(stages)
		out[i].ProgressPercentage = workflow.Progress(stages)
	}
	return out, nil
}
