package services

import (
	"context"
	"fmt"
	"log/slog"

	"tailor_shop/internal/repository"
)

const defaultBackfillLimit = 500

type BackfillResult struct {
	Created         int  `json:"created"`
	SkippedExisting int  `json:"skipped_existing"`
	DryRun          bool `json:"dry_run"`
	Failed          int  `json:"failed,omitempty"`
}

// BackfillService opens production jobs for bills that never got one.
type BackfillService interface {
	Run(ctx context.Context, dryRun bool, limit int) (*BackfillResult, error)
}

type backfillService struct {
	bills repository.BillRepository
	jobs  JobService
	log   *slog.Logger
}

func NewBackfillService(bills repository.BillRepository, jobs JobService, log *slog.Logger) BackfillService {
	return &backfillService{bills: bills, jobs: jobs, log: log}
}

func (s *backfillService) Run(ctx context.Context, dryRun bool, limit int) (*BackfillResult, error) {
	if limit <= 0 {
		limit = defaultBackfillLimit
	}
	existing, err := s.bills.CountWithJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count bills with jobs: %w", err)
	}
	bills, err := s.bills.WithoutJob(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills without jobs: %w", err)
	}

	res := &BackfillResult{SkippedExisting: int(existing), DryRun: dryRun}
	if dryRun {
		res.Created = len(bills)
		return res, nil
	}
	for i := range bills {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		// one bad bill must not block the rest of the batch on every run
		if _, err := s.jobs.CreateForBill(ctx, &bills[i]); err != nil {
			s.log.Warn("failed to create job for bill", "bill_no", bills[i].BillNo, "err", err)
			res.Failed++
			continue
		}
		res.Created++
	}
	s.log.Info("workflow backfill finished",
		"created", res.Created, "skipped_existing", res.SkippedExisting, "failed", res.Failed)
	return res, nil
}
