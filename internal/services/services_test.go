package services

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tailor_shop/internal/events"
	"tailor_shop/internal/export"
	"tailor_shop/internal/models"
	"tailor_shop/internal/redis"
	"tailor_shop/internal/repository"
	"tailor_shop/pkg/billing"
	"tailor_shop/pkg/workflow"
)

var shopDay = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func TestBillCreateComputesTotalsAndOpensJob(t *testing.T) {
	freezeTime(t, shopDay)
	s := newShop(t, false)
	ctx := context.Background()

	bill, err := s.Bills.Create(ctx, sampleBill())
	require.NoError(t, err)

	assert.Equal(t, 1, bill.BillNo)
	assert.Equal(t, "001", bill.BillNoStr)
	assert.Equal(t, 1000.0, bill.Subtotal)
	assert.Equal(t, 900.0, bill.Total)
	assert.Equal(t, 600.0, bill.Balance)
	assert.Equal(t, string(models.BillPending), bill.Status)
	require.Len(t, bill.Items, 2)
	assert.Equal(t, 800.0, bill.Items[0].Total)
	assert.NotZero(t, bill.CustomerID)
	assert.Equal(t, 1, s.recorder.bills)

	job, err := s.jobs.GetByBillID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bill #001 - shirt, pant", job.Title)
	assert.Equal(t, workflow.Cutting, job.CurrentStage)
	assert.Equal(t, string(models.JobAssigned), job.Status)
	require.Len(t, job.WorkflowStages, 4)
	for _, st := range job.WorkflowStages {
		assert.Equal(t, workflow.Pending, st.Status)
	}

	second, err := s.Bills.Create(ctx, sampleBill())
	require.NoError(t, err)
	assert.Equal(t, "002", second.BillNoStr)
}

func TestBillCreateRejectsInvalidCustomer(t *testing.T) {
	s := newShop(t, false)
	in := sampleBill()
	in.CustomerPhone = "  "

	_, err := s.Bills.Create(context.Background(), in)

	var verr *billing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, s.bills.rows)
	assert.Empty(t, s.customers.rows)
}

func TestBillCreateRejectsEmptyItems(t *testing.T) {
	s := newShop(t, false)
	in := sampleBill()
	in.Items = nil

	_, err := s.Bills.Create(context.Background(), in)

	var verr *billing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, s.customers.rows)
}

func TestBillCreateFailureLeavesNoCustomer(t *testing.T) {
	s := newShop(t, false)
	s.bills.issueErr = errBoom

	_, err := s.Bills.Create(context.Background(), sampleBill())

	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, s.customers.rows)
	assert.Empty(t, s.jobs.rows)
}

func TestConcurrentBillsGetDistinctNumbers(t *testing.T) {
	s := newShop(t, false)
	const n = 8
	numbers := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bill, err := s.Bills.Create(context.Background(), sampleBill())
			if assert.NoError(t, err) {
				numbers[i] = bill.BillNo
			}
		}(i)
	}
	wg.Wait()

	sort.Ints(numbers)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, numbers)
}

func TestBillUpdateStatusPaidClearsBalance(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	bill, err := s.Bills.Create(ctx, sampleBill())
	require.NoError(t, err)

	paid, err := s.Bills.UpdateStatus(ctx, bill.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, 900.0, paid.Advance)
	assert.Equal(t, 0.0, paid.Balance)

	_, err = s.Bills.UpdateStatus(ctx, bill.ID, "refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func newJob(t *testing.T, s *shop) *models.Job {
	t.Helper()
	bill, err := s.Bills.Create(context.Background(), sampleBill())
	require.NoError(t, err)
	job, err := s.jobs.GetByBillID(context.Background(), bill.ID)
	require.NoError(t, err)
	return job
}

func stageStatus(job *models.Job, name workflow.Stage) workflow.Status {
	return workflow.StatusOf(job.Entries(), name)
}

func TestUpdateStageTouchesOnlyTargetStage(t *testing.T) {
	freezeTime(t, shopDay)
	s := newShop(t, false)
	ctx := context.Background()
	job := newJob(t, s)

	got, err := s.Jobs.UpdateStage(ctx, job.ID, "cutting", workflow.Update{Status: workflow.InProgress, Notes: "fabric ready"})
	require.NoError(t, err)

	assert.Equal(t, workflow.InProgress, stageStatus(got, workflow.Cutting))
	assert.Equal(t, workflow.Pending, stageStatus(got, workflow.Stitching))
	assert.Equal(t, workflow.Pending, stageStatus(got, workflow.Finishing))
	assert.Equal(t, workflow.Pending, stageStatus(got, workflow.Packaging))
	assert.Equal(t, string(models.JobInProgress), got.Status)
	assert.Equal(t, workflow.Cutting, got.CurrentStage)
	assert.Equal(t, 0.0, got.ProgressPercentage)
	assert.Equal(t, []string{"cutting:in_progress"}, s.recorder.stages)

	got, err = s.Jobs.UpdateStage(ctx, job.ID, "cutting", workflow.Update{Status: workflow.Completed})
	require.NoError(t, err)
	assert.Equal(t, workflow.Stitching, got.CurrentStage)
	assert.Equal(t, 25.0, got.ProgressPercentage)

	stored, err := s.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	entries := stored.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "fabric ready", entries[0].Notes)
	assert.NotNil(t, entries[0].CompletedAt)
}

func TestUpdateStageValidatesInput(t *testing.T) {
	s := newShop(t, false)
	job := newJob(t, s)

	_, err := s.Jobs.UpdateStage(context.Background(), job.ID, "ironing", workflow.Update{Status: workflow.InProgress})
	assert.ErrorIs(t, err, ErrInvalidStage)

	_, err = s.Jobs.UpdateStage(context.Background(), job.ID, "cutting", workflow.Update{Status: "done"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.Jobs.UpdateStage(context.Background(), 999, "cutting", workflow.Update{Status: workflow.InProgress})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStageOutOfOrder(t *testing.T) {
	skip := workflow.Update{Status: workflow.InProgress}

	relaxed := newShop(t, false)
	job := newJob(t, relaxed)
	_, err := relaxed.Jobs.UpdateStage(context.Background(), job.ID, "stitching", skip)
	assert.NoError(t, err)

	strict := newShop(t, true)
	job = newJob(t, strict)
	_, err = strict.Jobs.UpdateStage(context.Background(), job.ID, "stitching", skip)
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestFinishingCompletedResetsHeldPackaging(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	job := newJob(t, s)

	_, err := s.Jobs.UpdateStage(ctx, job.ID, "packaging", workflow.Update{Status: workflow.OnHold})
	require.NoError(t, err)
	got, err := s.Jobs.UpdateStage(ctx, job.ID, "finishing", workflow.Update{Status: workflow.Completed})
	require.NoError(t, err)

	assert.Equal(t, workflow.Pending, stageStatus(got, workflow.Packaging))
}

func TestPackagingCompletedNotifiesCustomer(t *testing.T) {
	freezeTime(t, shopDay)
	s := newShop(t, false)
	ctx := context.Background()
	job := newJob(t, s)

	s.notifier.On("SendTextMessage", mock.Anything, "9876543210", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "ready for delivery") &&
			strings.Contains(msg, "Bill #001") &&
			strings.Contains(msg, "STAR TAILORS")
	})).Return(nil).Once()

	var got *models.Job
	for _, st := range workflow.Stages {
		var err error
		got, err = s.Jobs.UpdateStage(ctx, job.ID, string(st), workflow.Update{Status: workflow.Completed})
		require.NoError(t, err)
	}

	s.notifier.AssertExpectations(t)
	assert.Equal(t, []bool{true}, s.recorder.notifications)
	assert.Equal(t, string(models.JobCompleted), got.Status)
	assert.Equal(t, 100.0, got.ProgressPercentage)
	assert.Equal(t, workflow.Packaging, got.CurrentStage)
	require.NotNil(t, got.CompletedDate)
}

func TestNotificationFailureDoesNotFailUpdate(t *testing.T) {
	s := newShop(t, false)
	job := newJob(t, s)
	s.notifier.On("SendTextMessage", mock.Anything, mock.Anything, mock.Anything).Return(errBoom)

	_, err := s.Jobs.UpdateStage(context.Background(), job.ID, "packaging", workflow.Update{Status: workflow.Completed})

	require.NoError(t, err)
	assert.Equal(t, []bool{false}, s.recorder.notifications)
}

func TestDeliveredJobKeepsStatus(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	job := newJob(t, s)

	_, err := s.Jobs.UpdateStatus(ctx, job.ID, "delivered")
	require.NoError(t, err)
	got, err := s.Jobs.UpdateStage(ctx, job.ID, "cutting", workflow.Update{Status: workflow.Pending})
	require.NoError(t, err)

	assert.Equal(t, string(models.JobDelivered), got.Status)
}

func TestUpdateStageFillsTailorAndPublishes(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	require.NoError(t, s.tailors.Create(ctx, &models.Tailor{Name: "Imran", Phone: "9000000001"}))

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, events.JobCreated, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, events.StageUpdated, mock.MatchedBy(func(ev events.StageEvent) bool {
		return ev.Stage == workflow.Cutting && ev.Status == workflow.InProgress && ev.JobStatus == "in_progress"
	})).Return(nil).Once()
	jobs := NewJobService(s.jobs, s.tailors, s.Settings, s.notifier, pub, nil, s.cache, JobServiceConfig{}, quietLogger())

	job, err := jobs.Create(ctx, JobInput{Title: "Alteration", CustomerName: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, string(models.PriorityMedium), job.Priority)

	got, err := jobs.UpdateStage(ctx, job.ID, "cutting", workflow.Update{Status: workflow.InProgress, AssignedTailor: "1"})
	require.NoError(t, err)

	entry := got.Entries()[0]
	assert.Equal(t, "Imran", entry.AssignedTailorName)
	assert.Equal(t, "9000000001", entry.AssignedTailorPhone)
	pub.AssertExpectations(t)
}

func TestJobCreateValidation(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()

	_, err := s.Jobs.Create(ctx, JobInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	tailor := uint(42)
	_, err = s.Jobs.Create(ctx, JobInput{Title: "Blouse", TailorID: &tailor})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Jobs.Create(ctx, JobInput{Title: "Blouse", Priority: "asap"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJobStatsCountsActiveStages(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	first := newJob(t, s)
	newJob(t, s)
	done := newJob(t, s)

	_, err := s.Jobs.UpdateStage(ctx, first.ID, "cutting", workflow.Update{Status: workflow.Completed})
	require.NoError(t, err)
	_, err = s.Jobs.UpdateStatus(ctx, done.ID, "delivered")
	require.NoError(t, err)

	stats, err := s.Jobs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalJobs)
	assert.Equal(t, workflow.Counts{Cutting: 1, Stitching: 1}, stats.ByStage)
	assert.Equal(t, 1, stats.ByStatus["delivered"])
}

func TestBackfillCreatesMissingJobs(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	newJob(t, s)
	orphan := &models.Bill{BillNo: 7, CustomerName: "Old Customer", CustomerPhone: "9000000002", Status: "pending"}
	require.NoError(t, s.bills.Create(ctx, orphan))

	res, err := s.Backfill.Run(ctx, true, 0)
	require.NoError(t, err)
	assert.Equal(t, &BackfillResult{Created: 1, SkippedExisting: 1, DryRun: true}, res)
	_, err = s.jobs.GetByBillID(ctx, orphan.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	res, err = s.Backfill.Run(ctx, false, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	job, err := s.jobs.GetByBillID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bill #007 - ", job.Title)

	res, err = s.Backfill.Run(ctx, false, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 2, res.SkippedExisting)
}

func TestBackfillReopensJobAfterDelete(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	job := newJob(t, s)
	require.NoError(t, s.Jobs.Delete(ctx, job.ID))

	res, err := s.Backfill.Run(ctx, false, 0)
	require.NoError(t, err)
	assert.Equal(t, &BackfillResult{Created: 1}, res)
	reopened, err := s.jobs.GetByBillID(ctx, *job.BillID)
	require.NoError(t, err)
	assert.NotEqual(t, job.ID, reopened.ID)

	res, err = s.Backfill.Run(ctx, false, 0)
	require.NoError(t, err)
	assert.Equal(t, &BackfillResult{SkippedExisting: 1}, res)
}

func TestBackfillContinuesPastFailedBill(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	broken := &models.Bill{BillNo: 1, CustomerName: "Asha", CustomerPhone: "9000000001", Status: "pending"}
	fine := &models.Bill{BillNo: 2, CustomerName: "Ravi", CustomerPhone: "9000000002", Status: "pending"}
	require.NoError(t, s.bills.Create(ctx, broken))
	require.NoError(t, s.bills.Create(ctx, fine))
	s.jobs.brokenBills = map[uint]bool{broken.ID: true}

	res, err := s.Backfill.Run(ctx, false, 0)

	require.NoError(t, err)
	assert.Equal(t, &BackfillResult{Created: 1, Failed: 1}, res)
	_, err = s.jobs.GetByBillID(ctx, fine.ID)
	assert.NoError(t, err)
}

func TestCustomerTotalsSkipCancelledBills(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	first, err := s.Bills.Create(ctx, sampleBill())
	require.NoError(t, err)

	again := sampleBill()
	again.CustomerID = first.CustomerID
	cancelled, err := s.Bills.Create(ctx, again)
	require.NoError(t, err)
	_, err = s.Bills.UpdateStatus(ctx, cancelled.ID, "cancelled")
	require.NoError(t, err)

	customer, err := s.Customers.Get(ctx, first.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 1, customer.TotalOrders)
	assert.Equal(t, 900.0, customer.TotalSpent)
	assert.Equal(t, 600.0, customer.OutstandingBalance)
	assert.Len(t, customer.Bills, 2)

	stats, err := s.Customers.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &CustomerStats{TotalCustomers: 1, CustomersWithOutstanding: 1, TotalOutstandingAmount: 600}, stats)
}

func TestTailorCompletionRate(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()
	tailor, err := s.Tailors.Create(ctx, TailorInput{Name: "Imran", Phone: "9000000001"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		job, err := s.Jobs.Create(ctx, JobInput{Title: "Kurta", TailorID: &tailor.ID})
		require.NoError(t, err)
		if i == 0 {
			_, err = s.Jobs.UpdateStatus(ctx, job.ID, "completed")
			require.NoError(t, err)
		}
	}

	got, err := s.Tailors.Get(ctx, tailor.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalJobs)
	assert.Equal(t, 1, got.CompletedJobs)
	assert.Equal(t, 2, got.PendingJobs)
	assert.Equal(t, 33.3, got.CompletionRate)

	_, err = s.Tailors.Create(ctx, TailorInput{Name: "No Phone"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Tailors.UpdateStatus(ctx, tailor.ID, "retired")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	s := newShop(t, false)
	ctx := context.Background()

	upi, err := s.Settings.UPI(ctx)
	require.NoError(t, err)
	assert.Equal(t, "startailors@upi", upi.UPIID)

	_, err = s.Settings.UpdateUPI(ctx, models.UPISettings{UPIID: "nope"}, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Settings.UpdateBusiness(ctx, models.BusinessSettings{BusinessName: "Star Tailors & Co", Phone: "9000000003"}, 1)
	require.NoError(t, err)
	biz, err := s.Settings.Business(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Star Tailors & Co", biz.BusinessName)
	assert.Equal(t, uint(1), s.settings.rows[models.SettingBusiness].UpdatedBy)
}

func TestDashboardStatsAreCached(t *testing.T) {
	freezeTime(t, shopDay)
	s := newShop(t, false)
	ctx := context.Background()
	newJob(t, s)

	stats, err := s.Dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &DashboardStats{
		TotalCustomers: 1,
		TotalBills:     1,
		TotalJobs:      1,
		PendingJobs:    1,
		TodayBills:     1,
		TotalRevenue:   900,
	}, stats)

	// written behind the service's back, so the cached value is served
	require.NoError(t, s.customers.Create(ctx, &models.Customer{Name: "Hidden", Phone: "9000000004"}))
	stats, err = s.Dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCustomers)

	_, err = s.Customers.Create(ctx, CustomerInput{Name: "Meena", Phone: "9000000005"})
	require.NoError(t, err)
	stats, err = s.Dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCustomers)
}

func TestWorkflowDashboard(t *testing.T) {
	freezeTime(t, shopDay)
	s := newShop(t, false)
	ctx := context.Background()
	late := newJob(t, s)
	_, err := s.Jobs.Create(ctx, JobInput{Title: "Sherwani", DueDate: "2026-04-01", Priority: "urgent"})
	require.NoError(t, err)
	_, err = s.Jobs.UpdateStage(ctx, late.ID, "cutting", workflow.Update{Status: workflow.Completed})
	require.NoError(t, err)

	dash, err := s.Dashboard.Workflow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.TotalActiveJobs)
	assert.Equal(t, workflow.Counts{Cutting: 1, Stitching: 1}, dash.StageStats)
	require.Len(t, dash.OverdueJobs, 1)
	assert.Equal(t, late.ID, dash.OverdueJobs[0].JobID)
	assert.Len(t, dash.RecentUpdates, 2)
}

func TestRevenueAndOutstandingReports(t *testing.T) {
	freezeTime(t, shopDay)
	s := newShop(t, false)
	ctx := context.Background()
	_, err := s.Bills.Create(ctx, sampleBill())
	require.NoError(t, err)
	require.NoError(t, s.bills.Create(ctx, &models.Bill{
		BillNo: 2, CustomerID: 1, CustomerName: "Ravi Kumar", Total: 500, Balance: 500,
		Status: "pending", DueDate: "2026-03-01", CreatedAt: shopDay.AddDate(0, 0, -3),
	}))

	rev, err := s.Reports.Revenue(ctx, DateRange{})
	require.NoError(t, err)
	assert.Equal(t, []RevenuePoint{
		{Date: "2026-03-12", Amount: 500, BillsCount: 1},
		{Date: "2026-03-15", Amount: 900, BillsCount: 1},
	}, rev.RevenueData)
	assert.Equal(t, 1400.0, rev.TotalRevenue)
	assert.Equal(t, 2, rev.TotalBills)

	rev, err = s.Reports.Revenue(ctx, DateRange{From: "2026-03-14"})
	require.NoError(t, err)
	assert.Equal(t, 1, rev.TotalBills)

	owed, err := s.Reports.Outstanding(ctx)
	require.NoError(t, err)
	require.Len(t, owed, 1)
	assert.Equal(t, 1100.0, owed[0].OutstandingAmount)
	assert.Equal(t, 14, owed[0].OverdueDays)
	assert.Equal(t, "2026-03-15", owed[0].LastPaymentDate)
}

func TestExportReport(t *testing.T) {
	freezeTime(t, shopDay)
	s := newShop(t, false)
	ctx := context.Background()
	_, err := s.Bills.Create(ctx, sampleBill())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Reports.Export(ctx, &buf, "revenue", export.FormatCSV, DateRange{}))
	assert.Equal(t, "Date,Amount,Bills\n2026-03-15,900.00,1\n\nTotal Revenue,900.00\nTotal Bills,1\n", buf.String())

	err = s.Reports.Export(ctx, &buf, "revenue", export.FormatPDF, DateRange{})
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)

	err = s.Reports.Export(ctx, &buf, "payroll", export.FormatCSV, DateRange{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthLoginAndAuthenticate(t *testing.T) {
	users := &fakeUsers{}
	cache := newMemoryCache()
	auth := NewAuthService(users, cache, time.Hour)
	ctx := context.Background()

	user, err := auth.Register(ctx, RegisterInput{Username: "priya", Password: "secret1", Name: "Priya"}, nil)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleBilling), user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = auth.Register(ctx, RegisterInput{Username: "priya", Password: "secret2"}, nil)
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = auth.Register(ctx, RegisterInput{Username: "short", Password: "123"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = auth.Login(ctx, "priya", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, logged, err := auth.Login(ctx, " priya ", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	session, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "priya", session.Username)

	require.NoError(t, auth.Logout(ctx, token))
	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterPrivilegedAccountsNeedAdmin(t *testing.T) {
	users := &fakeUsers{}
	auth := NewAuthService(users, newMemoryCache(), time.Hour)
	ctx := context.Background()
	tailorID := uint(4)

	_, err := auth.Register(ctx, RegisterInput{Username: "boss", Password: "secret1", Role: "admin"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = auth.Register(ctx, RegisterInput{Username: "imran", Password: "secret1", Role: "tailor", TailorID: &tailorID},
		&redis.SessionData{UserID: 2, Role: "billing"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, users.rows)

	admin := &redis.SessionData{UserID: 1, Role: "admin"}
	boss, err := auth.Register(ctx, RegisterInput{Username: "boss", Password: "secret1", Role: "admin"}, admin)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleAdmin), boss.Role)
	imran, err := auth.Register(ctx, RegisterInput{Username: "imran", Password: "secret1", Role: "tailor", TailorID: &tailorID}, admin)
	require.NoError(t, err)
	assert.Equal(t, &tailorID, imran.TailorID)

	_, err = auth.Register(ctx, RegisterInput{Username: "meena", Password: "secret1", Role: "tailor"}, nil)
	assert.NoError(t, err)
}
