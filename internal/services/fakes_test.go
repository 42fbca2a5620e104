package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"tailor_shop/internal/models"
	"tailor_shop/internal/redis"
	"tailor_shop/internal/repository"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

type fakeCustomers struct {
	mu   sync.Mutex
	next uint
	rows map[uint]models.Customer
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{rows: map[uint]models.Customer{}}
}

func (f *fakeCustomers) Create(_ context.Context, c *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	c.ID = f.next
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCustomers) GetByID(_ context.Context, id uint) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCustomers) GetAll(_ context.Context) ([]models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Customer, 0, len(f.rows))
	for _, c := range f.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCustomers) Update(_ context.Context, c *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCustomers) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeCustomers) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeBills struct {
	mu     sync.Mutex
	next   uint
	lastNo int
	rows   map[uint]models.Bill
	jobs   *fakeJobs
	// customers receives the new customer of an issued bill.
	customers *fakeCustomers
	issueErr  error
}

func newFakeBills() *fakeBills {
	return &fakeBills{rows: map[uint]models.Bill{}}
}

func (f *fakeBills) Create(_ context.Context, b *models.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insert(b)
	return nil
}

func (f *fakeBills) insert(b *models.Bill) {
	f.next++
	b.ID = f.next
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now()
	}
	b.UpdatedAt = b.CreatedAt
	f.rows[b.ID] = *b
	if b.BillNo > f.lastNo {
		f.lastNo = b.BillNo
	}
}

func (f *fakeBills) GetByID(_ context.Context, id uint) (*models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (f *fakeBills) GetAll(_ context.Context, filter repository.BillFilter) ([]models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Bill
	for _, b := range f.rows {
		if filter.CustomerID != 0 && b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BillNo > out[j].BillNo })
	return out, nil
}

func (f *fakeBills) Search(ctx context.Context, q string) ([]models.Bill, error) {
	all, _ := f.GetAll(ctx, repository.BillFilter{})
	var out []models.Bill
	for _, b := range all {
		if strings.Contains(strings.ToLower(b.CustomerName), strings.ToLower(q)) || strings.Contains(b.CustomerPhone, q) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBills) Update(_ context.Context, b *models.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[b.ID]; !ok {
		return repository.ErrNotFound
	}
	b.UpdatedAt = now()
	f.rows[b.ID] = *b
	return nil
}

func (f *fakeBills) UpdateStatus(_ context.Context, id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	f.rows[id] = b
	return nil
}

func (f *fakeBills) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeBills) Issue(ctx context.Context, b *models.Bill, c *models.Customer) error {
	if f.issueErr != nil {
		return f.issueErr
	}
	if c != nil {
		if c.ID == 0 {
			if err := f.customers.Create(ctx, c); err != nil {
				return err
			}
		}
		b.CustomerID = c.ID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b.BillNo = f.lastNo + 1
	f.insert(b)
	return nil
}

func (f *fakeBills) WithoutJob(ctx context.Context, limit int) ([]models.Bill, error) {
	all, _ := f.GetAll(ctx, repository.BillFilter{})
	sort.Slice(all, func(i, j int) bool { return all[i].BillNo < all[j].BillNo })
	var out []models.Bill
	for _, b := range all {
		if _, err := f.jobs.GetByBillID(ctx, b.ID); err == nil {
			continue
		}
		out = append(out, b)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeBills) CountWithJob(ctx context.Context) (int64, error) {
	all, _ := f.GetAll(ctx, repository.BillFilter{})
	var n int64
	for _, b := range all {
		if _, err := f.jobs.GetByBillID(ctx, b.ID); err == nil {
			n++
		}
	}
	return n, nil
}

type fakeTailors struct {
	mu   sync.Mutex
	next uint
	rows map[uint]models.Tailor
}

func newFakeTailors() *fakeTailors {
	return &fakeTailors{rows: map[uint]models.Tailor{}}
}

func (f *fakeTailors) Create(_ context.Context, t *models.Tailor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	t.ID = f.next
	f.rows[t.ID] = *t
	return nil
}

func (f *fakeTailors) GetByID(_ context.Context, id uint) (*models.Tailor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTailors) GetAll(_ context.Context) ([]models.Tailor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Tailor, 0, len(f.rows))
	for _, t := range f.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTailors) Update(_ context.Context, t *models.Tailor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[t.ID] = *t
	return nil
}

func (f *fakeTailors) UpdateStatus(_ context.Context, id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	f.rows[id] = t
	return nil
}

func (f *fakeTailors) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeJobs struct {
	mu    sync.Mutex
	next  uint
	rows  map[uint]models.Job
	bills *fakeBills
	// brokenBills makes Create fail for these bill ids.
	brokenBills map[uint]bool
}

var errDuplicateBillJob = errors.New("duplicate key value violates unique constraint \"idx_jobs_live_bill_id\"")

func newFakeJobs() *fakeJobs {
	return &fakeJobs{rows: map[uint]models.Job{}}
}

// clone detaches slices so callers cannot mutate stored rows.
func clone(j models.Job) models.Job {
	j.WorkflowStages = append([]models.WorkflowStage(nil), j.WorkflowStages...)
	j.Bill = nil
	return j
}

func (f *fakeJobs) withBill(j models.Job) models.Job {
	if j.BillID != nil && f.bills != nil {
		if b, err := f.bills.GetByID(context.Background(), *j.BillID); err == nil {
			j.Bill = b
		}
	}
	return j
}

func (f *fakeJobs) Create(_ context.Context, j *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j.BillID != nil {
		if f.brokenBills[*j.BillID] {
			return errBoom
		}
		for _, other := range f.rows {
			if other.BillID != nil && *other.BillID == *j.BillID {
				return errDuplicateBillJob
			}
		}
	}
	f.next++
	j.ID = f.next
	for i := range j.WorkflowStages {
		j.WorkflowStages[i].JobID = j.ID
		j.WorkflowStages[i].ID = j.ID*10 + uint(i)
	}
	j.UpdatedAt = now()
	f.rows[j.ID] = clone(*j)
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, id uint) (*models.Job, error) {
	f.mu.Lock()
	j, ok := f.rows[id]
	f.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	j = f.withBill(clone(j))
	return &j, nil
}

func (f *fakeJobs) GetByBillID(_ context.Context, billID uint) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.rows {
		if j.BillID != nil && *j.BillID == billID {
			j = clone(j)
			return &j, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeJobs) GetAll(_ context.Context, filter repository.JobFilter) ([]models.Job, error) {
	f.mu.Lock()
	var out []models.Job
	for _, j := range f.rows {
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.TailorID != 0 && (j.TailorID == nil || *j.TailorID != filter.TailorID) {
			continue
		}
		if filter.Stage != "" && string(j.CurrentStage) != filter.Stage {
			continue
		}
		out = append(out, clone(j))
	}
	f.mu.Unlock()
	if !filter.Light {
		for i := range out {
			out[i] = f.withBill(out[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeJobs) Save(_ context.Context, j *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[j.ID]; !ok {
		return repository.ErrNotFound
	}
	j.UpdatedAt = now()
	f.rows[j.ID] = clone(*j)
	return nil
}

func (f *fakeJobs) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeSettings struct {
	rows map[string]models.Setting
}

func (f *fakeSettings) Get(_ context.Context, key string) (*models.Setting, error) {
	s, ok := f.rows[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSettings) Upsert(_ context.Context, s *models.Setting) error {
	if f.rows == nil {
		f.rows = map[string]models.Setting{}
	}
	f.rows[s.Key] = *s
	return nil
}

type fakeUsers struct {
	next uint
	rows map[string]models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	if f.rows == nil {
		f.rows = map[string]models.User{}
	}
	f.next++
	u.ID = f.next
	f.rows[u.Username] = *u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range f.rows {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.rows[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// memoryCache implements Cache and SessionCache over a map.
type memoryCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = b
	return nil
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	b, ok := c.values[key]
	c.mu.Unlock()
	if !ok {
		return redis.ErrNotFound
	}
	return json.Unmarshal(b, dest)
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	c.deletes++
	return nil
}

func (c *memoryCache) SetSession(ctx context.Context, token string, data *redis.SessionData, ttl time.Duration) error {
	return c.SetJSON(ctx, "session:"+token, data, ttl)
}

func (c *memoryCache) GetSession(ctx context.Context, token string) (*redis.SessionData, error) {
	var s redis.SessionData
	if err := c.GetJSON(ctx, "session:"+token, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *memoryCache) DeleteSession(ctx context.Context, token string) error {
	return c.Delete(ctx, "session:"+token)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendTextMessage(ctx context.Context, phone, message string) error {
	args := m.Called(ctx, phone, message)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *mockPublisher) Close() {}

type countingRecorder struct {
	mu            sync.Mutex
	stages        []string
	bills         int
	notifications []bool
}

func (r *countingRecorder) StageUpdated(stage, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage+":"+status)
}

func (r *countingRecorder) BillCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bills++
}

func (r *countingRecorder) Notification(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, ok)
}

var errBoom = errors.New("boom")

// shop wires every service over the in-memory fakes.
type shop struct {
	customers *fakeCustomers
	bills     *fakeBills
	tailors   *fakeTailors
	jobs      *fakeJobs
	settings  *fakeSettings
	cache     *memoryCache
	notifier  *mockNotifier
	recorder  *countingRecorder

	Customers CustomerService
	Bills     BillService
	Tailors   TailorService
	Jobs      JobService
	Settings  SettingsService
	Reports   ReportService
	Dashboard DashboardService
	Backfill  BackfillService
}

func newShop(t *testing.T, enforceOrder bool) *shop {
	t.Helper()
	s := &shop{
		customers: newFakeCustomers(),
		bills:     newFakeBills(),
		tailors:   newFakeTailors(),
		jobs:      newFakeJobs(),
		settings:  &fakeSettings{},
		cache:     newMemoryCache(),
		notifier:  &mockNotifier{},
		recorder:  &countingRecorder{},
	}
	s.bills.jobs = s.jobs
	s.bills.customers = s.customers
	s.jobs.bills = s.bills
	log := quietLogger()

	s.Settings = NewSettingsService(s.settings)
	s.Jobs = NewJobService(s.jobs, s.tailors, s.Settings, s.notifier, nil, s.recorder, s.cache,
		JobServiceConfig{EnforceOrder: enforceOrder}, log)
	s.Customers = NewCustomerService(s.customers, s.bills, s.cache)
	s.Bills = NewBillService(s.bills, s.customers, s.Jobs, s.cache, nil, s.recorder, log)
	s.Tailors = NewTailorService(s.tailors, s.jobs, s.cache)
	s.Reports = NewReportService(s.Customers, s.Tailors, s.bills, s.jobs)
	s.Dashboard = NewDashboardService(s.customers, s.bills, s.tailors, s.jobs, s.cache, time.Minute, log)
	s.Backfill = NewBackfillService(s.bills, s.Jobs, log)
	return s
}

func sampleBill() BillInput {
	return BillInput{
		CustomerName:  "Ravi Kumar",
		CustomerPhone: "9876543210",
		Items: []BillItemInput{
			{Type: "shirt", Quantity: 2, Price: 400, Measurements: map[string]string{"chest": "40"}},
			{Type: "pant", Quantity: 1, Price: 200},
		},
		Discount: 100,
		Advance:  300,
		DueDate:  "2026-03-10",
	}
}
