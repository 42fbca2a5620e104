package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"tailor_shop/internal/export"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type DateRange struct {
	From string
	To   string
}

type RevenuePoint struct {
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	BillsCount int     `json:"bills_count"`
}

type RevenueReport struct {
	RevenueData  []RevenuePoint `json:"revenue_data"`
	TotalRevenue float64        `json:"total_revenue"`
	TotalBills   int            `json:"total_bills"`
}

type CustomerReport struct {
	CustomerID        uint    `json:"customer_id"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	TotalOrders       int     `json:"total_orders"`
	TotalSpent        float64 `json:"total_spent"`
	OutstandingAmount float64 `json:"outstanding_amount"`
	LastOrderDate     string  `json:"last_order_date,omitempty"`
}

type TailorReport struct {
	TailorID          uint    `json:"tailor_id"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	TotalJobs         int     `json:"total_jobs"`
	CompletedJobs     int     `json:"completed_jobs"`
	PendingJobs       int     `json:"pending_jobs"`
	CompletionRate    float64 `json:"completion_rate"`
	AvgCompletionTime float64 `json:"avg_completion_time"`
}

type OutstandingReport struct {
	CustomerID        uint    `json:"customer_id"`
	CustomerName      string  `json:"customer_name"`
	Phone             string  `json:"phone"`
	OutstandingAmount float64 `json:"outstanding_amount"`
	OverdueDays       int     `json:"overdue_days"`
	LastPaymentDate   string  `json:"last_payment_date,omitempty"`
}

type ReportService interface {
	Revenue(ctx context.Context, r DateRange) (*RevenueReport, error)
	Customers(ctx context.Context) ([]CustomerReport, error)
	Tailors(ctx context.Context) ([]TailorReport, error)
	Outstanding(ctx context.Context) ([]OutstandingReport, error)
	Export(ctx context.Context, w io.Writer, kind, format string, r DateRange) error
}

type reportService struct {
	customers CustomerService
	tailors   TailorService
	bills     repository.BillRepository
	jobs      repository.JobRepository
}

func NewReportService(customers CustomerService, tailors TailorService, bills repository.BillRepository, jobs repository.JobRepository) ReportService {
	return &reportService{customers: customers, tailors: tailors, bills: bills, jobs: jobs}
}

// Revenue groups non-cancelled bills by creation day, oldest first.
func (s *reportService) Revenue(ctx context.Context, r DateRange) (*RevenueReport, error) {
	bills, err := s.bills.GetAll(ctx, repository.BillFilter{})
	if err != nil {
		return nil, err
	}
	type day struct {
		amount decimal.Decimal
		count  int
	}
	days := map[string]*day{}
	total := decimal.Zero
	count := 0
	for _, b := range bills {
		if b.Status == string(models.BillCancelled) {
			continue
		}
		d := b.CreatedAt.Format(dateLayout)
		if (r.From != "" && d < r.From) || (r.To != "" && d > r.To) {
			continue
		}
		if days[d] == nil {
			days[d] = &day{}
		}
		amount := decimal.NewFromFloat(b.Total)
		days[d].amount = days[d].amount.Add(amount)
		days[d].count++
		total = total.Add(amount)
		count++
	}

	out := &RevenueReport{RevenueData: make([]RevenuePoint, 0, len(days)), TotalBills: count}
	for d, v := range days {
		out.RevenueData = append(out.RevenueData, RevenuePoint{
			Date:       d,
			Amount:     v.amount.Round(2).InexactFloat64(),
			BillsCount: v.count,
		})
	}
	sort.Slice(out.RevenueData, func(i, j int) bool { return out.RevenueData[i].Date < out.RevenueData[j].Date })
	out.TotalRevenue = total.Round(2).InexactFloat64()
	return out, nil
}

func (s *reportService) Customers(ctx context.Context) ([]CustomerReport, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.GetAll(ctx, repository.BillFilter{})
	if err != nil {
		return nil, err
	}
	last := map[uint]time.Time{}
	for _, b := range bills {
		if b.Status != string(models.BillCancelled) && b.CreatedAt.After(last[b.CustomerID]) {
			last[b.CustomerID] = b.CreatedAt
		}
	}

	out := make([]CustomerReport, 0, len(customers))
	for _, c := range customers {
		rep := CustomerReport{
			CustomerID:        c.ID,
			Name:              c.Name,
			Phone:             c.Phone,
			TotalOrders:       c.TotalOrders,
			TotalSpent:        c.TotalSpent,
			OutstandingAmount: c.OutstandingBalance,
		}
		if t, ok := last[c.ID]; ok {
			rep.LastOrderDate = t.Format(dateLayout)
		}
		out = append(out, rep)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSpent > out[j].TotalSpent })
	return out, nil
}

func (s *reportService) Tailors(ctx context.Context) ([]TailorReport, error) {
	tailors, err := s.tailors.List(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.GetAll(ctx, repository.JobFilter{Light: true})
	if err != nil {
		return nil, err
	}
	byTailor := jobsByTailor(jobs)

	out := make([]TailorReport, 0, len(tailors))
	for _, t := range tailors {
		out = append(out, TailorReport{
			TailorID:          t.ID,
			Name:              t.Name,
			Phone:             t.Phone,
			TotalJobs:         t.TotalJobs,
			CompletedJobs:     t.CompletedJobs,
			PendingJobs:       t.PendingJobs,
			CompletionRate:    t.CompletionRate,
			AvgCompletionTime: avgCompletionDays(byTailor[t.ID]),
		})
	}
	return out, nil
}

// avgCompletionDays averages assigned-to-completed time over finished jobs,
// in days rounded to one decimal.
func avgCompletionDays(jobs []models.Job) float64 {
	var sum time.Duration
	n := 0
	for _, j := range jobs {
		if j.CompletedDate == nil || j.AssignedDate.IsZero() {
			continue
		}
		sum += j.CompletedDate.Sub(j.AssignedDate)
		n++
	}
	if n == 0 {
		return 0
	}
	days := sum.Hours() / 24 / float64(n)
	return math.Round(days*10) / 10
}

// Outstanding lists customers owing money, largest debt first. Overdue days
// count from the oldest past due date among unpaid bills.
func (s *reportService) Outstanding(ctx context.Context) ([]OutstandingReport, error) {
	bills, err := s.bills.GetAll(ctx, repository.BillFilter{})
	if err != nil {
		return nil, err
	}
	today := now()
	byCustomer := map[uint]*OutstandingReport{}
	owed := map[uint]decimal.Decimal{}
	lastPaid := map[uint]time.Time{}
	var order []uint

	for _, b := range bills {
		if b.Status == string(models.BillCancelled) {
			continue
		}
		if b.Advance > 0 && b.UpdatedAt.After(lastPaid[b.CustomerID]) {
			lastPaid[b.CustomerID] = b.UpdatedAt
		}
		if b.Balance <= 0 {
			continue
		}
		rep, ok := byCustomer[b.CustomerID]
		if !ok {
			rep = &OutstandingReport{CustomerID: b.CustomerID, CustomerName: b.CustomerName, Phone: b.CustomerPhone}
			byCustomer[b.CustomerID] = rep
			order = append(order, b.CustomerID)
		}
		owed[b.CustomerID] = owed[b.CustomerID].Add(decimal.NewFromFloat(b.Balance))
		if d := overdueDays(b.DueDate, today); d > rep.OverdueDays {
			rep.OverdueDays = d
		}
	}

	out := make([]OutstandingReport, 0, len(order))
	for _, id := range order {
		rep := byCustomer[id]
		rep.OutstandingAmount = owed[id].Round(2).InexactFloat64()
		if t, ok := lastPaid[id]; ok {
			rep.LastPaymentDate = t.Format(dateLayout)
		}
		out = append(out, *rep)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OutstandingAmount > out[j].OutstandingAmount })
	return out, nil
}

func overdueDays(due string, today time.Time) int {
	if due == "" {
		return 0
	}
	d, err := time.ParseInLocation(dateLayout, due, today.Location())
	if err != nil {
		return 0
	}
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if !start.After(d) {
		return 0
	}
	return int(start.Sub(d).Hours() / 24)
}

// Export renders one report kind as a csv or xlsx file.
func (s *reportService) Export(ctx context.Context, w io.Writer, kind, format string, r DateRange) error {
	if format != export.FormatCSV && format != export.FormatXLSX {
		return fmt.Errorf("%w: %s", export.ErrUnsupportedFormat, format)
	}
	t, err := s.table(ctx, kind, r)
	if err != nil {
		return err
	}
	return export.Write(w, format, t)
}

func (s *reportService) table(ctx context.Context, kind string, r DateRange) (export.Table, error) {
	switch kind {
	case "revenue":
		rep, err := s.Revenue(ctx, r)
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{Name: "Revenue", Header: []string{"Date", "Amount", "Bills"}}
		for _, p := range rep.RevenueData {
			t.Rows = append(t.Rows, []any{p.Date, p.Amount, p.BillsCount})
		}
		t.Summary = [][]any{{"Total Revenue", rep.TotalRevenue}, {"Total Bills", rep.TotalBills}}
		return t, nil

	case "customers":
		reps, err := s.Customers(ctx)
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{Name: "Customers", Header: []string{"Name", "Phone", "Orders", "Total Spent", "Outstanding", "Last Order"}}
		for _, c := range reps {
			t.Rows = append(t.Rows, []any{c.Name, c.Phone, c.TotalOrders, c.TotalSpent, c.OutstandingAmount, c.LastOrderDate})
		}
		t.Summary = [][]any{{"Total Customers", len(reps)}}
		return t, nil

	case "tailors":
		reps, err := s.Tailors(ctx)
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{Name: "Tailors", Header: []string{"Name", "Phone", "Total Jobs", "Completed", "Pending", "Completion Rate", "Avg Days"}}
		for _, p := range reps {
			t.Rows = append(t.Rows, []any{p.Name, p.Phone, p.TotalJobs, p.CompletedJobs, p.PendingJobs, p.CompletionRate, p.AvgCompletionTime})
		}
		t.Summary = [][]any{{"Total Tailors", len(reps)}}
		return t, nil

	case "outstanding":
		reps, err := s.Outstanding(ctx)
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{Name: "Outstanding", Header: []string{"Customer", "Phone", "Outstanding", "Overdue Days", "Last Payment"}}
		sum := decimal.Zero
		for _, o := range reps {
			t.Rows = append(t.Rows, []any{o.CustomerName, o.Phone, o.OutstandingAmount, o.OverdueDays, o.LastPaymentDate})
			sum = sum.Add(decimal.NewFromFloat(o.OutstandingAmount))
		}
		t.Summary = [][]any{{"Total Outstanding", sum.Round(2).InexactFloat64()}}
		return t, nil
	}
	return export.Table{}, fmt.Errorf("%w: unknown report %q", ErrInvalidInput, kind)
}
