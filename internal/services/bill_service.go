package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tailor_shop/internal/events"
	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"tailor_shop/pkg/billing"

	"github.com/shopspring/decimal"
)

type BillItemInput struct {
	Type         string            `json:"type"`
	Description  string            `json:"description"`
	Quantity     int               `json:"quantity"`
	Price        float64           `json:"price"`
	Measurements map[string]string `json:"measurements"`
}

type BillInput struct {
	CustomerID          uint            `json:"customer_id"`
	CustomerName        string          `json:"customer_name"`
	CustomerPhone       string          `json:"customer_phone"`
	CustomerAddress     string          `json:"customer_address"`
	Items               []BillItemInput `json:"items"`
	Discount            float64         `json:"discount"`
	Advance             float64         `json:"advance"`
	DueDate             string          `json:"due_date"`
	SpecialInstructions string          `json:"special_instructions"`
	DesignImages        []string        `json:"design_images"`
	Drawings            []string        `json:"drawings"`
	Signature           string          `json:"signature"`
	Status              string          `json:"status"`
}

type BillStats struct {
	TotalBills       int            `json:"total_bills"`
	TotalRevenue     float64        `json:"total_revenue"`
	TotalAdvance     float64        `json:"total_advance"`
	TotalOutstanding float64        `json:"total_outstanding"`
	ByStatus         map[string]int `json:"by_status"`
}

type BillService interface {
	List(ctx context.Context, f repository.BillFilter) ([]models.Bill, error)
	Search(ctx context.Context, query string) ([]models.Bill, error)
	Get(ctx context.Context, id uint) (*models.Bill, error)
	Create(ctx context.Context, in BillInput) (*models.Bill, error)
	Update(ctx context.Context, id uint, in BillInput) (*models.Bill, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Bill, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*BillStats, error)
}

type billService struct {
	bills     repository.BillRepository
	customers repository.CustomerRepository
	jobs      JobService
	cache     Cache
	publisher events.Publisher
	recorder  Recorder
	log       *slog.Logger
}

func NewBillService(
	bills repository.BillRepository,
	customers repository.CustomerRepository,
	jobs JobService,
	cache Cache,
	publisher events.Publisher,
	recorder Recorder,
	log *slog.Logger,
) BillService {
	if publisher == nil {
		publisher = events.Noop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &billService{
		bills:     bills,
		customers: customers,
		jobs:      jobs,
		cache:     cache,
		publisher: publisher,
		recorder:  recorder,
		log:       log,
	}
}

func (s *billService) List(ctx context.Context, f repository.BillFilter) ([]models.Bill, error) {
	bills, err := s.bills.GetAll(ctx, f)
	if err != nil {
		return nil, err
	}
	return withBillNo(bills), nil
}

func (s *billService) Search(ctx context.Context, query string) ([]models.Bill, error) {
	if strings.TrimSpace(query) == "" {
		return s.List(ctx, repository.BillFilter{})
	}
	bills, err := s.bills.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return withBillNo(bills), nil
}

func (s *billService) Get(ctx context.Context, id uint) (*models.Bill, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bill.BillNoStr = billing.FormatBillNo(bill.BillNo)
	return bill, nil
}

func (s *billService) Create(ctx context.Context, in BillInput) (*models.Bill, error) {
	customer, err := s.resolveCustomer(ctx, &in)
	if err != nil {
		return nil, err
	}

	bill := &models.Bill{CustomerID: customer.ID, Status: string(models.BillPending)}
	if err := fillBill(bill, in); err != nil {
		return nil, err
	}

	if err := s.bills.Issue(ctx, bill, customer); err != nil {
		return nil, fmt.Errorf("failed to issue bill: %w", err)
	}
	bill.BillNoStr = billing.FormatBillNo(bill.BillNo)
	s.recorder.BillCreated()
	invalidateStats(ctx, s.cache)

	// a failed job can be recreated later by the workflow backfill
	if _, err := s.jobs.CreateForBill(ctx, bill); err != nil {
		s.log.Warn("failed to create job for bill", "bill_id", bill.ID, "err", err)
	}
	if err := s.publisher.Publish(ctx, events.BillCreated, bill); err != nil {
		s.log.Warn("failed to publish bill event", "bill_id", bill.ID, "err", err)
	}
	return bill, nil
}

// resolveCustomer loads the named customer or prepares a new one. A new
// customer is stored together with the bill.
func (s *billService) resolveCustomer(ctx context.Context, in *BillInput) (*models.Customer, error) {
	if in.CustomerID != 0 {
		customer, err := s.customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(in.CustomerName) == "" {
			in.CustomerName = customer.Name
		}
		if strings.TrimSpace(in.CustomerPhone) == "" {
			in.CustomerPhone = customer.Phone
		}
		if in.CustomerAddress == "" {
			in.CustomerAddress = customer.Address
		}
		return customer, nil
	}

	if err := billing.ValidateCustomer(in.CustomerName, in.CustomerPhone); err != nil {
		return nil, err
	}
	return &models.Customer{
		Name:    strings.TrimSpace(in.CustomerName),
		Phone:   strings.TrimSpace(in.CustomerPhone),
		Address: in.CustomerAddress,
	}, nil
}

// fillBill copies the editable fields and recomputes every total.
func fillBill(bill *models.Bill, in BillInput) error {
	if err := billing.ValidateCustomer(in.CustomerName, in.CustomerPhone); err != nil {
		return err
	}
	if err := billing.ValidateItems(len(in.Items)); err != nil {
		return err
	}
	if in.Discount < 0 || in.Advance < 0 {
		return fmt.Errorf("%w: discount and advance cannot be negative", ErrInvalidInput)
	}
	if in.Status != "" {
		if !models.BillStatus(in.Status).Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
		}
		bill.Status = in.Status
	}

	lines := make([]billing.Line, 0, len(in.Items))
	items := make([]models.BillItem, 0, len(in.Items))
	for i, it := range in.Items {
		if it.Quantity <= 0 || it.Price < 0 {
			return fmt.Errorf("%w: item %d needs a positive quantity and a non-negative price", ErrInvalidInput, i+1)
		}
		lines = append(lines, billing.Line{Quantity: it.Quantity, Rate: it.Price})
		items = append(items, models.BillItem{
			Type:         it.Type,
			Description:  it.Description,
			Quantity:     it.Quantity,
			Price:        it.Price,
			Measurements: models.JSONMap(it.Measurements),
			Total:        billing.LineTotal(it.Quantity, it.Price),
		})
	}
	totals := billing.Compute(lines, in.Discount, in.Advance)

	bill.CustomerName = strings.TrimSpace(in.CustomerName)
	bill.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	bill.CustomerAddress = in.CustomerAddress
	bill.Items = items
	bill.Subtotal = totals.Subtotal
	bill.Discount = totals.Discount
	bill.Total = totals.Total
	bill.Advance = totals.Advance
	bill.Balance = totals.Balance
	bill.DueDate = in.DueDate
	bill.SpecialInstructions = in.SpecialInstructions
	bill.DesignImages = in.DesignImages
	bill.Drawings = in.Drawings
	bill.Signature = in.Signature
	return nil
}

func (s *billService) Update(ctx context.Context, id uint, in BillInput) (*models.Bill, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CustomerID != 0 && in.CustomerID != bill.CustomerID {
		if _, err := s.customers.GetByID(ctx, in.CustomerID); err != nil {
			return nil, err
		}
		bill.CustomerID = in.CustomerID
	}
	if err := fillBill(bill, in); err != nil {
		return nil, err
	}
	if err := s.bills.Update(ctx, bill); err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache)
	bill.BillNoStr = billing.FormatBillNo(bill.BillNo)
	return bill, nil
}

// UpdateStatus marks a bill paid, pending or cancelled. A paid bill carries
// no balance.
func (s *billService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Bill, error) {
	if !models.BillStatus(status).Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bill.Status = status
	if status == string(models.BillPaid) {
		t := billing.FromSubtotal(bill.Subtotal, bill.Discount, bill.Total)
		bill.Advance = t.Advance
		bill.Balance = t.Balance
	}
	if err := s.bills.Update(ctx, bill); err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache)
	bill.BillNoStr = billing.FormatBillNo(bill.BillNo)
	return bill, nil
}

func (s *billService) Delete(ctx context.Context, id uint) error {
	if err := s.bills.Delete(ctx, id); err != nil {
		return err
	}
	invalidateStats(ctx, s.cache)
	return nil
}

func (s *billService) Stats(ctx context.Context) (*BillStats, error) {
	bills, err := s.bills.GetAll(ctx, repository.BillFilter{})
	if err != nil {
		return nil, err
	}
	stats := &BillStats{TotalBills: len(bills), ByStatus: map[string]int{}}
	revenue, advance, outstanding := decimal.Zero, decimal.Zero, decimal.Zero
	for _, b := range bills {
		stats.ByStatus[b.Status]++
		if b.Status == string(models.BillCancelled) {
			continue
		}
		revenue = revenue.Add(decimal.NewFromFloat(b.Total))
		advance = advance.Add(decimal.NewFromFloat(b.Advance))
		outstanding = outstanding.Add(decimal.NewFromFloat(b.Balance))
	}
	stats.TotalRevenue = revenue.Round(2).InexactFloat64()
	stats.TotalAdvance = advance.Round(2).InexactFloat64()
	stats.TotalOutstanding = outstanding.Round(2).InexactFloat64()
	return stats, nil
}

func withBillNo(bills []models.Bill) []models.Bill {
	for i := range bills {
		bills[i].BillNoStr = billing.FormatBillNo(bills[i].BillNo)
	}
	return bills
}
