package services

import (
	"context"
	"strings"

	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"tailor_shop/pkg/billing"

	"github.com/shopspring/decimal"
)

type CustomerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type CustomerStats struct {
	TotalCustomers           int     `json:"total_customers"`
	CustomersWithOutstanding int     `json:"customers_with_outstanding"`
	TotalOutstandingAmount   float64 `json:"total_outstanding_amount"`
}

type CustomerService interface {
	List(ctx context.Context) ([]models.Customer, error)
	Get(ctx context.Context, id uint) (*models.Customer, error)
	Create(ctx context.Context, in CustomerInput) (*models.Customer, error)
	Update(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*CustomerStats, error)
}

type customerService struct {
	customers repository.CustomerRepository
	bills     repository.BillRepository
	cache     Cache
}

func NewCustomerService(customers repository.CustomerRepository, bills repository.BillRepository, cache Cache) CustomerService {
	return &customerService{customers: customers, bills: bills, cache: cache}
}

func (s *customerService) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.customers.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.GetAll(ctx, repository.BillFilter{})
	if err != nil {
		return nil, err
	}
	totals := customerTotals(bills)
	for i := range customers {
		totals[customers[i].ID].apply(&customers[i])
	}
	return customers, nil
}

func (s *customerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.GetAll(ctx, repository.BillFilter{CustomerID: id})
	if err != nil {
		return nil, err
	}
	customerTotals(bills)[id].apply(customer)
	for i := range bills {
		bills[i].BillNoStr = billing.FormatBillNo(bills[i].BillNo)
	}
	customer.Bills = bills
	return customer, nil
}

func (s *customerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if err := billing.ValidateCustomer(in.Name, in.Phone); err != nil {
		return nil, err
	}
	customer := &models.Customer{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   in.Email,
		Address: in.Address,
		Notes:   in.Notes,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache)
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	if err := billing.ValidateCustomer(in.Name, in.Phone); err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Name = strings.TrimSpace(in.Name)
	customer.Phone = strings.TrimSpace(in.Phone)
	customer.Email = in.Email
	customer.Address = in.Address
	customer.Notes = in.Notes
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, id uint) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return err
	}
	invalidateStats(ctx, s.cache)
	return nil
}

func (s *customerService) Stats(ctx context.Context) (*CustomerStats, error) {
	customers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := &CustomerStats{TotalCustomers: len(customers)}
	outstanding := decimal.Zero
	for _, c := range customers {
		if c.OutstandingBalance > 0 {
			stats.CustomersWithOutstanding++
			outstanding = outstanding.Add(decimal.NewFromFloat(c.OutstandingBalance))
		}
	}
	stats.TotalOutstandingAmount = outstanding.Round(2).InexactFloat64()
	return stats, nil
}

type customerTotal struct {
	orders      int
	spent       decimal.Decimal
	outstanding decimal.Decimal
}

func (t customerTotal) apply(c *models.Customer) {
	c.TotalOrders = t.orders
	c.TotalSpent = t.spent.Round(2).InexactFloat64()
	c.OutstandingBalance = t.outstanding.Round(2).InexactFloat64()
}

// customerTotals sums non-cancelled bills per customer.
func customerTotals(bills []models.Bill) map[uint]customerTotal {
	out := make(map[uint]customerTotal)
	for _, b := range bills {
		if b.Status == string(models.BillCancelled) {
			continue
		}
		t := out[b.CustomerID]
		t.orders++
		t.spent = t.spent.Add(decimal.NewFromFloat(b.Total))
		if b.Balance > 0 {
			t.outstanding = t.outstanding.Add(decimal.NewFromFloat(b.Balance))
		}
		out[b.CustomerID] = t
	}
	return out
}
