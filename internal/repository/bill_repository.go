package repository

import (
	"context"
	"strings"

	"tailor_shop/internal/models"

	"gorm.io/gorm"
)

type BillFilter struct {
	CustomerID uint
	Status     string
}

type BillRepository interface {
	Issue(ctx context.Context, bill *models.Bill, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Bill, error)
	GetAll(ctx context.Context, f BillFilter) ([]models.Bill, error)
	Search(ctx context.Context, query string) ([]models.Bill, error)
	Update(ctx context.Context, bill *models.Bill) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
	WithoutJob(ctx context.Context, limit int) ([]models.Bill, error)
	CountWithJob(ctx context.Context) (int64, error)
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

// billNoLock keys the transaction-scoped advisory lock that serializes
// bill numbering.
const billNoLock = 7401

// Issue numbers and inserts the bill in one transaction. A customer without
// an id is created in the same transaction, so a failed insert leaves no
// orphaned customer behind.
func (r *billRepository) Issue(ctx context.Context, bill *models.Bill, customer *models.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if customer != nil {
			if customer.ID == 0 {
				if err := tx.Create(customer).Error; err != nil {
					return err
				}
			}
			bill.CustomerID = customer.ID
		}
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", billNoLock).Error; err != nil {
			return err
		}
		no, err := nextBillNo(tx)
		if err != nil {
			return err
		}
		bill.BillNo = no
		return tx.Create(bill).Error
	})
}

func (r *billRepository) GetByID(ctx context.Context, id uint) (*models.Bill, error) {
	var bill models.Bill
	if err := r.db.WithContext(ctx).Preload("Items").First(&bill, id).Error; err != nil {
		return nil, translate(err)
	}
	return &bill, nil
}

func (r *billRepository) GetAll(ctx context.Context, f BillFilter) ([]models.Bill, error) {
	var bills []models.Bill
	q := r.db.WithContext(ctx).Preload("Items")
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	err := q.Order("bill_no DESC").Find(&bills).Error
	return bills, err
}

// Search matches the bill number, customer name or phone.
func (r *billRepository) Search(ctx context.Context, query string) ([]models.Bill, error) {
	var bills []models.Bill
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := r.db.WithContext(ctx).Preload("Items").
		Where("CAST(bill_no AS TEXT) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?", like, like, like).
		Order("bill_no DESC").
		Find(&bills).Error
	return bills, err
}

// Update saves the bill and replaces its line items.
func (r *billRepository) Update(ctx context.Context, bill *models.Bill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(bill).Error; err != nil {
			return err
		}
		if err := tx.Where("bill_id = ?", bill.ID).Delete(&models.BillItem{}).Error; err != nil {
			return err
		}
		if len(bill.Items) == 0 {
			return nil
		}
		for i := range bill.Items {
			bill.Items[i].ID = 0
			bill.Items[i].BillID = bill.ID
		}
		return tx.Create(&bill.Items).Error
	})
}

func (r *billRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Bill{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *billRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Bill{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// nextBillNo returns one past the highest bill number ever issued.
func nextBillNo(tx *gorm.DB) (int, error) {
	var highest int
	err := tx.Unscoped().Model(&models.Bill{}).
		Select("COALESCE(MAX(bill_no), 0)").
		Scan(&highest).Error
	if err != nil {
		return 0, err
	}
	return highest + 1, nil
}

// WithoutJob lists bills that have no production job yet, oldest first.
func (r *billRepository) WithoutJob(ctx context.Context, limit int) ([]models.Bill, error) {
	var bills []models.Bill
	q := r.db.WithContext(ctx).Preload("Items").
		Joins("LEFT JOIN jobs ON jobs.bill_id = bills.id AND jobs.deleted_at IS NULL").
		Where("jobs.id IS NULL").
		Order("bills.bill_no ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&bills).Error
	return bills, err
}

func (r *billRepository) CountWithJob(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Bill{}).
		Joins("JOIN jobs ON jobs.bill_id = bills.id AND jobs.deleted_at IS NULL").
		Count(&n).Error
	return n, err
}
