package billing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Line is the priced part of a bill item.
type Line struct {
	Quantity int
	Rate     float64
}

// Totals are the money fields stored on a bill.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
	Advance  float64 `json:"advance"`
	Balance  float64 `json:"balance"`
}

// LineTotal is quantity times rate, rounded to paise.
func LineTotal(quantity int, rate float64) float64 {
	return decimal.NewFromInt(int64(quantity)).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		InexactFloat64()
}

// Compute derives the bill totals:
//
//	total   = subtotal - discount
//	balance = total - advance
func Compute(lines []Line, discount, advance float64) Totals {
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(decimal.NewFromInt(int64(l.Quantity)).Mul(decimal.NewFromFloat(l.Rate)))
	}
	return FromSubtotal(sub.InexactFloat64(), discount, advance)
}

// FromSubtotal applies discount and advance to an already summed subtotal.
func FromSubtotal(subtotal, discount, advance float64) Totals {
	sub := decimal.NewFromFloat(subtotal).Round(2)
	disc := decimal.NewFromFloat(discount).Round(2)
	adv := decimal.NewFromFloat(advance).Round(2)

	total := sub.Sub(disc)
	balance := total.Sub(adv)

	return Totals{
		Subtotal: sub.InexactFloat64(),
		Discount: disc.InexactFloat64(),
		Total:    total.InexactFloat64(),
		Advance:  adv.InexactFloat64(),
		Balance:  balance.InexactFloat64(),
	}
}

// FormatBillNo renders a bill number the way it is printed on receipts.
func FormatBillNo(n int) string {
	return fmt.Sprintf("%03d", n)
}

// DefaultMerchant is the payee name used when the business has none set.
const DefaultMerchant = "STAR TAILORS"

// UPIPaymentURL builds the upi://pay link a customer scans to pay amount to
// upiID. It is empty when there is no UPI id or nothing left to pay.
func UPIPaymentURL(upiID, business string, amount float64) string {
	upiID = strings.TrimSpace(upiID)
	due := decimal.NewFromFloat(amount).Round(2)
	if upiID == "" || !due.IsPositive() {
		return ""
	}
	if strings.TrimSpace(business) == "" {
		business = DefaultMerchant
	}
	q := url.Values{}
	q.Set("pa", upiID)
	q.Set("pn", strings.TrimSpace(business))
	q.Set("am", due.StringFixed(2))
	q.Set("cu", "INR")
	return (&url.URL{Scheme: "upi", Host: "pay", RawQuery: q.Encode()}).String()
}

// ValidationError is a form error shown to the user before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateCustomer requires a name and a phone number.
func ValidateCustomer(name, phone string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" {
		field := "name"
		if strings.TrimSpace(name) != "" {
			field = "phone"
		}
		return &ValidationError{Field: field, Message: "Name and phone are required fields for customer."}
	}
	return nil
}

// ValidateItems requires at least one line item.
func ValidateItems(n int) error {
	if n == 0 {
		return &ValidationError{Field: "items", Message: "Please add at least one item to the bill."}
	}
	return nil
}
