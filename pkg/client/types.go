package client

import (
	"bytes"
	"encoding/json"
	"strconv"

	"tailor_shop/pkg/workflow"
)

// ID accepts both numeric and string identifiers from the API.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(string(b))
	return nil
}

// MarshalJSON writes numeric ids as numbers so the server can bind them.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseUint(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

type Customer struct {
	ID                 ID      `json:"id"`
	Name               string  `json:"name"`
	Phone              string  `json:"phone"`
	Email              string  `json:"email,omitempty"`
	Address            string  `json:"address,omitempty"`
	Notes              string  `json:"notes,omitempty"`
	TotalOrders        int     `json:"total_orders"`
	TotalSpent         float64 `json:"total_spent"`
	OutstandingBalance float64 `json:"outstanding_balance"`
	CreatedAt          string  `json:"created_at,omitempty"`
	UpdatedAt          string  `json:"updated_at,omitempty"`
	Bills              []Bill  `json:"bills,omitempty"`
}

type CustomerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type CustomerStats struct {
	TotalCustomers           int     `json:"total_customers"`
	CustomersWithOutstanding int     `json:"customers_with_outstanding"`
	TotalOutstandingAmount   float64 `json:"total_outstanding_amount"`
}

type BillItem struct {
	Type         string            `json:"type"`
	Description  string            `json:"description"`
	Quantity     int               `json:"quantity"`
	Price        float64           `json:"price"`
	Measurements map[string]string `json:"measurements"`
	Total        float64           `json:"total"`
}

type Bill struct {
	ID                  ID         `json:"id,omitempty"`
	BillNo              int        `json:"bill_no,omitempty"`
	BillNoStr           string     `json:"bill_no_str,omitempty"`
	CustomerID          ID         `json:"customer_id"`
	CustomerName        string     `json:"customer_name"`
	CustomerPhone       string     `json:"customer_phone,omitempty"`
	CustomerAddress     string     `json:"customer_address,omitempty"`
	Items               []BillItem `json:"items"`
	Subtotal            float64    `json:"subtotal"`
	Discount            float64    `json:"discount"`
	Total               float64    `json:"total"`
	Advance             float64    `json:"advance"`
	Balance             float64    `json:"balance"`
	DueDate             string     `json:"due_date,omitempty"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	DesignImages        []string   `json:"design_images,omitempty"`
	Drawings            []string   `json:"drawings,omitempty"`
	Signature           string     `json:"signature,omitempty"`
	Status              string     `json:"status,omitempty"`
	CreatedAt           string     `json:"created_at,omitempty"`
}

type BillStats struct {
	TotalBills       int            `json:"total_bills"`
	TotalRevenue     float64        `json:"total_revenue"`
	TotalAdvance     float64        `json:"total_advance"`
	TotalOutstanding float64        `json:"total_outstanding"`
	ByStatus         map[string]int `json:"by_status"`
}

type Tailor struct {
	ID             ID      `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email,omitempty"`
	Specialization string  `json:"specialization,omitempty"`
	Experience     string  `json:"experience,omitempty"`
	Status         string  `json:"status,omitempty"`
	TotalJobs      int     `json:"total_jobs"`
	CompletedJobs  int     `json:"completed_jobs"`
	PendingJobs    int     `json:"pending_jobs"`
	CompletionRate float64 `json:"completion_rate"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

type TailorInput struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Experience     string `json:"experience,omitempty"`
	Status         string `json:"status,omitempty"`
}

type JobItem struct {
	Type         string            `json:"type"`
	Description  string            `json:"description"`
	Quantity     int               `json:"quantity,omitempty"`
	Measurements map[string]string `json:"measurements"`
}

type Job struct {
	ID                 ID                    `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description,omitempty"`
	BillID             ID                    `json:"bill_id,omitempty"`
	TailorID           ID                    `json:"tailor_id,omitempty"`
	TailorName         string                `json:"tailor_name,omitempty"`
	TailorPhone        string                `json:"tailor_phone,omitempty"`
	CustomerName       string                `json:"customer_name,omitempty"`
	CustomerPhone      string                `json:"customer_phone,omitempty"`
	Items              []JobItem             `json:"items,omitempty"`
	Instructions       string                `json:"instructions,omitempty"`
	Priority           string                `json:"priority,omitempty"`
	Status             string                `json:"status"`
	CurrentStage       workflow.Stage        `json:"current_stage"`
	ProgressPercentage float64               `json:"progress_percentage"`
	WorkflowStages     []workflow.StageEntry `json:"workflow_stages"`
	AssignedDate       string                `json:"assigned_date,omitempty"`
	DueDate            string                `json:"due_date,omitempty"`
	CompletedDate      string                `json:"completed_date,omitempty"`
	UpdatedAt          string                `json:"updated_at,omitempty"`
	Bill               *Bill                 `json:"bill,omitempty"`
}

type JobInput struct {
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	BillID        ID        `json:"bill_id,omitempty"`
	TailorID      ID        `json:"tailor_id,omitempty"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	Items         []JobItem `json:"items,omitempty"`
	Instructions  string    `json:"instructions,omitempty"`
	Priority      string    `json:"priority,omitempty"`
	DueDate       string    `json:"due_date,omitempty"`
}

type JobStats struct {
	TotalJobs int             `json:"total_jobs"`
	ByStatus  map[string]int  `json:"by_status"`
	ByStage   workflow.Counts `json:"by_stage"`
}

type DashboardStats struct {
	TotalCustomers int     `json:"total_customers"`
	TotalBills     int     `json:"total_bills"`
	TotalTailors   int     `json:"total_tailors"`
	TotalJobs      int     `json:"total_jobs"`
	PendingJobs    int     `json:"pending_jobs"`
	TodayBills     int     `json:"today_bills"`
	TotalRevenue   float64 `json:"total_revenue"`
}

type StageUpdate struct {
	JobID        ID             `json:"id"`
	Title        string         `json:"title"`
	CurrentStage workflow.Stage `json:"current_stage"`
	UpdatedAt    string         `json:"updated_at"`
}

type OverdueJob struct {
	JobID        ID             `json:"id"`
	Title        string         `json:"title"`
	DueDate      string         `json:"due_date"`
	CurrentStage workflow.Stage `json:"current_stage"`
	Priority     string         `json:"priority"`
}

type WorkflowDashboard struct {
	StageStats      workflow.Counts `json:"stage_stats"`
	RecentUpdates   []StageUpdate   `json:"recent_updates"`
	OverdueJobs     []OverdueJob    `json:"overdue_jobs"`
	TotalActiveJobs int             `json:"total_active_jobs"`
}

type UPISettings struct {
	UPIID        string `json:"upi_id"`
	BusinessName string `json:"business_name"`
}

type BusinessSettings struct {
	BusinessName string `json:"business_name"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
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
	CustomerID        ID      `json:"customer_id"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	TotalOrders       int     `json:"total_orders"`
	TotalSpent        float64 `json:"total_spent"`
	OutstandingAmount float64 `json:"outstanding_amount"`
	LastOrderDate     string  `json:"last_order_date,omitempty"`
}

type TailorReport struct {
	TailorID          ID      `json:"tailor_id"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	TotalJobs         int     `json:"total_jobs"`
	CompletedJobs     int     `json:"completed_jobs"`
	PendingJobs       int     `json:"pending_jobs"`
	CompletionRate    float64 `json:"completion_rate"`
	AvgCompletionTime float64 `json:"avg_completion_time"`
}

type OutstandingReport struct {
	CustomerID        ID      `json:"customer_id"`
	CustomerName      string  `json:"customer_name"`
	Phone             string  `json:"phone"`
	OutstandingAmount float64 `json:"outstanding_amount"`
	OverdueDays       int     `json:"overdue_days"`
	LastPaymentDate   string  `json:"last_payment_date,omitempty"`
}

// normalizeList accepts a bare array or an object holding the array under
// key, "data" or "results". Items carrying only "_id" get it copied to "id".
func normalizeList[T any](data []byte, key string) ([]T, error) {
	raw := findList(data, key)
	if raw == nil {
		return []T{}, nil
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := item["id"]; !ok {
			if legacy, ok := item["_id"]; ok {
				item["id"] = legacy
			}
		}
		buf, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(buf, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func findList(data []byte, key string) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return trimmed
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil
	}
	for _, k := range []string{key, "data", "results"} {
		if v, ok := obj[k]; ok && isArray(v) {
			return v
		}
	}
	return nil
}

func isArray(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}
