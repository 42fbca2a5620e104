package client

import (
	"context"
	"net/http"
	"net/url"
)

type ReportService struct {
	c *Client
}

// DateRange limits a report to [From, To], both YYYY-MM-DD. Empty means open.
type DateRange struct {
	From string
	To   string
}

func (r DateRange) query() string {
	v := url.Values{}
	if r.From != "" {
		v.Set("from", r.From)
	}
	if r.To != "" {
		v.Set("to", r.To)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (s *ReportService) Revenue(ctx context.Context, r DateRange) (*RevenueReport, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out RevenueReport
	if err := s.c.do(ctx, http.MethodGet, "/reports/revenue"+r.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ReportService) Customers(ctx context.Context) ([]CustomerReport, error) {
	return fetchList[CustomerReport](ctx, s.c, "/reports/customers", "customer_reports")
}

func (s *ReportService) Tailors(ctx context.Context) ([]TailorReport, error) {
	return fetchList[TailorReport](ctx, s.c, "/reports/tailors", "tailor_reports")
}

func (s *ReportService) Outstanding(ctx context.Context) ([]OutstandingReport, error) {
	return fetchList[OutstandingReport](ctx, s.c, "/reports/outstanding", "outstanding_reports")
}

// Export downloads a report file. kind is revenue, customers, tailors or
// outstanding; format is csv or xlsx.
func (s *ReportService) Export(ctx context.Context, kind, format string, r DateRange) ([]byte, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var raw []byte
	endpoint := "/reports/export/" + url.PathEscape(kind) + "/" + url.PathEscape(format) + r.query()
	if err := s.c.do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
