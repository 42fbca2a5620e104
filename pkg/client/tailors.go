package client

import (
	"context"
	"net/http"
	"net/url"
)

type TailorService struct {
	c *Client
}

func (s *TailorService) List(ctx context.Context) ([]Tailor, error) {
	return fetchList[Tailor](ctx, s.c, "/tailors", "tailors")
}

func (s *TailorService) Get(ctx context.Context, id ID) (*Tailor, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Tailor
	if err := s.c.do(ctx, http.MethodGet, "/tailors/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TailorService) Create(ctx context.Context, in TailorInput) (*Tailor, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Tailor
	if err := s.c.do(ctx, http.MethodPost, "/tailors", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TailorService) Update(ctx context.Context, id ID, in TailorInput) (*Tailor, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Tailor
	if err := s.c.do(ctx, http.MethodPut, "/tailors/"+url.PathEscape(id.String()), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *TailorService) Delete(ctx context.Context, id ID) error {
	if err := s.c.RequireSession(); err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodDelete, "/tailors/"+url.PathEscape(id.String()), nil, nil)
}

// Jobs lists the jobs assigned to one tailor.
func (s *TailorService) Jobs(ctx context.Context, id ID) ([]Job, error) {
	return fetchList[Job](ctx, s.c, "/tailors/"+url.PathEscape(id.String())+"/jobs", "jobs")
}

// UpdateStatus switches a tailor between active, inactive and on_leave.
func (s *TailorService) UpdateStatus(ctx context.Context, id ID, status string) (*Tailor, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Tailor
	body := map[string]string{"status": status}
	if err := s.c.do(ctx, http.MethodPut, "/tailors/"+url.PathEscape(id.String())+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
