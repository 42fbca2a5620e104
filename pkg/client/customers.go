package client

import (
	"context"
	"net/http"
	"net/url"
)

type CustomerService struct {
	c *Client
}

// fetchList GETs endpoint and normalizes the collection found under key.
func fetchList[T any](ctx context.Context, c *Client, endpoint, key string, opts ...requestOption) ([]T, error) {
	if err := c.RequireSession(); err != nil {
		return nil, err
	}
	var raw []byte
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &raw, opts...); err != nil {
		return nil, err
	}
	return normalizeList[T](raw, key)
}

func (s *CustomerService) List(ctx context.Context) ([]Customer, error) {
	return fetchList[Customer](ctx, s.c, "/customers", "customers")
}

func (s *CustomerService) Get(ctx context.Context, id ID) (*Customer, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Customer
	if err := s.c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*Customer, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Customer
	if err := s.c.do(ctx, http.MethodPost, "/customers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CustomerService) Update(ctx context.Context, id ID, in CustomerInput) (*Customer, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out Customer
	if err := s.c.do(ctx, http.MethodPut, "/customers/"+url.PathEscape(id.String()), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CustomerService) Delete(ctx context.Context, id ID) error {
	if err := s.c.RequireSession(); err != nil {
		return err
	}
	return s.c.do(ctx, http.MethodDelete, "/customers/"+url.PathEscape(id.String()), nil, nil)
}

func (s *CustomerService) Stats(ctx context.Context) (*CustomerStats, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out CustomerStats
	if err := s.c.do(ctx, http.MethodGet, "/customers/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
