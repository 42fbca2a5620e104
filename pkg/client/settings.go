package client

import (
	"context"
	"net/http"

	"tailor_shop/pkg/billing"
)

type SettingsService struct {
	c *Client
}

func (s *SettingsService) UPI(ctx context.Context) (*UPISettings, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out UPISettings
	if err := s.c.do(ctx, http.MethodGet, "/settings/upi", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SettingsService) UpdateUPI(ctx context.Context, in UPISettings) (*UPISettings, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out UPISettings
	if err := s.c.do(ctx, http.MethodPut, "/settings/upi", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SettingsService) Business(ctx context.Context) (*BusinessSettings, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out BusinessSettings
	if err := s.c.do(ctx, http.MethodGet, "/settings/business", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SettingsService) UpdateBusiness(ctx context.Context, in BusinessSettings) (*BusinessSettings, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var out BusinessSettings
	if err := s.c.do(ctx, http.MethodPut, "/settings/business", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PaymentURL returns the UPI link for the bill's balance using the shop's
// UPI settings. It is empty for a settled bill.
func (s *SettingsService) PaymentURL(ctx context.Context, bill *Bill) (string, error) {
	upi, err := s.UPI(ctx)
	if err != nil {
		return "", err
	}
	return billing.UPIPaymentURL(upi.UPIID, upi.BusinessName, bill.Balance), nil
}
