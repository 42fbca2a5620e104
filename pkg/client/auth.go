package client

import (
	"context"
	"net/http"
)

type AuthService struct {
	c *Client
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type authResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

func (r authResponse) token() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// Login exchanges credentials for a token and stores the session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*User, error) {
	var resp authResponse
	if err := s.c.do(ctx, http.MethodPost, "/auth/login", Credentials{Username: username, Password: password}, &resp, public()); err != nil {
		return nil, err
	}
	if resp.token() == "" {
		return nil, ErrNoToken
	}
	if err := s.c.store.Save(resp.token(), resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (s *AuthService) Register(ctx context.Context, r Registration) (*User, error) {
	var resp authResponse
	if err := s.c.do(ctx, http.MethodPost, "/auth/register", r, &resp, public()); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Verify asks the server whether the stored token is still valid.
func (s *AuthService) Verify(ctx context.Context) (*User, error) {
	if err := s.c.RequireSession(); err != nil {
		return nil, err
	}
	var resp struct {
		Valid bool  `json:"valid"`
		User  *User `json:"user"`
	}
	if err := s.c.do(ctx, http.MethodGet, "/auth/verify", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout only forgets the local session.
func (s *AuthService) Logout() {
	s.c.store.Clear()
}

func (s *AuthService) CurrentUser() *User {
	return s.c.store.User()
}

func (s *AuthService) IsAuthenticated() bool {
	return s.c.store.Token() != ""
}
