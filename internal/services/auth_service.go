package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tailor_shop/internal/models"
	"tailor_shop/internal/redis"
	"tailor_shop/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type SessionCache interface {
	SetSession(ctx context.Context, token string, data *redis.SessionData, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, token string) error
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TailorID *uint  `json:"tailor_id"`
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	// Register creates an account. actor is the caller's session, nil for
	// self-registration.
	Register(ctx context.Context, in RegisterInput, actor *redis.SessionData) (*models.User, error)
	Authenticate(ctx context.Context, token string) (*redis.SessionData, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, session *redis.SessionData) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User, password string) error
}

type authService struct {
	users    repository.UserRepository
	sessions SessionCache
	ttl      time.Duration
}

func NewAuthService(users repository.UserRepository, sessions SessionCache, ttl time.Duration) AuthService {
	return &authService{users: users, sessions: sessions, ttl: ttl}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	session := &redis.SessionData{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TailorID:  user.TailorID,
		CreatedAt: now(),
	}
	if err := s.sessions.SetSession(ctx, token, session, s.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}
	return token, user, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput, actor *redis.SessionData) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: username and a password of at least 6 characters are required", ErrInvalidInput)
	}
	role := models.UserRole(in.Role)
	if in.Role == "" {
		role = models.RoleBilling
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}
	// only an admin may create admins or link an account to a tailor
	if !IsAdmin(actor) && (role == models.RoleAdmin || in.TailorID != nil) {
		return nil, fmt.Errorf("%w: admin accounts and tailor links need an admin session", ErrForbidden)
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Username: in.Username,
		Name:     in.Name,
		Email:    in.Email,
		Role:     string(role),
		TailorID: in.TailorID,
		IsActive: true,
	}
	if err := s.CreateUser(ctx, user, in.Password); err != nil {
		return nil, err
	}
	return user, nil
}

func IsAdmin(session *redis.SessionData) bool {
	return session != nil && session.Role == string(models.RoleAdmin)
}

func (s *authService) CreateUser(ctx context.Context, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Create(ctx, user)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*redis.SessionData, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

func (s *authService) CurrentUser(ctx context.Context, session *redis.SessionData) (*models.User, error) {
	return s.users.GetByID(ctx, session.UserID)
}
