package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"tailor_shop/internal/export"
	"tailor_shop/internal/models"
	"tailor_shop/internal/redis"
	"tailor_shop/internal/services"
	"tailor_shop/pkg/billing"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Services groups everything the HTTP layer calls into.
type Services struct {
	Auth      services.AuthService
	Customers services.CustomerService
	Bills     services.BillService
	Tailors   services.TailorService
	Jobs      services.JobService
	Settings  services.SettingsService
	Reports   services.ReportService
	Dashboard services.DashboardService
	Backfill  services.BackfillService
}

type APIHandler struct {
	svc Services
	log *slog.Logger
}

func NewAPIHandler(svc Services, log *slog.Logger) *APIHandler {
	return &APIHandler{svc: svc, log: log}
}

// fail maps a service error to its status code.
func (h *APIHandler) fail(c *gin.Context, err error) {
	var verr *billing.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidStage),
		errors.Is(err, export.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, services.ErrOutOfOrder),
		errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func currentSession(c *gin.Context) *redis.SessionData {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*redis.SessionData); ok {
			return s
		}
	}
	return nil
}

func currentUserID(c *gin.Context) uint {
	if s := currentSession(c); s != nil {
		return s.UserID
	}
	return 0
}

// tailorScope reports whether the session is a tailor's and, if so, the
// tailor it is limited to. An unlinked tailor account gets id 0.
func tailorScope(c *gin.Context) (uint, bool) {
	s := currentSession(c)
	if s == nil || s.Role != string(models.RoleTailor) {
		return 0, false
	}
	if s.TailorID == nil {
		return 0, true
	}
	return *s.TailorID, true
}

func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "star-tailors-api"})
}
