package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/bills/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bills/12", nil))
	m.StageUpdated("cutting", "completed")
	m.BillCreated()
	m.Notification(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `tailor_http_requests_total{method="GET",route="/bills/:id",status="204"} 1`)
	assert.Contains(t, body, `tailor_workflow_stage_updates_total{stage="cutting",status="completed"} 1`)
	assert.Contains(t, body, `tailor_bills_created_total 1`)
	assert.Contains(t, body, `tailor_notifications_total{result="failed"} 1`)
}
