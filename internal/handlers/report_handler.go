package handlers

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"time"

	"tailor_shop/internal/export"
	"tailor_shop/internal/models"
	"tailor_shop/internal/services"

	"github.com/gin-gonic/gin"
)

func dateRange(c *gin.Context) services.DateRange {
	return services.DateRange{From: c.Query("from"), To: c.Query("to")}
}

func (h *APIHandler) RevenueReport(c *gin.Context) {
	rep, err := h.svc.Reports.Revenue(c.Request.Context(), dateRange(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *APIHandler) CustomerReport(c *gin.Context) {
	reps, err := h.svc.Reports.Customers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer_reports": reps})
}

func (h *APIHandler) TailorReport(c *gin.Context) {
	reps, err := h.svc.Reports.Tailors(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tailor_reports": reps})
}

func (h *APIHandler) OutstandingReport(c *gin.Context) {
	reps, err := h.svc.Reports.Outstanding(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outstanding_reports": reps})
}

// ExportReport streams a report file built in memory so a failed build can
// still answer with a JSON error.
func (h *APIHandler) ExportReport(c *gin.Context) {
	kind, format := c.Param("type"), c.Param("format")
	suffix := "all"
	if to := c.Query("to"); to != "" {
		if _, err := time.Parse("2006-01-02", to); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
			return
		}
		suffix = to
	}
	var buf bytes.Buffer
	if err := h.svc.Reports.Export(c.Request.Context(), &buf, kind, format, dateRange(c)); err != nil {
		h.fail(c, err)
		return
	}
	filename := fmt.Sprintf("%s_report_%s.%s", kind, suffix, format)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

func (h *APIHandler) DashboardStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *APIHandler) GetUPISettings(c *gin.Context) {
	upi, err := h.svc.Settings.UPI(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, upi)
}

func (h *APIHandler) UpdateUPISettings(c *gin.Context) {
	var req models.UPISettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	upi, err := h.svc.Settings.UpdateUPI(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, upi)
}

func (h *APIHandler) GetBusinessSettings(c *gin.Context) {
	biz, err := h.svc.Settings.Business(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, biz)
}

func (h *APIHandler) UpdateBusinessSettings(c *gin.Context) {
	var req models.BusinessSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	biz, err := h.svc.Settings.UpdateBusiness(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, biz)
}
