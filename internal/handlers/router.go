package handlers

import (
	"log/slog"

	"tailor_shop/internal/models"

	"github.com/gin-gonic/gin"
)

// RouterOptions carries the optional pieces of the router.
type RouterOptions struct {
	// Middleware runs before every route, e.g. request metrics.
	Middleware []gin.HandlerFunc
	// Metrics serves GET /metrics when set.
	Metrics gin.HandlerFunc
}

func NewRouter(h *APIHandler, log *slog.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))
	router.Use(opts.Middleware...)

	router.GET("/health", h.Health)
	if opts.Metrics != nil {
		router.GET("/metrics", opts.Metrics)
	}
	router.POST("/auth/login", h.Login)
	// an admin session may register privileged accounts
	router.POST("/auth/register", OptionalAuth(h.svc.Auth), h.Register)

	api := router.Group("/", RequireAuth(h.svc.Auth))
	{
		api.GET("/auth/verify", h.Verify)
		api.POST("/auth/logout", h.Logout)

		// tailor sessions only see their own jobs
		api.GET("/jobs", h.ListJobs)
		api.GET("/jobs/:id", h.GetJob)
		api.GET("/jobs/:id/workflow", h.JobWorkflow)
		api.PUT("/jobs/:id/workflow/:stage", h.UpdateWorkflowStage)

		api.GET("/settings/upi", h.GetUPISettings)
		api.GET("/settings/business", h.GetBusinessSettings)
	}

	staff := api.Group("/", RequireRole(models.RoleAdmin, models.RoleBilling))
	{
		staff.GET("/customers", h.ListCustomers)
		staff.POST("/customers", h.CreateCustomer)
		staff.GET("/customers/stats", h.CustomerStats)
		staff.GET("/customers/:id", h.GetCustomer)
		staff.PUT("/customers/:id", h.UpdateCustomer)
		staff.DELETE("/customers/:id", h.DeleteCustomer)

		staff.GET("/bills", h.ListBills)
		staff.POST("/bills", h.CreateBill)
		staff.GET("/bills/stats", h.BillStats)
		staff.GET("/bills/search", h.SearchBills)
		staff.GET("/bills/:id", h.GetBill)
		staff.PUT("/bills/:id", h.UpdateBill)
		staff.PUT("/bills/:id/status", h.UpdateBillStatus)
		staff.DELETE("/bills/:id", h.DeleteBill)

		staff.GET("/tailors", h.ListTailors)
		staff.GET("/tailors/:id", h.GetTailor)
		staff.GET("/tailors/:id/jobs", h.TailorJobs)

		staff.POST("/jobs", h.CreateJob)
		staff.GET("/jobs/stats", h.JobStats)
		staff.PUT("/jobs/:id", h.UpdateJob)
		staff.PUT("/jobs/:id/status", h.UpdateJobStatus)
		staff.DELETE("/jobs/:id", h.DeleteJob)

		staff.GET("/workflow/dashboard", h.WorkflowDashboard)
	}

	admin := api.Group("/", RequireRole(models.RoleAdmin))
	{
		admin.POST("/tailors", h.CreateTailor)
		admin.PUT("/tailors/:id", h.UpdateTailor)
		admin.PUT("/tailors/:id/status", h.UpdateTailorStatus)
		admin.DELETE("/tailors/:id", h.DeleteTailor)

		admin.PUT("/settings/upi", h.UpdateUPISettings)
		admin.PUT("/settings/business", h.UpdateBusinessSettings)

		admin.GET("/reports/revenue", h.RevenueReport)
		admin.GET("/reports/customers", h.CustomerReport)
		admin.GET("/reports/tailors", h.TailorReport)
		admin.GET("/reports/outstanding", h.OutstandingReport)
		admin.GET("/reports/export/:type/:format", h.ExportReport)

		admin.GET("/dashboard/stats", h.DashboardStats)
		admin.POST("/workflow/backfill", h.Backfill)
	}

	return router
}
