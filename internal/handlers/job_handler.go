package handlers

import (
	"net/http"
	"strconv"

	"tailor_shop/internal/models"
	"tailor_shop/internal/repository"
	"tailor_shop/internal/services"
	"tailor_shop/pkg/workflow"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) ListJobs(c *gin.Context) {
	light, _ := strconv.ParseBool(c.Query("light"))
	f := repository.JobFilter{
		Status:   c.Query("status"),
		TailorID: queryUint(c, "tailor_id"),
		Stage:    c.Query("stage"),
		Light:    light,
	}
	if tailorID, scoped := tailorScope(c); scoped {
		if tailorID == 0 {
			c.JSON(http.StatusOK, gin.H{"jobs": []models.Job{}})
			return
		}
		f.TailorID = tailorID
	}
	jobs, err := h.svc.Jobs.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *APIHandler) GetJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	job, err := h.svc.Jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ownsJob(c, job) {
		h.fail(c, services.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ownsJob is false when a tailor session looks at another tailor's job.
func ownsJob(c *gin.Context, job *models.Job) bool {
	tailorID, scoped := tailorScope(c)
	if !scoped {
		return true
	}
	return tailorID != 0 && job.TailorID != nil && *job.TailorID == tailorID
}

// guardJob answers 404 and returns false when the session may not touch the
// job.
func (h *APIHandler) guardJob(c *gin.Context, id uint) bool {
	if _, scoped := tailorScope(c); !scoped {
		return true
	}
	job, err := h.svc.Jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return false
	}
	if !ownsJob(c, job) {
		h.fail(c, services.ErrNotFound)
		return false
	}
	return true
}

func (h *APIHandler) CreateJob(c *gin.Context) {
	var req services.JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	job, err := h.svc.Jobs.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *APIHandler) UpdateJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	job, err := h.svc.Jobs.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *APIHandler) UpdateJobStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	job, err := h.svc.Jobs.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *APIHandler) UpdateWorkflowStage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req workflow.Update
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if !h.guardJob(c, id) {
		return
	}
	job, err := h.svc.Jobs.UpdateStage(c.Request.Context(), id, c.Param("stage"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *APIHandler) JobWorkflow(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if !h.guardJob(c, id) {
		return
	}
	view, err := h.svc.Jobs.Workflow(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *APIHandler) DeleteJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Jobs.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

func (h *APIHandler) JobStats(c *gin.Context) {
	stats, err := h.svc.Jobs.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *APIHandler) WorkflowDashboard(c *gin.Context) {
	dash, err := h.svc.Dashboard.Workflow(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *APIHandler) Backfill(c *gin.Context) {
	var req struct {
		DryRun bool `json:"dry_run"`
		Limit  int  `json:"limit"`
	}
	// an empty body runs with defaults
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
	}
	res, err := h.svc.Backfill.Run(c.Request.Context(), req.DryRun, req.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
