package handlers

import (
	"net/http"

	"tailor_shop/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *APIHandler) ListTailors(c *gin.Context) {
	tailors, err := h.svc.Tailors.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tailors": tailors})
}

func (h *APIHandler) GetTailor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tailor, err := h.svc.Tailors.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tailor)
}

func (h *APIHandler) CreateTailor(c *gin.Context) {
	var req services.TailorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	tailor, err := h.svc.Tailors.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tailor)
}

func (h *APIHandler) UpdateTailor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.TailorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	tailor, err := h.svc.Tailors.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tailor)
}

func (h *APIHandler) UpdateTailorStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	tailor, err := h.svc.Tailors.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tailor)
}

func (h *APIHandler) DeleteTailor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Tailors.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tailor deleted"})
}

func (h *APIHandler) TailorJobs(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	jobs, err := h.svc.Tailors.Jobs(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
