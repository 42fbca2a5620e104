package handlers

import (
	"net/http"

	"tailor_shop/internal/repository"
	"tailor_shop/internal/services"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *APIHandler) ListBills(c *gin.Context) {
	f := repository.BillFilter{CustomerID: queryUint(c, "customer_id"), Status: c.Query("status")}
	bills, err := h.svc.Bills.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (h *APIHandler) SearchBills(c *gin.Context) {
	bills, err := h.svc.Bills.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (h *APIHandler) GetBill(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	bill, err := h.svc.Bills.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *APIHandler) CreateBill(c *gin.Context) {
	var req services.BillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	bill, err := h.svc.Bills.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

func (h *APIHandler) UpdateBill(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.BillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	bill, err := h.svc.Bills.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *APIHandler) UpdateBillStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	bill, err := h.svc.Bills.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (h *APIHandler) DeleteBill(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Bills.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted"})
}

func (h *APIHandler) BillStats(c *gin.Context) {
	stats, err := h.svc.Bills.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
