package handler

import (
	"errors"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/bitfantasy/nimo-pms/internal/pms/service"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler 账单处理器
type InvoiceHandler struct {
	svc *service.BillingService
}

// NewInvoiceHandler 创建账单处理器
func NewInvoiceHandler(svc *service.BillingService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// List 账单列表，period 为 YYYY-MM
func (h *InvoiceHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	var period *time.Time
	if p := c.Query("period"); p != "" {
		t, err := service.ParsePeriod(p)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		period = &t
	}

	invoices, total, err := h.svc.List(c.Request.Context(), c.Query("status"), period, page, pageSize)
	if err != nil {
		InternalError(c, "list invoices failed")
		return
	}
	Success(c, ListResponse{
		Items:      invoices,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Get 账单详情
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "invoice not found")
			return
		}
		InternalError(c, "get invoice failed")
		return
	}
	Success(c, invoice)
}

// GenerateRequest 出账请求
type GenerateRequest struct {
	Period string `json:"period" binding:"required"`
}

// Generate 为指定账期出账
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "period is required (YYYY-MM)")
		return
	}

	period, err := service.ParsePeriod(req.Period)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.GeneratePeriod(c.Request.Context(), period)
	if err != nil {
		InternalError(c, "generate invoices failed")
		return
	}
	Success(c, result)
}

// MarkPaid 登记收款
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	invoice, err := h.svc.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "invoice not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, invoice)
}

// MarkOverdue 批量置逾期
func (h *InvoiceHandler) MarkOverdue(c *gin.Context) {
	affected, err := h.svc.MarkOverdue(c.Request.Context())
	if err != nil {
		InternalError(c, "mark overdue failed")
		return
	}
	Success(c, gin.H{"affected": affected})
}
