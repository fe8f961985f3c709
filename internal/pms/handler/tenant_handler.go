package handler

import (
	"errors"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/bitfantasy/nimo-pms/internal/pms/service"
	"github.com/gin-gonic/gin"
)

// TenantHandler 租户处理器
type TenantHandler struct {
	svc *service.TenantService
}

// NewTenantHandler 创建租户处理器
func NewTenantHandler(svc *service.TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

// TenantRequest 租户创建/更新请求
type TenantRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	IDNumber      string `json:"id_number"`
	Notes         string `json:"notes"`
}

// List 租户列表
func (h *TenantHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	tenants, total, err := h.svc.List(c.Request.Context(), c.Query("keyword"), page, pageSize)
	if err != nil {
		InternalError(c, "list tenants failed")
		return
	}
	Success(c, ListResponse{
		Items:      tenants,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Get 租户详情
func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "tenant not found")
			return
		}
		InternalError(c, "get tenant failed")
		return
	}
	Success(c, tenant)
}

// Create 新建租户
func (h *TenantHandler) Create(c *gin.Context) {
	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "name is required")
		return
	}

	tenant := &entity.Tenant{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		IDNumber:      req.IDNumber,
		Status:        "active",
		Notes:         req.Notes,
	}
	if err := h.svc.Create(c.Request.Context(), tenant); err != nil {
		InternalError(c, "create tenant failed")
		return
	}
	Created(c, tenant)
}

// Update 更新租户
func (h *TenantHandler) Update(c *gin.Context) {
	tenant, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "tenant not found")
			return
		}
		InternalError(c, "get tenant failed")
		return
	}

	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "name is required")
		return
	}

	tenant.Name = req.Name
	tenant.ContactPerson = req.ContactPerson
	tenant.Phone = req.Phone
	tenant.Email = req.Email
	tenant.IDNumber = req.IDNumber
	tenant.Notes = req.Notes
	if err := h.svc.Update(c.Request.Context(), tenant); err != nil {
		InternalError(c, "update tenant failed")
		return
	}
	Success(c, tenant)
}
