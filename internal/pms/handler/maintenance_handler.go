package handler

import (
	"errors"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/bitfantasy/nimo-pms/internal/pms/service"
	"github.com/gin-gonic/gin"
)

// MaintenanceHandler 维修工单处理器
type MaintenanceHandler struct {
	svc *service.MaintenanceService
}

// NewMaintenanceHandler 创建维修工单处理器
func NewMaintenanceHandler(svc *service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc}
}

// CreateMaintenanceRequest 报修请求
type CreateMaintenanceRequest struct {
	UnitID      string  `json:"unit_id" binding:"required"`
	TenantID    *string `json:"tenant_id"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
}

// List 工单列表
func (h *MaintenanceHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	requests, total, err := h.svc.List(c.Request.Context(), c.Query("unit_id"), c.Query("status"), page, pageSize)
	if err != nil {
		InternalError(c, "list maintenance requests failed")
		return
	}
	Success(c, ListResponse{
		Items:      requests,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Get 工单详情
func (h *MaintenanceHandler) Get(c *gin.Context) {
	req, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "maintenance request not found")
			return
		}
		InternalError(c, "get maintenance request failed")
		return
	}
	Success(c, req)
}

// Create 报修
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var body CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "unit_id and title are required")
		return
	}

	req := &entity.MaintenanceRequest{
		UnitID:      body.UnitID,
		TenantID:    body.TenantID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		ReportedBy:  GetUserID(c),
	}
	if err := h.svc.Create(c.Request.Context(), req); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "unit not found")
			return
		}
		InternalError(c, "create maintenance request failed")
		return
	}
	Created(c, req)
}

// UpdateStatusRequest 状态流转请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 推进工单状态
func (h *MaintenanceHandler) UpdateStatus(c *gin.Context) {
	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "status is required")
		return
	}

	switch body.Status {
	case entity.MaintenanceStatusOpen, entity.MaintenanceStatusInProgress,
		entity.MaintenanceStatusResolved, entity.MaintenanceStatusClosed:
	default:
		BadRequest(c, "invalid status")
		return
	}

	req, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "maintenance request not found")
			return
		}
		InternalError(c, "update status failed")
		return
	}
	Success(c, req)
}
