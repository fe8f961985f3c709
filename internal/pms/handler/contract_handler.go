package handler

import (
	"errors"

	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/bitfantasy/nimo-pms/internal/pms/service"
	"github.com/gin-gonic/gin"
)

// ContractHandler 合同处理器
type ContractHandler struct {
	svc *service.ContractService
}

// NewContractHandler 创建合同处理器
func NewContractHandler(svc *service.ContractService) *ContractHandler {
	return &ContractHandler{svc: svc}
}

// List 合同列表
func (h *ContractHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	contracts, total, err := h.svc.List(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		InternalError(c, "list contracts failed")
		return
	}
	Success(c, ListResponse{
		Items:      contracts,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Get 合同详情
func (h *ContractHandler) Get(c *gin.Context) {
	contract, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "contract not found")
			return
		}
		InternalError(c, "get contract failed")
		return
	}
	Success(c, contract)
}

// Create 新建草稿合同
func (h *ContractHandler) Create(c *gin.Context) {
	var req service.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	contract, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidContractPeriod):
			BadRequest(c, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "unit or tenant not found")
		default:
			InternalError(c, "create contract failed")
		}
		return
	}
	Created(c, contract)
}

// Activate 签署生效
func (h *ContractHandler) Activate(c *gin.Context) {
	contract, err := h.svc.Activate(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnitOccupied):
			Conflict(c, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "contract not found")
		default:
			BadRequest(c, err.Error())
		}
		return
	}
	Success(c, contract)
}

// Terminate 提前终止
func (h *ContractHandler) Terminate(c *gin.Context) {
	contract, err := h.svc.Terminate(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "contract not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, contract)
}
