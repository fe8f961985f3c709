package handler

import (
	"github.com/bitfantasy/nimo-pms/internal/pms/service"
	"github.com/gin-gonic/gin"
)

// CatalogHandler 类型目录处理器
type CatalogHandler struct {
	svc *service.CatalogService
}

// NewCatalogHandler 创建类型目录处理器
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ListRoomTypes 房间类型列表
func (h *CatalogHandler) ListRoomTypes(c *gin.Context) {
	types, err := h.svc.ListRoomTypes(c.Request.Context())
	if err != nil {
		InternalError(c, "list room types failed")
		return
	}
	Success(c, types)
}

// ListSpaceTypes 空间类型列表
func (h *CatalogHandler) ListSpaceTypes(c *gin.Context) {
	types, err := h.svc.ListSpaceTypes(c.Request.Context())
	if err != nil {
		InternalError(c, "list space types failed")
		return
	}
	Success(c, types)
}

// ListHallTypes 活动厅类型列表
func (h *CatalogHandler) ListHallTypes(c *gin.Context) {
	types, err := h.svc.ListHallTypes(c.Request.Context())
	if err != nil {
		InternalError(c, "list hall types failed")
		return
	}
	Success(c, types)
}

// ListUtilityTypes 计费项目列表
func (h *CatalogHandler) ListUtilityTypes(c *gin.Context) {
	types, err := h.svc.ListUtilityTypes(c.Request.Context())
	if err != nil {
		InternalError(c, "list utility types failed")
		return
	}
	Success(c, types)
}
