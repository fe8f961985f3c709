package handler

import (
	"errors"

	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/bitfantasy/nimo-pms/internal/pms/service"
	"github.com/gin-gonic/gin"
)

// BuildingHandler 楼宇/楼层处理器
type BuildingHandler struct {
	svc *service.BuildingService
}

// NewBuildingHandler 创建楼宇处理器
func NewBuildingHandler(svc *service.BuildingService) *BuildingHandler {
	return &BuildingHandler{svc: svc}
}

// List 楼宇列表
func (h *BuildingHandler) List(c *gin.Context) {
	buildings, err := h.svc.ListBuildings(c.Request.Context())
	if err != nil {
		InternalError(c, "list buildings failed")
		return
	}
	Success(c, buildings)
}

// Get 楼宇详情
func (h *BuildingHandler) Get(c *gin.Context) {
	building, err := h.svc.GetBuilding(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "building not found")
			return
		}
		InternalError(c, "get building failed")
		return
	}
	Success(c, building)
}

// ListLevels 楼宇下的楼层列表
func (h *BuildingHandler) ListLevels(c *gin.Context) {
	levels, err := h.svc.ListLevels(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "list levels failed")
		return
	}
	Success(c, levels)
}

// GetLevel 楼层详情
func (h *BuildingHandler) GetLevel(c *gin.Context) {
	level, err := h.svc.GetLevel(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "level not found")
			return
		}
		InternalError(c, "get level failed")
		return
	}
	Success(c, level)
}
