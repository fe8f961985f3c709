package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/bitfantasy/nimo-pms/internal/pms/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UnitHandler 单元处理器
type UnitHandler struct {
	svc    *service.UnitService
	logger *zap.Logger
}

// NewUnitHandler 创建单元处理器
func NewUnitHandler(svc *service.UnitService, logger *zap.Logger) *UnitHandler {
	return &UnitHandler{svc: svc, logger: logger}
}

// List 单元列表
func (h *UnitHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filter := repository.UnitFilter{
		LevelID:    c.Query("level_id"),
		BuildingID: c.Query("building_id"),
		UnitType:   c.Query("unit_type"),
		Status:     c.Query("status"),
		Keyword:    c.Query("keyword"),
	}

	units, total, err := h.svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		InternalError(c, "list units failed")
		return
	}
	Success(c, ListResponse{
		Items:      units,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Get 单元详情
func (h *UnitHandler) Get(c *gin.Context) {
	unit, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "unit not found")
			return
		}
		InternalError(c, "get unit failed")
		return
	}
	Success(c, unit)
}

// CheckNumber 同层编号占用检查
// GET /units/check-number?unit_number=UN-007&level_id=...&exclude_id=...
func (h *UnitHandler) CheckNumber(c *gin.Context) {
	unitNumber := c.Query("unit_number")
	levelID := c.Query("level_id")
	if unitNumber == "" || levelID == "" {
		BadRequest(c, "unit_number and level_id are required")
		return
	}

	exists, err := h.svc.CheckNumber(c.Request.Context(), unitNumber, levelID, c.Query("exclude_id"))
	if err != nil {
		InternalError(c, "check unit number failed")
		return
	}
	Success(c, gin.H{"exists": exists})
}

// Create 创建单元（multipart）
func (h *UnitHandler) Create(c *gin.Context) {
	req, cleanup, err := h.parseSaveRequest(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	defer cleanup()

	unit, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.writeSaveError(c, err)
		return
	}
	Created(c, unit)
}

// Update 更新单元（multipart）。
// 计费项目字段为完整终态集合，图片为增量。
func (h *UnitHandler) Update(c *gin.Context) {
	req, cleanup, err := h.parseSaveRequest(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	defer cleanup()

	unit, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeSaveError(c, err)
		return
	}
	Success(c, unit)
}

// Delete 删除单元
func (h *UnitHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "unit not found")
			return
		}
		InternalError(c, "delete unit failed")
		return
	}
	Success(c, nil)
}

// parseSaveRequest 解析 multipart 表单。
// 字段约定：unitNumber / unitType / hasMeter / levelId / unitSpace / rentalFee，
// roomTypeId|spaceTypeId|hallTypeId 按类型三选一，utilityTypeIds 可重复，
// images 为文件字段（可多个），imagesToRemove 为 JSON 数组字符串。
func (h *UnitHandler) parseSaveRequest(c *gin.Context) (*service.SaveUnitRequest, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, errors.New("multipart form is required")
	}

	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	req := &service.SaveUnitRequest{
		UnitNumber:  value("unitNumber"),
		UnitType:    value("unitType"),
		LevelID:     value("levelId"),
		RoomTypeID:  value("roomTypeId"),
		SpaceTypeID: value("spaceTypeId"),
		HallTypeID:  value("hallTypeId"),
	}

	if req.UnitNumber == "" || req.UnitType == "" || req.LevelID == "" {
		return nil, func() {}, errors.New("unitNumber, unitType and levelId are required")
	}

	if req.UnitSpace, err = strconv.ParseFloat(value("unitSpace"), 64); err != nil {
		return nil, func() {}, errors.New("unitSpace must be a number")
	}
	if req.RentalFee, err = strconv.ParseFloat(value("rentalFee"), 64); err != nil {
		return nil, func() {}, errors.New("rentalFee must be a number")
	}
	if hm := value("hasMeter"); hm != "" {
		if req.HasMeter, err = strconv.ParseBool(hm); err != nil {
			return nil, func() {}, errors.New("hasMeter must be a boolean")
		}
	}

	for _, id := range form.Value["utilityTypeIds"] {
		if id = strings.TrimSpace(id); id != "" {
			req.UtilityTypeIDs = append(req.UtilityTypeIDs, id)
		}
	}

	if raw := value("imagesToRemove"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.ImagesToRemove); err != nil {
			return nil, func() {}, errors.New("imagesToRemove must be a JSON array of urls")
		}
	}

	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return nil, func() {}, errors.New("cannot read uploaded image")
		}
		opened = append(opened, f)
		req.Images = append(req.Images, service.ImageUpload{
			FileName:    fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}

	return req, cleanup, nil
}

// writeSaveError 把业务错误映射到响应
func (h *UnitHandler) writeSaveError(c *gin.Context, err error) {
	var vErr *service.UnitValidationError
	switch {
	case errors.As(err, &vErr):
		UnprocessableEntity(c, vErr.Fields)
	case errors.Is(err, service.ErrDuplicateUnitNumber):
		Conflict(c, "unit number already exists on this level")
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "unit not found")
	default:
		h.logger.Error("save unit failed", zap.Error(err))
		InternalError(c, "save unit failed")
	}
}
