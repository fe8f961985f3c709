package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bitfantasy/nimo-pms/internal/unitform"
)

// UnitImage 单元图片引用
type UnitImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// UnitUtility 单元计费项目关联
type UnitUtility struct {
	UtilityTypeID string `json:"utility_type_id"`
}

// UnitDetail 单元详情
type UnitDetail struct {
	ID          string        `json:"id"`
	UnitNumber  string        `json:"unit_number"`
	LevelID     string        `json:"level_id"`
	UnitType    string        `json:"unit_type"`
	RoomTypeID  *string       `json:"room_type_id,omitempty"`
	SpaceTypeID *string       `json:"space_type_id,omitempty"`
	HallTypeID  *string       `json:"hall_type_id,omitempty"`
	UnitSpace   float64       `json:"unit_space"`
	RentalFee   float64       `json:"rental_fee"`
	HasMeter    bool          `json:"has_meter"`
	Status      string        `json:"status"`
	Utilities   []UnitUtility `json:"utilities,omitempty"`
	Images      []UnitImage   `json:"images,omitempty"`
}

// GetUnit GET /api/v1/units/:id
func (c *Client) GetUnit(ctx context.Context, unitID string) (*UnitDetail, error) {
	var out UnitDetail
	if err := c.getJSON(ctx, "/api/v1/units/"+unitID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Snapshot 把单元详情转换为表单快照
func (d *UnitDetail) Snapshot() unitform.Snapshot {
	snap := unitform.Snapshot{
		UnitID:     d.ID,
		UnitNumber: d.UnitNumber,
		UnitType:   d.UnitType,
		UnitSpace:  d.UnitSpace,
		RentalFee:  d.RentalFee,
		HasMeter:   d.HasMeter,
		LevelID:    d.LevelID,
	}
	if d.RoomTypeID != nil {
		snap.RoomTypeID = *d.RoomTypeID
	}
	if d.SpaceTypeID != nil {
		snap.SpaceTypeID = *d.SpaceTypeID
	}
	if d.HallTypeID != nil {
		snap.HallTypeID = *d.HallTypeID
	}
	for _, ut := range d.Utilities {
		snap.UtilityTypeIDs = append(snap.UtilityTypeIDs, ut.UtilityTypeID)
	}
	for _, img := range d.Images {
		snap.Images = append(snap.Images, unitform.RemoteImage{URL: img.URL})
	}
	return snap
}

// UpdateUnit PUT /api/v1/units/:id，multipart 载荷。
// 标量字段 + 完整终态 utilityTypeIds + 新图片文件 + 可选 imagesToRemove
// （JSON 数组字符串），与后端契约一一对应。
func (c *Client) UpdateUnit(ctx context.Context, unitID string, sub *unitform.Submission) error {
	req := c.http.R().SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"unitNumber": sub.UnitNumber,
			"unitType":   sub.UnitType,
			"hasMeter":   strconv.FormatBool(sub.HasMeter),
			"levelId":    sub.LevelID,
			"unitSpace":  strconv.FormatFloat(sub.UnitSpace, 'f', -1, 64),
			"rentalFee":  strconv.FormatFloat(sub.RentalFee, 'f', -1, 64),
		})

	switch {
	case sub.RoomTypeID != "":
		req.SetMultipartFormData(map[string]string{"roomTypeId": sub.RoomTypeID})
	case sub.SpaceTypeID != "":
		req.SetMultipartFormData(map[string]string{"spaceTypeId": sub.SpaceTypeID})
	case sub.HallTypeID != "":
		req.SetMultipartFormData(map[string]string{"hallTypeId": sub.HallTypeID})
	}

	// 计费项目：重复字段，完整终态
	for _, id := range sub.UtilityTypeIDs {
		req.SetMultipartField("utilityTypeIds", "", "", strings.NewReader(id))
	}
	// 图片：仅增量
	for _, file := range sub.NewImages {
		req.SetFileReader("images", file.FileName, bytes.NewReader(file.Content))
	}
	if len(sub.ImagesToRemove) > 0 {
		removeJSON, err := json.Marshal(sub.ImagesToRemove)
		if err != nil {
			return fmt.Errorf("encode imagesToRemove: %w", err)
		}
		req.SetMultipartFormData(map[string]string{"imagesToRemove": string(removeJSON)})
	}

	resp, err := req.Put("/api/v1/units/" + unitID)
	if err != nil {
		return fmt.Errorf("PUT /api/v1/units/%s: %w", unitID, err)
	}
	if err := decodeEnvelope(resp.Body(), nil); err != nil {
		return fmt.Errorf("PUT /api/v1/units/%s: %w", unitID, err)
	}
	return nil
}

// DownloadOccupancyReport 下载入住率报表（format 为 xlsx 或 pdf）
func (c *Client) DownloadOccupancyReport(ctx context.Context, format string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("format", format).
		Get("/api/v1/reports/occupancy")
	if err != nil {
		return nil, fmt.Errorf("download occupancy report: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("download occupancy report: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// DownloadBillingReport 下载账期账单报表（period 形如 2026-08）
func (c *Client) DownloadBillingReport(ctx context.Context, period, format string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{"period": period, "format": format}).
		Get("/api/v1/reports/billing")
	if err != nil {
		return nil, fmt.Errorf("download billing report: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("download billing report: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
