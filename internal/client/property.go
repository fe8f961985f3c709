package client

import (
	"context"
	"strconv"
)

// Level 楼层记录
type Level struct {
	ID         string `json:"id"`
	BuildingID string `json:"building_id"`
	Name       string `json:"name"`
	LevelNo    int    `json:"level_no"`
	TotalUnits *int   `json:"total_units,omitempty"`
}

// Building 楼宇记录
type Building struct {
	ID                string   `json:"id"`
	Code              string   `json:"code"`
	Name              string   `json:"name"`
	TotalLeasableArea *float64 `json:"total_leasable_area,omitempty"`
}

// UnitSummary 单元列表项（计数/求和用途足够）
type UnitSummary struct {
	ID         string  `json:"id"`
	UnitNumber string  `json:"unit_number"`
	LevelID    string  `json:"level_id"`
	UnitType   string  `json:"unit_type"`
	UnitSpace  float64 `json:"unit_space"`
	RentalFee  float64 `json:"rental_fee"`
	Status     string  `json:"status"`
}

// PageInfo 列表响应里嵌套的分页信息
type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// UnitPage 分页单元列表，与后端 ListResponse 结构一致
type UnitPage struct {
	Items      []UnitSummary `json:"items"`
	Pagination PageInfo      `json:"pagination"`
}

// GetLevel GET /api/v1/levels/:id
func (c *Client) GetLevel(ctx context.Context, levelID string) (*Level, error) {
	var out Level
	if err := c.getJSON(ctx, "/api/v1/levels/"+levelID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBuilding GET /api/v1/buildings/:id
func (c *Client) GetBuilding(ctx context.Context, buildingID string) (*Building, error) {
	var out Building
	if err := c.getJSON(ctx, "/api/v1/buildings/"+buildingID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnitQuery 单元检索条件
type UnitQuery struct {
	LevelID    string
	BuildingID string
	Keyword    string
	ExcludeID  string
	Page       int
	PageSize   int
}

// SearchUnits GET /api/v1/units，按楼层/楼宇检索
func (c *Client) SearchUnits(ctx context.Context, q UnitQuery) (*UnitPage, error) {
	query := map[string]string{}
	if q.LevelID != "" {
		query["level_id"] = q.LevelID
	}
	if q.BuildingID != "" {
		query["building_id"] = q.BuildingID
	}
	if q.Keyword != "" {
		query["keyword"] = q.Keyword
	}
	page, pageSize := q.Page, q.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	query["page"] = strconv.Itoa(page)
	query["page_size"] = strconv.Itoa(pageSize)

	var out UnitPage
	if err := c.getJSON(ctx, "/api/v1/units", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CountUnitsInLevel 统计楼层单元数，excludeID 非空时不计该单元。
// 翻页取全量，单页上限受服务端约束（1000）。
func (c *Client) CountUnitsInLevel(ctx context.Context, levelID, excludeID string) (int, error) {
	count := 0
	err := c.eachUnit(ctx, UnitQuery{LevelID: levelID}, func(u UnitSummary) {
		if u.ID != excludeID {
			count++
		}
	})
	return count, err
}

// UsedAreaInBuilding 统计楼宇已占用面积，excludeID 非空时不计该单元
func (c *Client) UsedAreaInBuilding(ctx context.Context, buildingID, excludeID string) (float64, error) {
	var used float64
	err := c.eachUnit(ctx, UnitQuery{BuildingID: buildingID}, func(u UnitSummary) {
		if u.ID != excludeID {
			used += u.UnitSpace
		}
	})
	return used, err
}

// eachUnit 按条件翻页遍历全部单元
func (c *Client) eachUnit(ctx context.Context, q UnitQuery, visit func(UnitSummary)) error {
	q.PageSize = 1000
	for page := 1; ; page++ {
		q.Page = page
		res, err := c.SearchUnits(ctx, q)
		if err != nil {
			return err
		}
		for _, u := range res.Items {
			visit(u)
		}
		if len(res.Items) == 0 || page >= res.Pagination.TotalPages {
			return nil
		}
	}
}

// CheckUnitNumber GET /api/v1/units/check-number → {exists}
func (c *Client) CheckUnitNumber(ctx context.Context, unitNumber, levelID, excludeID string) (bool, error) {
	query := map[string]string{
		"unit_number": unitNumber,
		"level_id":    levelID,
	}
	if excludeID != "" {
		query["exclude_id"] = excludeID
	}
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.getJSON(ctx, "/api/v1/units/check-number", query, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}
