package client

import "context"

// RoomType 房间类型记录
type RoomType struct {
	ID       string `json:"id"`
	TypeName string `json:"type_name"`
}

// SpaceType 空间类型记录
type SpaceType struct {
	ID       string `json:"id"`
	TypeName string `json:"type_name"`
}

// HallType 活动厅类型记录
type HallType struct {
	ID       string `json:"id"`
	TypeName string `json:"type_name"`
	Capacity int    `json:"capacity"`
}

// UtilityType 计费项目记录
type UtilityType struct {
	ID          string  `json:"id"`
	TypeName    string  `json:"type_name"`
	UnitPrice   float64 `json:"unit_price"`
	BillingUnit string  `json:"billing_unit,omitempty"`
}

// ListRoomTypes GET /api/v1/room-types
func (c *Client) ListRoomTypes(ctx context.Context) ([]RoomType, error) {
	var out []RoomType
	err := c.getJSON(ctx, "/api/v1/room-types", nil, &out)
	return out, err
}

// ListSpaceTypes GET /api/v1/space-types
func (c *Client) ListSpaceTypes(ctx context.Context) ([]SpaceType, error) {
	var out []SpaceType
	err := c.getJSON(ctx, "/api/v1/space-types", nil, &out)
	return out, err
}

// ListHallTypes GET /api/v1/hall-types
func (c *Client) ListHallTypes(ctx context.Context) ([]HallType, error) {
	var out []HallType
	err := c.getJSON(ctx, "/api/v1/hall-types", nil, &out)
	return out, err
}

// ListUtilityTypes GET /api/v1/utility-types
func (c *Client) ListUtilityTypes(ctx context.Context) ([]UtilityType, error) {
	var out []UtilityType
	err := c.getJSON(ctx, "/api/v1/utility-types", nil, &out)
	return out, err
}
