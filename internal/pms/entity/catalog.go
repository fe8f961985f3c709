package entity

import "time"

// RoomType 房间类型（如标准间、套间）
type RoomType struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	TypeName    string    `json:"type_name" gorm:"size:64;not null;uniqueIndex"`
	Description string    `json:"description,omitempty"`
	BaseFee     float64   `json:"base_fee" gorm:"type:numeric(12,2);default:0"`
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (RoomType) TableName() string {
	return "room_types"
}

// SpaceType 灵活空间类型（如仓储、摊位），此类单元不装表计费
type SpaceType struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	TypeName    string    `json:"type_name" gorm:"size:64;not null;uniqueIndex"`
	Description string    `json:"description,omitempty"`
	BaseFee     float64   `json:"base_fee" gorm:"type:numeric(12,2);default:0"`
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SpaceType) TableName() string {
	return "space_types"
}

// HallType 活动厅类型（如宴会厅、会议厅）
type HallType struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	TypeName    string    `json:"type_name" gorm:"size:64;not null;uniqueIndex"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity" gorm:"default:0"`
	BaseFee     float64   `json:"base_fee" gorm:"type:numeric(12,2);default:0"`
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (HallType) TableName() string {
	return "hall_types"
}

// UtilityType 计费项目（水、电、物业费等）
type UtilityType struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	TypeName    string    `json:"type_name" gorm:"size:64;not null;uniqueIndex"`
	UnitPrice   float64   `json:"unit_price" gorm:"type:numeric(12,4);default:0"`
	BillingUnit string    `json:"billing_unit,omitempty" gorm:"size:16"`
	Status      string    `json:"status" gorm:"size:16;not null;default:active"`
	SortOrder   int       `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (UtilityType) TableName() string {
	return "utility_types"
}
