package entity

import "time"

// 单元类型
const (
	UnitTypeRoom  = "ROOM"
	UnitTypeSpace = "SPACE"
	UnitTypeHall  = "HALL"
)

// 单元状态
const (
	UnitStatusVacant      = "vacant"
	UnitStatusOccupied    = "occupied"
	UnitStatusMaintenance = "maintenance"
)

// 单元图片数量上限
const MaxUnitImages = 5

// Unit 可租赁单元（房间 / 灵活空间 / 活动厅）
// RoomTypeID / SpaceTypeID / HallTypeID 三者按 UnitType 恰好填一个；
// UnitType 为 SPACE 时 HasMeter 恒为 false
type Unit struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	UnitNumber  string    `json:"unit_number" gorm:"size:16;not null;index:idx_units_level_number,unique"`
	LevelID     string    `json:"level_id" gorm:"size:32;not null;index:idx_units_level_number,unique"`
	UnitType    string    `json:"unit_type" gorm:"size:16;not null"`
	RoomTypeID  *string   `json:"room_type_id,omitempty" gorm:"size:32"`
	SpaceTypeID *string   `json:"space_type_id,omitempty" gorm:"size:32"`
	HallTypeID  *string   `json:"hall_type_id,omitempty" gorm:"size:32"`
	UnitSpace   float64   `json:"unit_space" gorm:"type:numeric(10,2);not null"`
	RentalFee   float64   `json:"rental_fee" gorm:"type:numeric(12,2);not null"`
	HasMeter    bool      `json:"has_meter" gorm:"not null;default:false"`
	Status      string    `json:"status" gorm:"size:16;not null;default:vacant"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Level     *Level        `json:"level,omitempty" gorm:"foreignKey:LevelID"`
	RoomType  *RoomType     `json:"room_type,omitempty" gorm:"foreignKey:RoomTypeID"`
	SpaceType *SpaceType    `json:"space_type,omitempty" gorm:"foreignKey:SpaceTypeID"`
	HallType  *HallType     `json:"hall_type,omitempty" gorm:"foreignKey:HallTypeID"`
	Utilities []UnitUtility `json:"utilities,omitempty" gorm:"foreignKey:UnitID"`
	Images    []UnitImage   `json:"images,omitempty" gorm:"foreignKey:UnitID"`
}

func (Unit) TableName() string {
	return "units"
}

// TypeRefID 返回当前类型对应的外键
func (u *Unit) TypeRefID() string {
	switch u.UnitType {
	case UnitTypeRoom:
		if u.RoomTypeID != nil {
			return *u.RoomTypeID
		}
	case UnitTypeSpace:
		if u.SpaceTypeID != nil {
			return *u.SpaceTypeID
		}
	case UnitTypeHall:
		if u.HallTypeID != nil {
			return *u.HallTypeID
		}
	}
	return ""
}

// UnitUtility 单元 × 计费项目关联（集合语义，唯一索引兜底去重）
type UnitUtility struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	UnitID        string    `json:"unit_id" gorm:"size:32;not null;index:idx_unit_utility,unique"`
	UtilityTypeID string    `json:"utility_type_id" gorm:"size:32;not null;index:idx_unit_utility,unique"`
	CreatedAt     time.Time `json:"created_at"`

	UtilityType *UtilityType `json:"utility_type,omitempty" gorm:"foreignKey:UtilityTypeID"`
}

func (UnitUtility) TableName() string {
	return "unit_utilities"
}

// UnitImage 单元图片，SortOrder 保持展示顺序
type UnitImage struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	UnitID    string    `json:"unit_id" gorm:"size:32;not null;index"`
	URL       string    `json:"url" gorm:"size:512;not null"`
	ObjectKey string    `json:"object_key" gorm:"size:256;not null"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (UnitImage) TableName() string {
	return "unit_images"
}
