package entity

import "time"

// Building 楼宇
// TotalLeasableArea 为可租赁面积上限（平方米），为空表示不限制
type Building struct {
	ID                string     `json:"id" gorm:"primaryKey;size:32"`
	Code              string     `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name              string     `json:"name" gorm:"size:128;not null"`
	Address           string     `json:"address,omitempty" gorm:"size:256"`
	TotalLeasableArea *float64   `json:"total_leasable_area,omitempty" gorm:"type:numeric(12,2)"`
	Status            string     `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Relations
	Levels []Level `json:"levels,omitempty" gorm:"foreignKey:BuildingID"`
}

func (Building) TableName() string {
	return "buildings"
}

// Level 楼层
// TotalUnits 为该层最大单元数量，为空表示不限制
type Level struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	BuildingID string    `json:"building_id" gorm:"size:32;not null;index"`
	Name       string    `json:"name" gorm:"size:64;not null"`
	LevelNo    int       `json:"level_no" gorm:"not null"`
	TotalUnits *int      `json:"total_units,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Building *Building `json:"building,omitempty" gorm:"foreignKey:BuildingID"`
}

func (Level) TableName() string {
	return "levels"
}
