package entity

import "time"

// 合同状态
const (
	ContractStatusDraft      = "draft"
	ContractStatusActive     = "active"
	ContractStatusExpired    = "expired"
	ContractStatusTerminated = "terminated"
)

// Contract 租赁合同（单元 × 租户）
type Contract struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	ContractNo  string     `json:"contract_no" gorm:"size:32;not null;uniqueIndex"`
	UnitID      string     `json:"unit_id" gorm:"size:32;not null;index"`
	TenantID    string     `json:"tenant_id" gorm:"size:32;not null;index"`
	StartDate   time.Time  `json:"start_date" gorm:"not null"`
	EndDate     time.Time  `json:"end_date" gorm:"not null"`
	MonthlyRent float64    `json:"monthly_rent" gorm:"type:numeric(12,2);not null"`
	Deposit     float64    `json:"deposit" gorm:"type:numeric(12,2);default:0"`
	Status      string     `json:"status" gorm:"size:16;not null;default:draft"`
	SignedBy    string     `json:"signed_by,omitempty" gorm:"size:32"`
	SignedAt    *time.Time `json:"signed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Unit   *Unit   `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

func (Contract) TableName() string {
	return "contracts"
}

// ActiveOn 合同在指定日期是否生效
func (c *Contract) ActiveOn(day time.Time) bool {
	if c.Status != ContractStatusActive {
		return false
	}
	return !day.Before(c.StartDate) && !day.After(c.EndDate)
}
