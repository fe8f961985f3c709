package entity

import "time"

// Tenant 租户（承租方）
type Tenant struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	Name          string    `json:"name" gorm:"size:128;not null"`
	ContactPerson string    `json:"contact_person,omitempty" gorm:"size:64"`
	Phone         string    `json:"phone,omitempty" gorm:"size:32"`
	Email         string    `json:"email,omitempty" gorm:"size:128"`
	IDNumber      string    `json:"id_number,omitempty" gorm:"size:64"`
	Status        string    `json:"status" gorm:"size:16;not null;default:active"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Contracts []Contract `json:"contracts,omitempty" gorm:"foreignKey:TenantID"`
}

func (Tenant) TableName() string {
	return "tenants"
}
