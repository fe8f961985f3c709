package entity

import "time"

// 维修工单状态
const (
	MaintenanceStatusOpen       = "open"
	MaintenanceStatusInProgress = "in_progress"
	MaintenanceStatusResolved   = "resolved"
	MaintenanceStatusClosed     = "closed"
)

// MaintenanceRequest 维修工单
type MaintenanceRequest struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	UnitID      string     `json:"unit_id" gorm:"size:32;not null;index"`
	TenantID    *string    `json:"tenant_id,omitempty" gorm:"size:32"`
	Title       string     `json:"title" gorm:"size:128;not null"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority" gorm:"size:16;not null;default:normal"`
	Status      string     `json:"status" gorm:"size:16;not null;default:open"`
	AssignedTo  *string    `json:"assigned_to,omitempty" gorm:"size:32"`
	ReportedBy  string     `json:"reported_by" gorm:"size:32;not null"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Unit   *Unit   `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}
