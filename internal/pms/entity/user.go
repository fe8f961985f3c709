package entity

import "time"

// 用户角色
const (
	RoleAdmin    = "pms_admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// User 系统用户（运营人员）
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Username     string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Name         string     `json:"name" gorm:"size:64;not null"`
	Email        string     `json:"email,omitempty" gorm:"size:128"`
	Role         string     `json:"role" gorm:"size:32;not null;default:operator"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
