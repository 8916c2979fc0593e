package models

import (
	"time"
)

// Organisational roles a user can hold. The role column is read on every request.
const (
	RoleRecordsOfficer = "recordsOfficer"
	RoleBoardSecretary = "boardSecretary"
	RoleChiefOfficer   = "chiefOfficer"
	RoleBoardChair     = "boardChair"
	RoleBoardCommittee = "boardCommittee"
	RoleHR             = "HR"
	RoleAdmin          = "admin"
	RoleBoard          = "board"
)

// UserRoles lists every role accepted at the HTTP boundary.
var UserRoles = []string{
	RoleRecordsOfficer,
	RoleBoardSecretary,
	RoleChiefOfficer,
	RoleBoardChair,
	RoleBoardCommittee,
	RoleHR,
	RoleAdmin,
	RoleBoard,
}

// IsUserRole reports whether role is one of UserRoles.
func IsUserRole(role string) bool {
	for _, r := range UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	UserID   int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FullName string     `gorm:"column:full_name;size:191" json:"full_name"`
	Email    string     `gorm:"column:email;size:191;uniqueIndex" json:"email"`
	Password string     `gorm:"column:password" json:"-"`
	Role     string     `gorm:"column:role;size:32;index" json:"role"`
	IsActive bool       `gorm:"column:is_active;not null" json:"is_active"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
