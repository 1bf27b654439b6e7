package models

import "time"

// RoleName identifies a dashboard role.
type RoleName string

const (
	RoleAdmin      RoleName = "admin"
	RoleManager    RoleName = "manager"
	RoleTeamMember RoleName = "team_member"
)

type Role struct {
	ID   uint64   `gorm:"primarykey" json:"id"`
	Name RoleName `gorm:"type:varchar(30);uniqueIndex;not null" json:"name"`
}

type UserRole struct {
	UserID     uint64    `gorm:"primarykey" json:"user_id"`
	RoleID     uint64    `gorm:"primarykey" json:"role_id"`
	AssignedAt time.Time `json:"assigned_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// HasAnyRole reports whether roles contains at least one of required.
func HasAnyRole(roles []RoleName, required ...RoleName) bool {
	for _, have := range roles {
		for _, want := range required {
			if have == want {
				return true
			}
		}
	}
	return false
}
