package model

import "time"

// Role of a user. Roles form a total order for permission purposes:
// SYSADMIN > MANAGER > REGION_MANAGER > INSTALLER > LAUNDRY.
type Role string

const (
	RoleSysadmin      Role = "SYSADMIN"
	RoleManager       Role = "MANAGER"
	RoleRegionManager Role = "REGION_MANAGER"
	RoleInstaller     Role = "INSTALLER"
	RoleLaundry       Role = "LAUNDRY"
)

var roleRank = map[Role]int{
	RoleLaundry:       1,
	RoleInstaller:     2,
	RoleRegionManager: 3,
	RoleManager:       4,
	RoleSysadmin:      5,
}

// Rank returns the position of the role in the permission order, higher
// meaning more privileged. Unknown roles rank below LAUNDRY.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether the role is at least as privileged as min.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}

// User is an operator account. Region is meaningful only for
// REGION_MANAGER and INSTALLER roles.
type User struct {
	ID           uint    `gorm:"primaryKey"`
	Email        string  `gorm:"uniqueIndex;size:256;not null"`
	Name         string  `gorm:"size:128"`
	Role         Role    `gorm:"size:32;not null"`
	Disabled     bool    `gorm:"not null"`
	Region       *Region `gorm:"size:32"`
	PasswordHash string  `gorm:"size:128;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
