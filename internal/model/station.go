package model

import "time"

// Region is a fixed symbolic enumeration of the territories a station (or a
// regional manager) can be assigned to.
type Region string

const (
	RegionCentral Region = "CENTRAL"
	RegionNorth   Region = "NORTH"
	RegionSouth   Region = "SOUTH"
	RegionEast    Region = "EAST"
	RegionWest    Region = "WEST"
)

// Station is the identity root of the aggregate. Settings, Control, Programs,
// Machines and Agents all hang off it and are cascade-deleted with it.
type Station struct {
	ID          uint    `gorm:"primaryKey"`
	Name        *string `gorm:"size:128"`
	Serial      string  `gorm:"uniqueIndex;size:64;not null"`
	IsActive    bool    `gorm:"not null"`
	IsProtected bool    `gorm:"not null"`
	// Encrypted WiFi credentials blob, opaque to the backend.
	HashedWifi string `gorm:"size:512"`
	Region     Region `gorm:"size:32;not null"`
	Comment    string `gorm:"size:512"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Associations
	Settings StationSettings  `gorm:"constraint:OnDelete:CASCADE"`
	Control  StationControl   `gorm:"constraint:OnDelete:CASCADE"`
	Programs []StationProgram `gorm:"constraint:OnDelete:CASCADE"`
	Machines []WashingMachine `gorm:"constraint:OnDelete:CASCADE"`
	Agents   []WashingAgent   `gorm:"constraint:OnDelete:CASCADE"`
}

// StationSettings is the 1:1 power configuration of a station.
type StationSettings struct {
	StationID    uint `gorm:"primaryKey"`
	StationPower bool `gorm:"not null"`
	TehPower     bool `gorm:"not null"`
	UpdatedAt    time.Time
}

// LaundryStation binds a station to its LAUNDRY-role owner. A station has at
// most one owner at a time; a user may own many stations.
type LaundryStation struct {
	ID        uint `gorm:"primaryKey"`
	StationID uint `gorm:"uniqueIndex;not null"`
	UserID    uint `gorm:"index;not null"`
	CreatedAt time.Time

	Station Station `gorm:"constraint:OnDelete:CASCADE"`
	User    User    `gorm:"constraint:OnDelete:CASCADE"`
}
