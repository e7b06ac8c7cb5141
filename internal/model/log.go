package model

import "time"

// LogContent is the auxiliary data carried by a station log entry, persisted
// as a JSON blob.
type LogContent map[string]any

// Log is one append-only station event record.
type Log struct {
	ID        uint `gorm:"primaryKey"`
	StationID uint `gorm:"index;not null"`
	UserID    *uint
	Code      int        `gorm:"not null"` // fixed-point, value x10
	Content   LogContent `gorm:"serializer:json"`
	CreatedAt time.Time  `gorm:"index;not null"`
}

// ErrorLog is one append-only station error record.
type ErrorLog struct {
	ID        uint       `gorm:"primaryKey"`
	StationID uint       `gorm:"index;not null"`
	Code      int        `gorm:"not null"` // fixed-point, value x10
	Scope     string     `gorm:"size:16;not null"`
	Content   LogContent `gorm:"serializer:json"`
	CreatedAt time.Time  `gorm:"index;not null"`
}

// ChangesLog records one operator-driven aggregate mutation.
type ChangesLog struct {
	ID          uint `gorm:"primaryKey"`
	StationID   uint `gorm:"index;not null"`
	UserID      *uint
	Description string    `gorm:"size:512;not null"`
	CreatedAt   time.Time `gorm:"index;not null"`
}

// MaintenanceLog is one maintenance window. EndedAt is null while the window
// is open and is set exactly once when it closes.
type MaintenanceLog struct {
	ID        uint `gorm:"primaryKey"`
	StationID uint `gorm:"index;not null"`
	UserID    *uint
	StartedAt time.Time `gorm:"not null"`
	EndedAt   *time.Time
}

// PushSubscription holds a browser push subscription of an operator watching
// one or more stations.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Stations []*Station `gorm:"many2many:subscription_station_mapping;"`
}
