package model

import "time"

// WashingMachine is one machine of a station's inventory, keyed by
// (station_id, machine_number).
type WashingMachine struct {
	StationID     uint    `gorm:"primaryKey;autoIncrement:false"`
	MachineNumber int     `gorm:"primaryKey;autoIncrement:false"`
	Volume        float64 `gorm:"not null"`
	IsActive      bool    `gorm:"not null"`
	TrackLength   float64 `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WashingAgent is one dosing agent of a station's inventory, keyed by
// (station_id, agent_number).
type WashingAgent struct {
	StationID   uint    `gorm:"primaryKey;autoIncrement:false"`
	AgentNumber int     `gorm:"primaryKey;autoIncrement:false"`
	Volume      float64 `gorm:"not null"`
	Rollback    bool    `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StationProgram is one washing program step, keyed by
// (station_id, program_step). The last digit of ProgramStep encodes the
// position within the program (1..5) and ProgramStep/10 is the program number.
type StationProgram struct {
	ID            uint          `gorm:"primaryKey"`
	StationID     uint          `gorm:"uniqueIndex:idx_station_program_step;not null"`
	ProgramStep   int           `gorm:"uniqueIndex:idx_station_program_step;not null"`
	ProgramNumber int           `gorm:"not null"`
	Name          string        `gorm:"size:128"`
	WashingAgents []AgentDosage `gorm:"serializer:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
