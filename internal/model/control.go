package model

import "time"

// StationStatus is the operational state of a station.
type StationStatus string

const (
	StatusAwaiting    StationStatus = "AWAITING"
	StatusWorking     StationStatus = "WORKING"
	StatusMaintenance StationStatus = "MAINTENANCE"
	StatusError       StationStatus = "ERROR"
)

// AgentDosage is one (agent number, volume) pair inside a control snapshot or
// a program definition.
type AgentDosage struct {
	AgentNumber int     `json:"agent_number"`
	Volume      float64 `json:"volume"`
}

// MachineSnapshot is the embedded copy of the machine currently in use.
type MachineSnapshot struct {
	MachineNumber int     `json:"machine_number"`
	Volume        float64 `json:"volume"`
	IsActive      bool    `json:"is_active"`
	TrackLength   float64 `json:"track_length"`
}

// ProgramSnapshot is the embedded copy of the program step currently running.
type ProgramSnapshot struct {
	ProgramStep   int           `json:"program_step"`
	ProgramNumber int           `json:"program_number"`
	Name          string        `json:"name"`
	WashingAgents []AgentDosage `json:"washing_agents"`
}

// StationControl is the live operational state of a station, 1:1 with it.
// Snapshots are stored as JSON blobs so that a running process survives
// later edits to the program/machine inventories.
type StationControl struct {
	StationID            uint             `gorm:"primaryKey"`
	Status               *StationStatus   `gorm:"size:16"`
	ProgramStep          *ProgramSnapshot `gorm:"serializer:json"`
	WashingMachine       *MachineSnapshot `gorm:"serializer:json"`
	WashingAgents        []AgentDosage    `gorm:"serializer:json"`
	WashingMachinesQueue []int            `gorm:"serializer:json"`
	UpdatedAt            time.Time
}

// Snapshot builds the control-side copy of a machine inventory row.
func (m WashingMachine) Snapshot() *MachineSnapshot {
	return &MachineSnapshot{
		MachineNumber: m.MachineNumber,
		Volume:        m.Volume,
		IsActive:      m.IsActive,
		TrackLength:   m.TrackLength,
	}
}

// Snapshot builds the control-side copy of a program inventory row.
func (p StationProgram) Snapshot() *ProgramSnapshot {
	agents := make([]AgentDosage, len(p.WashingAgents))
	copy(agents, p.WashingAgents)
	return &ProgramSnapshot{
		ProgramStep:   p.ProgramStep,
		ProgramNumber: p.ProgramNumber,
		Name:          p.Name,
		WashingAgents: agents,
	}
}
