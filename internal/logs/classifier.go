// Package logs classifies incoming station log codes into symbolic actions
// and validates their auxiliary payloads against fixed, strict schemas.
package logs

import (
	"math"

	"laundry-station-backend/internal/apperr"
)

// Actor is the origin of a log entry. Only STATION-originated entries ever
// drive a state transition.
type Actor string

const (
	ActorStation Actor = "STATION"
	ActorServer  Actor = "SERVER"
)

// Scope partitions error codes by audience.
type Scope string

const (
	ScopePublic  Scope = "PUBLIC"
	ScopeService Scope = "SERVICE"
	ScopeAll     Scope = "ALL"
)

// Action is the symbolic action a classified code implies. ActionNone means
// the entry is recorded but causes no state change.
type Action string

const (
	ActionNone                 Action = ""
	ActionPowerOff             Action = "POWER_OFF"
	ActionPowerOn              Action = "POWER_ON"
	ActionHeaterOn             Action = "HEATER_ON"
	ActionHeaterOff            Action = "HEATER_OFF"
	ActionStartManualWorking   Action = "START_MANUAL_WORKING"
	ActionUpdateWorkingProcess Action = "UPDATE_WORKING_PROCESS"
	ActionStartMaintenance     Action = "START_MAINTENANCE"
	ActionEndMaintenance       Action = "END_MAINTENANCE"
	ActionRaiseError           Action = "RAISE_ERROR"
)

// Code is the canonical fixed-point representation of a log code: the wire
// value multiplied by ten, so 3.1 becomes 31. This keeps code equality exact
// and avoids float comparisons anywhere past the ingestion boundary.
type Code int

// ParseCode converts a wire-level numeric code to its fixed-point form.
// Codes must be positive with at most one fractional digit.
func ParseCode(v float64) (Code, error) {
	if v <= 0 {
		return 0, apperr.Validation("log code %v must be positive", v)
	}
	scaled := v * 10
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) > 1e-9 {
		return 0, apperr.Validation("log code %v has more than one fractional digit", v)
	}
	return Code(rounded), nil
}

// Float64 returns the wire-level value of the code.
func (c Code) Float64() float64 {
	return float64(c) / 10
}

// Classification is the result of a code lookup: the implied action and the
// schema its payload must satisfy exactly.
type Classification struct {
	Action Action
	Schema Schema
}

// Plain log code table. Read-only after init.
var logTable = map[Code]Classification{
	10: {Action: ActionPowerOff},
	20: {Action: ActionPowerOn},
	31: {Action: ActionStartManualWorking, Schema: Schema{
		"machine_number": TypeInt,
		"agent_number":   TypeInt,
		"volume":         TypeNumber,
	}},
	32: {Action: ActionUpdateWorkingProcess, Schema: Schema{
		"program_step":   TypeInt,
		"machine_number": TypeInt,
		"machines_queue": TypeIntList,
	}},
	41: {Action: ActionStartMaintenance},
	42: {Action: ActionEndMaintenance},
	51: {Action: ActionHeaterOn},
	52: {Action: ActionHeaterOff},
}

type errorKey struct {
	code  Code
	scope Scope
}

// Error log code table, keyed additionally by scope. Read-only after init.
var errorTable = map[errorKey]Classification{
	{10, ScopePublic}:  {Action: ActionRaiseError, Schema: Schema{"message": TypeString}},
	{20, ScopeService}: {Action: ActionRaiseError, Schema: Schema{"component": TypeString, "message": TypeString}},
	{30, ScopeAll}:     {Action: ActionRaiseError},
}

// Classify resolves a plain log code. Server-originated entries never imply
// an action; unknown codes classify to ActionNone, which is not an error.
func Classify(actor Actor, code Code) Classification {
	if actor != ActorStation {
		return Classification{}
	}
	return logTable[code]
}

// ClassifyError resolves an error log code for the given scope, falling back
// to an ALL-scope entry.
func ClassifyError(actor Actor, code Code, scope Scope) Classification {
	if actor != ActorStation {
		return Classification{}
	}
	if c, ok := errorTable[errorKey{code, scope}]; ok {
		return c
	}
	return errorTable[errorKey{code, ScopeAll}]
}
