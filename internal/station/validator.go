// Package station holds the station state machine: the invariant validator
// over control/settings state and the transition engine that applies
// operator- and hardware-triggered actions to the station aggregates.
package station

import (
	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/model"
)

// Validate checks a candidate control/settings pair for internal consistency.
// It is pure and performs no I/O. Checks run in a fixed order: power
// dependency, status exclusivity, program step numeric rule. The first
// violated rule is returned as a typed invariant error.
func Validate(ctl *model.StationControl, set *model.StationSettings, stationActive bool) error {
	// Power dependency chain. A heater left on by an earlier transition is
	// tolerated after the station power drops; ValidateHeaterOn enforces the
	// heater rule at the moment teh_power is raised.
	if set.StationPower && !stationActive {
		return apperr.Invariant("station_power requires an active station")
	}
	if !set.StationPower && !controlEmpty(ctl) {
		return apperr.Invariant("control state requires station_power")
	}

	// Status exclusivity.
	switch {
	case ctl.Status == nil:
		if !controlEmpty(ctl) {
			return apperr.Invariant("null status requires an empty control payload")
		}
	case *ctl.Status == model.StatusWorking:
		if ctl.WashingMachine == nil {
			return apperr.Invariant("WORKING requires a washing machine")
		}
		hasProgram := ctl.ProgramStep != nil
		hasAgents := len(ctl.WashingAgents) > 0
		if hasProgram == hasAgents {
			return apperr.Invariant("WORKING requires exactly one of program_step or washing_agents")
		}
	case *ctl.Status == model.StatusAwaiting,
		*ctl.Status == model.StatusMaintenance,
		*ctl.Status == model.StatusError:
		if ctl.ProgramStep != nil || ctl.WashingMachine != nil || len(ctl.WashingAgents) > 0 {
			return apperr.Invariant("%s requires an empty control payload", *ctl.Status)
		}
	default:
		return apperr.Invariant("unknown status %q", *ctl.Status)
	}

	// Program step numeric rule.
	if ctl.ProgramStep != nil {
		if err := ValidateProgramStep(ctl.ProgramStep.ProgramStep, ctl.ProgramStep.ProgramNumber); err != nil {
			return err
		}
	}
	return nil
}

// ValidateHeaterOn checks the heater power chain at the moment the heater is
// switched on: teh_power may only be raised while station_power is on. A
// power-off leaves a running heater's flag untouched, so this rule binds to
// the raising transition rather than to every persisted state.
func ValidateHeaterOn(set *model.StationSettings) error {
	if set.TehPower && !set.StationPower {
		return apperr.Invariant("teh_power requires station_power")
	}
	return nil
}

// ValidateProgramStep checks the numeric encoding of a program step: the last
// digit is its position within the program (1..5) and the remaining digits
// are the program number.
func ValidateProgramStep(step, programNumber int) error {
	pos := step % 10
	if pos < 1 || pos > 5 {
		return apperr.Invariant("program_step %d must end in 1..5", step)
	}
	if step/10 != programNumber {
		return apperr.Invariant("program_step %d does not belong to program %d", step, programNumber)
	}
	return nil
}

func controlEmpty(ctl *model.StationControl) bool {
	return ctl.Status == nil &&
		ctl.ProgramStep == nil &&
		ctl.WashingMachine == nil &&
		len(ctl.WashingAgents) == 0 &&
		len(ctl.WashingMachinesQueue) == 0
}
