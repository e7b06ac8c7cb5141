package station

import (
	"context"

	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/logs"
)

// ApplyAction executes the transition a classified station-reported action
// implies. The payload has already been validated against the action's
// schema by the classifier; the switch is exhaustive over the action set.
func (e *Engine) ApplyAction(ctx context.Context, stationID uint, action logs.Action, data logs.Payload) error {
	var err error
	switch action {
	case logs.ActionNone:
		// Unknown code: recorded upstream, no state change.
	case logs.ActionPowerOff:
		_, err = e.PowerOff(ctx, stationID, nil)
	case logs.ActionPowerOn:
		_, err = e.PowerOn(ctx, stationID, nil)
	case logs.ActionHeaterOn:
		_, err = e.SetHeater(ctx, stationID, true, nil)
	case logs.ActionHeaterOff:
		_, err = e.SetHeater(ctx, stationID, false, nil)
	case logs.ActionStartManualWorking:
		_, err = e.StartManualWorking(ctx, stationID,
			data.Int("machine_number"), data.Int("agent_number"), data.Float("volume"), nil)
	case logs.ActionUpdateWorkingProcess:
		_, err = e.UpdateWorkingProcess(ctx, stationID,
			data.Int("program_step"), data.Int("machine_number"), data.IntSlice("machines_queue"), nil)
	case logs.ActionStartMaintenance:
		_, err = e.StartMaintenance(ctx, stationID, nil)
	case logs.ActionEndMaintenance:
		_, err = e.EndMaintenance(ctx, stationID, nil)
	case logs.ActionRaiseError:
		_, err = e.RaiseError(ctx, stationID, nil)
	default:
		err = apperr.Internal("unhandled action %q", action)
	}
	return err
}
