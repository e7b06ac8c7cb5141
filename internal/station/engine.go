package station

import (
	"context"
	"fmt"
	"log"

	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/model"
	"laundry-station-backend/internal/store"
)

// Notifier receives the id of a station that entered ERROR status. Delivery
// happens outside the transition's consistency boundary.
type Notifier interface {
	Dispatch(stationID uint)
}

// State is the control/settings pair a successful transition returns.
type State struct {
	Settings model.StationSettings
	Control  model.StationControl
}

// Engine computes and applies station state transitions. Every transition
// loads its datasets, computes the next state, validates it and persists all
// changed aggregates inside a single transaction holding the station's row
// lock. A rejected transition persists nothing.
type Engine struct {
	store    store.Store
	notifier Notifier
}

// NewEngine creates a transition engine. notifier may be nil.
func NewEngine(s store.Store, n Notifier) *Engine {
	return &Engine{store: s, notifier: n}
}

// transition is the shared load -> compute -> validate -> persist skeleton.
// apply mutates ds in place; extra dataset kinds beyond the always-loaded
// station/settings/control are passed by the caller.
func (e *Engine) transition(ctx context.Context, stationID uint, extra []DatasetKind, apply func(tx store.Store, ds *Datasets) error) (*State, error) {
	kinds := append([]DatasetKind{DatasetStation, DatasetSettings, DatasetControl}, extra...)
	var st State
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, stationID, kinds...)
		if err != nil {
			return err
		}
		if err := apply(tx, ds); err != nil {
			return err
		}
		if err := Validate(ds.Control, ds.Settings, ds.Station.IsActive); err != nil {
			return err
		}
		if err := tx.SaveSettings(ctx, ds.Settings); err != nil {
			return err
		}
		if err := tx.SaveControl(ctx, ds.Control); err != nil {
			return err
		}
		st = State{Settings: *ds.Settings, Control: *ds.Control}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// audit appends a ChangesLog row for an operator-driven mutation. It runs
// after the transition committed and never rolls it back.
func (e *Engine) audit(ctx context.Context, stationID uint, actor *model.User, format string, args ...any) {
	rec := &model.ChangesLog{StationID: stationID, Description: fmt.Sprintf(format, args...)}
	if actor != nil {
		id := actor.ID
		rec.UserID = &id
	}
	if err := e.store.AppendChange(ctx, rec); err != nil {
		log.Printf("changes log append failed for station %d: %v", stationID, err)
	}
}

// cleanSlate resets the control row to the fully idle shape: no status, no
// process, no queue.
func cleanSlate(ctl *model.StationControl) {
	ctl.Status = nil
	ctl.ProgramStep = nil
	ctl.WashingMachine = nil
	ctl.WashingAgents = nil
	ctl.WashingMachinesQueue = nil
}

func setStatus(ctl *model.StationControl, status model.StationStatus) {
	ctl.Status = &status
}

// PowerOff switches the station power off and fully resets control,
// regardless of the current status. Issuing it twice is idempotent.
func (e *Engine) PowerOff(ctx context.Context, stationID uint, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		ds.Settings.StationPower = false
		cleanSlate(ds.Control)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "station power switched off")
	return st, nil
}

// PowerOn switches the station power on and puts control into AWAITING.
func (e *Engine) PowerOn(ctx context.Context, stationID uint, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		ds.Settings.StationPower = true
		cleanSlate(ds.Control)
		setStatus(ds.Control, model.StatusAwaiting)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "station power switched on")
	return st, nil
}

// SetHeater switches the heater. Turning it on while the station power is
// off is rejected by the validator before anything persists.
func (e *Engine) SetHeater(ctx context.Context, stationID uint, on bool, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		ds.Settings.TehPower = on
		if on {
			return ValidateHeaterOn(ds.Settings)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "heater power set to %t", on)
	return st, nil
}

// RaiseError forces the station into ERROR status, interrupting any running
// process. This is an unconditional override.
func (e *Engine) RaiseError(ctx context.Context, stationID uint, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		cleanSlate(ds.Control)
		setStatus(ds.Control, model.StatusError)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if e.notifier != nil {
		e.notifier.Dispatch(stationID)
	}
	e.audit(ctx, stationID, actor, "station entered ERROR status")
	return st, nil
}

// ClearError returns an errored station to AWAITING. Legal only from ERROR.
func (e *Engine) ClearError(ctx context.Context, stationID uint, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		if ds.Control.Status == nil || *ds.Control.Status != model.StatusError {
			return apperr.Conflict("station %d is not in ERROR status", stationID)
		}
		setStatus(ds.Control, model.StatusAwaiting)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "station error cleared")
	return st, nil
}

// StartManualWorking begins a manual run on the given machine with a single
// agent dosage. If the agent is already dosed its volume is updated in
// place, otherwise the dosage is appended.
func (e *Engine) StartManualWorking(ctx context.Context, stationID uint, machineNumber, agentNumber int, volume float64, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, []DatasetKind{DatasetMachines, DatasetAgents}, func(tx store.Store, ds *Datasets) error {
		machine, err := ds.machine(machineNumber)
		if err != nil {
			return err
		}
		if !machine.IsActive {
			return apperr.Conflict("washing machine %d is inactive", machineNumber)
		}
		agent, err := ds.agent(agentNumber)
		if err != nil {
			return err
		}
		setStatus(ds.Control, model.StatusWorking)
		ds.Control.WashingMachine = machine.Snapshot()
		ds.Control.ProgramStep = nil
		upsertDosage(&ds.Control.WashingAgents, agent.AgentNumber, volume)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "manual working started on machine %d with agent %d", machineNumber, agentNumber)
	return st, nil
}

// upsertDosage updates the volume for agentNumber in place, or appends a new
// pair when the agent is not dosed yet.
func upsertDosage(agents *[]model.AgentDosage, agentNumber int, volume float64) {
	for i := range *agents {
		if (*agents)[i].AgentNumber == agentNumber {
			(*agents)[i].Volume = volume
			return
		}
	}
	*agents = append(*agents, model.AgentDosage{AgentNumber: agentNumber, Volume: volume})
}

// UpdateWorkingProcess puts the station into WORKING on a cataloged program
// step. Every machine number in the supplied queue must exist in the
// inventory; the active machine's own number is removed from the queue by
// value, a machine does not queue behind itself.
func (e *Engine) UpdateWorkingProcess(ctx context.Context, stationID uint, programStep, machineNumber int, queue []int, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, []DatasetKind{DatasetMachines, DatasetPrograms}, func(tx store.Store, ds *Datasets) error {
		for _, n := range queue {
			if _, err := ds.machine(n); err != nil {
				return err
			}
		}
		machine, err := ds.machine(machineNumber)
		if err != nil {
			return err
		}
		program, err := ds.program(programStep)
		if err != nil {
			return err
		}
		setStatus(ds.Control, model.StatusWorking)
		ds.Control.ProgramStep = program.Snapshot()
		ds.Control.WashingMachine = machine.Snapshot()
		ds.Control.WashingAgents = nil
		ds.Control.WashingMachinesQueue = withoutNumber(queue, machineNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "working process updated to program step %d on machine %d", programStep, machineNumber)
	return st, nil
}

func withoutNumber(queue []int, number int) []int {
	out := make([]int, 0, len(queue))
	for _, n := range queue {
		if n != number {
			out = append(out, n)
		}
	}
	return out
}

// StartMaintenance opens a maintenance window. Legal only from AWAITING.
func (e *Engine) StartMaintenance(ctx context.Context, stationID uint, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		if ds.Control.Status == nil || *ds.Control.Status != model.StatusAwaiting {
			return apperr.Conflict("station %d is not AWAITING", stationID)
		}
		setStatus(ds.Control, model.StatusMaintenance)
		var userID *uint
		if actor != nil {
			id := actor.ID
			userID = &id
		}
		_, err := tx.OpenMaintenance(ctx, stationID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "maintenance started")
	return st, nil
}

// EndMaintenance closes the open maintenance window. Legal only from
// MAINTENANCE. A window opened by another user can only be closed by that
// user or by a MANAGER and above.
func (e *Engine) EndMaintenance(ctx context.Context, stationID uint, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		if ds.Control.Status == nil || *ds.Control.Status != model.StatusMaintenance {
			return apperr.Conflict("station %d is not in MAINTENANCE", stationID)
		}
		open, err := tx.GetOpenMaintenance(ctx, stationID)
		if err != nil {
			return err
		}
		if actor != nil && open.UserID != nil && *open.UserID != actor.ID && !actor.Role.AtLeast(model.RoleManager) {
			return apperr.Permission("maintenance window was opened by another user")
		}
		if err := tx.CloseMaintenance(ctx, open); err != nil {
			return err
		}
		setStatus(ds.Control, model.StatusAwaiting)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "maintenance ended")
	return st, nil
}

// Activate is the operator-only composite of power-on, heater-on and marking
// the station active and protected. It is never inferred from a
// station-reported event.
func (e *Engine) Activate(ctx context.Context, stationID uint, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		ds.Station.IsActive = true
		ds.Station.IsProtected = true
		ds.Settings.StationPower = true
		ds.Settings.TehPower = true
		cleanSlate(ds.Control)
		setStatus(ds.Control, model.StatusAwaiting)
		return tx.SaveStation(ctx, ds.Station)
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "station activated")
	return st, nil
}

// UpdateSettings applies an operator-driven settings change with its
// cascades: dropping station_power resets control to the fully idle shape,
// restoring it puts control back into AWAITING.
func (e *Engine) UpdateSettings(ctx context.Context, stationID uint, stationPower, tehPower *bool, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		if stationPower != nil {
			wasOn := ds.Settings.StationPower
			ds.Settings.StationPower = *stationPower
			if !*stationPower {
				cleanSlate(ds.Control)
			} else if !wasOn {
				cleanSlate(ds.Control)
				setStatus(ds.Control, model.StatusAwaiting)
			}
		}
		if tehPower != nil {
			ds.Settings.TehPower = *tehPower
			if *tehPower {
				return ValidateHeaterOn(ds.Settings)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "station settings updated")
	return st, nil
}

// GeneralUpdate carries the operator-editable general parameters of a
// station. Nil fields are left untouched.
type GeneralUpdate struct {
	Name        *string
	IsActive    *bool
	IsProtected *bool
	Region      *model.Region
	Comment     *string
	HashedWifi  *string
}

// UpdateGeneral applies an operator-driven general-params change. The
// deactivation cascade is an explicit step: flipping is_active off resets
// both control and settings.
func (e *Engine) UpdateGeneral(ctx context.Context, stationID uint, upd GeneralUpdate, actor *model.User) (*State, error) {
	st, err := e.transition(ctx, stationID, nil, func(tx store.Store, ds *Datasets) error {
		if upd.Name != nil {
			ds.Station.Name = upd.Name
		}
		if upd.IsProtected != nil {
			ds.Station.IsProtected = *upd.IsProtected
		}
		if upd.Region != nil {
			ds.Station.Region = *upd.Region
		}
		if upd.Comment != nil {
			ds.Station.Comment = *upd.Comment
		}
		if upd.HashedWifi != nil {
			ds.Station.HashedWifi = *upd.HashedWifi
		}
		if upd.IsActive != nil {
			wasActive := ds.Station.IsActive
			ds.Station.IsActive = *upd.IsActive
			if wasActive && !*upd.IsActive {
				deactivateCascade(ds)
			}
		}
		return tx.SaveStation(ctx, ds.Station)
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "station general params updated")
	return st, nil
}

// deactivateCascade is the named reset applied when a station is switched
// inactive: both power flags drop and control goes fully idle.
func deactivateCascade(ds *Datasets) {
	ds.Settings.StationPower = false
	ds.Settings.TehPower = false
	cleanSlate(ds.Control)
}
