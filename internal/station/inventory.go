package station

import (
	"context"

	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/model"
	"laundry-station-backend/internal/store"
)

// Inventory operations share the engine's serialization discipline: guards
// read the control row under the station lock so a concurrent transition
// cannot start using an object while it is being removed.

// CreateMachine adds a machine to the station inventory. The machine number
// must be free.
func (e *Engine) CreateMachine(ctx context.Context, m *model.WashingMachine, actor *model.User) error {
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, m.StationID, DatasetStation, DatasetMachines)
		if err != nil {
			return err
		}
		if _, err := ds.machine(m.MachineNumber); err == nil {
			return apperr.Conflict("machine number %d already taken", m.MachineNumber)
		} else if !apperr.IsCode(err, apperr.CodeNotFound) {
			return err
		}
		return tx.CreateMachine(ctx, m)
	})
	if err != nil {
		return err
	}
	e.audit(ctx, m.StationID, actor, "washing machine %d created", m.MachineNumber)
	return nil
}

// MachineUpdate carries the editable machine fields, nil meaning unchanged.
type MachineUpdate struct {
	Volume      *float64
	IsActive    *bool
	TrackLength *float64
}

// UpdateMachine edits a machine. Marking the currently-in-use machine
// inactive is a conflict.
func (e *Engine) UpdateMachine(ctx context.Context, stationID uint, number int, upd MachineUpdate, actor *model.User) (*model.WashingMachine, error) {
	var out model.WashingMachine
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, stationID, DatasetControl, DatasetMachines)
		if err != nil {
			return err
		}
		machine, err := ds.machine(number)
		if err != nil {
			return err
		}
		if upd.Volume != nil {
			machine.Volume = *upd.Volume
		}
		if upd.TrackLength != nil {
			machine.TrackLength = *upd.TrackLength
		}
		if upd.IsActive != nil {
			if !*upd.IsActive && machineInUse(ds.Control, number) {
				return apperr.Conflict("machine %d is currently in use", number)
			}
			machine.IsActive = *upd.IsActive
		}
		if err := tx.SaveMachine(ctx, machine); err != nil {
			return err
		}
		out = *machine
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "washing machine %d updated", number)
	return &out, nil
}

// DeleteMachine removes a machine unless the control row references it.
func (e *Engine) DeleteMachine(ctx context.Context, stationID uint, number int, actor *model.User) error {
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, stationID, DatasetControl, DatasetMachines)
		if err != nil {
			return err
		}
		if _, err := ds.machine(number); err != nil {
			return err
		}
		if machineInUse(ds.Control, number) {
			return apperr.Conflict("machine %d is currently in use", number)
		}
		return tx.DeleteMachine(ctx, stationID, number)
	})
	if err != nil {
		return err
	}
	e.audit(ctx, stationID, actor, "washing machine %d deleted", number)
	return nil
}

func machineInUse(ctl *model.StationControl, number int) bool {
	if ctl.WashingMachine != nil && ctl.WashingMachine.MachineNumber == number {
		return true
	}
	for _, n := range ctl.WashingMachinesQueue {
		if n == number {
			return true
		}
	}
	return false
}

// CreateAgent adds a washing agent to the inventory. The agent number must
// be free.
func (e *Engine) CreateAgent(ctx context.Context, a *model.WashingAgent, actor *model.User) error {
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, a.StationID, DatasetStation, DatasetAgents)
		if err != nil {
			return err
		}
		if _, err := ds.agent(a.AgentNumber); err == nil {
			return apperr.Conflict("agent number %d already taken", a.AgentNumber)
		} else if !apperr.IsCode(err, apperr.CodeNotFound) {
			return err
		}
		return tx.CreateAgent(ctx, a)
	})
	if err != nil {
		return err
	}
	e.audit(ctx, a.StationID, actor, "washing agent %d created", a.AgentNumber)
	return nil
}

// AgentUpdate carries the editable agent fields, nil meaning unchanged.
type AgentUpdate struct {
	Volume   *float64
	Rollback *bool
}

// UpdateAgent edits an agent's volume or rollback flag.
func (e *Engine) UpdateAgent(ctx context.Context, stationID uint, number int, upd AgentUpdate, actor *model.User) (*model.WashingAgent, error) {
	var out model.WashingAgent
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, stationID, DatasetAgents)
		if err != nil {
			return err
		}
		agent, err := ds.agent(number)
		if err != nil {
			return err
		}
		if upd.Volume != nil {
			agent.Volume = *upd.Volume
		}
		if upd.Rollback != nil {
			agent.Rollback = *upd.Rollback
		}
		if err := tx.SaveAgent(ctx, agent); err != nil {
			return err
		}
		out = *agent
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "washing agent %d updated", number)
	return &out, nil
}

// DeleteAgent removes an agent unless the control row doses it, directly or
// through the active program step.
func (e *Engine) DeleteAgent(ctx context.Context, stationID uint, number int, actor *model.User) error {
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, stationID, DatasetControl, DatasetAgents)
		if err != nil {
			return err
		}
		if _, err := ds.agent(number); err != nil {
			return err
		}
		if agentInUse(ds.Control, number) {
			return apperr.Conflict("agent %d is currently in use", number)
		}
		return tx.DeleteAgent(ctx, stationID, number)
	})
	if err != nil {
		return err
	}
	e.audit(ctx, stationID, actor, "washing agent %d deleted", number)
	return nil
}

func agentInUse(ctl *model.StationControl, number int) bool {
	for _, d := range ctl.WashingAgents {
		if d.AgentNumber == number {
			return true
		}
	}
	if ctl.ProgramStep != nil {
		for _, d := range ctl.ProgramStep.WashingAgents {
			if d.AgentNumber == number {
				return true
			}
		}
	}
	return false
}

// CreateProgram adds a program step. The step number must obey the encoding
// rule, be unoccupied, and every dosed agent must exist in the inventory.
func (e *Engine) CreateProgram(ctx context.Context, p *model.StationProgram, actor *model.User) error {
	if err := ValidateProgramStep(p.ProgramStep, p.ProgramNumber); err != nil {
		return err
	}
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, p.StationID, DatasetStation, DatasetAgents, DatasetPrograms)
		if err != nil {
			return err
		}
		if _, err := ds.program(p.ProgramStep); err == nil {
			return apperr.Conflict("program step %d already occupied", p.ProgramStep)
		} else if !apperr.IsCode(err, apperr.CodeNotFound) {
			return err
		}
		if err := checkDosedAgents(ds, p.WashingAgents); err != nil {
			return err
		}
		return tx.CreateProgram(ctx, p)
	})
	if err != nil {
		return err
	}
	e.audit(ctx, p.StationID, actor, "program step %d created", p.ProgramStep)
	return nil
}

// UpdateProgram replaces the name and agent dosages of a program step.
func (e *Engine) UpdateProgram(ctx context.Context, stationID uint, step int, name *string, agents []model.AgentDosage, actor *model.User) (*model.StationProgram, error) {
	var out model.StationProgram
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, stationID, DatasetAgents, DatasetPrograms)
		if err != nil {
			return err
		}
		program, err := ds.program(step)
		if err != nil {
			return err
		}
		if name != nil {
			program.Name = *name
		}
		if agents != nil {
			if err := checkDosedAgents(ds, agents); err != nil {
				return err
			}
			program.WashingAgents = agents
		}
		if err := tx.SaveProgram(ctx, program); err != nil {
			return err
		}
		out = *program
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.audit(ctx, stationID, actor, "program step %d updated", step)
	return &out, nil
}

// DeleteProgram removes a program step unless control currently runs it.
func (e *Engine) DeleteProgram(ctx context.Context, stationID uint, step int, actor *model.User) error {
	err := e.store.Atomic(ctx, func(tx store.Store) error {
		ds, err := loadDatasets(ctx, tx, stationID, DatasetControl, DatasetPrograms)
		if err != nil {
			return err
		}
		if _, err := ds.program(step); err != nil {
			return err
		}
		if ds.Control.ProgramStep != nil && ds.Control.ProgramStep.ProgramStep == step {
			return apperr.Conflict("program step %d is currently running", step)
		}
		return tx.DeleteProgram(ctx, stationID, step)
	})
	if err != nil {
		return err
	}
	e.audit(ctx, stationID, actor, "program step %d deleted", step)
	return nil
}

func checkDosedAgents(ds *Datasets, dosages []model.AgentDosage) error {
	for _, d := range dosages {
		if _, err := ds.agent(d.AgentNumber); err != nil {
			return err
		}
	}
	return nil
}
