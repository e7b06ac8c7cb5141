package station

import (
	"context"

	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/model"
	"laundry-station-backend/internal/store"
)

// DatasetKind enumerates the aggregates a transition may need. Every
// transition names the kinds it reads up front; nothing is fetched lazily
// once the transition runs.
type DatasetKind int

const (
	DatasetStation DatasetKind = iota
	DatasetSettings
	DatasetControl
	DatasetMachines
	DatasetAgents
	DatasetPrograms
)

// Datasets is the request-scoped snapshot of a station's aggregates,
// populated by an explicit preload step before a transition computes
// anything. Settings and control rows are loaded under a row lock so that
// transitions on the same station serialize.
type Datasets struct {
	Station  *model.Station
	Settings *model.StationSettings
	Control  *model.StationControl
	Machines []model.WashingMachine
	Agents   []model.WashingAgent
	Programs []model.StationProgram

	machinesLoaded bool
	agentsLoaded   bool
	programsLoaded bool
}

func loadDatasets(ctx context.Context, tx store.Store, stationID uint, kinds ...DatasetKind) (*Datasets, error) {
	ds := &Datasets{}
	for _, kind := range kinds {
		var err error
		switch kind {
		case DatasetStation:
			ds.Station, err = tx.GetStation(ctx, stationID)
		case DatasetSettings:
			ds.Settings, err = tx.GetSettings(ctx, stationID, true)
		case DatasetControl:
			ds.Control, err = tx.GetControl(ctx, stationID, true)
		case DatasetMachines:
			ds.Machines, err = tx.ListMachines(ctx, stationID)
			ds.machinesLoaded = err == nil
		case DatasetAgents:
			ds.Agents, err = tx.ListAgents(ctx, stationID)
			ds.agentsLoaded = err == nil
		case DatasetPrograms:
			ds.Programs, err = tx.ListPrograms(ctx, stationID)
			ds.programsLoaded = err == nil
		default:
			return nil, apperr.Internal("unknown dataset kind %d", kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// machine resolves a machine number against the loaded inventory,
// first match wins.
func (d *Datasets) machine(number int) (*model.WashingMachine, error) {
	if !d.machinesLoaded {
		return nil, apperr.Internal("machines dataset was not preloaded")
	}
	for i := range d.Machines {
		if d.Machines[i].MachineNumber == number {
			return &d.Machines[i], nil
		}
	}
	return nil, apperr.NotFound("washing machine %d", number)
}

// agent resolves an agent number against the loaded inventory.
func (d *Datasets) agent(number int) (*model.WashingAgent, error) {
	if !d.agentsLoaded {
		return nil, apperr.Internal("agents dataset was not preloaded")
	}
	for i := range d.Agents {
		if d.Agents[i].AgentNumber == number {
			return &d.Agents[i], nil
		}
	}
	return nil, apperr.NotFound("washing agent %d", number)
}

// program resolves a program step against the loaded catalog.
func (d *Datasets) program(step int) (*model.StationProgram, error) {
	if !d.programsLoaded {
		return nil, apperr.Internal("programs dataset was not preloaded")
	}
	for i := range d.Programs {
		if d.Programs[i].ProgramStep == step {
			return &d.Programs[i], nil
		}
	}
	return nil, apperr.NotFound("program step %d", step)
}
