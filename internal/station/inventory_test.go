package station

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/model"
)

func TestEngineMachineCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("Create rejects an occupied machine number", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		err := engine.CreateMachine(ctx, &model.WashingMachine{
			StationID: st.ID, MachineNumber: 1, Volume: 8, IsActive: true,
		}, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

		err = engine.CreateMachine(ctx, &model.WashingMachine{
			StationID: st.ID, MachineNumber: 4, Volume: 8, IsActive: true,
		}, nil)
		assert.NoError(t, err)
	})

	t.Run("The active machine cannot be deactivated or deleted", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		_, err := engine.UpdateWorkingProcess(ctx, st.ID, 11, 1, []int{2}, nil)
		require.NoError(t, err)

		off := false
		_, err = engine.UpdateMachine(ctx, st.ID, 1, MachineUpdate{IsActive: &off}, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

		err = engine.DeleteMachine(ctx, st.ID, 1, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

		// Queued machines are equally protected.
		err = engine.DeleteMachine(ctx, st.ID, 2, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("An idle machine updates and deletes freely", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		volume := 25.0
		machine, err := engine.UpdateMachine(ctx, st.ID, 2, MachineUpdate{Volume: &volume}, nil)
		require.NoError(t, err)
		assert.Equal(t, 25.0, machine.Volume)

		require.NoError(t, engine.DeleteMachine(ctx, st.ID, 2, nil))

		var count int64
		testDB.Model(&model.WashingMachine{}).
			Where("station_id = ? AND machine_number = ?", st.ID, 2).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestEngineAgentCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("Create rejects an occupied agent number", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		err := engine.CreateAgent(ctx, &model.WashingAgent{
			StationID: st.ID, AgentNumber: 1, Volume: 10,
		}, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("A manually dosed agent cannot be deleted", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		_, err := engine.StartManualWorking(ctx, st.ID, 1, 1, 2.5, nil)
		require.NoError(t, err)

		err = engine.DeleteAgent(ctx, st.ID, 1, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

		err = engine.DeleteAgent(ctx, st.ID, 2, nil)
		assert.NoError(t, err)
	})

	t.Run("An agent dosed by the running program snapshot cannot be deleted", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		// Program step 11 doses agent 1.
		_, err := engine.UpdateWorkingProcess(ctx, st.ID, 11, 1, nil, nil)
		require.NoError(t, err)

		err = engine.DeleteAgent(ctx, st.ID, 1, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("Update edits volume and rollback", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		volume := 75.0
		rollback := true
		agent, err := engine.UpdateAgent(ctx, st.ID, 1, AgentUpdate{Volume: &volume, Rollback: &rollback}, nil)
		require.NoError(t, err)
		assert.Equal(t, 75.0, agent.Volume)
		assert.True(t, agent.Rollback)
	})
}

func TestEngineProgramCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("Create enforces the step encoding", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		err := engine.CreateProgram(ctx, &model.StationProgram{
			StationID: st.ID, ProgramStep: 26, ProgramNumber: 2,
		}, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeInvariant))

		err = engine.CreateProgram(ctx, &model.StationProgram{
			StationID: st.ID, ProgramStep: 21, ProgramNumber: 3,
		}, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeInvariant))
	})

	t.Run("Create rejects an occupied step and unknown agents", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		err := engine.CreateProgram(ctx, &model.StationProgram{
			StationID: st.ID, ProgramStep: 11, ProgramNumber: 1,
		}, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

		err = engine.CreateProgram(ctx, &model.StationProgram{
			StationID: st.ID, ProgramStep: 21, ProgramNumber: 2,
			WashingAgents: []model.AgentDosage{{AgentNumber: 42, Volume: 1}},
		}, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

		err = engine.CreateProgram(ctx, &model.StationProgram{
			StationID: st.ID, ProgramStep: 21, ProgramNumber: 2, Name: "wool",
			WashingAgents: []model.AgentDosage{{AgentNumber: 1, Volume: 1}},
		}, nil)
		assert.NoError(t, err)
	})

	t.Run("Update replaces name and dosages", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		name := "cotton prewash v2"
		program, err := engine.UpdateProgram(ctx, st.ID, 11, &name,
			[]model.AgentDosage{{AgentNumber: 2, Volume: 3}}, nil)
		require.NoError(t, err)
		assert.Equal(t, name, program.Name)
		assert.Equal(t, []model.AgentDosage{{AgentNumber: 2, Volume: 3}}, program.WashingAgents)
	})

	t.Run("The running step cannot be deleted", func(t *testing.T) {
		testDB, engine, _ := newTestEngine(t)
		st := seedStation(t, testDB)

		_, err := engine.UpdateWorkingProcess(ctx, st.ID, 11, 1, nil, nil)
		require.NoError(t, err)

		err = engine.DeleteProgram(ctx, st.ID, 11, nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))

		// A sibling step of the same program deletes fine; the snapshot keeps
		// the running one intact.
		err = engine.DeleteProgram(ctx, st.ID, 12, nil)
		assert.NoError(t, err)

		ctl := getControl(t, testDB, st.ID)
		require.NotNil(t, ctl.ProgramStep)
		assert.Equal(t, 11, ctl.ProgramStep.ProgramStep)
	})
}
