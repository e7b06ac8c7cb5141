package station

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/model"
)

func statusPtr(s model.StationStatus) *model.StationStatus {
	return &s
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name          string
		control       model.StationControl
		settings      model.StationSettings
		stationActive bool
		wantErr       bool
	}{
		{
			name:          "Fully idle station is consistent",
			control:       model.StationControl{},
			settings:      model.StationSettings{},
			stationActive: false,
			wantErr:       false,
		},
		{
			name:          "AWAITING with power on is consistent",
			control:       model.StationControl{Status: statusPtr(model.StatusAwaiting)},
			settings:      model.StationSettings{StationPower: true},
			stationActive: true,
			wantErr:       false,
		},
		{
			name:          "Heater left on by an earlier transition is tolerated after power drop",
			control:       model.StationControl{},
			settings:      model.StationSettings{TehPower: true},
			stationActive: true,
			wantErr:       false,
		},
		{
			name:          "Station power on an inactive station is rejected",
			control:       model.StationControl{Status: statusPtr(model.StatusAwaiting)},
			settings:      model.StationSettings{StationPower: true},
			stationActive: false,
			wantErr:       true,
		},
		{
			name:          "Any status without station power is rejected",
			control:       model.StationControl{Status: statusPtr(model.StatusAwaiting)},
			settings:      model.StationSettings{},
			stationActive: true,
			wantErr:       true,
		},
		{
			name: "Null status with a process payload is rejected",
			control: model.StationControl{
				WashingMachine: &model.MachineSnapshot{MachineNumber: 1},
			},
			settings:      model.StationSettings{StationPower: true},
			stationActive: true,
			wantErr:       true,
		},
		{
			name: "WORKING with a program step is consistent",
			control: model.StationControl{
				Status:         statusPtr(model.StatusWorking),
				WashingMachine: &model.MachineSnapshot{MachineNumber: 1},
				ProgramStep:    &model.ProgramSnapshot{ProgramStep: 11, ProgramNumber: 1},
			},
			settings:      model.StationSettings{StationPower: true},
			stationActive: true,
			wantErr:       false,
		},
		{
			name: "WORKING with manual agents is consistent",
			control: model.StationControl{
				Status:         statusPtr(model.StatusWorking),
				WashingMachine: &model.MachineSnapshot{MachineNumber: 1},
				WashingAgents:  []model.AgentDosage{{AgentNumber: 2, Volume: 1.5}},
			},
			settings:      model.StationSettings{StationPower: true, TehPower: true},
			stationActive: true,
			wantErr:       false,
		},
		{
			name: "WORKING without a machine is rejected",
			control: model.StationControl{
				Status:      statusPtr(model.StatusWorking),
				ProgramStep: &model.ProgramSnapshot{ProgramStep: 11, ProgramNumber: 1},
			},
			settings:      model.StationSettings{StationPower: true},
			stationActive: true,
			wantErr:       true,
		},
		{
			name: "WORKING with both program and agents is rejected",
			control: model.StationControl{
				Status:         statusPtr(model.StatusWorking),
				WashingMachine: &model.MachineSnapshot{MachineNumber: 1},
				ProgramStep:    &model.ProgramSnapshot{ProgramStep: 11, ProgramNumber: 1},
				WashingAgents:  []model.AgentDosage{{AgentNumber: 2, Volume: 1.5}},
			},
			settings:      model.StationSettings{StationPower: true},
			stationActive: true,
			wantErr:       true,
		},
		{
			name: "WORKING with neither program nor agents is rejected",
			control: model.StationControl{
				Status:         statusPtr(model.StatusWorking),
				WashingMachine: &model.MachineSnapshot{MachineNumber: 1},
			},
			settings:      model.StationSettings{StationPower: true},
			stationActive: true,
			wantErr:       true,
		},
		{
			name: "MAINTENANCE with a process payload is rejected",
			control: model.StationControl{
				Status:         statusPtr(model.StatusMaintenance),
				WashingMachine: &model.MachineSnapshot{MachineNumber: 1},
			},
			settings:      model.StationSettings{StationPower: true},
			stationActive: true,
			wantErr:       true,
		},
		{
			name:          "ERROR with an empty payload is consistent",
			control:       model.StationControl{Status: statusPtr(model.StatusError)},
			settings:      model.StationSettings{StationPower: true},
			stationActive: true,
			wantErr:       false,
		},
		{
			name: "WORKING with a malformed program step is rejected",
			control: model.StationControl{
				Status:         statusPtr(model.StatusWorking),
				WashingMachine: &model.MachineSnapshot{MachineNumber: 1},
				ProgramStep:    &model.ProgramSnapshot{ProgramStep: 17, ProgramNumber: 1},
			},
			settings:      model.StationSettings{StationPower: true},
			stationActive: true,
			wantErr:       true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(&tc.control, &tc.settings, tc.stationActive)
			if tc.wantErr {
				assert.Error(t, err)
				assert.True(t, apperr.IsCode(err, apperr.CodeInvariant), "expected an invariant violation, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateHeaterOn(t *testing.T) {
	assert.NoError(t, ValidateHeaterOn(&model.StationSettings{StationPower: true, TehPower: true}))

	err := ValidateHeaterOn(&model.StationSettings{TehPower: true})
	assert.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvariant), "expected an invariant violation, got %v", err)
}

func TestValidateProgramStep(t *testing.T) {
	testCases := []struct {
		step          int
		programNumber int
		wantErr       bool
	}{
		{11, 1, false},
		{15, 1, false},
		{21, 2, false},
		{123, 12, false},
		{10, 1, true},  // position 0
		{16, 1, true},  // position 6
		{11, 2, true},  // wrong program number
		{-11, -1, true},
	}

	for _, tc := range testCases {
		err := ValidateProgramStep(tc.step, tc.programNumber)
		if tc.wantErr {
			assert.Error(t, err, "step=%d program=%d", tc.step, tc.programNumber)
		} else {
			assert.NoError(t, err, "step=%d program=%d", tc.step, tc.programNumber)
		}
	}
}
