package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laundry-station-backend/internal/model"
)

func TestCreateStationRoundTrip(t *testing.T) {
	t.Run("Created aggregate reads back equal to the request", func(t *testing.T) {
		f := setupAPI(t)
		_, token := f.seedUser(t, "manager@example.com", model.RoleManager)

		w := f.do("POST", "/api/stations", token, gin.H{
			"name":      "Basement laundry",
			"serial":    "SN-RT-001",
			"is_active": true,
			"region":    model.RegionCentral,
			"comment":   "behind the boiler room",
			"washing_machines": []gin.H{
				{"machine_number": 1, "volume": 10, "is_active": true, "track_length": 2.5},
				{"machine_number": 2, "volume": 20, "is_active": false, "track_length": 3},
			},
			"washing_agents": []gin.H{
				{"agent_number": 1, "volume": 100},
				{"agent_number": 2, "volume": 50, "rollback": true},
			},
			"programs": []gin.H{
				{"program_step": 11, "name": "cotton prewash",
					"washing_agents": []gin.H{{"agent_number": 1, "volume": 2.5}}},
				{"program_step": 12, "name": "cotton main wash",
					"washing_agents": []gin.H{{"agent_number": 2, "volume": 1.0}}},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created stationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		assert.NotZero(t, created.Station.ID)
		require.NotNil(t, created.Station.Name)
		assert.Equal(t, "Basement laundry", *created.Station.Name)
		assert.Equal(t, "SN-RT-001", created.Station.Serial)
		assert.Equal(t, model.RegionCentral, created.Station.Region)
		assert.Equal(t, "behind the boiler room", created.Station.Comment)
		assert.True(t, created.Station.IsActive)
		assert.False(t, created.Station.IsProtected)

		// An active station is provisioned powered on and AWAITING.
		assert.True(t, created.Settings.StationPower)
		assert.False(t, created.Settings.TehPower)
		require.NotNil(t, created.Control.Status)
		assert.Equal(t, model.StatusAwaiting, *created.Control.Status)

		require.Len(t, created.Machines, 2)
		assert.Equal(t, 1, created.Machines[0].MachineNumber)
		assert.Equal(t, float64(10), created.Machines[0].Volume)
		assert.True(t, created.Machines[0].IsActive)
		assert.Equal(t, 2.5, created.Machines[0].TrackLength)
		assert.False(t, created.Machines[1].IsActive)

		require.Len(t, created.Agents, 2)
		assert.Equal(t, float64(100), created.Agents[0].Volume)
		assert.True(t, created.Agents[1].Rollback)

		require.Len(t, created.Programs, 2)
		assert.Equal(t, 11, created.Programs[0].ProgramStep)
		assert.Equal(t, 1, created.Programs[0].ProgramNumber, "program number derives from the step")
		assert.Equal(t, "cotton prewash", created.Programs[0].Name)
		assert.Equal(t, []model.AgentDosage{{AgentNumber: 1, Volume: 2.5}}, created.Programs[0].WashingAgents)
		assert.Equal(t, 12, created.Programs[1].ProgramStep)

		// Reading the station back yields the same aggregate.
		w = f.do("GET", fmt.Sprintf("/api/stations/%d", created.Station.ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var read stationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &read))
		assert.Equal(t, created.Station.ID, read.Station.ID)
		assert.Equal(t, created.Settings, read.Settings)
		assert.Equal(t, created.Control, read.Control)
		assert.Equal(t, created.Machines, read.Machines)
		assert.Equal(t, created.Agents, read.Agents)
		assert.Equal(t, created.Programs, read.Programs)
	})

	t.Run("Inactive station is provisioned powered off and idle", func(t *testing.T) {
		f := setupAPI(t)
		_, token := f.seedUser(t, "manager@example.com", model.RoleManager)

		w := f.do("POST", "/api/stations", token, gin.H{
			"is_active": false,
			"region":    model.RegionCentral,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created stationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.False(t, created.Settings.StationPower)
		assert.Nil(t, created.Control.Status)
		assert.NotEmpty(t, created.Station.Serial, "missing serial is generated")
	})

	t.Run("Program referencing an unknown agent is rejected", func(t *testing.T) {
		f := setupAPI(t)
		_, token := f.seedUser(t, "manager@example.com", model.RoleManager)

		w := f.do("POST", "/api/stations", token, gin.H{
			"is_active":      true,
			"region":         model.RegionCentral,
			"washing_agents": []gin.H{{"agent_number": 1, "volume": 100}},
			"programs": []gin.H{
				{"program_step": 11, "washing_agents": []gin.H{{"agent_number": 9, "volume": 1}}},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var count int64
		f.db.Model(&model.Station{}).Count(&count)
		assert.Zero(t, count, "rejected creation must not persist a station")
	})

	t.Run("Malformed program step is rejected", func(t *testing.T) {
		f := setupAPI(t)
		_, token := f.seedUser(t, "manager@example.com", model.RoleManager)

		w := f.do("POST", "/api/stations", token, gin.H{
			"is_active": true,
			"region":    model.RegionCentral,
			"programs":  []gin.H{{"program_step": 17}},
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
