package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"laundry-station-backend/internal/auth"
	"laundry-station-backend/internal/db"
	"laundry-station-backend/internal/model"
	"laundry-station-backend/internal/station"
	"laundry-station-backend/internal/store"
)

type apiFixture struct {
	db     *gorm.DB
	store  store.Store
	tokens *auth.Manager
	router *gin.Engine
}

func setupAPI(t *testing.T) *apiFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(db.Models()...))

	s := store.NewGormStore(testDB)
	engine := station.NewEngine(s, nil)
	tokens := auth.NewManager("test-secret", time.Hour)
	router := NewRouter(s, engine, tokens, nil, RouterConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Minute,
	})

	return &apiFixture{db: testDB, store: s, tokens: tokens, router: router}
}

func (f *apiFixture) seedStation(t *testing.T) *model.Station {
	st := &model.Station{
		Serial:   "SN-API-001",
		IsActive: true,
		Region:   model.RegionCentral,
		Settings: model.StationSettings{StationPower: true},
		Control:  model.StationControl{Status: statusPtr(model.StatusAwaiting)},
		Machines: []model.WashingMachine{{MachineNumber: 1, Volume: 10, IsActive: true}},
		Agents:   []model.WashingAgent{{AgentNumber: 1, Volume: 100}},
		Programs: []model.StationProgram{{ProgramStep: 11, ProgramNumber: 1,
			WashingAgents: []model.AgentDosage{{AgentNumber: 1, Volume: 2}}}},
	}
	require.NoError(t, f.db.Create(st).Error)
	return st
}

func (f *apiFixture) seedUser(t *testing.T, email string, role model.Role) (*model.User, string) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	user := &model.User{Email: email, Role: role, PasswordHash: hash}
	require.NoError(t, f.db.Create(user).Error)
	token, err := f.tokens.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func statusPtr(s model.StationStatus) *model.StationStatus {
	return &s
}

func (f *apiFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) control(t *testing.T, stationID uint) model.StationControl {
	var ctl model.StationControl
	require.NoError(t, f.db.First(&ctl, "station_id = ?", stationID).Error)
	return ctl
}

func TestStationLogIngestion(t *testing.T) {
	t.Run("A classified code drives the implied transition", func(t *testing.T) {
		f := setupAPI(t)
		st := f.seedStation(t)

		w := f.do("POST", fmt.Sprintf("/api/stations/%d/logs", st.ID), "", gin.H{
			"code": 3.1,
			"data": gin.H{"machine_number": 1, "agent_number": 1, "volume": 2.5},
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		ctl := f.control(t, st.ID)
		require.NotNil(t, ctl.Status)
		assert.Equal(t, model.StatusWorking, *ctl.Status)
		require.NotNil(t, ctl.WashingMachine)
		assert.Equal(t, 1, ctl.WashingMachine.MachineNumber)

		var logCount int64
		f.db.Model(&model.Log{}).Where("station_id = ?", st.ID).Count(&logCount)
		assert.Equal(t, int64(1), logCount)
	})

	t.Run("A payload failing its schema records nothing", func(t *testing.T) {
		f := setupAPI(t)
		st := f.seedStation(t)

		w := f.do("POST", fmt.Sprintf("/api/stations/%d/logs", st.ID), "", gin.H{
			"code": 3.1,
			"data": gin.H{"machine_number": 1},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var logCount int64
		f.db.Model(&model.Log{}).Where("station_id = ?", st.ID).Count(&logCount)
		assert.Equal(t, int64(0), logCount)
	})

	t.Run("An unknown code is recorded without any action", func(t *testing.T) {
		f := setupAPI(t)
		st := f.seedStation(t)

		w := f.do("POST", fmt.Sprintf("/api/stations/%d/logs", st.ID), "", gin.H{
			"code": 7.7,
			"data": gin.H{"free": "form"},
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		ctl := f.control(t, st.ID)
		require.NotNil(t, ctl.Status)
		assert.Equal(t, model.StatusAwaiting, *ctl.Status)

		var logCount int64
		f.db.Model(&model.Log{}).Where("station_id = ?", st.ID).Count(&logCount)
		assert.Equal(t, int64(1), logCount)
	})

	t.Run("A rejected transition keeps the log entry", func(t *testing.T) {
		f := setupAPI(t)
		st := f.seedStation(t)

		// Code 4.2 ends maintenance, but the station is AWAITING.
		w := f.do("POST", fmt.Sprintf("/api/stations/%d/logs", st.ID), "", gin.H{"code": 4.2})
		assert.Equal(t, http.StatusConflict, w.Code)

		var logCount int64
		f.db.Model(&model.Log{}).Where("station_id = ?", st.ID).Count(&logCount)
		assert.Equal(t, int64(1), logCount, "the raw entry survives the rejection")
	})

	t.Run("An unknown station is not found", func(t *testing.T) {
		f := setupAPI(t)
		w := f.do("POST", "/api/stations/999/logs", "", gin.H{"code": 2.0})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("A malformed code is rejected", func(t *testing.T) {
		f := setupAPI(t)
		st := f.seedStation(t)
		w := f.do("POST", fmt.Sprintf("/api/stations/%d/logs", st.ID), "", gin.H{"code": 3.14})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStationErrorIngestion(t *testing.T) {
	t.Run("A scoped error code raises ERROR status", func(t *testing.T) {
		f := setupAPI(t)
		st := f.seedStation(t)

		w := f.do("POST", fmt.Sprintf("/api/stations/%d/errors", st.ID), "", gin.H{
			"code":  1.0,
			"scope": "PUBLIC",
			"data":  gin.H{"message": "drum jammed"},
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		ctl := f.control(t, st.ID)
		require.NotNil(t, ctl.Status)
		assert.Equal(t, model.StatusError, *ctl.Status)

		var errCount int64
		f.db.Model(&model.ErrorLog{}).Where("station_id = ?", st.ID).Count(&errCount)
		assert.Equal(t, int64(1), errCount)
	})

	t.Run("The ALL scope is not accepted on the wire", func(t *testing.T) {
		f := setupAPI(t)
		st := f.seedStation(t)

		w := f.do("POST", fmt.Sprintf("/api/stations/%d/errors", st.ID), "", gin.H{
			"code":  3.0,
			"scope": "ALL",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("An unregistered error code is recorded without a transition", func(t *testing.T) {
		f := setupAPI(t)
		st := f.seedStation(t)

		w := f.do("POST", fmt.Sprintf("/api/stations/%d/errors", st.ID), "", gin.H{
			"code":  9.9,
			"scope": "SERVICE",
			"data":  gin.H{"detail": "low pressure"},
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		ctl := f.control(t, st.ID)
		require.NotNil(t, ctl.Status)
		assert.Equal(t, model.StatusAwaiting, *ctl.Status)
	})
}

func TestServerLogsNeverActOnState(t *testing.T) {
	f := setupAPI(t)
	st := f.seedStation(t)
	_, token := f.seedUser(t, "manager@example.com", model.RoleManager)

	// Code 1.0 would power the station off if a station had reported it.
	w := f.do("POST", fmt.Sprintf("/api/stations/%d/server-logs", st.ID), token, gin.H{"code": 1.0})
	assert.Equal(t, http.StatusCreated, w.Code)

	ctl := f.control(t, st.ID)
	require.NotNil(t, ctl.Status)
	assert.Equal(t, model.StatusAwaiting, *ctl.Status)

	// The acting user is recorded on the entry.
	var entry model.Log
	require.NoError(t, f.db.First(&entry, "station_id = ?", st.ID).Error)
	assert.NotNil(t, entry.UserID)
}

func TestRoleGuards(t *testing.T) {
	f := setupAPI(t)
	st := f.seedStation(t)
	_, laundryToken := f.seedUser(t, "laundry@example.com", model.RoleLaundry)
	_, installerToken := f.seedUser(t, "installer@example.com", model.RoleInstaller)

	t.Run("Reads require authentication", func(t *testing.T) {
		w := f.do("GET", "/api/stations", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = f.do("GET", "/api/stations", laundryToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Transitions require INSTALLER", func(t *testing.T) {
		path := fmt.Sprintf("/api/stations/%d/power-off", st.ID)

		w := f.do("POST", path, laundryToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = f.do("POST", path, installerToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Station lifecycle requires MANAGER", func(t *testing.T) {
		w := f.do("DELETE", fmt.Sprintf("/api/stations/%d", st.ID), installerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("User administration requires SYSADMIN", func(t *testing.T) {
		w := f.do("GET", "/api/users", installerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestLogin(t *testing.T) {
	f := setupAPI(t)
	f.seedUser(t, "operator@example.com", model.RoleManager)

	t.Run("Valid credentials return a token", func(t *testing.T) {
		w := f.do("POST", "/api/login", "", gin.H{
			"email":    "operator@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		token, _ := resp["token"].(string)
		require.NotEmpty(t, token)

		claims, err := f.tokens.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "operator@example.com", claims.Email)
	})

	t.Run("Wrong password is unauthorized", func(t *testing.T) {
		w := f.do("POST", "/api/login", "", gin.H{
			"email":    "operator@example.com",
			"password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Unknown email is unauthorized", func(t *testing.T) {
		w := f.do("POST", "/api/login", "", gin.H{
			"email":    "ghost@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
