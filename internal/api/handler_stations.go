package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"laundry-station-backend/internal/model"
	"laundry-station-backend/internal/mw"
	"laundry-station-backend/internal/station"
)

type machinePayload struct {
	MachineNumber int     `json:"machine_number" binding:"required"`
	Volume        float64 `json:"volume"`
	IsActive      bool    `json:"is_active"`
	TrackLength   float64 `json:"track_length"`
}

type agentPayload struct {
	AgentNumber int     `json:"agent_number" binding:"required"`
	Volume      float64 `json:"volume"`
	Rollback    bool    `json:"rollback"`
}

type programPayload struct {
	ProgramStep   int                 `json:"program_step" binding:"required"`
	Name          string              `json:"name"`
	WashingAgents []model.AgentDosage `json:"washing_agents"`
}

type createStationRequest struct {
	Name            *string          `json:"name"`
	Serial          string           `json:"serial"`
	IsActive        bool             `json:"is_active"`
	HashedWifi      string           `json:"hashed_wifi"`
	Region          model.Region     `json:"region" binding:"required"`
	Comment         string           `json:"comment"`
	WashingMachines []machinePayload `json:"washing_machines"`
	WashingAgents   []agentPayload   `json:"washing_agents"`
	Programs        []programPayload `json:"programs"`
}

type stationResponse struct {
	Station  model.Station          `json:"station"`
	Settings model.StationSettings  `json:"settings"`
	Control  model.StationControl   `json:"control"`
	Machines []model.WashingMachine `json:"washing_machines"`
	Agents   []model.WashingAgent   `json:"washing_agents"`
	Programs []model.StationProgram `json:"programs"`
}

// CreateStation provisions a station together with its settings, control and
// inventories in one transaction.
func (h *Handler) CreateStation(c *gin.Context) {
	var req createStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	serial := req.Serial
	if serial == "" {
		serial = uuid.New().String()
	}

	st := model.Station{
		Name:        req.Name,
		Serial:      serial,
		IsActive:    req.IsActive,
		IsProtected: false,
		HashedWifi:  req.HashedWifi,
		Region:      req.Region,
		Comment:     req.Comment,
	}
	st.Settings = model.StationSettings{StationPower: req.IsActive}
	if req.IsActive {
		status := model.StatusAwaiting
		st.Control = model.StationControl{Status: &status}
	}

	agentNumbers := make(map[int]bool)
	for _, a := range req.WashingAgents {
		st.Agents = append(st.Agents, model.WashingAgent{
			AgentNumber: a.AgentNumber,
			Volume:      a.Volume,
			Rollback:    a.Rollback,
		})
		agentNumbers[a.AgentNumber] = true
	}
	for _, m := range req.WashingMachines {
		st.Machines = append(st.Machines, model.WashingMachine{
			MachineNumber: m.MachineNumber,
			Volume:        m.Volume,
			IsActive:      m.IsActive,
			TrackLength:   m.TrackLength,
		})
	}
	for _, p := range req.Programs {
		if err := station.ValidateProgramStep(p.ProgramStep, p.ProgramStep/10); err != nil {
			respondErr(c, err)
			return
		}
		for _, d := range p.WashingAgents {
			if !agentNumbers[d.AgentNumber] {
				c.JSON(http.StatusBadRequest, gin.H{"error": "program references unknown washing agent"})
				return
			}
		}
		st.Programs = append(st.Programs, model.StationProgram{
			ProgramStep:   p.ProgramStep,
			ProgramNumber: p.ProgramStep / 10,
			Name:          p.Name,
			WashingAgents: p.WashingAgents,
		})
	}

	if err := station.Validate(&st.Control, &st.Settings, st.IsActive); err != nil {
		respondErr(c, err)
		return
	}
	if err := h.store.CreateStation(c.Request.Context(), &st); err != nil {
		respondErr(c, err)
		return
	}
	h.respondStation(c, http.StatusCreated, st.ID)
}

// respondStation loads and returns the full station aggregate.
func (h *Handler) respondStation(c *gin.Context, status int, id uint) {
	ctx := c.Request.Context()
	st, err := h.store.GetStation(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	settings, err := h.store.GetSettings(ctx, id, false)
	if err != nil {
		respondErr(c, err)
		return
	}
	control, err := h.store.GetControl(ctx, id, false)
	if err != nil {
		respondErr(c, err)
		return
	}
	machines, err := h.store.ListMachines(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	agents, err := h.store.ListAgents(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	programs, err := h.store.ListPrograms(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(status, stationResponse{
		Station:  *st,
		Settings: *settings,
		Control:  *control,
		Machines: machines,
		Agents:   agents,
		Programs: programs,
	})
}

// GetStation returns the full aggregate of one station.
func (h *Handler) GetStation(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	h.respondStation(c, http.StatusOK, id)
}

// ListStations returns the station list, scoped to the acting user's region
// for REGION_MANAGER and INSTALLER roles.
func (h *Handler) ListStations(c *gin.Context) {
	var region *model.Region
	if user := mw.CurrentUser(c); user != nil {
		if user.Role == model.RoleRegionManager || user.Role == model.RoleInstaller {
			region = user.Region
		}
	}
	stations, err := h.store.ListStations(c.Request.Context(), region)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, stations)
}

// DeleteStation removes a station and all its dependent aggregates.
func (h *Handler) DeleteStation(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteStation(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateSettingsRequest struct {
	StationPower *bool `json:"station_power"`
	TehPower     *bool `json:"teh_power"`
}

// UpdateSettings applies an operator-driven settings change through the
// transition engine, cascades included.
func (h *Handler) UpdateSettings(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.engine.UpdateSettings(c.Request.Context(), id, req.StationPower, req.TehPower, mw.CurrentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type updateGeneralRequest struct {
	Name        *string       `json:"name"`
	IsActive    *bool         `json:"is_active"`
	IsProtected *bool         `json:"is_protected"`
	Region      *model.Region `json:"region"`
	Comment     *string       `json:"comment"`
	HashedWifi  *string       `json:"hashed_wifi"`
}

// UpdateGeneral applies an operator-driven general-params change, including
// the deactivation cascade.
func (h *Handler) UpdateGeneral(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req updateGeneralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, err := h.engine.UpdateGeneral(c.Request.Context(), id, station.GeneralUpdate{
		Name:        req.Name,
		IsActive:    req.IsActive,
		IsProtected: req.IsProtected,
		Region:      req.Region,
		Comment:     req.Comment,
		HashedWifi:  req.HashedWifi,
	}, mw.CurrentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	h.respondStation(c, http.StatusOK, id)
}

type assignOwnerRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// AssignOwner binds a LAUNDRY-role user to the station.
func (h *Handler) AssignOwner(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req assignOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	user, err := h.store.GetUser(ctx, req.UserID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if user.Role != model.RoleLaundry {
		c.JSON(http.StatusConflict, gin.H{"error": "owner must have the LAUNDRY role"})
		return
	}
	if _, err := h.store.GetStation(ctx, id); err != nil {
		respondErr(c, err)
		return
	}
	if err := h.store.AssignOwner(ctx, id, req.UserID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReleaseOwner removes the station's owner binding.
func (h *Handler) ReleaseOwner(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	if err := h.store.ReleaseOwner(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetOwner returns the station's owner, if any.
func (h *Handler) GetOwner(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	user, err := h.store.GetOwner(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponseFrom(user))
}
