package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-station-backend/internal/model"
	"laundry-station-backend/internal/mw"
	"laundry-station-backend/internal/station"
)

// --- Washing machines ---

// ListMachines handles GET /stations/:station_id/machines.
func (h *Handler) ListMachines(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	machines, err := h.store.ListMachines(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// CreateMachine handles POST /stations/:station_id/machines.
func (h *Handler) CreateMachine(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req machinePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := model.WashingMachine{
		StationID:     id,
		MachineNumber: req.MachineNumber,
		Volume:        req.Volume,
		IsActive:      req.IsActive,
		TrackLength:   req.TrackLength,
	}
	if err := h.engine.CreateMachine(c.Request.Context(), &m, mw.CurrentUser(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

type updateMachineRequest struct {
	Volume      *float64 `json:"volume"`
	IsActive    *bool    `json:"is_active"`
	TrackLength *float64 `json:"track_length"`
}

// UpdateMachine handles PATCH /stations/:station_id/machines/:number.
func (h *Handler) UpdateMachine(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	number, ok := intParam(c, "number")
	if !ok {
		return
	}
	var req updateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.engine.UpdateMachine(c.Request.Context(), id, number, station.MachineUpdate{
		Volume:      req.Volume,
		IsActive:    req.IsActive,
		TrackLength: req.TrackLength,
	}, mw.CurrentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMachine handles DELETE /stations/:station_id/machines/:number.
func (h *Handler) DeleteMachine(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	number, ok := intParam(c, "number")
	if !ok {
		return
	}
	if err := h.engine.DeleteMachine(c.Request.Context(), id, number, mw.CurrentUser(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Washing agents ---

// ListAgents handles GET /stations/:station_id/agents.
func (h *Handler) ListAgents(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	agents, err := h.store.ListAgents(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, agents)
}

// CreateAgent handles POST /stations/:station_id/agents.
func (h *Handler) CreateAgent(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req agentPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := model.WashingAgent{
		StationID:   id,
		AgentNumber: req.AgentNumber,
		Volume:      req.Volume,
		Rollback:    req.Rollback,
	}
	if err := h.engine.CreateAgent(c.Request.Context(), &a, mw.CurrentUser(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

type updateAgentRequest struct {
	Volume   *float64 `json:"volume"`
	Rollback *bool    `json:"rollback"`
}

// UpdateAgent handles PATCH /stations/:station_id/agents/:number.
func (h *Handler) UpdateAgent(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	number, ok := intParam(c, "number")
	if !ok {
		return
	}
	var req updateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.engine.UpdateAgent(c.Request.Context(), id, number, station.AgentUpdate{
		Volume:   req.Volume,
		Rollback: req.Rollback,
	}, mw.CurrentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAgent handles DELETE /stations/:station_id/agents/:number.
func (h *Handler) DeleteAgent(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	number, ok := intParam(c, "number")
	if !ok {
		return
	}
	if err := h.engine.DeleteAgent(c.Request.Context(), id, number, mw.CurrentUser(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Programs ---

// ListPrograms handles GET /stations/:station_id/programs.
func (h *Handler) ListPrograms(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	programs, err := h.store.ListPrograms(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

// CreateProgram handles POST /stations/:station_id/programs.
func (h *Handler) CreateProgram(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req programPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := model.StationProgram{
		StationID:     id,
		ProgramStep:   req.ProgramStep,
		ProgramNumber: req.ProgramStep / 10,
		Name:          req.Name,
		WashingAgents: req.WashingAgents,
	}
	if err := h.engine.CreateProgram(c.Request.Context(), &p, mw.CurrentUser(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type updateProgramRequest struct {
	Name          *string             `json:"name"`
	WashingAgents []model.AgentDosage `json:"washing_agents"`
}

// UpdateProgram handles PATCH /stations/:station_id/programs/:number.
func (h *Handler) UpdateProgram(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	step, ok := intParam(c, "number")
	if !ok {
		return
	}
	var req updateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.engine.UpdateProgram(c.Request.Context(), id, step, req.Name, req.WashingAgents, mw.CurrentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProgram handles DELETE /stations/:station_id/programs/:number.
func (h *Handler) DeleteProgram(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	step, ok := intParam(c, "number")
	if !ok {
		return
	}
	if err := h.engine.DeleteProgram(c.Request.Context(), id, step, mw.CurrentUser(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
