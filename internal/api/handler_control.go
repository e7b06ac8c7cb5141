package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-station-backend/internal/mw"
	"laundry-station-backend/internal/station"
)

// Control endpoints invoke one transition each. The engine owns all state
// rules; handlers only bind parameters and map errors.

func (h *Handler) runTransition(c *gin.Context, fn func() (*station.State, error)) {
	state, err := fn()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetControl returns the current control state of a station.
func (h *Handler) GetControl(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	control, err := h.store.GetControl(c.Request.Context(), id, false)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, control)
}

// PowerOff handles POST /stations/:station_id/power-off.
func (h *Handler) PowerOff(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	h.runTransition(c, func() (*station.State, error) {
		return h.engine.PowerOff(c.Request.Context(), id, mw.CurrentUser(c))
	})
}

// PowerOn handles POST /stations/:station_id/power-on.
func (h *Handler) PowerOn(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	h.runTransition(c, func() (*station.State, error) {
		return h.engine.PowerOn(c.Request.Context(), id, mw.CurrentUser(c))
	})
}

type heaterRequest struct {
	On *bool `json:"on" binding:"required"`
}

// SetHeater handles POST /stations/:station_id/heater.
func (h *Handler) SetHeater(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req heaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runTransition(c, func() (*station.State, error) {
		return h.engine.SetHeater(c.Request.Context(), id, *req.On, mw.CurrentUser(c))
	})
}

// ClearError handles POST /stations/:station_id/clear-error.
func (h *Handler) ClearError(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	h.runTransition(c, func() (*station.State, error) {
		return h.engine.ClearError(c.Request.Context(), id, mw.CurrentUser(c))
	})
}

type manualWorkingRequest struct {
	MachineNumber int     `json:"machine_number" binding:"required"`
	AgentNumber   int     `json:"agent_number" binding:"required"`
	Volume        float64 `json:"volume" binding:"required"`
}

// StartManualWorking handles POST /stations/:station_id/manual-working.
func (h *Handler) StartManualWorking(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req manualWorkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runTransition(c, func() (*station.State, error) {
		return h.engine.StartManualWorking(c.Request.Context(), id, req.MachineNumber, req.AgentNumber, req.Volume, mw.CurrentUser(c))
	})
}

type workingProcessRequest struct {
	ProgramStep   int   `json:"program_step" binding:"required"`
	MachineNumber int   `json:"machine_number" binding:"required"`
	MachinesQueue []int `json:"machines_queue"`
}

// UpdateWorkingProcess handles PUT /stations/:station_id/working-process.
func (h *Handler) UpdateWorkingProcess(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req workingProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runTransition(c, func() (*station.State, error) {
		return h.engine.UpdateWorkingProcess(c.Request.Context(), id, req.ProgramStep, req.MachineNumber, req.MachinesQueue, mw.CurrentUser(c))
	})
}

// StartMaintenance handles POST /stations/:station_id/maintenance.
func (h *Handler) StartMaintenance(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	h.runTransition(c, func() (*station.State, error) {
		return h.engine.StartMaintenance(c.Request.Context(), id, mw.CurrentUser(c))
	})
}

// EndMaintenance handles DELETE /stations/:station_id/maintenance.
func (h *Handler) EndMaintenance(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	h.runTransition(c, func() (*station.State, error) {
		return h.engine.EndMaintenance(c.Request.Context(), id, mw.CurrentUser(c))
	})
}

// Activate handles POST /stations/:station_id/activate.
func (h *Handler) Activate(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	h.runTransition(c, func() (*station.State, error) {
		return h.engine.Activate(c.Request.Context(), id, mw.CurrentUser(c))
	})
}
