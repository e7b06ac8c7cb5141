package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-station-backend/internal/logs"
	"laundry-station-backend/internal/model"
	"laundry-station-backend/internal/mw"
)

type ingestLogRequest struct {
	Code float64      `json:"code" binding:"required"`
	Data logs.Payload `json:"data"`
}

// IngestStationLog handles POST /stations/:station_id/logs: the hardware's
// event reporting endpoint. The raw entry is recorded for every accepted
// code, even when the classifier infers no action or the implied transition
// is rejected.
func (h *Handler) IngestStationLog(c *gin.Context) {
	h.ingestLog(c, logs.ActorStation)
}

// RecordServerLog handles POST /stations/:station_id/server-logs: an
// operator-written log entry. Server-originated entries never drive a
// transition.
func (h *Handler) RecordServerLog(c *gin.Context) {
	h.ingestLog(c, logs.ActorServer)
}

func (h *Handler) ingestLog(c *gin.Context, actor logs.Actor) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req ingestLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	code, err := logs.ParseCode(req.Code)
	if err != nil {
		respondErr(c, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.GetStation(ctx, id); err != nil {
		respondErr(c, err)
		return
	}

	classification := logs.Classify(actor, code)
	if classification.Action != logs.ActionNone {
		if err := classification.Schema.Validate(req.Data); err != nil {
			respondErr(c, err)
			return
		}
	}

	rec := model.Log{StationID: id, Code: int(code), Content: model.LogContent(req.Data)}
	if user := mw.CurrentUser(c); user != nil {
		uid := user.ID
		rec.UserID = &uid
	}
	if err := h.store.AppendLog(ctx, &rec); err != nil {
		respondErr(c, err)
		return
	}

	// The record stays even when the implied transition is rejected.
	if err := h.engine.ApplyAction(ctx, id, classification.Action, req.Data); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"action": classification.Action})
}

type ingestErrorRequest struct {
	Code  float64      `json:"code" binding:"required"`
	Scope logs.Scope   `json:"scope" binding:"required"`
	Data  logs.Payload `json:"data"`
}

// IngestStationError handles POST /stations/:station_id/errors.
func (h *Handler) IngestStationError(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req ingestErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Scope != logs.ScopePublic && req.Scope != logs.ScopeService {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be PUBLIC or SERVICE"})
		return
	}
	code, err := logs.ParseCode(req.Code)
	if err != nil {
		respondErr(c, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.GetStation(ctx, id); err != nil {
		respondErr(c, err)
		return
	}

	classification := logs.ClassifyError(logs.ActorStation, code, req.Scope)
	if classification.Action != logs.ActionNone {
		if err := classification.Schema.Validate(req.Data); err != nil {
			respondErr(c, err)
			return
		}
	}

	rec := model.ErrorLog{StationID: id, Code: int(code), Scope: string(req.Scope), Content: model.LogContent(req.Data)}
	if err := h.store.AppendError(ctx, &rec); err != nil {
		respondErr(c, err)
		return
	}

	if err := h.engine.ApplyAction(ctx, id, classification.Action, req.Data); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"action": classification.Action})
}

// ListLogs handles GET /stations/:station_id/logs.
func (h *Handler) ListLogs(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	entries, err := h.store.ListLogs(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListErrors handles GET /stations/:station_id/errors.
func (h *Handler) ListErrors(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	entries, err := h.store.ListErrors(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListChanges handles GET /stations/:station_id/changes.
func (h *Handler) ListChanges(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	entries, err := h.store.ListChanges(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListMaintenance handles GET /stations/:station_id/maintenance.
func (h *Handler) ListMaintenance(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	entries, err := h.store.ListMaintenance(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
