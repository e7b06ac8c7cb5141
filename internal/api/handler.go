package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"laundry-station-backend/internal/auth"
	"laundry-station-backend/internal/station"
	"laundry-station-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	engine  *station.Engine
	tokens  *auth.Manager
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, e *station.Engine, tokens *auth.Manager, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		engine:  e,
		tokens:  tokens,
		webpush: webpushOptions,
	}
}
