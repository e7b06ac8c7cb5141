package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	authpkg "laundry-station-backend/internal/auth"
	"laundry-station-backend/internal/model"
	"laundry-station-backend/internal/mw"
	"laundry-station-backend/internal/station"
	"laundry-station-backend/internal/store"
)

// RouterConfig carries the tunables the router needs.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, e *station.Engine, tokens *authpkg.Manager, webpushOptions *webpush.Options, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, e, tokens, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)
	authed := mw.Auth(tokens, s)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/login", handler.Login)

		// Hardware-facing endpoints: stations report events here. The
		// hardware authenticates at the transport layer, not with JWT.
		api.POST("/stations/:station_id/logs", handler.IngestStationLog)
		api.POST("/stations/:station_id/errors", handler.IngestStationError)

		// Push subscriptions (browser clients).
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	ops := api.Group("")
	ops.Use(authed)
	{
		// Reads, any authenticated role.
		ops.GET("/stations", handler.ListStations)
		ops.GET("/stations/:station_id", handler.GetStation)
		ops.GET("/stations/:station_id/control", handler.GetControl)
		ops.GET("/stations/:station_id/machines", caching, handler.ListMachines)
		ops.GET("/stations/:station_id/agents", caching, handler.ListAgents)
		ops.GET("/stations/:station_id/programs", caching, handler.ListPrograms)
		ops.GET("/stations/:station_id/logs", handler.ListLogs)
		ops.GET("/stations/:station_id/errors", handler.ListErrors)
		ops.GET("/stations/:station_id/changes", handler.ListChanges)
		ops.GET("/stations/:station_id/maintenance", handler.ListMaintenance)
		ops.GET("/stations/:station_id/owner", handler.GetOwner)

		ops.POST("/stations/:station_id/server-logs", handler.RecordServerLog)

		// Control transitions and inventory edits, INSTALLER and above.
		installer := ops.Group("")
		installer.Use(mw.RequireRole(model.RoleInstaller))
		{
			installer.POST("/stations/:station_id/power-on", handler.PowerOn)
			installer.POST("/stations/:station_id/power-off", handler.PowerOff)
			installer.POST("/stations/:station_id/heater", handler.SetHeater)
			installer.POST("/stations/:station_id/clear-error", handler.ClearError)
			installer.POST("/stations/:station_id/manual-working", handler.StartManualWorking)
			installer.PUT("/stations/:station_id/working-process", handler.UpdateWorkingProcess)
			installer.POST("/stations/:station_id/maintenance", handler.StartMaintenance)
			installer.DELETE("/stations/:station_id/maintenance", handler.EndMaintenance)
			installer.POST("/stations/:station_id/activate", handler.Activate)
			installer.PATCH("/stations/:station_id/settings", handler.UpdateSettings)

			installer.POST("/stations/:station_id/machines", handler.CreateMachine)
			installer.PATCH("/stations/:station_id/machines/:number", handler.UpdateMachine)
			installer.DELETE("/stations/:station_id/machines/:number", handler.DeleteMachine)
			installer.POST("/stations/:station_id/agents", handler.CreateAgent)
			installer.PATCH("/stations/:station_id/agents/:number", handler.UpdateAgent)
			installer.DELETE("/stations/:station_id/agents/:number", handler.DeleteAgent)
			installer.POST("/stations/:station_id/programs", handler.CreateProgram)
			installer.PATCH("/stations/:station_id/programs/:number", handler.UpdateProgram)
			installer.DELETE("/stations/:station_id/programs/:number", handler.DeleteProgram)
		}

		// Station lifecycle and ownership, MANAGER and above.
		manager := ops.Group("")
		manager.Use(mw.RequireRole(model.RoleManager))
		{
			manager.POST("/stations", handler.CreateStation)
			manager.DELETE("/stations/:station_id", handler.DeleteStation)
			manager.PATCH("/stations/:station_id", handler.UpdateGeneral)
			manager.PUT("/stations/:station_id/owner", handler.AssignOwner)
			manager.DELETE("/stations/:station_id/owner", handler.ReleaseOwner)
		}

		// User administration, SYSADMIN only.
		admin := ops.Group("")
		admin.Use(mw.RequireRole(model.RoleSysadmin))
		{
			admin.POST("/users", handler.CreateUser)
			admin.GET("/users", handler.ListUsers)
			admin.GET("/users/:user_id", handler.GetUser)
			admin.PATCH("/users/:user_id", handler.UpdateUser)
			admin.DELETE("/users/:user_id", handler.DeleteUser)
		}
	}

	return r
}
