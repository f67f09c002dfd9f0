package server

import (
	"fmt"

	"roomdisplay/core/cache"
	"roomdisplay/core/config"
	"roomdisplay/core/database"
	"roomdisplay/core/logger"
	"roomdisplay/core/middleware"
	"roomdisplay/modules/booking"
	providersvc "roomdisplay/modules/provider/service"
	"roomdisplay/modules/realtime"
	"roomdisplay/modules/realtime/hub"
	"roomdisplay/modules/room"
	roomservice "roomdisplay/modules/room/service"
	"roomdisplay/modules/settings"
	settingsservice "roomdisplay/modules/settings/service"
	syncmod "roomdisplay/modules/sync"
	syncservice "roomdisplay/modules/sync/service"
	"roomdisplay/modules/tasks"

	"github.com/labstack/echo/v4"
)

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Server.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover(), middleware.CORS(), middleware.RequestID(), middleware.RequestLogger())

	c := cache.New(cfg.Redis)
	factory := providersvc.NewFactory(c)
	roomSvc := roomservice.NewService(factory, c)

	h := hub.New()
	settingsSvc := settingsservice.NewService(h, cfg)

	sched := syncservice.NewScheduler(factory, roomSvc, h)
	// The first display connection starts polling; EnsureStarted is
	// idempotent so further connections are no-ops.
	h.OnFirstSubscribe(sched.EnsureStarted)

	var db *database.Database
	if cfg.Database.DSN != "" {
		db, err = database.InitDB(cfg.Database)
		if err != nil {
			logger.Warn("Server:Run:AuditDatabaseUnavailable", "error", err)
			db = nil
		}
	}

	room.Init(e, roomSvc, sched)
	booking.Init(e, db, factory, roomSvc, settingsSvc)
	syncmod.Init(e, sched)
	realtime.Init(e, h)
	settings.Init(e, settingsSvc)

	if cfg.Redis.Addr != "" {
		stop, err := tasks.Start(cfg, roomSvc)
		if err != nil {
			logger.Warn("Server:Run:BackgroundTasksDisabled", "error", err)
		} else {
			defer stop()
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server:Run:Listening", "addr", addr, "provider", cfg.Provider.Kind)
	return e.Start(addr)
}
