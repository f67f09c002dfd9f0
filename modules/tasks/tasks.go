package tasks

import (
	"context"

	"roomdisplay/core/config"
	"roomdisplay/core/logger"
	roomservice "roomdisplay/modules/room/service"

	"github.com/hibiken/asynq"
)

const TypeRosterRefresh = "roster:refresh"

func NewRosterRefreshTask() *asynq.Task {
	return asynq.NewTask(TypeRosterRefresh, nil)
}

type Handler struct {
	rooms *roomservice.Service
}

func NewHandler(rooms *roomservice.Service) *Handler {
	return &Handler{rooms: rooms}
}

// HandleRosterRefresh rebuilds the room roster so added or renamed rooms
// appear without restarting the service.
func (h *Handler) HandleRosterRefresh(ctx context.Context, t *asynq.Task) error {
	logger.Info("Tasks:HandleRosterRefresh:Start")
	if appErr := h.rooms.RefreshRoster(ctx); appErr != nil {
		logger.Error("Tasks:HandleRosterRefresh:Failed", "error", appErr)
		return appErr
	}
	logger.Info("Tasks:HandleRosterRefresh:Done")
	return nil
}

// Start runs the asynq worker and the periodic roster-refresh schedule.
// The returned stop function shuts both down.
func Start(cfg *config.Config, rooms *roomservice.Service) (func(), error) {
	opt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(opt, asynq.Config{Concurrency: 1})
	mux := asynq.NewServeMux()
	h := NewHandler(rooms)
	mux.HandleFunc(TypeRosterRefresh, h.HandleRosterRefresh)

	if err := srv.Start(mux); err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, nil)
	cron := cfg.Sync.RosterRefreshCron
	if cron == "" {
		cron = "@every 1h"
	}
	entryID, err := scheduler.Register(cron, NewRosterRefreshTask())
	if err != nil {
		srv.Shutdown()
		return nil, err
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return nil, err
	}

	logger.Info("Tasks:Start:Running", "roster_refresh_entry", entryID, "cron", cron)
	return func() {
		scheduler.Shutdown()
		srv.Shutdown()
	}, nil
}
