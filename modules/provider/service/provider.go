package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"roomdisplay/core/cache"
	"roomdisplay/core/config"
	"roomdisplay/core/errors"
	"roomdisplay/modules/room/entity"
)

// CalendarProvider abstracts the calendar backend. Reads are idempotent;
// writes are never retried by callers.
type CalendarProvider interface {
	ListRoomLists(ctx context.Context) ([]entity.RoomList, *errors.AppError)
	ListRooms(ctx context.Context, roomListID string) ([]entity.Room, *errors.AppError)
	// GetBusyIntervals returns appointments ordered ascending by start,
	// capped at constants.MaxAppointments.
	GetBusyIntervals(ctx context.Context, roomID string, windowStart, windowEnd time.Time) ([]entity.Appointment, *errors.AppError)
	// CreateEvent books the room's own calendar. The room is implicitly
	// organizer and location; an attendee list is never set.
	CreateEvent(ctx context.Context, roomID, subject string, start, end time.Time, description string) (string, *errors.AppError)
	PatchEventEnd(ctx context.Context, roomID, eventID string, newEnd time.Time) *errors.AppError
}

// Factory resolves the active provider from current configuration. The
// scheduler calls Resolve on every tick, so flipping provider.kind takes
// effect without a restart. Instances are reused while their configuration
// is unchanged so per-instance state (the Graph token) survives across ticks.
type Factory struct {
	cache cache.Cache

	mux      sync.Mutex
	graphCfg config.GraphConfig
	graph    *GraphService
	ewsCfg   config.EWSConfig
	ews      *EWSService
}

func NewFactory(c cache.Cache) *Factory {
	return &Factory{cache: c}
}

func (f *Factory) Resolve() (CalendarProvider, *errors.AppError) {
	cfg, ok := config.GetSafe()
	if !ok {
		return nil, errors.NewAppError(errors.ErrInternalServer, "configuration not initialized", nil)
	}

	f.mux.Lock()
	defer f.mux.Unlock()
	switch strings.ToLower(cfg.Provider.Kind) {
	case "graph", "":
		if f.graph == nil || f.graphCfg != cfg.Provider.Graph {
			f.graphCfg = cfg.Provider.Graph
			f.graph = NewGraphService(f.graphCfg, f.cache)
		}
		return f.graph, nil
	case "ews":
		if f.ews == nil || f.ewsCfg != cfg.Provider.EWS {
			f.ewsCfg = cfg.Provider.EWS
			f.ews = NewEWSService(f.ewsCfg)
		}
		return f.ews, nil
	default:
		return nil, errors.NewAppError(errors.ErrInternalServer, "unknown calendar provider: "+cfg.Provider.Kind, nil)
	}
}
