package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"roomdisplay/core/config"
	"roomdisplay/core/constants"
	"roomdisplay/core/errors"
	"roomdisplay/core/logger"
	providersvc "roomdisplay/modules/provider/service"
	"roomdisplay/modules/realtime/hub"
	"roomdisplay/modules/room/entity"
)

type ProviderResolver interface {
	Resolve() (providersvc.CalendarProvider, *errors.AppError)
}

type RoomDirectory interface {
	ActiveRooms(ctx context.Context) ([]entity.Room, *errors.AppError)
}

// HealthSnapshot is the point-in-time view served by the status endpoint.
type HealthSnapshot struct {
	LastSyncTime     *time.Time `json:"lastSyncTime"`
	LastSyncSuccess  bool       `json:"lastSyncSuccess"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
	SecondsSinceSync int64      `json:"secondsSinceSync"`
	IsStale          bool       `json:"isStale"`
	HasNeverSynced   bool       `json:"hasNeverSynced"`
}

// Scheduler runs the recurring poll loop: fetch every room's calendar view,
// compute statuses, broadcast. One instance per deployment; the first
// display connection starts it and it never stops on error.
type Scheduler struct {
	factory  ProviderResolver
	rooms    RoomDirectory
	hub      *hub.Hub
	interval time.Duration
	now      func() time.Time

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once

	mux         sync.RWMutex
	statuses    []entity.Status
	lastSync    time.Time
	lastSuccess time.Time
	lastOK      bool
	lastError   string
	everSynced  bool
}

func NewScheduler(factory ProviderResolver, rooms RoomDirectory, h *hub.Hub) *Scheduler {
	interval := constants.SyncInterval
	if cfg, ok := config.GetSafe(); ok && cfg.Sync.IntervalSeconds > 0 {
		interval = time.Duration(cfg.Sync.IntervalSeconds) * time.Second
	}
	return &Scheduler{
		factory:  factory,
		rooms:    rooms,
		hub:      h,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// EnsureStarted starts the loop exactly once; later calls are no-ops. It is
// the single writer of the running flag.
func (s *Scheduler) EnsureStarted() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	logger.Info("SyncScheduler:EnsureStarted", "interval", s.interval.String())
	go s.loop()
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Stop is for orderly shutdown; the loop itself never stops on error.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// The next cycle is scheduled a full interval after the previous cycle's
// calls complete, not on a wall-clock cadence; slow provider responses
// stretch the effective period. This matches the long-standing behavior
// displays are tuned against, so it is kept deliberately.
func (s *Scheduler) loop() {
	for {
		s.runCycle(context.Background())
		select {
		case <-s.stop:
			return
		case <-time.After(s.interval):
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	prov, appErr := s.factory.Resolve()
	if appErr != nil {
		s.completeCycle(nil, appErr)
		return
	}

	rooms, appErr := s.rooms.ActiveRooms(ctx)
	if appErr != nil {
		s.completeCycle(nil, appErr)
		return
	}

	now := s.now()
	windowStart := startOfDay(now)
	windowEnd := windowStart.Add(24 * time.Hour)

	statuses := make([]entity.Status, 0, len(rooms))
	var firstErr *errors.AppError
	failed := 0
	for _, rm := range rooms {
		st := entity.Status{Room: rm}
		appts, appErr := prov.GetBusyIntervals(ctx, rm.Email, windowStart, windowEnd)
		if appErr != nil {
			// A single failed room degrades that one tile, not the cycle.
			st.Error = appErr.Message
			failed++
			if firstErr == nil {
				firstErr = appErr
			}
			logger.Warn("SyncScheduler:runCycle:RoomFailed", "room", rm.Email, "error", appErr)
		} else {
			current, next := classify(appts, now)
			if current != nil {
				redacted := current.Redacted()
				st.Current = &redacted
				st.Busy = true
			}
			if next != nil {
				redacted := next.Redacted()
				st.Next = &redacted
			}
		}
		statuses = append(statuses, st)
	}

	// Every room failing means the provider itself is down, not the rooms;
	// treat it like an unreachable provider so the previous statuses stay
	// applied instead of being replaced with all-error tiles.
	if len(rooms) > 0 && failed == len(rooms) {
		s.completeCycle(nil, firstErr)
		return
	}

	s.completeCycle(statuses, nil)
}

// completeCycle applies the cycle result and notifies subscribers. On total
// failure the previous statuses stay applied (stale-but-available) and a
// completion notice still goes out so client idle detection stays alive.
func (s *Scheduler) completeCycle(statuses []entity.Status, cycleErr *errors.AppError) {
	now := s.now()

	s.mux.Lock()
	s.lastSync = now
	s.everSynced = true
	if cycleErr != nil {
		s.lastOK = false
		s.lastError = cycleErr.Message
	} else {
		s.lastOK = true
		s.lastError = ""
		s.lastSuccess = now
		s.statuses = statuses
	}
	s.mux.Unlock()

	if cycleErr != nil {
		logger.Error("SyncScheduler:completeCycle:Failed", "error", cycleErr)
		s.hub.Publish(hub.Event{Name: hub.EventSyncCompleted, Payload: s.HealthSnapshot()})
		return
	}

	logger.Info("SyncScheduler:completeCycle:OK", "rooms", len(statuses))
	s.hub.Publish(hub.Event{Name: hub.EventRoomStatuses, Payload: statuses})
}

// Statuses returns the last applied cycle's room statuses.
func (s *Scheduler) Statuses() []entity.Status {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]entity.Status, len(s.statuses))
	copy(out, s.statuses)
	return out
}

func (s *Scheduler) HealthSnapshot() HealthSnapshot {
	s.mux.RLock()
	defer s.mux.RUnlock()

	snap := HealthSnapshot{
		LastSyncSuccess: s.lastOK,
		ErrorMessage:    s.lastError,
		HasNeverSynced:  !s.everSynced,
	}
	if s.everSynced {
		t := s.lastSync
		snap.LastSyncTime = &t
		snap.SecondsSinceSync = int64(s.now().Sub(s.lastSync).Seconds())
	}
	if s.lastSuccess.IsZero() {
		snap.IsStale = true
	} else {
		snap.IsStale = s.now().Sub(s.lastSuccess) > constants.StalenessThreshold
	}
	return snap
}

// classify splits a room's day into the appointment happening now and the
// one after it. Appointments arrive ordered ascending by start.
func classify(appts []entity.Appointment, now time.Time) (current, next *entity.Appointment) {
	for i := range appts {
		a := appts[i]
		if current == nil && !a.Start.After(now) && a.End.After(now) {
			current = &appts[i]
			continue
		}
		if next == nil && a.Start.After(now) {
			next = &appts[i]
			break
		}
	}
	return current, next
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
