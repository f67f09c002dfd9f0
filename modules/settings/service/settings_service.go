package service

import (
	"encoding/json"
	"sync"

	"roomdisplay/core/config"
	"roomdisplay/core/errors"
	"roomdisplay/core/logger"
	"roomdisplay/modules/realtime/hub"
	"roomdisplay/modules/settings/dto"
)

// Service owns the current display configuration. Every mutation is pushed
// to all connected displays as a named event carrying the full document for
// that kind.
type Service struct {
	mux     sync.RWMutex
	current dto.Settings
	hub     *hub.Hub
}

func NewService(h *hub.Hub, cfg *config.Config) *Service {
	s := &Service{hub: h}
	s.current = dto.Settings{
		Booking: dto.BookingSettings{
			Enabled:            cfg.Booking.Enabled,
			AllowCustomMinutes: cfg.Booking.AllowCustomMinutes,
		},
		Colors: dto.ColorSettings{
			Primary:    "#2563eb",
			Background: "#111827",
			Busy:       "#dc2626",
			Free:       "#16a34a",
		},
	}
	return s
}

func (s *Service) Get() dto.Settings {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.current
}

func (s *Service) BookingEnabled() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.current.Booking.Enabled
}

func (s *Service) AllowCustomMinutes() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.current.Booking.AllowCustomMinutes
}

// Update replaces one settings document and broadcasts it.
func (s *Service) Update(kind string, payload json.RawMessage) (*dto.Settings, *errors.AppError) {
	s.mux.Lock()
	var (
		event    string
		doc      any
		decodeTo any
	)
	switch kind {
	case "wifi":
		decodeTo = &s.current.WiFi
		event = hub.EventWiFiUpdated
	case "logo":
		decodeTo = &s.current.Logo
		event = hub.EventLogoUpdated
	case "sidebar":
		decodeTo = &s.current.Sidebar
		event = hub.EventSidebarUpdated
	case "booking":
		decodeTo = &s.current.Booking
		event = hub.EventBookingUpdated
	case "colors":
		decodeTo = &s.current.Colors
		event = hub.EventColorsUpdated
	default:
		s.mux.Unlock()
		return nil, errors.NewAppError(errors.ErrInvalidInput, "unknown settings kind: "+kind, nil)
	}

	if err := json.Unmarshal(payload, decodeTo); err != nil {
		s.mux.Unlock()
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid settings payload", err)
	}

	switch kind {
	case "wifi":
		doc = s.current.WiFi
	case "logo":
		doc = s.current.Logo
	case "sidebar":
		doc = s.current.Sidebar
	case "booking":
		doc = s.current.Booking
	case "colors":
		doc = s.current.Colors
	}
	snapshot := s.current
	s.mux.Unlock()

	logger.Info("SettingsService:Update", "kind", kind)
	s.hub.Publish(hub.Event{Name: event, Payload: doc})
	return &snapshot, nil
}

// DisableBooking is the kill switch used when the provider reports a
// missing write permission: every display learns immediately that booking
// is off instead of collecting failures one user at a time.
func (s *Service) DisableBooking(reason string) {
	s.mux.Lock()
	already := !s.current.Booking.Enabled
	s.current.Booking.Enabled = false
	s.current.Booking.DisabledReason = reason
	doc := s.current.Booking
	s.mux.Unlock()

	if already {
		return
	}
	logger.Warn("SettingsService:DisableBooking", "reason", reason)
	s.hub.Publish(hub.Event{Name: hub.EventBookingUpdated, Payload: doc})
}
