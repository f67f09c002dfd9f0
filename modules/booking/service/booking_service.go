package service

import (
	"context"
	"strings"
	"time"

	"roomdisplay/core/constants"
	"roomdisplay/core/errors"
	"roomdisplay/core/logger"
	"roomdisplay/modules/booking/dto"
	providersvc "roomdisplay/modules/provider/service"
	"roomdisplay/modules/room/entity"
)

type ProviderResolver interface {
	Resolve() (providersvc.CalendarProvider, *errors.AppError)
}

type RoomDirectory interface {
	FindByAliasOrEmail(ctx context.Context, key string) (*entity.Room, *errors.AppError)
}

// BookingGate exposes and mutates the booking feature flag; a detected
// write-permission failure flips it off for every connected display.
type BookingGate interface {
	BookingEnabled() bool
	AllowCustomMinutes() bool
	DisableBooking(reason string)
}

// AuditRecorder is optional; a nil recorder disables the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, action, roomEmail, subject string, start, end time.Time, outcome, detail string)
}

// Coordinator drives a booking or extension request through validate, read,
// conflict-check and commit. Terminal on first success or first hard
// failure; nothing is retried and the calendar provider stays the only
// source of truth.
type Coordinator struct {
	factory ProviderResolver
	rooms   RoomDirectory
	gate    BookingGate
	audit   AuditRecorder
	now     func() time.Time
}

func NewCoordinator(factory ProviderResolver, rooms RoomDirectory, gate BookingGate, audit AuditRecorder) *Coordinator {
	return &Coordinator{
		factory: factory,
		rooms:   rooms,
		gate:    gate,
		audit:   audit,
		now:     time.Now,
	}
}

// BookRoom books a fresh meeting on the room's own calendar.
//
// A successful commit does not update the broadcast room list; the next
// poll cycle, at most one interval later, is what surfaces the change to
// displays. That staleness window is the documented consistency model.
func (c *Coordinator) BookRoom(ctx context.Context, roomKey string, req *dto.BookRoomRequest) (*dto.BookRoomResponse, *errors.AppError) {
	if c.gate != nil && !c.gate.BookingEnabled() {
		return nil, errors.NewAppError(errors.ErrProviderAuth, "booking is currently disabled", nil)
	}

	start, end, appErr := c.validateBooking(req)
	if appErr != nil {
		return nil, appErr
	}

	rm, appErr := c.rooms.FindByAliasOrEmail(ctx, roomKey)
	if appErr != nil {
		return nil, appErr
	}

	prov, appErr := c.factory.Resolve()
	if appErr != nil {
		return nil, appErr
	}

	busy, appErr := prov.GetBusyIntervals(ctx, rm.Email, start, end)
	if appErr != nil {
		return nil, appErr
	}

	if hit := FindConflict(Interval{Start: start, End: end}, busy, ""); hit != nil {
		logger.Info("BookingCoordinator:BookRoom:Conflict", "room", rm.Email, "conflicting_event", hit.ID)
		c.record(ctx, "book", rm.Email, req.Subject, start, end, "conflict", "overlaps "+hit.ID)
		return nil, errors.NewAppError(errors.ErrConflict, "room is already booked for the requested time", nil)
	}

	eventID, appErr := prov.CreateEvent(ctx, rm.Email, strings.TrimSpace(req.Subject), start, end, req.Description)
	if appErr != nil {
		if appErr.Code == errors.ErrProviderAuth && c.gate != nil {
			c.gate.DisableBooking("calendar provider rejected the booking write")
		}
		c.record(ctx, "book", rm.Email, req.Subject, start, end, "provider_error", appErr.Message)
		return nil, appErr
	}

	logger.Info("BookingCoordinator:BookRoom:Created", "room", rm.Email, "event_id", eventID)
	c.record(ctx, "book", rm.Email, req.Subject, start, end, "created", eventID)
	return &dto.BookRoomResponse{
		EventID: eventID,
		Room:    rm.Alias,
		Start:   start,
		End:     end,
	}, nil
}

// ExtendMeeting pushes the current appointment's end out by the requested
// minutes, pre-checking the tail interval against the rest of the day for
// both providers uniformly.
func (c *Coordinator) ExtendMeeting(ctx context.Context, roomKey string, req *dto.ExtendMeetingRequest) (*dto.ExtendMeetingResponse, *errors.AppError) {
	if c.gate != nil && !c.gate.BookingEnabled() {
		return nil, errors.NewAppError(errors.ErrProviderAuth, "booking is currently disabled", nil)
	}

	if appErr := c.validateExtension(req); appErr != nil {
		return nil, appErr
	}

	rm, appErr := c.rooms.FindByAliasOrEmail(ctx, roomKey)
	if appErr != nil {
		return nil, appErr
	}

	prov, appErr := c.factory.Resolve()
	if appErr != nil {
		return nil, appErr
	}

	// The whole calendar day covers both the lookup of the current
	// appointment and the conflict window for its tail.
	now := c.now()
	busy, appErr := prov.GetBusyIntervals(ctx, rm.Email, startOfDay(now), EndOfDay(now))
	if appErr != nil {
		return nil, appErr
	}

	var current *entity.Appointment
	for i := range busy {
		if busy[i].ID == req.AppointmentID {
			current = &busy[i]
			break
		}
	}
	if current == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "appointment not found on the room's calendar", nil)
	}
	if current.Start.After(now) || !current.End.After(now) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "only the room's current appointment can be extended", nil)
	}

	newEnd := current.End.Add(time.Duration(req.Minutes) * time.Minute)
	if CrossesEndOfDay(current.Start, newEnd) {
		c.record(ctx, "extend", rm.Email, current.Subject, current.End, newEnd, "conflict", "end of day")
		return nil, errors.NewAppError(errors.ErrConflict, "extension would cross the end of the day", nil)
	}

	tail := Interval{Start: current.End, End: newEnd}
	if hit := FindConflict(tail, busy, current.ID); hit != nil {
		logger.Info("BookingCoordinator:ExtendMeeting:Conflict", "room", rm.Email, "conflicting_event", hit.ID)
		c.record(ctx, "extend", rm.Email, current.Subject, current.End, newEnd, "conflict", "overlaps "+hit.ID)
		return nil, errors.NewAppError(errors.ErrConflict, "another meeting starts before the extended end", nil)
	}

	if appErr := prov.PatchEventEnd(ctx, rm.Email, current.ID, newEnd); appErr != nil {
		if appErr.Code == errors.ErrProviderAuth && c.gate != nil {
			c.gate.DisableBooking("calendar provider rejected the extension write")
		}
		c.record(ctx, "extend", rm.Email, current.Subject, current.End, newEnd, "provider_error", appErr.Message)
		return nil, appErr
	}

	logger.Info("BookingCoordinator:ExtendMeeting:Patched", "room", rm.Email, "event_id", current.ID, "new_end", newEnd.Format(time.RFC3339))
	c.record(ctx, "extend", rm.Email, current.Subject, current.End, newEnd, "extended", current.ID)
	return &dto.ExtendMeetingResponse{
		EventID: current.ID,
		Room:    rm.Alias,
		NewEnd:  newEnd,
	}, nil
}

// validateBooking rejects bad input before any provider contact.
func (c *Coordinator) validateBooking(req *dto.BookRoomRequest) (time.Time, time.Time, *errors.AppError) {
	fail := func(msg string) (time.Time, time.Time, *errors.AppError) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, msg, nil)
	}

	if len(req.Attendees) > 0 || len(req.Resources) > 0 || len(req.Locations) > 0 {
		// Hard rejection, not silent stripping: a display booking must
		// never invite people or claim other resources.
		return fail("attendees, resources and locations are not allowed")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return fail("subject is required")
	}
	if req.Start == "" || req.End == "" {
		return fail("start and end are required")
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return fail("start must be an ISO-8601 timestamp")
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		return fail("end must be an ISO-8601 timestamp")
	}
	if !start.Before(end) {
		return fail("start must be before end")
	}
	// The grace window tolerates client clock skew so "book now" works.
	if start.Before(c.now().Add(-constants.BookingGraceWindow)) {
		return fail("start must not be in the past")
	}
	return start, end, nil
}

func (c *Coordinator) validateExtension(req *dto.ExtendMeetingRequest) *errors.AppError {
	if req.AppointmentID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "appointmentId is required", nil)
	}
	for _, allowed := range constants.AllowedExtensionMinutes {
		if req.Minutes == allowed {
			return nil
		}
	}
	if c.gate != nil && c.gate.AllowCustomMinutes() && req.Minutes >= 1 && req.Minutes <= constants.MaxCustomExtension {
		return nil
	}
	return errors.NewAppError(errors.ErrInvalidInput, "extension length is not allowed", nil)
}

func (c *Coordinator) record(ctx context.Context, action, roomEmail, subject string, start, end time.Time, outcome, detail string) {
	if c.audit == nil {
		return
	}
	c.audit.Record(ctx, action, roomEmail, subject, start, end, outcome, detail)
}
