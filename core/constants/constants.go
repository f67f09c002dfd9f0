package constants

import "time"

const (
	// DefaultTimeout bounds individual provider HTTP calls.
	DefaultTimeout = 10 * time.Second

	// Sync loop
	SyncInterval       = 60 * time.Second
	StalenessThreshold = 3 * time.Minute

	// Booking
	BookingGraceWindow  = 2 * time.Minute
	MaxCustomExtension  = 240
	DefaultMeetingTitle = "Ad-hoc meeting"

	// Provider caps
	MaxRoomsPerList = 100
	MaxAppointments = 50
	GraphPageSize   = 25

	// Cache keys and TTLs
	GraphTokenCacheKey = "provider:graph:token"
	RoomRosterCacheKey = "rooms:roster"
	RoomRosterTTL      = time.Hour

	// Realtime
	SubscriberBuffer = 16

	ContextRequestID = "request_id"
)

// AllowedExtensionMinutes are the fixed extension lengths every deployment accepts.
var AllowedExtensionMinutes = []int{15, 30, 60, 120}
