package dto

import "time"

// BookRoomRequest carries a fresh booking. The attendees/resources/locations
// fields exist only so their presence can be hard-rejected: a booking may
// occupy the room's own calendar and nothing else.
type BookRoomRequest struct {
	Subject     string `json:"subject"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description,omitempty"`

	Attendees []any `json:"attendees,omitempty"`
	Resources []any `json:"resources,omitempty"`
	Locations []any `json:"locations,omitempty"`
}

type BookRoomResponse struct {
	EventID string    `json:"eventId"`
	Room    string    `json:"room"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// ExtendMeetingRequest must reference the room's current appointment.
type ExtendMeetingRequest struct {
	AppointmentID string `json:"appointmentId"`
	Minutes       int    `json:"minutes"`
}

type ExtendMeetingResponse struct {
	EventID string    `json:"eventId"`
	Room    string    `json:"room"`
	NewEnd  time.Time `json:"newEnd"`
}
