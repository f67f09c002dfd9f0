package entity

import "time"

// RoomList is a named grouping of bookable rooms, e.g. a building or floor.
type RoomList struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Alias string `json:"alias"`
}

// Room is read-only state sourced from the calendar provider. Alias is
// derived from the display name unless an override mapping exists, and is
// unique within the deployment's active room set.
type Room struct {
	Name     string `json:"name"`
	Alias    string `json:"alias"`
	Email    string `json:"email"`
	RoomList string `json:"roomList,omitempty"`
}

// Appointment is reconstructed on every poll and never persisted locally.
type Appointment struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Organizer string    `json:"organizer"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Private   bool      `json:"private"`
}

// Redacted returns a copy safe for display when the appointment is private:
// times survive, subject and organizer do not.
func (a Appointment) Redacted() Appointment {
	if !a.Private {
		return a
	}
	a.Subject = "Private"
	a.Organizer = ""
	return a
}

// Status is the per-room view computed fresh each poll cycle.
type Status struct {
	Room    Room         `json:"room"`
	Busy    bool         `json:"busy"`
	Current *Appointment `json:"current,omitempty"`
	Next    *Appointment `json:"next,omitempty"`
	Error   string       `json:"error,omitempty"`
}
