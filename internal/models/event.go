package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Event struct {
	gorm.Model

	Title       string    `gorm:"not null"`
	Description string
	Date        time.Time `gorm:"not null"`
	Time        string    `gorm:"not null"`
	Location    string    `gorm:"not null"`
	OrganizerID uint      `gorm:"not null;index"`
	// Attendees caches the IDs of registered users. Derived from the
	// registrations table; must never be written outside the registration
	// workflow and the reconciler.
	Attendees datatypes.JSON `gorm:"type:jsonb"`
	ImageURL  string
	VideoURL  string

	// Relationships
	Organizer     User           `gorm:"foreignKey:OrganizerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Registrations []Registration `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// AttendeeIDs decodes the attendee cache. A nil or empty column decodes to
// an empty, non-nil slice so callers can always range and marshal it.
func (e *Event) AttendeeIDs() ([]uint, error) {
	ids := []uint{}
	if len(e.Attendees) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(e.Attendees, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetAttendeeIDs overwrites the attendee cache.
func (e *Event) SetAttendeeIDs(ids []uint) error {
	if ids == nil {
		ids = []uint{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	e.Attendees = datatypes.JSON(raw)
	return nil
}

// AddAttendee appends userID to the cache if absent. Returns true when the
// cache changed, false when the ID was already present.
func (e *Event) AddAttendee(userID uint) (bool, error) {
	ids, err := e.AttendeeIDs()
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == userID {
			return false, nil
		}
	}
	if err := e.SetAttendeeIDs(append(ids, userID)); err != nil {
		return false, err
	}
	return true, nil
}
