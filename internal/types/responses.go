package types

import "time"

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AccountSummary is the embedded shape for organizers and registrants.
type AccountSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type EventResponse struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Date        string         `json:"date"`
	Time        string         `json:"time"`
	Location    string         `json:"location"`
	Organizer   AccountSummary `json:"organizer"`
	Attendees   []uint         `json:"attendees"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	VideoURL    string         `json:"videoUrl,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// EventSummary is the admin listing shape; the attendee count is computed
// from registration rows, not the cached attendee list.
type EventSummary struct {
	EventResponse
	AttendeeCount int64 `json:"attendeeCount"`
}

type RegistrationResponse struct {
	ID           uint           `json:"id"`
	User         AccountSummary `json:"user"`
	EventID      uint           `json:"eventId"`
	RegisteredAt time.Time      `json:"registeredAt"`
}
