package models

import (
	"time"

	"gorm.io/gorm"
)

// Registration links a user to an event they signed up for. The compound
// unique index is the authoritative one-registration-per-user-per-event
// constraint; application-level pre-checks are a courtesy on top of it.
type Registration struct {
	gorm.Model

	UserID       uint      `gorm:"not null;uniqueIndex:idx_user_event"`
	EventID      uint      `gorm:"not null;uniqueIndex:idx_user_event"`
	RegisteredAt time.Time `gorm:"not null"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Event Event `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
