package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/campushub/campushub/internal/models"
	"github.com/campushub/campushub/internal/notifier"
	"gorm.io/gorm"
)

type RegistrationService struct {
	db     *gorm.DB
	notify notifier.Queue
}

func NewRegistrationService(db *gorm.DB, notify notifier.Queue) *RegistrationService {
	return &RegistrationService{db: db, notify: notify}
}

// Register creates the registration and appends the user to the event's
// attendee cache inside one transaction. The pre-check keeps the common
// duplicate path cheap; the unique (user_id, event_id) index is what makes
// concurrent duplicates impossible, surfacing as gorm.ErrDuplicatedKey.
func (s *RegistrationService) Register(ctx context.Context, userID, eventID uint) (*models.Registration, error) {
	var registration models.Registration
	var event models.Event

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("fetch event: %w", err)
		}

		var existing models.Registration
		err := tx.Where("user_id = ? AND event_id = ?", userID, eventID).First(&existing).Error
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check existing registration: %w", err)
		}

		registration = models.Registration{
			UserID:       userID,
			EventID:      eventID,
			RegisteredAt: time.Now().UTC(),
		}

		if err := tx.Create(&registration).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("create registration: %w", err)
		}

		changed, err := event.AddAttendee(userID)
		if err != nil {
			return fmt.Errorf("append attendee: %w", err)
		}
		if changed {
			if err := tx.Save(&event).Error; err != nil {
				return fmt.Errorf("update attendee cache: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.confirm(ctx, event, userID)

	return &registration, nil
}

// ListByEvent returns the registrations for an event with users preloaded.
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID uint) ([]models.Registration, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("fetch event: %w", err)
	}

	var registrations []models.Registration
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("registered_at ASC").
		Find(&registrations).Error
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	return registrations, nil
}

// CountByEvent counts registration rows for an event.
func (s *RegistrationService) CountByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (s *RegistrationService) confirm(ctx context.Context, event models.Event, userID uint) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		log.Printf("Failed to load user %d for confirmation email: %v", userID, err)
		return
	}

	s.notify.Enqueue(notifier.RegistrationMessage(event, user))
}
