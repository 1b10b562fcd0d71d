package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/campushub/campushub/internal/models"
	"github.com/campushub/campushub/internal/notifier"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// EventInput is the writable field set for create and edit.
type EventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	ImageURL    string `json:"imageUrl"`
	VideoURL    string `json:"videoUrl"`
}

func (in *EventInput) validate() (time.Time, error) {
	var fields []string
	var date time.Time

	if strings.TrimSpace(in.Title) == "" {
		fields = append(fields, "title: required")
	}
	if strings.TrimSpace(in.Date) == "" {
		fields = append(fields, "date: required")
	} else {
		parsed, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			fields = append(fields, "date: must be YYYY-MM-DD")
		} else {
			date = parsed
		}
	}
	if strings.TrimSpace(in.Time) == "" {
		fields = append(fields, "time: required")
	}
	if strings.TrimSpace(in.Location) == "" {
		fields = append(fields, "location: required")
	}
	if in.ImageURL != "" && !validURL(in.ImageURL) {
		fields = append(fields, "imageUrl: must be a valid URL")
	}
	if in.VideoURL != "" && !validURL(in.VideoURL) {
		fields = append(fields, "videoUrl: must be a valid URL")
	}

	if len(fields) > 0 {
		return time.Time{}, &ValidationError{Fields: fields}
	}
	return date, nil
}

func validURL(raw string) bool {
	parsed, err := url.Parse(raw)
	return err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

type EventService struct {
	db     *gorm.DB
	notify notifier.Queue
}

func NewEventService(db *gorm.DB, notify notifier.Queue) *EventService {
	return &EventService{db: db, notify: notify}
}

// Create persists a new event with an empty attendee cache and fans out one
// batched announcement to every known account address.
func (s *EventService) Create(ctx context.Context, organizerID uint, input EventInput) (*models.Event, error) {
	date, err := input.validate()
	if err != nil {
		return nil, err
	}

	event := models.Event{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Date:        date,
		Time:        input.Time,
		Location:    input.Location,
		OrganizerID: organizerID,
		ImageURL:    input.ImageURL,
		VideoURL:    input.VideoURL,
	}
	if err := event.SetAttendeeIDs(nil); err != nil {
		return nil, fmt.Errorf("init attendee cache: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("Organizer").First(&event, event.ID).Error; err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}

	s.announce(ctx, event, false)

	return &event, nil
}

// Update rewrites the editable fields and re-announces the event to every
// account. Announcing edits mirrors the original system's behavior; the
// fan-out lives only here and in Create, so changing that policy is local.
func (s *EventService) Update(ctx context.Context, id uint, input EventInput) (*models.Event, error) {
	date, err := input.validate()
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("fetch event: %w", err)
	}

	event.Title = strings.TrimSpace(input.Title)
	event.Description = input.Description
	event.Date = date
	event.Time = input.Time
	event.Location = input.Location
	event.ImageURL = input.ImageURL
	event.VideoURL = input.VideoURL

	if err := s.db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("Organizer").First(&event, event.ID).Error; err != nil {
		return nil, fmt.Errorf("reload event: %w", err)
	}

	s.announce(ctx, event, true)

	return &event, nil
}

// Delete removes the event and its registrations in one transaction, so a
// crash between the two cannot leave orphaned registrations behind.
func (s *EventService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&event).Error; err != nil {
			return err
		}

		return tx.Where("event_id = ?", id).Delete(&models.Registration{}).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}

	return nil
}

func (s *EventService) Get(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event

	if err := s.db.WithContext(ctx).Preload("Organizer").First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("fetch event: %w", err)
	}

	return &event, nil
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event

	if err := s.db.WithContext(ctx).Preload("Organizer").Order("date ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}

// ListWithCounts returns all events with attendee counts computed from
// registration rows. The admin view trusts the registrations table, not the
// cached attendee list.
func (s *EventService) ListWithCounts(ctx context.Context) ([]models.Event, map[uint]int64, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	type eventCount struct {
		EventID uint
		Total   int64
	}

	var rows []eventCount
	err = s.db.WithContext(ctx).
		Model(&models.Registration{}).
		Select("event_id, COUNT(*) AS total").
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("count registrations: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.EventID] = row.Total
	}

	return events, counts, nil
}

func (s *EventService) announce(ctx context.Context, event models.Event, updated bool) {
	var emails []string
	if err := s.db.WithContext(ctx).Model(&models.User{}).Pluck("email", &emails).Error; err != nil {
		// Notification fan-out never fails the lifecycle operation.
		log.Printf("Failed to collect recipients for event %d: %v", event.ID, err)
		return
	}
	if len(emails) == 0 {
		return
	}

	s.notify.Enqueue(notifier.AnnouncementMessage(event, emails, updated))
}
