package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/campushub/campushub/internal/models"
	"github.com/campushub/campushub/internal/notifier"
	"github.com/campushub/campushub/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeQueue records enqueued messages for assertions.
type fakeQueue struct {
	mu       sync.Mutex
	messages []notifier.Message
}

func (q *fakeQueue) Enqueue(msg notifier.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msg)
}

func (q *fakeQueue) sent() []notifier.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]notifier.Message(nil), q.messages...)
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := gdb.AutoMigrate(&models.User{}, &models.Event{}, &models.Registration{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, email, role string) models.User {
	t.Helper()

	user := models.User{
		Username:     "test",
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedEvent(t *testing.T, gdb *gorm.DB, queue notifier.Queue, organizerID uint) *models.Event {
	t.Helper()

	svc := NewEventService(gdb, queue)
	event, err := svc.Create(context.Background(), organizerID, EventInput{
		Title:    "Hackathon",
		Date:     "2025-05-01",
		Time:     "10:00",
		Location: "Hall A",
	})
	if err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return event
}

func TestRegisterAppendsAttendee(t *testing.T) {
	gdb := testDB(t)
	queue := &fakeQueue{}

	admin := seedUser(t, gdb, "admin@example.com", types.RoleAdmin)
	user := seedUser(t, gdb, "student@example.com", types.RoleStudent)
	event := seedEvent(t, gdb, queue, admin.ID)

	svc := NewRegistrationService(gdb, queue)

	registration, err := svc.Register(context.Background(), user.ID, event.ID)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if registration.UserID != user.ID || registration.EventID != event.ID {
		t.Errorf("unexpected registration %+v", registration)
	}
	if registration.RegisteredAt.IsZero() {
		t.Error("expected RegisteredAt to be set")
	}

	var stored models.Event
	if err := gdb.First(&stored, event.ID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}

	ids, err := stored.AttendeeIDs()
	if err != nil {
		t.Fatalf("failed to decode attendees: %v", err)
	}
	if len(ids) != 1 || ids[0] != user.ID {
		t.Errorf("expected attendees [%d], got %v", user.ID, ids)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	gdb := testDB(t)
	queue := &fakeQueue{}

	admin := seedUser(t, gdb, "admin@example.com", types.RoleAdmin)
	user := seedUser(t, gdb, "student@example.com", types.RoleStudent)
	event := seedEvent(t, gdb, queue, admin.ID)

	svc := NewRegistrationService(gdb, queue)

	if _, err := svc.Register(context.Background(), user.ID, event.ID); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	_, err := svc.Register(context.Background(), user.ID, event.ID)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}

	var count int64
	gdb.Model(&models.Registration{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 registration, got %d", count)
	}

	var stored models.Event
	if err := gdb.First(&stored, event.ID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}
	ids, _ := stored.AttendeeIDs()
	if len(ids) != 1 {
		t.Errorf("expected attendee cache unchanged, got %v", ids)
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	gdb := testDB(t)
	queue := &fakeQueue{}

	user := seedUser(t, gdb, "student@example.com", types.RoleStudent)

	svc := NewRegistrationService(gdb, queue)

	if _, err := svc.Register(context.Background(), user.ID, 9999); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}

	var count int64
	gdb.Model(&models.Registration{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no registrations, got %d", count)
	}
}

func TestUniqueIndexIsAuthoritative(t *testing.T) {
	gdb := testDB(t)
	queue := &fakeQueue{}

	admin := seedUser(t, gdb, "admin@example.com", types.RoleAdmin)
	user := seedUser(t, gdb, "student@example.com", types.RoleStudent)
	event := seedEvent(t, gdb, queue, admin.ID)

	svc := NewRegistrationService(gdb, queue)

	if _, err := svc.Register(context.Background(), user.ID, event.ID); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// Insert directly, bypassing the workflow's pre-check, the way a racing
	// request would.
	dup := models.Registration{UserID: user.ID, EventID: event.ID, RegisteredAt: event.CreatedAt}
	err := gdb.Create(&dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey from the compound index, got %v", err)
	}
}

func TestIdempotentAttendeeAppend(t *testing.T) {
	event := models.Event{}
	if err := event.SetAttendeeIDs(nil); err != nil {
		t.Fatalf("SetAttendeeIDs: %v", err)
	}

	changed, err := event.AddAttendee(7)
	if err != nil || !changed {
		t.Fatalf("expected first append to change the cache, got changed=%v err=%v", changed, err)
	}

	changed, err = event.AddAttendee(7)
	if err != nil {
		t.Fatalf("second append returned error: %v", err)
	}
	if changed {
		t.Error("expected second append to be a no-op")
	}

	ids, _ := event.AttendeeIDs()
	if len(ids) != 1 {
		t.Errorf("expected cache size 1, got %v", ids)
	}
}

func TestRegisterSendsConfirmation(t *testing.T) {
	gdb := testDB(t)
	queue := &fakeQueue{}

	admin := seedUser(t, gdb, "admin@example.com", types.RoleAdmin)
	user := seedUser(t, gdb, "student@example.com", types.RoleStudent)
	event := seedEvent(t, gdb, queue, admin.ID)

	before := len(queue.sent())

	svc := NewRegistrationService(gdb, queue)
	if _, err := svc.Register(context.Background(), user.ID, event.ID); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	sent := queue.sent()
	if len(sent) != before+1 {
		t.Fatalf("expected one confirmation message, got %d new", len(sent)-before)
	}

	confirmation := sent[len(sent)-1]
	if len(confirmation.To) != 1 || confirmation.To[0] != user.Email {
		t.Errorf("expected confirmation to %s, got %v", user.Email, confirmation.To)
	}
}

func TestListByEvent(t *testing.T) {
	gdb := testDB(t)
	queue := &fakeQueue{}

	admin := seedUser(t, gdb, "admin@example.com", types.RoleAdmin)
	first := seedUser(t, gdb, "a@example.com", types.RoleStudent)
	second := seedUser(t, gdb, "b@example.com", types.RoleStudent)
	event := seedEvent(t, gdb, queue, admin.ID)

	svc := NewRegistrationService(gdb, queue)
	for _, u := range []models.User{first, second} {
		if _, err := svc.Register(context.Background(), u.ID, event.ID); err != nil {
			t.Fatalf("Register returned error: %v", err)
		}
	}

	registrations, err := svc.ListByEvent(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("ListByEvent returned error: %v", err)
	}
	if len(registrations) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(registrations))
	}
	if registrations[0].User.Email != first.Email {
		t.Errorf("expected user preloaded, got %+v", registrations[0].User)
	}

	if _, err := svc.ListByEvent(context.Background(), 9999); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound for unknown event, got %v", err)
	}
}
