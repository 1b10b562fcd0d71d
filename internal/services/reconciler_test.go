package services

import (
	"context"
	"testing"
	"time"

	"github.com/campushub/campushub/internal/models"
	"github.com/campushub/campushub/internal/types"
)

func TestReconcileRepairsDriftedCache(t *testing.T) {
	gdb := testDB(t)
	queue := &fakeQueue{}

	admin := seedUser(t, gdb, "admin@example.com", types.RoleAdmin)
	user := seedUser(t, gdb, "student@example.com", types.RoleStudent)
	event := seedEvent(t, gdb, queue, admin.ID)

	// Simulate the partial failure the workflow tolerates: a registration
	// row exists but the attendee append never happened.
	reg := models.Registration{UserID: user.ID, EventID: event.ID, RegisteredAt: time.Now().UTC()}
	if err := gdb.Create(&reg).Error; err != nil {
		t.Fatalf("failed to seed registration: %v", err)
	}

	reconciler := NewReconciler(gdb, time.Minute)
	if err := reconciler.ReconcileAll(context.Background()); err != nil {
		t.Fatalf("ReconcileAll returned error: %v", err)
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
		t.Errorf("expected repaired cache [%d], got %v", user.ID, ids)
	}
}

func TestReconcilePrunesOrphanedRegistrations(t *testing.T) {
	gdb := testDB(t)
	queue := &fakeQueue{}

	admin := seedUser(t, gdb, "admin@example.com", types.RoleAdmin)
	user := seedUser(t, gdb, "student@example.com", types.RoleStudent)
	event := seedEvent(t, gdb, queue, admin.ID)

	reg := models.Registration{UserID: user.ID, EventID: event.ID, RegisteredAt: time.Now().UTC()}
	if err := gdb.Create(&reg).Error; err != nil {
		t.Fatalf("failed to seed registration: %v", err)
	}

	// Delete the event without cascading, mimicking a crash between the
	// two deletes.
	if err := gdb.Delete(&models.Event{}, event.ID).Error; err != nil {
		t.Fatalf("failed to delete event: %v", err)
	}

	reconciler := NewReconciler(gdb, time.Minute)
	if err := reconciler.ReconcileAll(context.Background()); err != nil {
		t.Fatalf("ReconcileAll returned error: %v", err)
	}

	var count int64
	gdb.Model(&models.Registration{}).Count(&count)
	if count != 0 {
		t.Errorf("expected orphaned registration pruned, %d left", count)
	}
}

func TestReconcileLeavesConsistentStateAlone(t *testing.T) {
	gdb := testDB(t)
	queue := &fakeQueue{}

	admin := seedUser(t, gdb, "admin@example.com", types.RoleAdmin)
	user := seedUser(t, gdb, "student@example.com", types.RoleStudent)
	event := seedEvent(t, gdb, queue, admin.ID)

	svc := NewRegistrationService(gdb, queue)
	if _, err := svc.Register(context.Background(), user.ID, event.ID); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	var before models.Event
	if err := gdb.First(&before, event.ID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}

	reconciler := NewReconciler(gdb, time.Minute)
	if err := reconciler.ReconcileAll(context.Background()); err != nil {
		t.Fatalf("ReconcileAll returned error: %v", err)
	}

	var after models.Event
	if err := gdb.First(&after, event.ID).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}

	beforeIDs, _ := before.AttendeeIDs()
	afterIDs, _ := after.AttendeeIDs()
	if len(beforeIDs) != len(afterIDs) {
		t.Errorf("expected cache unchanged, before=%v after=%v", beforeIDs, afterIDs)
	}
}
