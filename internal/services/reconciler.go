package services

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/campushub/campushub/internal/models"
	"gorm.io/gorm"
)

// Reconciler repairs the two recoverable inconsistencies the registration
// design allows: an attendee cache that drifted from the registrations
// table, and registrations left behind by a partially-failed event delete.
type Reconciler struct {
	db       *gorm.DB
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReconciler(db *gorm.DB, interval time.Duration) *Reconciler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs an immediate pass and then repeats on the configured interval.
func (r *Reconciler) Start() {
	log.Printf("Starting reconciler with interval %v", r.interval)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if err := r.ReconcileAll(r.ctx); err != nil {
			log.Printf("Reconcile pass failed: %v", err)
		}

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				if err := r.ReconcileAll(r.ctx); err != nil {
					log.Printf("Reconcile pass failed: %v", err)
				}
			}
		}
	}()
}

func (r *Reconciler) Stop() {
	r.cancel()
	r.wg.Wait()
	log.Println("Reconciler stopped")
}

// ReconcileAll prunes registrations whose event no longer exists, then
// recomputes every event's attendee cache from the registrations table.
func (r *Reconciler) ReconcileAll(ctx context.Context) error {
	orphans := r.db.WithContext(ctx).
		Where("event_id NOT IN (?)", r.db.Model(&models.Event{}).Select("id")).
		Delete(&models.Registration{})
	if orphans.Error != nil {
		return fmt.Errorf("prune orphaned registrations: %w", orphans.Error)
	}
	if orphans.RowsAffected > 0 {
		log.Printf("Pruned %d orphaned registrations", orphans.RowsAffected)
	}

	var events []models.Event
	if err := r.db.WithContext(ctx).Find(&events).Error; err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	for i := range events {
		if err := r.reconcileEvent(ctx, &events[i]); err != nil {
			log.Printf("Failed to reconcile event %d: %v", events[i].ID, err)
		}
	}

	return nil
}

func (r *Reconciler) reconcileEvent(ctx context.Context, event *models.Event) error {
	var userIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ?", event.ID).
		Order("id ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return fmt.Errorf("collect registered users: %w", err)
	}
	if userIDs == nil {
		userIDs = []uint{}
	}

	cached, err := event.AttendeeIDs()
	if err != nil {
		// Unreadable cache counts as drift; rewrite it below.
		cached = nil
	}

	if reflect.DeepEqual(cached, userIDs) {
		return nil
	}

	if err := event.SetAttendeeIDs(userIDs); err != nil {
		return fmt.Errorf("encode attendee cache: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(event).Update("attendees", event.Attendees).Error; err != nil {
		return fmt.Errorf("store attendee cache: %w", err)
	}

	log.Printf("Repaired attendee cache for event %d (%d attendees)", event.ID, len(userIDs))
	return nil
}
