package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/campushub/campushub/internal/models"
	"github.com/campushub/campushub/internal/services"
	"github.com/campushub/campushub/internal/types"
	"github.com/campushub/campushub/internal/utils"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type EventHandler struct {
	events        *services.EventService
	registrations *services.RegistrationService
}

func NewEventHandler(events *services.EventService, registrations *services.RegistrationService) *EventHandler {
	return &EventHandler{events: events, registrations: registrations}
}

func eventID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid event ID"})
		return 0, false
	}
	return uint(id), true
}

func toEventResponse(event models.Event) types.EventResponse {
	attendees, err := event.AttendeeIDs()
	if err != nil {
		attendees = []uint{}
	}

	return types.EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Date:        event.Date.Format(dateLayout),
		Time:        event.Time,
		Location:    event.Location,
		Organizer: types.AccountSummary{
			ID:       event.Organizer.ID,
			Username: event.Organizer.Username,
			Email:    event.Organizer.Email,
		},
		Attendees: attendees,
		ImageURL:  event.ImageURL,
		VideoURL:  event.VideoURL,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}

// ListEvents is the public listing used by the student dashboard.
func (h *EventHandler) ListEvents(ctx *gin.Context) {
	events, err := h.events.List(ctx.Request.Context())

	if err != nil {
		log.Printf("Failed to list events: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		return
	}

	response := make([]types.EventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, toEventResponse(event))
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "events": response})
}

// ListEventsWithCounts is the admin listing; counts come from registration
// rows rather than the attendee cache.
func (h *EventHandler) ListEventsWithCounts(ctx *gin.Context) {
	events, counts, err := h.events.ListWithCounts(ctx.Request.Context())

	if err != nil {
		log.Printf("Failed to list events: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		return
	}

	response := make([]types.EventSummary, 0, len(events))
	for _, event := range events {
		response = append(response, types.EventSummary{
			EventResponse: toEventResponse(event),
			AttendeeCount: counts[event.ID],
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "events": response})
}

func (h *EventHandler) CreateEvent(ctx *gin.Context) {
	var input services.EventInput

	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid input", "errors": []string{"malformed request body"}})
		return
	}

	organizerID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Access denied"})
		return
	}

	event, err := h.events.Create(ctx.Request.Context(), organizerID, input)

	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Missing required fields", "errors": verr.Fields})
			return
		}
		log.Printf("Failed to create event: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"msg":     "Event created successfully",
		"event":   toEventResponse(*event),
	})
}

func (h *EventHandler) EditEvent(ctx *gin.Context) {
	id, ok := eventID(ctx)
	if !ok {
		return
	}

	var input services.EventInput

	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid input", "errors": []string{"malformed request body"}})
		return
	}

	event, err := h.events.Update(ctx.Request.Context(), id, input)

	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "msg": "Event not found"})
		case errors.As(err, &verr):
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Missing required fields", "errors": verr.Fields})
		default:
			log.Printf("Failed to update event %d: %v", id, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"msg":     "Event updated successfully",
		"event":   toEventResponse(*event),
	})
}

func (h *EventHandler) DeleteEvent(ctx *gin.Context) {
	id, ok := eventID(ctx)
	if !ok {
		return
	}

	if err := h.events.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "msg": "Event not found"})
			return
		}
		log.Printf("Failed to delete event %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "msg": "Event deleted successfully"})
}

// EventRegistrations lists who signed up for an event, for the admin view.
func (h *EventHandler) EventRegistrations(ctx *gin.Context) {
	id, ok := eventID(ctx)
	if !ok {
		return
	}

	registrations, err := h.registrations.ListByEvent(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "msg": "Event not found"})
			return
		}
		log.Printf("Failed to list registrations for event %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		return
	}

	response := make([]types.RegistrationResponse, 0, len(registrations))
	for _, registration := range registrations {
		response = append(response, types.RegistrationResponse{
			ID: registration.ID,
			User: types.AccountSummary{
				ID:       registration.User.ID,
				Username: registration.User.Username,
				Email:    registration.User.Email,
			},
			EventID:      registration.EventID,
			RegisteredAt: registration.RegisteredAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "registrations": response})
}
