package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/campushub/campushub/internal/services"
	"github.com/campushub/campushub/internal/utils"
	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	registrations *services.RegistrationService
}

func NewRegistrationHandler(registrations *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

func (h *RegistrationHandler) RegisterForEvent(ctx *gin.Context) {
	id, ok := eventID(ctx)
	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Access denied"})
		return
	}

	if _, err := h.registrations.Register(ctx.Request.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "msg": "Event not found"})
		case errors.Is(err, services.ErrAlreadyRegistered):
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Already registered"})
		default:
			log.Printf("Failed to register user %d for event %d: %v", userID, id, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		}
		return
	}

	// Push the fresh count to any admin consoles watching this event.
	if count, err := h.registrations.CountByEvent(ctx.Request.Context(), id); err == nil {
		BroadcastRegistration(strconv.FormatUint(uint64(id), 10), count)
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "msg": "Registered successfully!"})
}
