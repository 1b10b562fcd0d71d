package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/campushub/campushub/internal/services"
	"github.com/campushub/campushub/internal/types"
	"github.com/campushub/campushub/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// bindingErrors flattens validator failures into per-field messages for the
// envelope's errors list.
func bindingErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"malformed request body"}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fe.Field()+": required")
		case "email":
			messages = append(messages, fe.Field()+": invalid email format")
		case "min":
			messages = append(messages, fe.Field()+": must be at least "+fe.Param()+" characters long")
		default:
			messages = append(messages, fe.Field()+": invalid")
		}
	}
	return messages
}

func (h *AuthHandler) signup(ctx *gin.Context, role, payloadKey, successMsg string) {
	var req AuthRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid input", "errors": bindingErrors(err)})
		return
	}

	user, token, err := h.accounts.Signup(ctx.Request.Context(), req.Email, req.Password, role)

	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.Is(err, services.ErrAccountExists):
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "User already exists"})
		case errors.As(err, &verr):
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid input", "errors": verr.Fields})
		default:
			log.Printf("Signup failed: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"msg":     successMsg,
		"token":   token,
		payloadKey: types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	})
}

func (h *AuthHandler) signin(ctx *gin.Context, payloadKey, successMsg string) {
	var req AuthRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid input", "errors": bindingErrors(err)})
		return
	}

	user, token, err := h.accounts.Signin(ctx.Request.Context(), req.Email, req.Password)

	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Invalid credentials"})
			return
		}
		log.Printf("Signin failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"msg":     successMsg,
		"token":   token,
		payloadKey: types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	})
}

func (h *AuthHandler) SignupUser(ctx *gin.Context) {
	h.signup(ctx, types.RoleStudent, "user", "User signed up successfully")
}

func (h *AuthHandler) SigninUser(ctx *gin.Context) {
	h.signin(ctx, "user", "User logged in successfully")
}

func (h *AuthHandler) SignupAdmin(ctx *gin.Context) {
	h.signup(ctx, types.RoleAdmin, "admin", "Admin signed up successfully")
}

func (h *AuthHandler) SigninAdmin(ctx *gin.Context) {
	h.signin(ctx, "admin", "Admin logged in successfully")
}

func (h *AuthHandler) profile(ctx *gin.Context, payloadKey string) {
	current, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "msg": "Access denied"})
		return
	}

	user, err := h.accounts.Profile(ctx.Request.Context(), current.ID)

	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "msg": "User not found"})
			return
		}
		log.Printf("Profile lookup failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "Server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		payloadKey: types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	})
}

func (h *AuthHandler) UserProfile(ctx *gin.Context) {
	h.profile(ctx, "user")
}

func (h *AuthHandler) AdminProfile(ctx *gin.Context) {
	h.profile(ctx, "admin")
}
