package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campushub/campushub/internal/auth"
	"github.com/campushub/campushub/internal/models"
	"github.com/campushub/campushub/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGuard(t *testing.T) (*Guard, *auth.TokenManager, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewGuard(tokens, gdb), tokens, gdb
}

func adminRouter(guard *Guard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/events", guard.RequireAuth(), guard.RequireRole(types.RoleAdmin), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestGuardMissingToken(t *testing.T) {
	guard, _, _ := setupGuard(t)
	r := adminRouter(guard)

	req := httptest.NewRequest("GET", "/admin/events", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing token, got %d", rr.Code)
	}
}

func TestGuardMalformedToken(t *testing.T) {
	guard, _, _ := setupGuard(t)
	r := adminRouter(guard)

	for _, header := range []string{"garbage", "Bearer not.a.jwt"} {
		req := httptest.NewRequest("GET", "/admin/events", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("header %q: expected 400, got %d", header, rr.Code)
		}
	}
}

func TestGuardExpiredToken(t *testing.T) {
	guard, _, gdb := setupGuard(t)
	r := adminRouter(guard)

	user := models.User{Username: "a", Email: "a@example.com", PasswordHash: "x", Role: types.RoleAdmin}
	gdb.Create(&user)

	expired := auth.NewTokenManager("test-secret", -time.Minute)
	token, _ := expired.Generate(user.ID, user.Email)

	req := httptest.NewRequest("GET", "/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for expired token, got %d", rr.Code)
	}
}

func TestGuardRoleMismatch(t *testing.T) {
	guard, tokens, gdb := setupGuard(t)
	r := adminRouter(guard)

	user := models.User{Username: "s", Email: "s@example.com", PasswordHash: "x", Role: types.RoleStudent}
	gdb.Create(&user)

	token, _ := tokens.Generate(user.ID, user.Email)

	req := httptest.NewRequest("GET", "/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for student token on admin route, got %d", rr.Code)
	}
}

func TestGuardDeletedAccount(t *testing.T) {
	guard, tokens, gdb := setupGuard(t)
	r := adminRouter(guard)

	user := models.User{Username: "a", Email: "a@example.com", PasswordHash: "x", Role: types.RoleAdmin}
	gdb.Create(&user)

	token, _ := tokens.Generate(user.ID, user.Email)

	// Account removed after token issuance must degrade to Forbidden.
	gdb.Delete(&user)

	req := httptest.NewRequest("GET", "/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for deleted account, got %d", rr.Code)
	}
}

func TestGuardAdminToken(t *testing.T) {
	guard, tokens, gdb := setupGuard(t)
	r := adminRouter(guard)

	user := models.User{Username: "a", Email: "a@example.com", PasswordHash: "x", Role: types.RoleAdmin}
	gdb.Create(&user)

	token, _ := tokens.Generate(user.ID, user.Email)

	req := httptest.NewRequest("GET", "/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for admin token, got %d", rr.Code)
	}
}
