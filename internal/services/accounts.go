package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campushub/campushub/internal/auth"
	"github.com/campushub/campushub/internal/models"
	"github.com/campushub/campushub/internal/notifier"
	"github.com/campushub/campushub/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AccountService struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	notify notifier.Queue
}

func NewAccountService(db *gorm.DB, tokens *auth.TokenManager, notify notifier.Queue) *AccountService {
	return &AccountService{db: db, tokens: tokens, notify: notify}
}

// Signup creates an account with the given role, issues a token, and queues
// a welcome email. The username is derived from the email's local part.
func (s *AccountService) Signup(ctx context.Context, email, password, role string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if role == "" {
		role = types.RoleStudent
	}
	if !types.ValidRole(role) {
		return nil, "", &ValidationError{Fields: []string{fmt.Sprintf("role: %q is not a valid role", role)}}
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error

	if err == nil {
		return nil, "", ErrAccountExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check existing account: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// The unique email index is authoritative; the pre-check above only
		// produces the friendlier path.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrAccountExists
		}
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	s.notify.Enqueue(notifier.WelcomeMessage(user))

	return &user, token, nil
}

// Signin verifies credentials. Unknown email and wrong password both return
// ErrInvalidCredentials so responses cannot enumerate accounts.
func (s *AccountService) Signin(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("fetch account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return &user, token, nil
}

func (s *AccountService) Profile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("fetch account: %w", err)
	}

	return &user, nil
}
