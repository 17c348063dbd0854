package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/streamvault/streamvault/internal/auth"
	"github.com/streamvault/streamvault/internal/models"
	"github.com/streamvault/streamvault/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the original deployment's 10 salt rounds.
const bcryptCost = 10

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	FindByHandleOrEmail(ctx context.Context, userID, email string) ([]models.User, error)
	FindByHandle(ctx context.Context, userID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// WelcomeMailer sends the post-registration welcome email.
type WelcomeMailer interface {
	Configured() bool
	SendWelcome(to, name string) error
}

// AuthService handles registration and login
type AuthService struct {
	store     UserStore
	log       *logrus.Logger
	jwtSecret string
	mailer    WelcomeMailer
}

// NewAuthService initializes a new auth service. mailer may be nil.
func NewAuthService(store UserStore, log *logrus.Logger, jwtSecret string, mailer WelcomeMailer) *AuthService {
	return &AuthService{store: store, log: log, jwtSecret: jwtSecret, mailer: mailer}
}

// RegisterRequest carries the registration form fields.
type RegisterRequest struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginResult is the login response payload.
type LoginResult struct {
	User  models.PublicUser `json:"user"`
	Token *string           `json:"token"`
}

// Register validates the request, checks for duplicates, hashes the password
// and creates the account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	if req.UserID == "" || req.Name == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
		return fmt.Errorf("%w: all fields are required", models.ErrInvalidInput)
	}

	cleanUserID := utils.SanitizeInput(req.UserID)
	cleanName := utils.SanitizeInput(req.Name)
	cleanEmail := utils.NormalizeEmail(req.Email)
	cleanPhone := utils.SanitizeInput(req.Phone)

	if !utils.IsValidEmail(cleanEmail) {
		return fmt.Errorf("%w: a valid email address is required", models.ErrInvalidInput)
	}

	if len(req.Password) < utils.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", models.ErrInvalidInput, utils.MinPasswordLength)
	}

	existing, err := s.store.FindByHandleOrEmail(ctx, cleanUserID, cleanEmail)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		conflict := &models.ConflictError{}
		for _, u := range existing {
			if u.UserID == cleanUserID {
				conflict.HandleTaken = true
			}
			if u.Email == cleanEmail {
				conflict.EmailTaken = true
			}
		}
		return conflict
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UserID:       cleanUserID,
		Name:         cleanName,
		Email:        cleanEmail,
		Phone:        cleanPhone,
		PasswordHash: string(hashedPassword),
	}

	// The duplicate pre-check races with concurrent registrations; the
	// store's unique constraints return a ConflictError from here too.
	if err := s.store.CreateUser(ctx, user); err != nil {
		return err
	}

	s.log.Infof("User registered: %s", user.UserID)
	s.sendWelcome(user)
	return nil
}

// Login verifies credentials and issues a bearer token. When no signing
// secret is configured the login still succeeds with a nil token.
func (s *AuthService) Login(ctx context.Context, userID, password string) (*LoginResult, error) {
	if userID == "" || password == "" {
		return nil, fmt.Errorf("%w: user ID and password are required", models.ErrInvalidInput)
	}

	// Only the handle is sanitized; the password must stay byte-exact for
	// the hash comparison.
	cleanUserID := utils.SanitizeInput(userID)

	user, err := s.store.FindByHandle(ctx, cleanUserID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	result := &LoginResult{User: user.Public()}

	if s.jwtSecret == "" {
		s.log.Error("JWT_SECRET is not set; issuing null token")
	} else {
		token, err := auth.GenerateToken(user, []byte(s.jwtSecret), auth.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		result.Token = &token
	}

	s.log.Infof("User logged in: %s", user.UserID)
	return result, nil
}

// sendWelcome fires the welcome email without blocking the request.
// Failures are logged only.
func (s *AuthService) sendWelcome(user *models.User) {
	if s.mailer == nil || !s.mailer.Configured() {
		return
	}
	to, name := user.Email, user.Name
	go func() {
		if err := s.mailer.SendWelcome(to, name); err != nil {
			s.log.Warnf("Failed to send welcome email to %s: %v", to, err)
		}
	}()
}
