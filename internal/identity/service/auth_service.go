// Package service implements password register, login, refresh, and logout,
// with device admission enforced at every sign-in.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"medquiz-platform/backend/internal/deviceident"
	"medquiz-platform/backend/internal/security"
	sessionservice "medquiz-platform/backend/internal/session/service"
	userdomain "medquiz-platform/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP status codes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid or expired refresh token")
	ErrAccountLocked          = errors.New("too many failed attempts, try again later")
)

// DeviceLimitError is returned when login or refresh is denied by the device
// registry. Message is the user-facing text listing the active devices.
type DeviceLimitError struct {
	Message       string
	ActiveDevices []string
}

func (e *DeviceLimitError) Error() string { return e.Message }

// AuthResult holds the outcome of Register (user info only), Login, or Refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Email        string
	Name         string
	// EvictedDeviceID is set when a stale device was signed out to admit this one.
	EvictedDeviceID string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// DeviceRegistry is the part of the session registry the auth service needs.
type DeviceRegistry interface {
	Register(ctx context.Context, userID, deviceID string, info deviceident.Info) *sessionservice.Admission
	Remove(ctx context.Context, userID, deviceID string) error
}

// LoginThrottle counts failed logins per email. Implementations are fail-open.
type LoginThrottle interface {
	Locked(ctx context.Context, email string) bool
	RecordFailure(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

// AuthService implements register, login, refresh, and logout.
type AuthService struct {
	userRepo UserRepo
	registry DeviceRegistry
	throttle LoginThrottle
	hasher   *security.Hasher
	tokens   *security.TokenProvider
}

// NewAuthService returns an AuthService with the given dependencies.
// throttle may be nil; then failed logins are never throttled.
func NewAuthService(
	userRepo UserRepo,
	registry DeviceRegistry,
	throttle LoginThrottle,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		registry: registry,
		throttle: throttle,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates a user with the given email and password. Returns an
// AuthResult with user info only; the caller must Login to get tokens.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hashed,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return &AuthResult{UserID: user.ID, Email: user.Email, Name: user.Name}, nil
}

// Login authenticates with email/password, runs device admission for
// deviceID, and returns tokens bound to that device. Returns
// *DeviceLimitError when the user is already signed in on the maximum
// number of devices.
func (s *AuthService) Login(ctx context.Context, email, password, deviceID string, info deviceident.Info) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" || deviceID == "" {
		return nil, ErrInvalidCredentials
	}
	if s.throttle != nil && s.throttle.Locked(ctx, email) {
		return nil, ErrAccountLocked
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		s.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.recordFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}
	if s.throttle != nil {
		s.throttle.Reset(ctx, email)
	}

	admission := s.registry.Register(ctx, user.ID, deviceID, info)
	if admission.Decision == sessionservice.DecisionDenied {
		return nil, &DeviceLimitError{Message: admission.Message, ActiveDevices: admission.ActiveDevices}
	}

	return s.issueTokens(user, deviceID, admission.EvictedDeviceID)
}

// Refresh validates the refresh token, re-runs device admission so the
// device's activity is refreshed, and returns a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, info deviceident.Info) (*AuthResult, error) {
	userID, deviceID, _, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return nil, ErrInvalidRefreshToken
	}

	admission := s.registry.Register(ctx, userID, deviceID, info)
	if admission.Decision == sessionservice.DecisionDenied {
		return nil, &DeviceLimitError{Message: admission.Message, ActiveDevices: admission.ActiveDevices}
	}

	return s.issueTokens(user, deviceID, admission.EvictedDeviceID)
}

// Logout validates the refresh token and removes the device's session row.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	userID, deviceID, _, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	return s.registry.Remove(ctx, userID, deviceID)
}

func (s *AuthService) issueTokens(user *userdomain.User, deviceID, evictedDeviceID string) (*AuthResult, error) {
	access, _, expiresAt, err := s.tokens.IssueAccess(user.ID, deviceID)
	if err != nil {
		return nil, err
	}
	refresh, _, _, err := s.tokens.IssueRefresh(user.ID, deviceID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:     access,
		RefreshToken:    refresh,
		ExpiresAt:       expiresAt,
		UserID:          user.ID,
		Email:           user.Email,
		Name:            user.Name,
		EvictedDeviceID: evictedDeviceID,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle != nil {
		s.throttle.RecordFailure(ctx, email)
	}
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return errors.New("password must contain a letter and a number")
	}
	return nil
}
