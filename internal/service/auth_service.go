package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"defectdesk.io/desk/internal/api/middleware"
	"defectdesk.io/desk/internal/config"
	apperrors "defectdesk.io/desk/internal/pkg/errors"
	"defectdesk.io/desk/internal/pkg/logger"
	"defectdesk.io/desk/internal/repository"
)

// AuthService verifies credentials and issues JWTs.
type AuthService struct {
	store *repository.Store
	jwt   middleware.JWTConfig
}

// NewAuthService creates an AuthService.
func NewAuthService(store *repository.Store, sec config.SecurityConfig) *AuthService {
	return &AuthService{
		store: store,
		jwt: middleware.JWTConfig{
			SigningKey: []byte(sec.JWTSecret),
			Issuer:     sec.JWTIssuer,
			ExpiresIn:  sec.JWTExpiry,
		},
	}
}

// LoginResult is the successful login payload.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      repository.User
}

// Login verifies a username/password pair and returns a signed token. A
// missing user and a wrong password produce the same error so the endpoint
// does not leak which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	authFailed := apperrors.Unauthorized(apperrors.CodeAuthFailed, "invalid username or password")

	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Code == apperrors.CodeUserNotFound {
			return LoginResult{}, authFailed
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, authFailed
	}

	token, expiresAt, err := middleware.GenerateToken(s.jwt, u.ID, u.Username)
	if err != nil {
		return LoginResult{}, apperrors.Internal(apperrors.CodeAuthFailed, "token generation failed")
	}

	logger.Info("User logged in",
		zap.Int64("user_id", u.ID),
		zap.String("username", u.Username),
	)

	u.PasswordHash = ""
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID int64) (repository.User, error) {
	return s.store.GetUser(ctx, userID)
}
