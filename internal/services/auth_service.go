package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmoellers/insightdeck/internal/core"
	"github.com/jmoellers/insightdeck/internal/models"
)

var (
	ErrMissingEmail = errors.New("email is required")
	ErrInvalidLink  = errors.New("invalid or expired magic link")
)

// AuthService implements passwordless login: a short-lived single-use
// token is mailed to the user (delivery is left to the caller) and
// exchanged for a session JWT. Only the bcrypt hash of the token is
// ever stored.
type AuthService struct {
	db        core.DbClient
	jwtSecret string
	linkTTL   time.Duration
}

func NewAuthService(db core.DbClient, jwtSecret string, linkTTL time.Duration) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret, linkTTL: linkTTL}
}

// RequestMagicLink creates the user on first sight and issues a fresh
// login token. The raw token is returned exactly once for delivery.
func (s *AuthService) RequestMagicLink(ctx context.Context, email string) (token string, err error) {
	if email == "" {
		return "", ErrMissingEmail
	}

	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		user = &models.User{
			ID:        uuid.NewString(),
			Email:     email,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := s.db.CreateUser(ctx, user); err != nil {
			return "", fmt.Errorf("create user: %w", err)
		}
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token = hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}

	record := &models.MagicLinkToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: string(hash),
		ExpiresAt: time.Now().Add(s.linkTTL),
		CreatedAt: time.Now(),
	}
	if err := s.db.CreateMagicLinkToken(ctx, record); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// VerifyMagicLink consumes a valid token and returns a session JWT plus
// the authenticated user.
func (s *AuthService) VerifyMagicLink(ctx context.Context, email, token string) (string, *models.User, error) {
	if email == "" || token == "" {
		return "", nil, ErrInvalidLink
	}

	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidLink
	}

	active, err := s.db.GetActiveMagicLinkTokens(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("lookup tokens: %w", err)
	}
	for _, candidate := range active {
		if bcrypt.CompareHashAndPassword([]byte(candidate.TokenHash), []byte(token)) != nil {
			continue
		}
		if err := s.db.MarkMagicLinkTokenUsed(ctx, candidate.ID); err != nil {
			return "", nil, fmt.Errorf("consume token: %w", err)
		}
		jwtToken, err := s.generateJWT(user.ID)
		if err != nil {
			return "", nil, fmt.Errorf("sign session: %w", err)
		}
		return jwtToken, user, nil
	}
	return "", nil, ErrInvalidLink
}

// GetProfile returns the user plus their merchant grants.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, []models.UserMerchant, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, errors.New("user not found")
	}
	grants, err := s.db.ListUserMerchants(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, grants, nil
}

// generateJWT creates a signed token with user ID claim
func (s *AuthService) generateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(s.jwtSecret))
}
