package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/anatomyace/anatomy-ace/internal/config"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminLoginDisabled = errors.New("admin login is not configured")
	ErrWrongTokenType     = errors.New("wrong token type")
)

// TokenType distinguishes admin tokens from quiz session tokens.
type TokenType string

const (
	TokenTypeAdmin   TokenType = "admin"
	TokenTypeSession TokenType = "session"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	SessionID string    `json:"session_id,omitempty"` // Session tokens only
}

// AuthService issues and validates tokens.
type AuthService struct {
	cfg *config.Config
	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg, now: time.Now}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// AdminLogin checks password against ADMIN_PASSWORD_HASH and issues an admin token.
func (s *AuthService) AdminLogin(password string) (string, error) {
	if s.cfg.AdminPasswordHash == "" {
		return "", ErrAdminLoginDisabled
	}
	if err := s.CheckPassword(s.cfg.AdminPasswordHash, password); err != nil {
		return "", err
	}
	return s.sign(TokenTypeAdmin, "admin", "", s.cfg.JWTExpiry)
}

// GenerateSessionToken issues a token scoped to one quiz session.
func (s *AuthService) GenerateSessionToken(sessionID uuid.UUID) (string, error) {
	return s.sign(TokenTypeSession, sessionID.String(), sessionID.String(), s.cfg.SessionTTL)
}

func (s *AuthService) sign(tt TokenType, subject, sessionID string, ttl time.Duration) (string, error) {
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tt,
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSessionToken checks that tokenStr is a session token for sessionID.
func (s *AuthService) ValidateSessionToken(tokenStr string, sessionID uuid.UUID) (*Claims, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeSession {
		return nil, ErrWrongTokenType
	}
	if claims.SessionID != sessionID.String() {
		return nil, fmt.Errorf("token is for session %s: %w", claims.SessionID, ErrWrongTokenType)
	}
	return claims, nil
}
