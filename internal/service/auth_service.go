package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/config"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminRole = "admin"

// AuthService guards admin operations with a single shared PIN. A correct
// PIN is exchanged for a short-lived signed session token.
type AuthService interface {
	LoginWithPIN(ctx context.Context, pin string) (*dto.LoginResponse, error)
	// CheckPIN reports whether pin matches the configured admin PIN.
	CheckPIN(pin string) bool
	ValidateToken(token string) error
}

type authService struct {
	cfg *config.Config
	now func() time.Time
}

func NewAuthService(cfg *config.Config) AuthService {
	return &authService{cfg: cfg, now: time.Now}
}

func (s *authService) ttl() time.Duration {
	minutes := s.cfg.SessionTTLMinutes
	if minutes <= 0 {
		minutes = 180
	}
	return time.Duration(minutes) * time.Minute
}

func (s *authService) LoginWithPIN(_ context.Context, pin string) (*dto.LoginResponse, error) {
	if !s.CheckPIN(pin) {
		return nil, ErrInvalidPIN
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   adminRole,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl())),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SessionSecret))
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.ttl().Seconds()),
	}, nil
}

// CheckPIN prefers the bcrypt hash when one is configured.
func (s *authService) CheckPIN(pin string) bool {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return false
	}
	if hash := strings.TrimSpace(s.cfg.AdminPINHash); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
	}
	want := strings.TrimSpace(s.cfg.AdminPIN)
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pin), []byte(want)) == 1
}

func (s *authService) ValidateToken(raw string) error {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.SessionSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ErrInvalidPIN
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != adminRole {
		return ErrInvalidPIN
	}
	return nil
}
