package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Login(password string) (string, error)
}

type authService struct {
	passwordHash []byte
	jwtSecret    string
}

// NewAuthService hashes the configured operator password once at startup;
// the plain value never leaves config.
func NewAuthService(adminPassword, jwtSecret string) (IAuthService, error) {
	if adminPassword == "" || jwtSecret == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD and JWT_SECRET must be set")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &authService{
		passwordHash: hash,
		jwtSecret:    jwtSecret,
	}, nil
}

func (s *authService) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	claims := jwt.MapClaims{
		"sub": "operator",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
