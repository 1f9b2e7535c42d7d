package service

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService issues and verifies bearer tokens for the JSON API. Tokens
// carry only the user id; the acting identity and its permissions are
// resolved fresh from the database on every API request.
type AuthService struct {
	settingService SettingService
}

const tokenLifetime = 72 * time.Hour

// IssueToken signs a token for the given user id.
func (s *AuthService) IssueToken(userId int) (string, error) {
	secret, err := s.settingService.GetSecret()
	if err != nil {
		return "", err
	}

	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userId),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		Issuer:    "quill",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken parses a token and returns the embedded user id.
func (s *AuthService) VerifyToken(token string) (int, error) {
	secret, err := s.settingService.GetSecret()
	if err != nil {
		return 0, err
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer("quill"))
	if err != nil {
		return 0, ErrInvalidCredentials
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrInvalidCredentials
	}
	userId, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, ErrInvalidCredentials
	}
	return userId, nil
}
