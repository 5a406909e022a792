package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rocketscienceinc/lobby-backend/internal/apperror"
)

var ErrEmptySubject = errors.New("token has no subject")

type AuthService interface {
	ResolveIdentity(token string) (string, error)
	GenerateToken(userID string, ttl time.Duration) (string, error)
}

// authServiceImpl verifies HS256 access tokens signed with the store's jwt secret.
type authServiceImpl struct {
	secretKey []byte
	now       func() time.Time
}

func NewAuthService(secretKey string) AuthService {
	return &authServiceImpl{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
}

// ResolveIdentity - returns the subject of a valid token, or apperror.ErrUnauthorized.
func (that *authServiceImpl) ResolveIdentity(token string) (string, error) {
	if token == "" {
		return "", apperror.ErrUnauthorized
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return that.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(that.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: %w", apperror.ErrUnauthorized, ErrEmptySubject)
	}

	return claims.Subject, nil
}

// GenerateToken - issues a token for userID, lobby-token mints local credentials with it.
func (that *authServiceImpl) GenerateToken(userID string, ttl time.Duration) (string, error) {
	now := that.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
