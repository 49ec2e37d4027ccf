package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/uniedit/storage-oss/internal/port/outbound"
	"github.com/uniedit/storage-oss/internal/shared/requestctx"
)

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid token")

// validator implements outbound.TokenValidatorPort for HMAC-signed tokens.
type validator struct {
	secret []byte
}

// NewValidator creates a token validator for the shared HMAC secret.
func NewValidator(secret string) outbound.TokenValidatorPort {
	return &validator{secret: []byte(secret)}
}

// ValidateToken parses the token and returns the principal it names.
func (v *validator) ValidateToken(tokenString string) (*requestctx.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}

	return &requestctx.Principal{
		UserID: userID,
		Email:  email,
	}, nil
}

// Compile-time check
var _ outbound.TokenValidatorPort = (*validator)(nil)
