// internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Annany2002/opentextbook-backend/internal/logger"
)

var (
	ErrTokenMalformed          = errors.New("malformed session token")
	ErrTokenExpired            = errors.New("session token is expired or not valid yet")
	ErrTokenInvalid            = errors.New("invalid session token")
	ErrTokenClaimsInvalid      = errors.New("invalid session token claims")
	ErrUnexpectedSigningMethod = errors.New("unexpected token signing method")
	customLog                  = logger.NewLogger()
)

const tokenIssuer = "opentextbook-backend"

// SessionClaims carries the opaque session id inside the signed cookie value.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// --- Password Utilities ---

// HashPassword generates a bcrypt hash for the given password
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		customLog.Warnf("Error generating bcrypt hash: %v", err)
		return "", fmt.Errorf("failed to hash password")
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash.
// Any malformed hash counts as a mismatch.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		customLog.Warnf("Unexpected error comparing password hash: %v", err)
	}
	return err == nil
}

// --- Session Token Utilities ---

// GenerateSessionToken signs a token binding sessionID until expiresAt.
func GenerateSessionToken(sessionID, secret string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		customLog.Warnf("Error signing session token: %v", err)
		return "", fmt.Errorf("failed to generate session token")
	}

	return signedToken, nil
}

// ValidateSessionToken parses and validates a token string, returning the session id if valid.
func ValidateSessionToken(tokenString, secret string) (string, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		customLog.Debugf("ValidateSessionToken: Token parsing error: %v", err)
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return "", ErrTokenExpired
		case errors.Is(err, ErrUnexpectedSigningMethod):
			return "", ErrUnexpectedSigningMethod
		default:
			return "", ErrTokenInvalid
		}
	}

	if !token.Valid {
		return "", ErrTokenInvalid
	}

	if claims.SessionID == "" {
		return "", ErrTokenClaimsInvalid
	}

	return claims.SessionID, nil
}
