package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session token validation errors.
var (
	// ErrTokenExpired indicates the token is past its expiration claim.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalidSignature indicates the signature does not verify.
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	// ErrTokenMalformed indicates a structurally broken token.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrInvalidToken indicates any other validation failure.
	ErrInvalidToken = errors.New("invalid token")
)

// SessionClaims defines the JWT claims carried by an admin session cookie.
type SessionClaims struct {
	AdminID uint64 `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs an HS256 session JWT for the given admin.
// The jti claim gets a fresh UUID so individual sessions can be revoked.
func GenerateSessionToken(secret string, adminID uint64, email string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := SessionClaims{
		AdminID: adminID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates a session JWT and returns its claims.
// It is a pure function of the token, the secret and the clock; callers decide
// how much of the typed failure to surface.
func ParseSessionToken(secret string, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
