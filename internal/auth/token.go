package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("session has expired, please log in again")
	ErrTokenInvalid = errors.New("invalid session token")
)

const tokenIssuer = "eration"

// Claims identify the device a session belongs to.
type Claims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

// Tokens signs and validates HS256 session tokens.
type Tokens struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewTokens(signingKey string, ttl time.Duration) *Tokens {
	return &Tokens{signingKey: []byte(signingKey), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for deviceID and its expiry.
func (t *Tokens) Issue(deviceID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Validate parses tokenString and returns its claims.
func (t *Tokens) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return t.signingKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.DeviceID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
