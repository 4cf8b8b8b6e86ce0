package fleetauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// HeaderForwarded marks a request relayed by another fleet member. Its
	// value is the origin machine id. The receiver never forwards it again.
	HeaderForwarded = "X-Orca-Forwarded"
	HeaderAuth      = "Authorization"

	issuer   = "orca-fleet"
	tokenTTL = 5 * time.Minute
)

var ErrInvalidToken = errors.New("invalid fleet token")

type Claims struct {
	MachineID string `json:"machine"`
	jwt.RegisteredClaims
}

// Signer issues and verifies short-lived HS256 tokens shared by the fleet.
// A zero secret disables both sides.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

func (s *Signer) Issue(machineID string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	now := s.now()
	claims := Claims{
		MachineID: machineID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign fleet token: %w", err)
	}
	return token, nil
}

// Verify parses a bearer token. When the signer is disabled every request
// is accepted.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	if !s.Enabled() {
		return &Claims{}, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
