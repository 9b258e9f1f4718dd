package helpers

import (
	"crypto/rsa"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSession    = errors.New("invalid session token")
	ErrUnauthorizedParty = errors.New("session token issued for an unknown party")
	ErrMissingSessionKey = errors.New("session verification key not configured")
)

// SessionClaims are the claims Clerk puts in a session token. Subject is the
// provider user id.
type SessionClaims struct {
	SessionID       string `json:"sid"`
	AuthorizedParty string `json:"azp,omitempty"`
	jwt.RegisteredClaims
}

// SessionVerifier checks provider-issued RS256 session tokens against a
// static public key (networkless verification).
type SessionVerifier struct {
	key     *rsa.PublicKey
	parties []string
	leeway  time.Duration
}

func NewSessionVerifier(pemKey string, authorizedParties []string) (*SessionVerifier, error) {
	if pemKey == "" {
		return nil, ErrMissingSessionKey
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, err
	}
	return &SessionVerifier{key: key, parties: authorizedParties, leeway: 5 * time.Second}, nil
}

func (v *SessionVerifier) Verify(tokenStr string) (*SessionClaims, error) {
	if v == nil || v.key == nil {
		return nil, ErrMissingSessionKey
	}
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	if claims.AuthorizedParty != "" && len(v.parties) > 0 && !slices.Contains(v.parties, claims.AuthorizedParty) {
		return nil, ErrUnauthorizedParty
	}
	return claims, nil
}
