// Package auth provides principal authentication for session establishment.
//
// Authentication is an injected capability: components depend on the
// AuthenticationProvider interface rather than a fixed trust store, so the
// backing store (static, hashed file, remote service) is chosen at startup.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
)

// ErrInvalidCredentials indicates a credential mismatch. It is fatal to
// session establishment; no partial session state is released.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is a username/password pair. It is validated once at session
// start and never persisted beyond the session.
type Credentials struct {
	Username string
	Password string
}

// AuthenticationProvider verifies credentials against a trust store and
// returns the authenticated principal name.
type AuthenticationProvider interface {
	Verify(creds Credentials) (string, error)
}

// StaticProvider is a trust store holding a single fixed credential pair.
// Comparison is constant-time.
type StaticProvider struct {
	username string
	password string
}

// NewStaticProvider creates a provider trusting exactly one credential pair.
func NewStaticProvider(username, password string) *StaticProvider {
	return &StaticProvider{username: username, password: password}
}

// NewReferenceProvider returns the reference trust store ("user"/"pass").
// It exists for the interactive demo programs and tests; production
// deployments should inject a HashedProvider or an external backend.
func NewReferenceProvider() *StaticProvider {
	return NewStaticProvider("user", "pass")
}

// Verify checks the supplied credentials against the stored pair.
func (p *StaticProvider) Verify(creds Credentials) (string, error) {
	userOK := constantTimeEqual(creds.Username, p.username)
	passOK := constantTimeEqual(creds.Password, p.password)

	if userOK&passOK != 1 {
		return "", ErrInvalidCredentials
	}

	return p.username, nil
}

// constantTimeEqual compares two strings without leaking their length or
// the position of the first mismatch. Hashing both sides first lets the
// comparison run over fixed-size inputs.
func constantTimeEqual(a, b string) int {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:])
}
