// Package session implements session establishment and lifecycle for the
// securecomm protocol.
//
// Establishment runs once, synchronously, in two phases. Begin
// authenticates the principal and generates a Diffie-Hellman keypair;
// the caller then exchanges public values with the peer (the transport
// performs the actual byte exchange) and calls Complete, which derives the
// symmetric session key. A Session is either fully established or it does
// not exist; no partially initialized session is ever returned.
//
// Example:
//
//	hs, err := session.Begin(rt.Log, provider, creds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	peerPub, err := transport.ExchangePublicValues(conn, hs.PublicValue(), true)
//	if err != nil {
//	    hs.Abort()
//	    log.Fatal(err)
//	}
//	sess, err := hs.Complete(peerPub)
package session

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/securecomm/auth"
	"github.com/opd-ai/securecomm/crypto"
	"github.com/opd-ai/securecomm/frame"
)

// Handshake carries the intermediate state between authentication and key
// derivation: the authenticated principal and a fresh DH keypair. If the
// handshake cannot be completed, call Abort to release the key material.
type Handshake struct {
	log       *logrus.Logger
	principal string
	keyPair   *crypto.KeyPair
}

// Begin authenticates the principal against the supplied trust store and
// generates a fresh key-agreement keypair. Diagnostics go to the supplied
// logger; a nil logger falls back to the logrus standard logger. On any
// failure all intermediate cryptographic material is released before
// returning; no retry is attempted internally.
func Begin(log *logrus.Logger, provider auth.AuthenticationProvider, creds auth.Credentials) (*Handshake, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	principal, err := provider.Verify(creds)
	if err != nil {
		log.WithFields(logrus.Fields{
			"function": "Begin",
			"username": creds.Username,
		}).Warn("Authentication failed")
		return nil, fmt.Errorf("session establishment: %w", err)
	}

	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("session establishment: %w", err)
	}

	log.WithFields(logrus.Fields{
		"function":  "Begin",
		"principal": principal,
	}).Info("Principal authenticated, keypair generated")

	return &Handshake{log: log, principal: principal, keyPair: keyPair}, nil
}

// PublicValue returns the local public key-agreement value to be sent to
// the peer by the transport.
func (h *Handshake) PublicValue() []byte {
	return h.keyPair.PublicBytes()
}

// Complete consumes the peer's public value and derives the session key,
// returning a fully established Session. The handshake keypair is retained
// by the session and wiped when the session closes. On failure the keypair
// is wiped immediately and no session exists.
func (h *Handshake) Complete(peerPublic []byte) (*Session, error) {
	peer, err := crypto.ParsePublicValue(peerPublic)
	if err != nil {
		h.Abort()
		return nil, fmt.Errorf("session establishment: %w", err)
	}

	key, err := crypto.DeriveSessionKey(h.keyPair, peer)
	if err != nil {
		h.Abort()
		return nil, fmt.Errorf("session establishment: %w", err)
	}

	h.log.WithFields(logrus.Fields{
		"function":  "Complete",
		"principal": h.principal,
	}).Info("Session established")

	return &Session{
		log:       h.log,
		principal: h.principal,
		keyPair:   h.keyPair,
		key:       key,
	}, nil
}

// Abort releases the handshake key material without producing a session.
// Safe to call more than once.
func (h *Handshake) Abort() {
	if h.keyPair != nil {
		h.keyPair.Wipe()
	}
}

// Session is a fully established secure session: an authenticated
// principal identity and a derived 256-bit symmetric key. The key is
// immutable for the session's lifetime and is securely erased by Close.
type Session struct {
	log       *logrus.Logger
	principal string
	keyPair   *crypto.KeyPair
	key       [frame.KeySize]byte

	mu     sync.Mutex
	closed bool
}

// Principal returns the authenticated principal name.
func (s *Session) Principal() string {
	return s.principal
}

// Key returns the derived session key. Calling Key on a closed session
// panics: the key has been erased and must not be used.
func (s *Session) Key() [frame.KeySize]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		panic("session: Key called after Close")
	}
	return s.key
}

// Closed reports whether the session has been terminated.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close terminates the session, overwriting the session key bytes before
// releasing the keypair material. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	crypto.ZeroSessionKey(&s.key)
	if s.keyPair != nil {
		s.keyPair.Wipe()
	}

	s.log.WithFields(logrus.Fields{
		"function":  "Close",
		"principal": s.principal,
	}).Info("Session terminated, key material wiped")

	return nil
}
