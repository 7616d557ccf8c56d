package frame

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Suite selects the AEAD construction used to seal and open frames. Both
// suites use a 256-bit key, a 12-byte nonce, and a 16-byte tag, and
// preserve plaintext length, so the wire layout is identical.
type Suite uint8

const (
	// SuiteAES256GCM is the default suite.
	SuiteAES256GCM Suite = iota
	// SuiteChaCha20Poly1305 is the alternate suite for hosts without AES
	// hardware support.
	SuiteChaCha20Poly1305
)

// String returns the configuration name of the suite.
func (s Suite) String() string {
	switch s {
	case SuiteAES256GCM:
		return "aes-256-gcm"
	case SuiteChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseSuite resolves a configuration name to a Suite.
func ParseSuite(name string) (Suite, error) {
	switch name {
	case "", "aes-256-gcm":
		return SuiteAES256GCM, nil
	case "chacha20-poly1305":
		return SuiteChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("unsupported cipher suite %q", name)
	}
}

// aead constructs the AEAD for the suite under the given session key.
func (s Suite) aead(key [KeySize]byte) (cipher.AEAD, error) {
	switch s {
	case SuiteAES256GCM:
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, fmt.Errorf("aes cipher init: %w", err)
		}
		return cipher.NewGCM(block)
	case SuiteChaCha20Poly1305:
		return chacha20poly1305.New(key[:])
	default:
		return nil, fmt.Errorf("unsupported cipher suite %q", s)
	}
}
