package frame

import (
	"crypto/rand"
	"fmt"
)

// Seal encrypts a plaintext under the session key with the default suite.
func Seal(key [KeySize]byte, plaintext []byte) (*Frame, error) {
	return SealWithSuite(key, plaintext, SuiteAES256GCM)
}

// SealWithSuite encrypts a plaintext message into a fresh Frame. A new
// random 96-bit nonce is generated per call; no additional authenticated
// data is used. Empty plaintext is valid and produces an empty ciphertext
// with a live tag. Ciphertext length always equals plaintext length.
func SealWithSuite(key [KeySize]byte, plaintext []byte, suite Suite) (*Frame, error) {
	if len(plaintext) > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(plaintext))
	}

	aead, err := suite.aead(key)
	if err != nil {
		return nil, err
	}

	f := &Frame{}
	if _, err := rand.Read(f.Nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}

	// Seal appends ciphertext then tag; split them back into the frame
	// layout, which carries the tag ahead of the ciphertext.
	sealed := aead.Seal(nil, f.Nonce[:], plaintext, nil)
	f.Ciphertext = sealed[:len(plaintext)]
	copy(f.Tag[:], sealed[len(plaintext):])

	return f, nil
}

// Open decrypts a frame sealed with the default suite.
func Open(key [KeySize]byte, f *Frame) ([]byte, error) {
	return OpenWithSuite(key, f, SuiteAES256GCM)
}

// OpenWithSuite verifies and decrypts a frame. On tag verification failure
// the candidate plaintext is discarded and ErrAuthTag is returned; no
// partially decrypted bytes are ever exposed to the caller.
func OpenWithSuite(key [KeySize]byte, f *Frame, suite Suite) ([]byte, error) {
	aead, err := suite.aead(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, len(f.Ciphertext)+TagSize)
	copy(sealed, f.Ciphertext)
	copy(sealed[len(f.Ciphertext):], f.Tag[:])

	plaintext, err := aead.Open(nil, f.Nonce[:], sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong key, corrupted, or truncated frame", ErrAuthTag)
	}

	return plaintext, nil
}
