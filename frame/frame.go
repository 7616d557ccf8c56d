// Package frame implements the authenticated message framing used on the
// wire once a session is established.
//
// A frame carries one AEAD-sealed message in a fixed layout:
//
//	offset 0..12   nonce (12 bytes)
//	offset 12..28  authentication tag (16 bytes)
//	offset 28..N   ciphertext (N-28 bytes)
//
// The layout carries no length field; the transport is responsible for
// delimiting frame boundaries on the stream.
//
// Example:
//
//	f, err := frame.Seal(key, []byte("hello"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	wire := f.Marshal()
package frame

import (
	"errors"
	"fmt"
)

const (
	// NonceSize is the size of an AEAD nonce (96-bit).
	NonceSize = 12

	// TagSize is the size of an AEAD authentication tag.
	TagSize = 16

	// HeaderSize is the fixed portion of a frame: nonce plus tag.
	HeaderSize = NonceSize + TagSize

	// KeySize is the session key size required by both cipher suites.
	KeySize = 32

	// MaxMessageSize caps a single plaintext message (1MB to prevent
	// excessive memory usage).
	MaxMessageSize = 1024 * 1024
)

var (
	// ErrMalformed indicates a frame shorter than the fixed header. It is
	// reported before any cipher work is attempted.
	ErrMalformed = errors.New("malformed frame")

	// ErrAuthTag indicates AEAD tag verification failure: wrong key,
	// corrupted data, or a truncated frame. No plaintext is exposed.
	ErrAuthTag = errors.New("authentication tag verification failed")

	// ErrMessageTooLarge indicates a plaintext above MaxMessageSize.
	ErrMessageTooLarge = errors.New("message exceeds maximum size")
)

// Frame is one wire-encoded authenticated message unit. A Frame is
// constructed fresh per plaintext message and is not reused.
type Frame struct {
	Nonce      [NonceSize]byte
	Tag        [TagSize]byte
	Ciphertext []byte
}

// Marshal serializes the frame to its wire layout: nonce, tag, ciphertext,
// in that fixed order. The returned slice is freshly allocated.
func (f *Frame) Marshal() []byte {
	out := make([]byte, HeaderSize+len(f.Ciphertext))
	copy(out[:NonceSize], f.Nonce[:])
	copy(out[NonceSize:HeaderSize], f.Tag[:])
	copy(out[HeaderSize:], f.Ciphertext)
	return out
}

// Parse reconstructs a Frame from its wire layout. Input shorter than the
// fixed header is rejected with ErrMalformed before decryption is
// attempted. Empty ciphertext is valid.
func Parse(data []byte) (*Frame, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d",
			ErrMalformed, len(data), HeaderSize)
	}

	f := &Frame{
		Ciphertext: make([]byte, len(data)-HeaderSize),
	}
	copy(f.Nonce[:], data[:NonceSize])
	copy(f.Tag[:], data[NonceSize:HeaderSize])
	copy(f.Ciphertext, data[HeaderSize:])

	return f, nil
}
