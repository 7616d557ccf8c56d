// Package transport owns the channel after session establishment: it moves
// frames across a byte stream and runs the duplex engine that pumps
// messages concurrently in both directions.
//
// The frame wire layout itself carries no length field, so this package
// delimits frames on stream transports with a 4-byte big-endian length
// prefix. Datagram-style transports that preserve message boundaries can
// bypass the prefix by using frame.Marshal and frame.Parse directly.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/opd-ai/securecomm/frame"
)

// ErrStream indicates a read, write, or reset failure on the underlying
// stream. It is fatal to the channel and triggers orderly shutdown of both
// engine activities.
var ErrStream = errors.New("stream failure")

// maxFrameWireSize caps an incoming length prefix: header plus the largest
// message the codec will seal.
const maxFrameWireSize = frame.HeaderSize + frame.MaxMessageSize

// WriteFrame serializes a frame to the stream behind a 4-byte big-endian
// length prefix.
func WriteFrame(w io.Writer, f *frame.Frame) error {
	wire := f.Marshal()

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(wire)))

	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("%w: write length prefix: %w", ErrStream, err)
	}
	if _, err := w.Write(wire); err != nil {
		return fmt.Errorf("%w: write frame: %w", ErrStream, err)
	}
	return nil
}

// ReadFrame reads one length-delimited frame from the stream. A read may
// deliver partial data; ReadFrame blocks until the whole frame arrives.
// A clean peer close before any prefix byte is reported as io.EOF. A frame
// shorter than the fixed header is reported as frame.ErrMalformed without
// touching the cipher; the stream remains positioned at the next frame, so
// the caller may drop the message and continue.
func ReadFrame(r io.Reader) (*frame.Frame, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: read length prefix: %w", ErrStream, err)
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length > maxFrameWireSize {
		return nil, fmt.Errorf("%w: frame length %d exceeds limit", ErrStream, length)
	}

	wire := make([]byte, length)
	if _, err := io.ReadFull(r, wire); err != nil {
		return nil, fmt.Errorf("%w: read frame body: %w", ErrStream, err)
	}

	return frame.Parse(wire)
}

// ExchangePublicValues performs the public-value byte exchange of session
// establishment. The initiator writes first and then reads; the responder
// reads first and then writes. Returns the peer's raw public value; the
// session layer validates it.
func ExchangePublicValues(rw io.ReadWriter, local []byte, initiator bool) ([]byte, error) {
	if initiator {
		if err := writeValue(rw, local); err != nil {
			return nil, err
		}
		return readValue(rw)
	}

	peer, err := readValue(rw)
	if err != nil {
		return nil, err
	}
	if err := writeValue(rw, local); err != nil {
		return nil, err
	}
	return peer, nil
}

func writeValue(w io.Writer, value []byte) error {
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(value)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("%w: write public value: %w", ErrStream, err)
	}
	if _, err := w.Write(value); err != nil {
		return fmt.Errorf("%w: write public value: %w", ErrStream, err)
	}
	return nil
}

func readValue(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: read public value: %w", ErrStream, err)
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length == 0 || length > maxFrameWireSize {
		return nil, fmt.Errorf("%w: public value length %d out of range", ErrStream, length)
	}

	value := make([]byte, length)
	if _, err := io.ReadFull(r, value); err != nil {
		return nil, fmt.Errorf("%w: read public value: %w", ErrStream, err)
	}
	return value, nil
}
