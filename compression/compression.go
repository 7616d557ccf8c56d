// Package compression provides a zlib deflate/inflate codec with growable
// output buffers. It is an independent transform: the secure message path
// does not invoke it, but callers may compress payloads before sealing.
package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compression levels. These mirror the zlib level range.
const (
	NoCompression      = zlib.NoCompression
	BestSpeed          = zlib.BestSpeed
	BestCompression    = zlib.BestCompression
	DefaultCompression = zlib.DefaultCompression
)

// maxDecompressedSize bounds inflate output so a hostile input cannot
// exhaust memory (zip-bomb guard).
const maxDecompressedSize = 64 * 1024 * 1024

// Compress deflates the input at the given level (0-9, or
// DefaultCompression). The result is an owned byte slice; empty input is
// valid and yields a well-formed empty zlib stream.
func Compress(input []byte, level int) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("compression init: %w", err)
	}
	if _, err := w.Write(input); err != nil {
		return nil, fmt.Errorf("compression write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compression finish: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream into an owned byte slice, growing the
// buffer as needed up to an internal safety limit.
func Decompress(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompression init: %w", err)
	}
	defer r.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompression read: %w", err)
	}
	if n > maxDecompressedSize {
		return nil, fmt.Errorf("decompressed data exceeds %d byte limit", maxDecompressedSize)
	}

	return buf.Bytes(), nil
}
