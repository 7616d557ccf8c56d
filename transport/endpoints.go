package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrQuit is returned by a MessageSource when the user or application has
// requested an orderly shutdown of the channel.
var ErrQuit = errors.New("quit requested")

// MessageSource supplies outgoing plaintext messages to the engine. Next
// blocks until a message is available and returns ErrQuit on the quit
// sentinel or io.EOF when the source is exhausted.
type MessageSource interface {
	Next() (string, error)
}

// MessageSink receives incoming plaintext messages from the engine and
// renders outbound prompts. Implementations need not be safe for
// concurrent use: the engine serializes all sink calls through a single
// display goroutine.
type MessageSink interface {
	DisplayMessage(text string)
	DisplayPrompt()
}

// ScannerSource reads newline-delimited messages from a reader
// (interactive input). A line matching the quit word, and end of input,
// both terminate the source.
type ScannerSource struct {
	scanner  *bufio.Scanner
	quitWord string
}

// NewScannerSource wraps a reader as a message source. quitWord is the
// sentinel that ends the session; the reference programs use "exit".
func NewScannerSource(r io.Reader, quitWord string) *ScannerSource {
	return &ScannerSource{
		scanner:  bufio.NewScanner(r),
		quitWord: quitWord,
	}
}

// Next returns the next input line with the trailing newline stripped.
func (s *ScannerSource) Next() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	line := strings.TrimRight(s.scanner.Text(), "\r")
	if line == s.quitWord {
		return "", ErrQuit
	}
	return line, nil
}

// ConsoleSink renders the interactive chat view: incoming messages are
// printed on their own line, labelled with the peer name, and the outbound
// prompt is re-drawn afterwards so typing can continue.
type ConsoleSink struct {
	out       io.Writer
	peerLabel string
}

// NewConsoleSink writes messages to out, attributing them to peerLabel.
func NewConsoleSink(out io.Writer, peerLabel string) *ConsoleSink {
	return &ConsoleSink{out: out, peerLabel: peerLabel}
}

// DisplayMessage prints one incoming message and restores the prompt.
func (c *ConsoleSink) DisplayMessage(text string) {
	fmt.Fprintf(c.out, "\n%s: %s\nYou: ", c.peerLabel, text)
}

// DisplayPrompt prints the outbound input prompt.
func (c *ConsoleSink) DisplayPrompt() {
	fmt.Fprint(c.out, "You: ")
}
