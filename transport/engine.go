package transport

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/securecomm/frame"
)

// Engine runs the duplex phase of an established channel: one outbound and
// one inbound activity, concurrently, over a shared stream and session key.
//
// The session key is immutable after establishment, so both activities
// read it without locking. All sink output flows through a single display
// goroutine fed by a message-passing queue, so an in-progress prompt and an
// arriving message never interleave, and no lock is ever held across a
// blocking I/O call.
//
// Per-message cryptographic failures (tag verification, malformed frame)
// are dropped with a diagnostic and the channel continues. Stream-level
// failures are fatal: the engine closes the stream, which unblocks the
// other activity, and Run returns once both have finished.
type Engine struct {
	log    *logrus.Logger
	stream io.ReadWriteCloser
	key    [frame.KeySize]byte
	suite  frame.Suite
	source MessageSource
	sink   MessageSink

	display   chan displayEvent
	closeOnce sync.Once
	closed    atomic.Bool

	mu   sync.Mutex
	errs []error
}

type displayEvent struct {
	prompt bool
	text   string
}

// NewEngine assembles an engine over an established channel. The stream
// and key come from session establishment; source and sink are the
// application-facing message endpoints.
func NewEngine(log *logrus.Logger, stream io.ReadWriteCloser, key [frame.KeySize]byte,
	suite frame.Suite, source MessageSource, sink MessageSink) *Engine {
	return &Engine{
		log:     log,
		stream:  stream,
		key:     key,
		suite:   suite,
		source:  source,
		sink:    sink,
		display: make(chan displayEvent, 16),
	}
}

// Run pumps messages in both directions until either activity terminates,
// then tears the channel down and waits for both to finish. It returns nil
// on an orderly shutdown (quit sentinel or peer close) and the fatal
// stream error otherwise.
func (e *Engine) Run() error {
	displayDone := make(chan struct{})
	go e.displayLoop(displayDone)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.outbound()
	}()
	go func() {
		defer wg.Done()
		e.inbound()
	}()
	wg.Wait()

	// Both directions are down; the stream is closed on every exit path,
	// but closing again here is harmless and covers source exhaustion.
	e.closeStream()

	close(e.display)
	<-displayDone

	e.mu.Lock()
	defer e.mu.Unlock()
	return errors.Join(e.errs...)
}

// outbound repeatedly obtains one plaintext message from the source, seals
// it, and writes the frame to the stream. It terminates on the quit
// sentinel, source exhaustion, or a write failure; on termination it
// closes the shared stream, which unblocks the inbound read.
func (e *Engine) outbound() {
	defer e.closeStream()

	for {
		e.post(displayEvent{prompt: true})

		msg, err := e.source.Next()
		if errors.Is(err, ErrQuit) || errors.Is(err, io.EOF) {
			e.log.WithFields(logrus.Fields{
				"function": "outbound",
			}).Info("Quit requested, closing channel")
			return
		}
		if err != nil {
			e.fatal("outbound", err)
			return
		}

		f, err := frame.SealWithSuite(e.key, []byte(msg), e.suite)
		if err != nil {
			// Per-message failure: drop and keep the channel alive.
			e.log.WithFields(logrus.Fields{
				"function": "outbound",
				"error":    err.Error(),
			}).Error("Failed to seal message, dropping")
			continue
		}

		if err := WriteFrame(e.stream, f); err != nil {
			if !e.closed.Load() {
				e.fatal("outbound", err)
			}
			return
		}
	}
}

// inbound repeatedly reads frames from the stream, opens them, and hands
// the plaintext to the sink. It terminates on peer close or a stream
// error; per-frame decode failures are dropped and the loop continues.
func (e *Engine) inbound() {
	defer e.closeStream()

	for {
		f, err := ReadFrame(e.stream)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			e.log.WithFields(logrus.Fields{
				"function": "inbound",
			}).Info("Peer closed the connection")
			return
		case errors.Is(err, frame.ErrMalformed):
			e.log.WithFields(logrus.Fields{
				"function": "inbound",
				"error":    err.Error(),
			}).Warn("Dropping malformed frame")
			continue
		default:
			// Reads failing after a local close are the orderly shutdown
			// path, not a channel fault.
			if !e.closed.Load() {
				e.fatal("inbound", err)
			}
			return
		}

		plaintext, err := frame.OpenWithSuite(e.key, f, e.suite)
		if err != nil {
			// May indicate tampering or desynchronized keys.
			e.log.WithFields(logrus.Fields{
				"function": "inbound",
				"error":    err.Error(),
			}).Warn("Dropping undecryptable frame")
			continue
		}

		e.post(displayEvent{text: string(plaintext)})
	}
}

// displayLoop is the single consumer of the display queue; it serializes
// every sink call.
func (e *Engine) displayLoop(done chan<- struct{}) {
	defer close(done)
	for ev := range e.display {
		if ev.prompt {
			e.sink.DisplayPrompt()
		} else {
			e.sink.DisplayMessage(ev.text)
		}
	}
}

// post enqueues a display event. The queue is only closed after both
// activities have finished, so sends here are always safe.
func (e *Engine) post(ev displayEvent) {
	e.display <- ev
}

// fatal records a channel-fatal error for Run to report.
func (e *Engine) fatal(activity string, err error) {
	e.log.WithFields(logrus.Fields{
		"function": activity,
		"error":    err.Error(),
	}).Error("Stream failure, terminating channel")

	e.mu.Lock()
	e.errs = append(e.errs, err)
	e.mu.Unlock()
}

// closeStream closes the shared stream exactly once. Closing is the only
// cancellation primitive: it unblocks the pending read in the other
// activity.
func (e *Engine) closeStream() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		if err := e.stream.Close(); err != nil {
			e.log.WithFields(logrus.Fields{
				"function": "closeStream",
				"error":    err.Error(),
			}).Debug("Stream close reported an error")
		}
	})
}
