// Package securecomm establishes an authenticated, encrypted,
// message-oriented channel between two peers over a byte stream and pumps
// application messages across it concurrently in both directions.
//
// Establishment authenticates a principal against an injected trust store,
// performs a Diffie-Hellman exchange over the stream, and derives a 256-bit
// session key. The duplex engine then seals and opens AEAD frames over the
// same stream until either side quits or the stream fails.
//
// Example:
//
//	rt, err := securecomm.NewRuntimeContext(config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conn, err := net.Dial("tcp", rt.Config.Addr())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sess, err := securecomm.Establish(rt, conn, provider, creds, securecomm.RoleInitiator)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	err = securecomm.RunChannel(rt, conn, sess,
//	    transport.NewScannerSource(os.Stdin, "exit"),
//	    transport.NewConsoleSink(os.Stdout, "Peer"))
package securecomm

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/securecomm/auth"
	"github.com/opd-ai/securecomm/config"
	"github.com/opd-ai/securecomm/session"
	"github.com/opd-ai/securecomm/transport"
)

// Role distinguishes the two ends of the public-value exchange: the
// initiator writes its value first, the responder reads first.
type Role uint8

const (
	RoleInitiator Role = iota
	RoleResponder
)

// RuntimeContext carries the logger and configuration explicitly to every
// component that needs them. It is constructed once at process start;
// there is no ambient global configuration state.
type RuntimeContext struct {
	Log    *logrus.Logger
	Config config.Config

	logFile *os.File
}

// NewRuntimeContext builds a runtime context from a validated
// configuration: log level applied, log output directed at the configured
// file or the console.
func NewRuntimeContext(cfg config.Config) (*RuntimeContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	log := logrus.New()
	log.SetLevel(level)

	rt := &RuntimeContext{Log: log, Config: cfg}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
		log.SetOutput(f)
		rt.logFile = f
	}

	return rt, nil
}

// Close releases resources owned by the context.
func (rt *RuntimeContext) Close() error {
	if rt.logFile != nil {
		return rt.logFile.Close()
	}
	return nil
}

// Establish runs session establishment over an open stream: it
// authenticates the principal, exchanges public key-agreement values with
// the peer, and derives the session key. On any failure all intermediate
// key material is released and no session exists; the caller decides
// whether to retry the whole handshake.
func Establish(rt *RuntimeContext, conn io.ReadWriter, provider auth.AuthenticationProvider,
	creds auth.Credentials, role Role) (*session.Session, error) {
	hs, err := session.Begin(rt.Log, provider, creds)
	if err != nil {
		return nil, err
	}

	peerPublic, err := transport.ExchangePublicValues(conn, hs.PublicValue(), role == RoleInitiator)
	if err != nil {
		hs.Abort()
		return nil, fmt.Errorf("public value exchange: %w", err)
	}

	sess, err := hs.Complete(peerPublic)
	if err != nil {
		return nil, err
	}

	rt.Log.WithFields(logrus.Fields{
		"function":  "Establish",
		"principal": sess.Principal(),
		"cipher":    rt.Config.Cipher,
	}).Info("Secure channel established")

	return sess, nil
}

// RunChannel hands an established session and its stream to the duplex
// engine and blocks until the channel is torn down. The session is closed
// and its key material wiped before returning.
func RunChannel(rt *RuntimeContext, conn io.ReadWriteCloser, sess *session.Session,
	source transport.MessageSource, sink transport.MessageSink) error {
	defer sess.Close()

	suite, err := rt.Config.Suite()
	if err != nil {
		return err
	}

	engine := transport.NewEngine(rt.Log, conn, sess.Key(), suite, source, sink)
	err = engine.Run()

	rt.Log.WithFields(logrus.Fields{
		"function":  "RunChannel",
		"principal": sess.Principal(),
	}).Info("Channel closed")

	return err
}
