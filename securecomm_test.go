package securecomm

import (
	"errors"
	"io"
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/securecomm/auth"
	"github.com/opd-ai/securecomm/config"
	"github.com/opd-ai/securecomm/frame"
	"github.com/opd-ai/securecomm/session"
)

func testRuntime(t *testing.T) *RuntimeContext {
	t.Helper()
	rt, err := NewRuntimeContext(config.Default())
	require.NoError(t, err)
	rt.Log.SetOutput(io.Discard)
	return rt
}

// establishPair runs Establish on both ends of a pipe.
func establishPair(t *testing.T, rt *RuntimeContext) (*session.Session, *session.Session) {
	t.Helper()
	provider := auth.NewReferenceProvider()
	creds := auth.Credentials{Username: "user", Password: "pass"}

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	type result struct {
		sess *session.Session
		err  error
	}
	serverDone := make(chan result, 1)
	go func() {
		sess, err := Establish(rt, server, provider, creds, RoleResponder)
		serverDone <- result{sess, err}
	}()

	clientSess, err := Establish(rt, client, provider, creds, RoleInitiator)
	require.NoError(t, err)

	res := <-serverDone
	require.NoError(t, res.err)

	return clientSess, res.sess
}

func TestEstablishEndToEnd(t *testing.T) {
	rt := testRuntime(t)

	clientSess, serverSess := establishPair(t, rt)
	defer clientSess.Close()
	defer serverSess.Close()

	assert.Equal(t, clientSess.Key(), serverSess.Key(),
		"both peers must derive the same session key over the wire")

	// Peer A seals "hello", peer B opens it with the derived key.
	f, err := frame.Seal(clientSess.Key(), []byte("hello"))
	require.NoError(t, err)

	parsed, err := frame.Parse(f.Marshal())
	require.NoError(t, err)

	got, err := frame.Open(serverSess.Key(), parsed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestEstablishBadCredentials(t *testing.T) {
	rt := testRuntime(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sess, err := Establish(rt, client, auth.NewReferenceProvider(),
		auth.Credentials{Username: "user", Password: "wrong"}, RoleInitiator)

	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
	assert.Nil(t, sess, "no session object may exist after an auth failure")
}

func TestEstablishPeerDisconnect(t *testing.T) {
	rt := testRuntime(t)
	client, server := net.Pipe()
	defer client.Close()

	require.NoError(t, server.Close())

	sess, err := Establish(rt, client, auth.NewReferenceProvider(),
		auth.Credentials{Username: "user", Password: "pass"}, RoleInitiator)

	assert.Error(t, err)
	assert.Nil(t, sess)
}

func TestNewRuntimeContextRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "loud"

	_, err := NewRuntimeContext(cfg)
	assert.Error(t, err)
}

func TestRuntimeContextsAreIndependent(t *testing.T) {
	globalLevel := logrus.StandardLogger().GetLevel()
	globalOut := logrus.StandardLogger().Out

	debugCfg := config.Default()
	debugCfg.LogLevel = "debug"
	rtDebug, err := NewRuntimeContext(debugCfg)
	require.NoError(t, err)

	errorCfg := config.Default()
	errorCfg.LogLevel = "error"
	rtError, err := NewRuntimeContext(errorCfg)
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, rtDebug.Log.GetLevel())
	assert.Equal(t, logrus.ErrorLevel, rtError.Log.GetLevel(),
		"a second context must not clobber the first")

	assert.Equal(t, globalLevel, logrus.StandardLogger().GetLevel(),
		"constructing a context must not mutate the process-global logger")
	assert.Same(t, globalOut, logrus.StandardLogger().Out)
}
