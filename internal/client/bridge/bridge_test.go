package bridge

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovacev/gridjob/internal/client/apitest"
	"github.com/mkovacev/gridjob/internal/shared/config"
	"github.com/mkovacev/gridjob/internal/shared/logging"
)

func testConfig() config.BridgeConfig {
	return config.BridgeConfig{
		ConnectTimeout:    500 * time.Millisecond,
		LoopStartTimeout:  100 * time.Millisecond,
		HeartbeatInterval: 25 * time.Millisecond,
		JoinTimeout:       time.Second,
	}
}

// unusedPort returns a port with nothing listening on it.
func unusedPort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return port
}

func TestBridge_ConnectAndCall(t *testing.T) {
	stub := apitest.NewServer()
	defer stub.Close()

	b := New(testConfig(), logging.NopLogger{})
	host, port := stub.HostPort()
	require.True(t, b.Connect(host, port))
	require.True(t, b.IsConnected())

	type nodesResponse struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
	}
	resp, err := Call(b, time.Second, func(ctx context.Context, sess *Session) (nodesResponse, error) {
		var out nodesResponse
		return out, sess.GetJSON(ctx, "/api/v1/nodes", &out)
	})
	require.NoError(t, err)
	assert.Len(t, resp.Nodes, 2)

	require.NoError(t, b.Disconnect())
	assert.False(t, b.IsConnected())
}

func TestBridge_ConnectIsIdempotentWhileConnected(t *testing.T) {
	stub := apitest.NewServer()
	defer stub.Close()

	b := New(testConfig(), logging.NopLogger{})
	host, port := stub.HostPort()
	require.True(t, b.Connect(host, port))
	assert.True(t, b.Connect(host, port))
	require.NoError(t, b.Disconnect())
}

func TestBridge_ConnectRefusedThenRetrySucceeds(t *testing.T) {
	b := New(testConfig(), logging.NopLogger{})

	start := time.Now()
	require.False(t, b.Connect("127.0.0.1", unusedPort(t)))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, b.IsConnected())

	// A failed attempt must not leak state that blocks a clean retry.
	stub := apitest.NewServer()
	defer stub.Close()
	host, port := stub.HostPort()
	require.True(t, b.Connect(host, port))
	require.NoError(t, b.Disconnect())
}

func TestBridge_ConnectTimeoutIsBoundedAndRetryable(t *testing.T) {
	stub := apitest.NewServer()
	defer stub.Close()
	stub.SetHandshakeDelay(2 * time.Second)

	cfg := testConfig()
	cfg.ConnectTimeout = 200 * time.Millisecond
	b := New(cfg, logging.NopLogger{})

	host, port := stub.HostPort()
	start := time.Now()
	require.False(t, b.Connect(host, port))
	assert.Less(t, time.Since(start), cfg.ConnectTimeout+cfg.JoinTimeout+500*time.Millisecond)
	assert.False(t, b.IsConnected())

	stub.SetHandshakeDelay(0)
	require.True(t, b.Connect(host, port))
	require.NoError(t, b.Disconnect())
}

func TestBridge_CallWhileDisconnected(t *testing.T) {
	stub := apitest.NewServer()
	defer stub.Close()

	b := New(testConfig(), logging.NopLogger{})
	before := stub.RequestCount()

	// Two back-to-back calls on a disconnected bridge both fail fast.
	for i := 0; i < 2; i++ {
		_, err := Call(b, time.Second, func(ctx context.Context, sess *Session) (string, error) {
			return "", sess.GetJSON(ctx, "/api/v1/nodes", nil)
		})
		require.ErrorIs(t, err, ErrNotConnected)
	}

	assert.Equal(t, before, stub.RequestCount(), "disconnected calls must not touch the transport")
}

func TestBridge_CallTimeout(t *testing.T) {
	stub := apitest.NewServer()
	defer stub.Close()

	b := New(testConfig(), logging.NopLogger{})
	host, port := stub.HostPort()
	require.True(t, b.Connect(host, port))
	defer b.Disconnect()

	cancelled := make(chan struct{})
	start := time.Now()
	_, err := Call(b, 50*time.Millisecond, func(ctx context.Context, sess *Session) (string, error) {
		<-ctx.Done()
		close(cancelled)
		return "", ctx.Err()
	})
	require.ErrorIs(t, err, ErrCallTimeout)
	assert.Less(t, time.Since(start), time.Second)

	// The timeout is a client-side stop, but the task context is cancelled
	// as a best-effort signal.
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled after the call timed out")
	}
}

func TestBridge_CallErrorsPropagate(t *testing.T) {
	stub := apitest.NewServer()
	defer stub.Close()

	b := New(testConfig(), logging.NopLogger{})
	host, port := stub.HostPort()
	require.True(t, b.Connect(host, port))
	defer b.Disconnect()

	boom := errors.New("boom")
	_, err := Call(b, time.Second, func(ctx context.Context, sess *Session) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestBridge_HeartbeatsFlow(t *testing.T) {
	stub := apitest.NewServer()
	defer stub.Close()

	b := New(testConfig(), logging.NopLogger{})
	host, port := stub.HostPort()
	require.True(t, b.Connect(host, port))

	before := stub.RequestCount()
	time.Sleep(120 * time.Millisecond)
	assert.Greater(t, stub.RequestCount(), before, "expected heartbeat traffic while connected")

	require.NoError(t, b.Disconnect())
}

func TestBridge_CallAfterDisconnect(t *testing.T) {
	stub := apitest.NewServer()
	defer stub.Close()

	b := New(testConfig(), logging.NopLogger{})
	host, port := stub.HostPort()
	require.True(t, b.Connect(host, port))
	require.NoError(t, b.Disconnect())

	_, err := Call(b, time.Second, func(ctx context.Context, sess *Session) (string, error) {
		return "unreachable", nil
	})
	require.ErrorIs(t, err, ErrNotConnected)
}
