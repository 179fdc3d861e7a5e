// Package bridge translates blocking calls into work scheduled on a
// background dispatch loop that owns the session to the node daemon.
//
// The loop goroutine is the only owner of connection state. Callers post
// tasks onto a dispatch channel and block on a per-call result channel with a
// deadline, so a caller can never deadlock the loop and the loop can never
// hang a caller indefinitely. Errors raised by scheduled tasks propagate to
// the caller; converting them to safe sentinel values is the responsibility
// of the layer above.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/mkovacev/gridjob/internal/shared/config"
	"github.com/mkovacev/gridjob/internal/shared/logging"
)

var (
	// ErrNotConnected is returned for any call issued while the bridge is
	// disconnected. The dispatch loop is never touched in that case.
	ErrNotConnected = errors.New("bridge: not connected")

	// ErrCallTimeout is returned when a call's deadline elapses. The
	// client-side wait stops and the task context is cancelled, but
	// server-side work is not guaranteed to stop.
	ErrCallTimeout = errors.New("bridge: call timed out")
)

type result struct {
	value any
	err   error
}

type task struct {
	ctx  context.Context
	run  func(ctx context.Context, sess *Session) (any, error)
	done chan result
}

// Bridge owns one logical session to a remote node. At most one live
// connection exists per instance; a failed connect always resolves back to
// the disconnected state and is retryable.
type Bridge struct {
	cfg    config.BridgeConfig
	logger logging.Logger

	mu        sync.Mutex
	connected atomic.Bool
	tasks     chan *task
	loopCtx   context.Context
	loopStop  context.CancelFunc
	loopDone  chan struct{}
}

// New creates a disconnected bridge.
func New(cfg config.BridgeConfig, logger logging.Logger) *Bridge {
	return &Bridge{cfg: cfg, logger: logger}
}

// IsConnected reports whether a live session is held.
func (b *Bridge) IsConnected() bool {
	return b.connected.Load()
}

// Connect starts the dispatch loop on a background goroutine, waits for it to
// report itself running, then waits for the session handshake to complete.
// Any failure (loop start, handshake error, handshake timeout) tears the loop
// down and returns false, leaving the bridge disconnected and retryable.
func (b *Bridge) Connect(host string, port int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected.Load() {
		return true
	}

	loopCtx, loopStop := context.WithCancel(context.Background())
	tasks := make(chan *task)
	running := make(chan struct{})
	ready := make(chan error, 1)
	done := make(chan struct{})

	go b.runLoop(loopCtx, host, port, tasks, running, ready, done)

	select {
	case <-running:
	case <-time.After(b.cfg.LoopStartTimeout):
		loopStop()
		b.awaitLoop(done)
		b.logger.Error("Dispatch loop failed to start", "host", host, "port", port)
		return false
	}

	select {
	case err := <-ready:
		if err != nil {
			loopStop()
			b.awaitLoop(done)
			b.logger.Error("Handshake failed", "host", host, "port", port, "error", err)
			return false
		}
	case <-time.After(b.cfg.ConnectTimeout):
		// Best-effort cancellation of the pending handshake.
		loopStop()
		b.awaitLoop(done)
		b.logger.Error("Connect timed out", "host", host, "port", port, "timeout", b.cfg.ConnectTimeout)
		return false
	}

	b.tasks = tasks
	b.loopCtx = loopCtx
	b.loopStop = loopStop
	b.loopDone = done
	b.connected.Store(true)

	b.logger.Info("Connected to node", "host", host, "port", port)
	return true
}

// Disconnect clears the connected flag, stops the dispatch loop and joins it
// with a bounded timeout so a stuck remote peer can never block the caller
// indefinitely.
func (b *Bridge) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected.Load() {
		return nil
	}
	b.connected.Store(false)
	b.loopStop()

	var errs *multierror.Error
	select {
	case <-b.loopDone:
	case <-time.After(b.cfg.JoinTimeout):
		errs = multierror.Append(errs, fmt.Errorf("dispatch loop did not stop within %s", b.cfg.JoinTimeout))
	}

	b.tasks = nil
	b.loopCtx = nil
	b.loopStop = nil
	b.loopDone = nil

	b.logger.Info("Disconnected from node")
	return errs.ErrorOrNil()
}

// Call schedules fn onto the dispatch loop and blocks for at most timeout.
// If the bridge is not connected it fails immediately without touching the
// loop. Errors returned by fn propagate unchanged; a deadline produces
// ErrCallTimeout and cancels the task context, which is a client-side stop
// only.
func Call[T any](b *Bridge, timeout time.Duration, fn func(ctx context.Context, sess *Session) (T, error)) (T, error) {
	var zero T
	value, err := b.dispatch(timeout, func(ctx context.Context, sess *Session) (any, error) {
		return fn(ctx, sess)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("bridge: unexpected call result type %T", value)
	}
	return typed, nil
}

func (b *Bridge) dispatch(timeout time.Duration, run func(ctx context.Context, sess *Session) (any, error)) (any, error) {
	b.mu.Lock()
	if !b.connected.Load() {
		b.mu.Unlock()
		return nil, ErrNotConnected
	}
	tasks := b.tasks
	loopCtx := b.loopCtx
	b.mu.Unlock()

	callCtx, cancel := context.WithTimeout(loopCtx, timeout)
	defer cancel()

	t := &task{
		ctx:  callCtx,
		run:  run,
		done: make(chan result, 1),
	}

	select {
	case tasks <- t:
	case <-callCtx.Done():
		return nil, b.callError(callCtx, loopCtx)
	}

	select {
	case res := <-t.done:
		return res.value, res.err
	case <-callCtx.Done():
		return nil, b.callError(callCtx, loopCtx)
	}
}

func (b *Bridge) callError(callCtx, loopCtx context.Context) error {
	if loopCtx.Err() != nil {
		return fmt.Errorf("%w: session closed", ErrNotConnected)
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return ErrCallTimeout
	}
	return callCtx.Err()
}

// runLoop is the background dispatch loop. It performs the handshake,
// signals the ready channel exactly once, then serves heartbeats and
// dispatched tasks until its context is cancelled. Tasks are received in
// dispatch order; each runs on its own goroutine under its per-call context
// so a slow call never starves the heartbeat.
func (b *Bridge) runLoop(
	ctx context.Context,
	host string,
	port int,
	tasks chan *task,
	running chan struct{},
	ready chan error,
	done chan struct{},
) {
	defer close(done)
	close(running)

	sess := newSession(host, port)

	handshakeCtx, cancel := context.WithTimeout(ctx, b.cfg.ConnectTimeout)
	err := sess.handshake(handshakeCtx)
	cancel()

	ready <- err
	if err != nil {
		return
	}

	defer func() {
		// Session close happens after the loop context is cancelled, so it
		// gets its own short deadline.
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := sess.close(closeCtx); err != nil {
			b.logger.Warn("Session close failed", "session_id", sess.ID(), "error", err)
		}
	}()

	heartbeat := time.NewTicker(b.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			hbCtx, cancel := context.WithTimeout(ctx, b.cfg.HeartbeatInterval)
			if err := sess.heartbeat(hbCtx); err != nil {
				b.logger.Warn("Heartbeat failed", "session_id", sess.ID(), "error", err)
			}
			cancel()
		case t := <-tasks:
			go func(t *task) {
				value, err := t.run(t.ctx, sess)
				t.done <- result{value: value, err: err}
			}(t)
		}
	}
}

func (b *Bridge) awaitLoop(done chan struct{}) {
	select {
	case <-done:
	case <-time.After(b.cfg.JoinTimeout):
		b.logger.Warn("Dispatch loop did not stop within join timeout")
	}
}
