package osp

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

/* engine.go : the command engine — single-in-flight request/response
 * correlation over an interleaved byte stream, plus engine lifecycle.
 *
 * A sync.Mutex guards the busy flag and the active scanner slot; a
 * one-shot "wake" channel, closed by the dispatcher when a scanner reports
 * FINISHED and raced against time.After in a select, provides the
 * timed wait. sync.Cond has no timeout primitive, which is why a channel
 * is used here instead.
 */

const (
	defaultCommandTimeout = 8 * time.Second
	defaultReadyTimeout   = 5 * time.Second
)

// Engine is the OSP command/response correlation layer and dispatcher.
type Engine struct {
	transport Transport
	callbacks Callbacks
	clock     Clock

	// CommandTimeout/ReadyTimeout are the deadlines used by transfer and
	// WaitForReady, exposed as tunables rather than hard-coded.
	CommandTimeout time.Duration
	ReadyTimeout   time.Duration

	// mu guards busy/scanner/wake.
	mu      sync.Mutex
	busy    bool
	scanner Scanner
	wake    chan struct{}

	// cacheMu guards the seed-position/clock-drift cache independently of
	// mu: aiding handlers run on the dispatcher path without acquiring the
	// command mutex, since the transport may still be delivering frames
	// destined for an in-flight host command. A dedicated lock keeps cache
	// reads/writes race-free without violating that requirement.
	cacheMu sync.Mutex
	cache   cache
}

// New allocates an Engine bound to the given transport. The caller is
// responsible for wiring the transport's inbound delivery to
// Engine.Dispatch.
func New(transport Transport, callbacks Callbacks, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{
		transport:      transport,
		callbacks:      callbacks,
		clock:          clock,
		CommandTimeout: defaultCommandTimeout,
		ReadyTimeout:   defaultReadyTimeout,
	}
}

// Start has no effect and always returns nil. The engine holds no switch
// over its transport: frames flow whenever the transport calls Dispatch.
func (e *Engine) Start() error { return nil }

// Stop has no effect and always returns nil: Dispatch keeps handling
// frames for as long as the transport delivers them. It does not drain
// in-flight commands.
func (e *Engine) Stop() error { return nil }

// Close releases engine resources. The transport and any underlying
// serial handle are freed by the embedder.
func (e *Engine) Close() {}

// transfer acquires the mutex, fails fast on BUSY, installs the scanner (if
// one is supplied) before sending so that no reply can slip past it, sends,
// and then waits with an absolute deadline before unconditionally tearing
// the scanner down.
func (e *Engine) transfer(op string, out []byte, scanner Scanner, timeout time.Duration) error {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return errBusy(op)
	}
	e.busy = true
	var wake chan struct{}
	if scanner != nil {
		wake = make(chan struct{})
		e.scanner = scanner
		e.wake = wake
	}
	e.mu.Unlock()

	token := uuid.NewString()
	Tracef(3, "osp: %s cmd=%s send", op, token)
	if err := e.transport.Send(out); err != nil {
		e.mu.Lock()
		e.scanner = nil
		e.wake = nil
		e.busy = false
		e.mu.Unlock()
		Tracef(2, "osp: %s cmd=%s send failed: %v", op, token, err)
		return errTimeout(op)
	}

	if scanner == nil {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
		return nil
	}

	var err error
	select {
	case <-wake:
		Tracef(3, "osp: %s cmd=%s woke", op, token)
	case <-time.After(timeout):
		err = errTimeout(op)
		Tracef(2, "osp: %s cmd=%s timeout", op, token)
	}

	e.mu.Lock()
	e.scanner = nil
	e.wake = nil
	e.busy = false
	e.mu.Unlock()
	return err
}

func (e *Engine) sendUnsolicited(frame []byte) {
	if err := e.transport.Send(frame); err != nil {
		Tracef(2, "osp: unsolicited send failed: %v", err)
	}
}
