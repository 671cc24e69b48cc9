// Package driver implements the component that owns a single transport
// strategy, runs a cancellable background read worker fanning out received
// messages to subscribers, and exposes a synchronous one-shot Read and a
// suppress-or-raise Write.
//
// The read worker is grounded on the teacher's services/bridge.go reader
// goroutine (a dedicated goroutine feeding an error channel, abandoned and
// replaced on reconnect) and on services/heartbeat's ticker/select loop
// shape, generalized into the cancel-by-closing-the-transport design the
// source recommends as a substitute for OS-level task isolation: Stop
// cancels the worker's context and closes the strategy, which unblocks a
// strategy.Read() parked in a blocking syscall; the worker goroutine is
// abandoned (not joined past the timeout) rather than forcibly killed,
// since Go has no portable mechanism to do that.
package driver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"orbitalcoms/bus"
	"orbitalcoms/comserr"
	"orbitalcoms/message"
	"orbitalcoms/strategy"
)

// Driver owns one Strategy and fans out everything it reads to a
// subscriber set.
type Driver struct {
	strategy strategy.Strategy
	subs     *bus.Set
	logger   *slog.Logger

	mu     sync.Mutex
	worker *readWorker
}

// New returns a Driver sitting on top of s. A nil logger defaults to
// slog.Default().
func New(s strategy.Strategy, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{strategy: s, subs: bus.NewSet(logger), logger: logger}
}

// Register adds a persistent subscriber to the driver's notification fan-out.
func (d *Driver) Register(cb bus.Callback, tolerateErrors bool) *bus.Subscription {
	return d.subs.Register(cb, tolerateErrors)
}

// Unregister removes a subscriber.
func (d *Driver) Unregister(sub *bus.Subscription) {
	d.subs.Unregister(sub)
}

type readWorker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start ends any running worker, then spawns a fresh one reading from the
// strategy and notifying subscribers. If block is true, Start does not
// return until the worker exits, which happens only on Stop: read errors
// are logged and the worker goes on reading.
func (d *Driver) Start(block bool) {
	d.mu.Lock()
	d.endLocked(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.worker = &readWorker{cancel: cancel, done: done}
	d.mu.Unlock()

	go d.readLoop(ctx, done)

	if block {
		<-done
	}
}

// Stop signals the active worker to end and waits up to timeout for it to
// do so. A zero timeout waits forever. Idempotent.
func (d *Driver) Stop(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endLocked(timeout)
}

func (d *Driver) endLocked(timeout time.Duration) {
	w := d.worker
	if w == nil {
		return
	}
	d.worker = nil
	w.cancel()
	// Unblock a strategy.Read() parked in a syscall; the worker's own
	// child goroutine returns once this completes.
	_ = d.strategy.Close()

	if timeout <= 0 {
		<-w.done
		return
	}
	select {
	case <-w.done:
	case <-time.After(timeout):
	}
}

// IsReading reports whether a worker is currently active.
func (d *Driver) IsReading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.worker != nil
}

type readResult struct {
	msg *message.Message
	err error
}

func (d *Driver) readLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resultCh := make(chan readResult, 1)
		go func() {
			m, err := d.strategy.Read(ctx)
			resultCh <- readResult{m, err}
		}()

		select {
		case <-ctx.Done():
			return
		case res := <-resultCh:
			if res.err != nil {
				// A malformed frame is worth a warning; a plain read
				// failure (closed socket or local strategy) is routine
				// noise, especially during shutdown races with Stop.
				// Serial reports a closed port as a parse error, so that
				// case is logged as a warning.
				if comserr.Is(res.err, comserr.Parse) {
					d.logger.Warn("driver: malformed frame, continuing", slog.Any("error", res.err))
				} else {
					d.logger.Debug("driver: read failed, continuing", slog.Any("error", res.err))
				}
				continue
			}
			d.subs.Notify(res.msg)
		}
	}
}

// Read registers a one-shot subscription, waits up to timeout for the next
// notified message, and returns it. If no read loop is running, Read still
// blocks until timeout, since nothing will ever notify the subscription.
func (d *Driver) Read(timeout time.Duration) (*message.Message, error) {
	resultCh := make(chan *message.Message, 1)
	sub := d.subs.RegisterOneShot(func(m *message.Message) {
		select {
		case resultCh <- m:
		default:
		}
	}, true)
	defer sub.Unregister()

	select {
	case m := <-resultCh:
		return m, nil
	case <-time.After(timeout):
		return nil, comserr.ReadError("Driver.Read", "timed out waiting for a message", nil)
	}
}

// Write constructs a Message from v and writes it through the strategy. On
// construction or strategy failure, it either returns the wrapped error or,
// if suppressErrors is set, returns false with a nil error.
func (d *Driver) Write(v any, suppressErrors bool) (bool, error) {
	m, err := message.Construct(v)
	if err != nil {
		if suppressErrors {
			return false, nil
		}
		return false, comserr.WriteError("Driver.Write", "message construction failed", err)
	}
	if err := d.strategy.Write(m); err != nil {
		if suppressErrors {
			return false, nil
		}
		return false, comserr.WriteError("Driver.Write", "strategy write failed", err)
	}
	return true, nil
}
