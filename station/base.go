// Package station implements the endpoint base shared by Ground and
// Launch: last-sent/last-received bookkeeping, the consumer queue binding,
// and the heartbeat-driven resend-last behavior.
//
// Grounded on services/heartbeat/heartbeat.go's ticker/select loop for the
// heartbeat task (now extracted into package heartbeat) and on
// services/bridge.go's reconfigure (cancel-then-replace under a mutex) for
// SetSendInterval's atomic stop-and-replace requirement.
package station

import (
	"log/slog"
	"sync"
	"time"

	"orbitalcoms/bus"
	"orbitalcoms/comserr"
	"orbitalcoms/driver"
	"orbitalcoms/heartbeat"
	"orbitalcoms/message"
)

// Base is the shared state and behavior of a Ground or Launch endpoint. It
// is not used directly; Ground and Launch embed it.
type Base struct {
	driver *driver.Driver
	logger *slog.Logger
	hb     *heartbeat.Task
	sub    *bus.Subscription

	onReceive func(*message.Message)
	onSend    func(*message.Message)

	mu               sync.Mutex
	sendInterval     time.Duration
	lastSent         *message.Message
	lastSentTime     time.Time
	lastReceived     *message.Message
	lastReceivedTime time.Time
	lastData         map[string]any
	queue            Queue
}

// newBase wires the internal receive subscription, starts the driver's read
// loop, and returns the constructed base. onReceive and onSend may be nil.
func newBase(d *driver.Driver, sendInterval time.Duration, onReceive, onSend func(*message.Message), logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Base{
		driver:       d,
		logger:       logger,
		hb:           heartbeat.New(),
		sendInterval: sendInterval,
		onReceive:    onReceive,
		onSend:       onSend,
	}
	b.sub = d.Register(b.handleReceive, true)
	d.Start(false)
	if sendInterval > 0 {
		b.hb.Start(sendInterval, b.ResendLast)
	}
	return b
}

func (b *Base) handleReceive(m *message.Message) {
	if b.onReceive != nil {
		b.onReceive(m)
	}
	b.mu.Lock()
	b.lastReceived = m
	b.lastReceivedTime = time.Now()
	q := b.queue
	b.mu.Unlock()

	if q != nil {
		if err := q.Append(m); err != nil {
			panic(err)
		}
	}
}

// Close tears the station down: ends the read loop and stops any heartbeat
// task. Safe to call more than once; intended for defer-based scoped use.
func (b *Base) Close() error {
	b.hb.Stop()
	b.driver.Stop(5 * time.Second)
	if b.sub != nil {
		b.sub.Unregister()
	}
	return nil
}

// Send constructs a Message from v and writes it through the driver with
// errors suppressed. On success it runs the send hook, records last_sent,
// and restarts the heartbeat task if an interval is configured.
func (b *Base) Send(v any) bool {
	m, err := message.Construct(v)
	if err != nil {
		return false
	}
	ok, _ := b.driver.Write(m, true)
	if !ok {
		return false
	}

	b.mu.Lock()
	b.lastSent = m
	b.lastSentTime = time.Now()
	interval := b.sendInterval
	b.mu.Unlock()

	if b.onSend != nil {
		b.onSend(m)
	}
	if interval > 0 {
		b.hb.Start(interval, b.ResendLast)
	}
	return true
}

// ResendLast re-sends the last successfully sent message, if any, with
// errors suppressed. With nothing sent yet it logs a warning and returns.
func (b *Base) ResendLast() {
	b.mu.Lock()
	last := b.lastSent
	b.mu.Unlock()

	if last == nil {
		b.logger.Warn("station: resend_last called with no prior send")
		return
	}
	_, _ = b.driver.Write(last, true)
	if b.onSend != nil {
		b.onSend(last)
	}
}

// SetSendInterval accepts nil (disable), a non-negative number of seconds,
// or a time.Duration. A negative value is a comserr.Type error, matching
// the taxonomy's "disallowed value" kind (this module's error taxonomy has
// no separate value-error kind; see DESIGN.md). Setting the same interval
// already in effect is a no-op.
func (b *Base) SetSendInterval(v any) error {
	const op = "Station.SetSendInterval"
	var interval time.Duration
	switch x := v.(type) {
	case nil:
		interval = 0
	case time.Duration:
		if x < 0 {
			return comserr.TypeError(op, "interval must not be negative", nil)
		}
		interval = x
	case int:
		if x < 0 {
			return comserr.TypeError(op, "interval must not be negative", nil)
		}
		interval = time.Duration(x) * time.Second
	case float64:
		if x < 0 {
			return comserr.TypeError(op, "interval must not be negative", nil)
		}
		interval = time.Duration(x * float64(time.Second))
	default:
		return comserr.TypeError(op, "interval must be a number or nil", nil)
	}

	b.mu.Lock()
	if interval == b.sendInterval {
		b.mu.Unlock()
		return nil
	}
	b.sendInterval = interval
	b.mu.Unlock()

	if interval > 0 {
		b.hb.Start(interval, b.ResendLast)
	} else {
		b.hb.Stop()
	}
	return nil
}

// BindQueue sets or clears the consumer sink. Pass nil to clear.
func (b *Base) BindQueue(q Queue) {
	b.mu.Lock()
	b.queue = q
	b.mu.Unlock()
}

// LastSent returns the last successfully sent message, or nil.
func (b *Base) LastSent() *message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSent
}

// LastSentTime returns the time of the last successful send, the zero
// value if none.
func (b *Base) LastSentTime() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSentTime
}

// LastReceived returns the last received message, or nil.
func (b *Base) LastReceived() *message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastReceived
}

// LastReceivedTime returns the time of the last received message, the zero
// value if none.
func (b *Base) LastReceivedTime() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastReceivedTime
}

func (b *Base) setLastData(d map[string]any) {
	b.mu.Lock()
	b.lastData = d
	b.mu.Unlock()
}

// LastData returns the most recent DATA payload observed, from whichever
// direction the concrete endpoint treats as authoritative.
func (b *Base) LastData() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastData
}
