package station

import (
	"log/slog"
	"time"

	"orbitalcoms/driver"
	"orbitalcoms/message"
)

// Launch is the telemetry-producing endpoint. Its properties mirror the
// last message it received from Ground, and DATA it sends is authoritative
// telemetry rather than a command payload.
type Launch struct {
	*Base
}

// NewLaunch constructs a Launch endpoint over d and starts its read loop.
func NewLaunch(d *driver.Driver, sendInterval time.Duration, logger *slog.Logger) *Launch {
	l := &Launch{}
	l.Base = newBase(d, sendInterval, nil, l.handleSend, logger)
	return l
}

func (l *Launch) handleSend(m *message.Message) {
	if data := m.Data(); data != nil {
		l.setLastData(data)
	}
}

// Abort reports the ABORT flag of the last received message, false if
// nothing has been received yet.
func (l *Launch) Abort() bool { return lastReceivedFlag(l.Base, (*message.Message).Abort) }

// QDM reports the QDM flag of the last received message.
func (l *Launch) QDM() bool { return lastReceivedFlag(l.Base, (*message.Message).QDM) }

// Stab reports the STAB flag of the last received message.
func (l *Launch) Stab() bool { return lastReceivedFlag(l.Base, (*message.Message).Stab) }

// Launch reports the LAUNCH flag of the last received message.
func (l *Launch) Launch() bool { return lastReceivedFlag(l.Base, (*message.Message).Launch) }

// Armed reports the ARMED flag of the last received message, false if
// absent or nothing received yet.
func (l *Launch) Armed() bool {
	m := l.LastReceived()
	if m == nil {
		return false
	}
	v, _ := m.Armed()
	return v
}

func lastReceivedFlag(b *Base, flag func(*message.Message) bool) bool {
	m := b.LastReceived()
	return m != nil && flag(m)
}
