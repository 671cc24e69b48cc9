package station

import (
	"time"

	"orbitalcoms/message"
)

// Station is the stable surface shared by Ground and Launch: send,
// resend, heartbeat configuration, queue binding, and the bookkeeping
// properties. Scoped use is expressed as Close (io.Closer) rather than a
// context-manager; callers invoke it with defer.
type Station interface {
	Send(v any) bool
	ResendLast()
	SetSendInterval(v any) error
	BindQueue(q Queue)

	LastSent() *message.Message
	LastSentTime() time.Time
	LastReceived() *message.Message
	LastReceivedTime() time.Time
	LastData() map[string]any

	Close() error
}

var (
	_ Station = (*Ground)(nil)
	_ Station = (*Launch)(nil)
)
