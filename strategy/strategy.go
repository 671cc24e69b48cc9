// Package strategy implements the three transport strategies a Driver can
// sit on top of: an in-process loopback for tests and single-process
// simulations, a framed serial link, and a length-prefixed TCP socket link.
//
// All three satisfy the same narrow contract: Read blocks until a full
// message is available or the transport is unrecoverably gone, Write
// commits a message atomically from the peer's point of view, and Close
// releases the underlying resource and unblocks any in-flight Read.
package strategy

import (
	"context"

	"orbitalcoms/message"
)

// Strategy is the blocking transport contract every endpoint driver sits
// on top of. Read and Write are synchronous; callers (the Driver) are
// responsible for concurrency around them.
type Strategy interface {
	// Read blocks until a complete message has been decoded or the
	// transport reports an unrecoverable condition. Implementations must
	// not partially consume and discard a frame. ctx is honored on a
	// best-effort basis between blocking syscalls; the reliable way to
	// unblock a Read in progress is Close.
	Read(ctx context.Context) (*message.Message, error)
	// Write serializes m and commits it atomically from the peer's
	// perspective.
	Write(m *message.Message) error
	// Close releases the underlying resource. A Read blocked at the time
	// of Close should return promptly with an error.
	Close() error
}
