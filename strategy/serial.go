package strategy

import (
	"context"
	"io"
	"sync"

	"orbitalcoms/comserr"
	"orbitalcoms/message"
)

// terminatorByte is the serial frame terminator: ASCII JSON never contains
// '&', so it is safe as a sentinel.
const terminatorByte = 0x26

// Serial frames messages over an io.ReadWriteCloser (typically an opened tty
// device) with a single terminator byte. Port configuration (baud, parity)
// happens before the Serial is constructed; orbitalcoms.openSerial opens and
// configures the device with go.bug.st/serial.
type Serial struct {
	port io.ReadWriteCloser
	mu   sync.Mutex
}

// NewSerial wraps an already-opened port. Closing the returned Serial closes
// the port.
func NewSerial(port io.ReadWriteCloser) *Serial {
	return &Serial{port: port}
}

// Write emits m.ToString() followed by the terminator byte.
func (s *Serial) Write(m *message.Message) error {
	payload := append([]byte(m.ToString()), terminatorByte)
	s.mu.Lock()
	_, err := s.port.Write(payload)
	s.mu.Unlock()
	if err != nil {
		return comserr.WriteError("Serial.Write", "port write failed", err)
	}
	return nil
}

// Read accumulates bytes until the terminator and decodes the frame. A
// closed port, or any other read failure, is reported as a parse error per
// the framing contract, since a torn frame is indistinguishable from
// malformed input to the caller.
//
// Cancellation is via Close, not ctx: the underlying port has no portable
// way to interrupt a blocked single-byte read, so ctx is only checked
// before the call begins.
func (s *Serial) Read(ctx context.Context) (*message.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, comserr.ReadError("Serial.Read", "context already cancelled", err)
	}

	var buf []byte
	one := make([]byte, 1)
	for {
		s.mu.Lock()
		n, err := s.port.Read(one)
		s.mu.Unlock()
		if err != nil {
			return nil, comserr.ParseError("Serial.Read", "port closed or read failed", err)
		}
		if n == 0 {
			continue
		}
		if one[0] == terminatorByte {
			return message.FromString(string(buf))
		}
		buf = append(buf, one[0])
	}
}

// Close closes the underlying port, unblocking any goroutine parked in
// Read.
func (s *Serial) Close() error {
	return s.port.Close()
}
