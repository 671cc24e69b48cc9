package strategy

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"orbitalcoms/comserr"
	"orbitalcoms/message"
)

func TestLocal_LinkedPairExchangesMessages(t *testing.T) {
	a, b := NewLocal(), NewLocal()
	Link(a, b)

	want := message.New(0, 0, 1, 0, nil, map[string]any{"seq": float64(1)})
	if err := a.Write(want); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !want.Equal(got) {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestLocal_PreservesOrder(t *testing.T) {
	a, b := NewLocal(), NewLocal()
	Link(a, b)

	for i := 0; i < 3; i++ {
		m := message.New(0, 0, 0, 0, nil, map[string]any{"seq": float64(i)})
		if err := a.Write(m); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		got, err := b.Read(ctx)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got.Data()["seq"] != float64(i) {
			t.Fatalf("out of order: got seq %v at position %d", got.Data()["seq"], i)
		}
	}
}

func TestLocal_CloseUnblocksRead(t *testing.T) {
	a := NewLocal()
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := a.Read(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	_ = a.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after close")
		}
	case <-time.After(time.Second):
		t.Fatal("read did not unblock after close")
	}
}

func TestLocal_ContextCancelUnblocksRead(t *testing.T) {
	a := NewLocal()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := a.Read(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("read did not unblock after cancel")
	}
}

// pipePort adapts a net.Conn pair into an io.ReadWriteCloser suitable for
// Serial, simulating a serial port without real hardware.
type pipePort struct {
	net.Conn
}

func TestSerial_FramesOnTerminator(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sender := NewSerial(pipePort{client})
	receiver := NewSerial(pipePort{server})

	m := message.New(1, 0, 0, 0, nil, nil)
	go func() {
		if err := sender.Write(m); err != nil {
			t.Errorf("write: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := receiver.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !m.Equal(got) {
		t.Fatalf("got %s want %s", got, m)
	}
}

func TestSerial_ClosedPortIsParseError(t *testing.T) {
	client, server := net.Pipe()
	receiver := NewSerial(pipePort{server})

	_ = client.Close()
	_ = server.Close()

	ctx := context.Background()
	_, err := receiver.Read(ctx)
	if comserr.Of(err) != comserr.Parse {
		t.Fatalf("expected parse error on closed port, got %v", err)
	}
}

func TestSocket_FramesWithFixedHeader(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sender := NewSocket(client)
	receiver := NewSocket(server)

	m := message.New(0, 1, 1, 0, nil, map[string]any{"alt": 120.5})
	go func() {
		if err := sender.Write(m); err != nil {
			t.Errorf("write: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := receiver.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !m.Equal(got) {
		t.Fatalf("got %s want %s", got, m)
	}
}

func TestSocket_EmptyHeaderIsReadError(t *testing.T) {
	client, server := net.Pipe()
	receiver := NewSocket(server)

	_ = client.Close()

	_, err := receiver.Read(context.Background())
	if comserr.Of(err) != comserr.Read {
		t.Fatalf("expected read error for empty header, got %v", err)
	}
}

func TestSocket_AcceptAtAndConnectTo(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	_ = ln.Close()

	type result struct {
		s   *Socket
		err error
	}
	acceptCh := make(chan result, 1)
	go func() {
		s, err := AcceptAt("127.0.0.1", addr.Port)
		acceptCh <- result{s, err}
	}()

	time.Sleep(50 * time.Millisecond)
	client, err := ConnectTo("127.0.0.1", addr.Port)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	r := <-acceptCh
	if r.err != nil {
		t.Fatalf("accept: %v", r.err)
	}
	defer r.s.Close()

	m := message.New(0, 0, 0, 1, nil, nil)
	if err := client.Write(m); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := r.s.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !m.Equal(got) {
		t.Fatalf("got %s want %s", got, m)
	}
}

var _ io.ReadWriteCloser = pipePort{}
