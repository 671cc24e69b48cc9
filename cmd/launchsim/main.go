// Command launchsim is a thin demonstration adapter over a Launch
// endpoint: it accepts a ground connection (or opens a serial port) and
// periodically sends telemetry produced by a telemetry.Generator. The
// default generator here is a placeholder counter, not a flight model;
// real telemetry generation is out of scope for this module.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"orbitalcoms"
	"orbitalcoms/internal/telemetry"
	"orbitalcoms/message"
)

func main() {
	var (
		host       = flag.String("host", "127.0.0.1", "host to accept a ground connection on (socket transport)")
		port       = flag.Int("port", 9000, "port to accept a ground connection on (socket transport)")
		serial     = flag.String("serial", "", "serial device path; if set, overrides -host/-port")
		baud       = flag.Int("baud", 9600, "serial baud rate")
		intervalMS = flag.Int("interval-ms", 1000, "telemetry send interval in milliseconds")
	)
	flag.Parse()

	logger := slog.Default()
	var l interface {
		Send(v any) bool
		Close() error
	}
	var err error
	if *serial != "" {
		l, err = orbitalcoms.LaunchOverSerial(*serial, *baud, orbitalcoms.WithLogger(logger))
	} else {
		l, err = orbitalcoms.LaunchOverSocket(*host, *port, orbitalcoms.WithLogger(logger))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "launchsim: accept failed:", err)
		os.Exit(1)
	}
	defer l.Close()

	gen := telemetry.Generator(&counterGenerator{})
	ticker := time.NewTicker(time.Duration(*intervalMS) * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		m := gen.Next()
		if !l.Send(m) {
			fmt.Fprintln(os.Stderr, "launchsim: telemetry send rejected")
		}
	}
}

// counterGenerator is a placeholder telemetry.Generator: it reports a
// monotonically increasing sample count, nothing resembling real flight
// telemetry.
type counterGenerator struct {
	n int
}

func (g *counterGenerator) Next() *message.Message {
	g.n++
	return message.New(0, 0, 0, 0, nil, map[string]any{"sample": float64(g.n)})
}
