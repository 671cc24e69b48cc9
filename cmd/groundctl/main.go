// Command groundctl is a thin demonstration adapter over a Ground
// endpoint: connect to a launch peer over TCP or serial, arm it, and issue
// a scripted abort/qdm/stab/launch sequence read from stdin lines of the
// form "ARM", "ABORT", "QDM", "STAB", "LAUNCH".
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"orbitalcoms"
)

func main() {
	var (
		host    = flag.String("host", "127.0.0.1", "launch peer host (socket transport)")
		port    = flag.Int("port", 9000, "launch peer port (socket transport)")
		serial  = flag.String("serial", "", "serial device path; if set, overrides -host/-port")
		baud    = flag.Int("baud", 9600, "serial baud rate")
		heartMS = flag.Int("heartbeat-ms", 0, "resend-last interval in milliseconds, 0 disables")
	)
	flag.Parse()

	logger := slog.Default()
	opts := []orbitalcoms.Option{orbitalcoms.WithLogger(logger)}
	if *heartMS > 0 {
		opts = append(opts, orbitalcoms.WithSendInterval(time.Duration(*heartMS)*time.Millisecond))
	}

	var g interface {
		Send(v any) bool
		Close() error
	}
	var err error
	if *serial != "" {
		g, err = orbitalcoms.GroundOverSerial(*serial, *baud, opts...)
	} else {
		g, err = orbitalcoms.GroundOverSocket(*host, *port, opts...)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "groundctl: connect failed:", err)
		os.Exit(1)
	}
	defer g.Close()

	state := map[string]any{"ABORT": 0, "QDM": 0, "STAB": 0, "LAUNCH": 0, "ARMED": 0}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		switch line {
		case "":
			continue
		case "ARM":
			state["ARMED"] = 1
		case "ABORT":
			state["ABORT"] = 1
		case "QDM":
			state["QDM"] = 1
		case "STAB":
			state["STAB"] = 1
		case "LAUNCH":
			state["LAUNCH"] = 1
		default:
			fmt.Fprintln(os.Stderr, "groundctl: unrecognized command", line)
			continue
		}
		if !g.Send(state) {
			fmt.Fprintln(os.Stderr, "groundctl: send rejected for", line)
		}
	}
}
