// Package orbitalcoms is the factory surface for the ground/launch
// communications link: constructors for both endpoint roles over the
// socket and serial transports, plus an in-process local pair for tests
// and simulations.
//
// Grounded on the teacher's top-level Start(ctx, conn) entry points
// (services/bridge, services/heartbeat) that hand back a running service
// rather than a handle the caller must step through to assemble; here the
// constructors hand back a ready-to-use, already-reading endpoint.
package orbitalcoms

import (
	"log/slog"
	"time"

	"go.bug.st/serial"

	"orbitalcoms/driver"
	"orbitalcoms/station"
	"orbitalcoms/strategy"
)

// Option configures an endpoint constructor. The zero value of every
// option is its documented default, following the functional-options shape
// used throughout this pack (see Atsika-aznet/options.go).
type Option func(*config)

type config struct {
	sendInterval time.Duration
	logger       *slog.Logger
}

// WithSendInterval sets the heartbeat/resend interval. Zero (the default)
// disables the heartbeat task.
func WithSendInterval(d time.Duration) Option {
	return func(c *config) { c.sendInterval = d }
}

// WithLogger overrides the default slog.Logger used by the driver and
// station for this endpoint.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func resolve(opts []Option) *config {
	c := &config{}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GroundOverSocket connects to host:port and returns a running Ground
// endpoint.
func GroundOverSocket(host string, port int, opts ...Option) (*station.Ground, error) {
	s, err := strategy.ConnectTo(host, port)
	if err != nil {
		return nil, err
	}
	c := resolve(opts)
	return station.NewGround(driver.New(s, c.logger), c.sendInterval, c.logger), nil
}

// LaunchOverSocket accepts one connection at host:port and returns a
// running Launch endpoint.
func LaunchOverSocket(host string, port int, opts ...Option) (*station.Launch, error) {
	s, err := strategy.AcceptAt(host, port)
	if err != nil {
		return nil, err
	}
	c := resolve(opts)
	return station.NewLaunch(driver.New(s, c.logger), c.sendInterval, c.logger), nil
}

// GroundOverSerial opens portName at baud and returns a running Ground
// endpoint.
func GroundOverSerial(portName string, baud int, opts ...Option) (*station.Ground, error) {
	s, err := openSerial(portName, baud)
	if err != nil {
		return nil, err
	}
	c := resolve(opts)
	return station.NewGround(driver.New(s, c.logger), c.sendInterval, c.logger), nil
}

// LaunchOverSerial opens portName at baud and returns a running Launch
// endpoint.
func LaunchOverSerial(portName string, baud int, opts ...Option) (*station.Launch, error) {
	s, err := openSerial(portName, baud)
	if err != nil {
		return nil, err
	}
	c := resolve(opts)
	return station.NewLaunch(driver.New(s, c.logger), c.sendInterval, c.logger), nil
}

func openSerial(portName string, baud int) (*strategy.Serial, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return strategy.NewSerial(port), nil
}

// GroundOverLocal returns an in-process, linked Ground/Launch pair of
// endpoints with no real I/O, for tests and single-process simulations.
func GroundOverLocal(opts ...Option) (*station.Ground, *station.Launch) {
	a, b := strategy.NewLocal(), strategy.NewLocal()
	strategy.Link(a, b)
	c := resolve(opts)
	g := station.NewGround(driver.New(a, c.logger), c.sendInterval, c.logger)
	l := station.NewLaunch(driver.New(b, c.logger), c.sendInterval, c.logger)
	return g, l
}
