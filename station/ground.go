package station

import (
	"log/slog"
	"time"

	"orbitalcoms/driver"
	"orbitalcoms/message"
)

// Ground is the command-issuing endpoint. Its properties reflect the last
// message it successfully sent, and every Send passes through the
// command-transition validator before reaching the driver.
type Ground struct {
	*Base
}

// NewGround constructs a Ground endpoint over d and starts its read loop.
func NewGround(d *driver.Driver, sendInterval time.Duration, logger *slog.Logger) *Ground {
	g := &Ground{}
	g.Base = newBase(d, sendInterval, g.handleReceive, nil, logger)
	return g
}

func (g *Ground) handleReceive(m *message.Message) {
	if data := m.Data(); data != nil {
		g.setLastData(data)
	}
}

// Abort reports the ABORT flag of the last accepted send, false if nothing
// has been sent yet.
func (g *Ground) Abort() bool { return lastSentFlag(g.Base, (*message.Message).Abort) }

// QDM reports the QDM flag of the last accepted send.
func (g *Ground) QDM() bool { return lastSentFlag(g.Base, (*message.Message).QDM) }

// Stab reports the STAB flag of the last accepted send.
func (g *Ground) Stab() bool { return lastSentFlag(g.Base, (*message.Message).Stab) }

// Launch reports the LAUNCH flag of the last accepted send.
func (g *Ground) Launch() bool { return lastSentFlag(g.Base, (*message.Message).Launch) }

// Armed reports the ARMED flag of the last accepted send, false if absent
// or nothing sent yet.
func (g *Ground) Armed() bool {
	m := g.LastSent()
	if m == nil {
		return false
	}
	v, _ := m.Armed()
	return v
}

func lastSentFlag(b *Base, flag func(*message.Message) bool) bool {
	m := b.LastSent()
	return m != nil && flag(m)
}

// Send applies the command-transition validator before delegating to the
// base send; a rejected transition returns false without transmitting.
func (g *Ground) Send(v any) bool {
	m, err := message.Construct(v)
	if err != nil {
		return false
	}
	if !g.validate(m) {
		return false
	}
	return g.Base.Send(m)
}

// validate applies the five-rule command-transition check from the current
// last-sent state C against the proposed N.
func (g *Ground) validate(n *message.Message) bool {
	nArmed, present := n.Armed()
	if !present {
		return false
	}

	c := g.LastSent()
	var cArmed, cAbort, cQDM, cStab, cLaunch bool
	if c != nil {
		cArmed, _ = c.Armed()
		cAbort, cQDM, cStab, cLaunch = c.Abort(), c.QDM(), c.Stab(), c.Launch()
	}

	if cArmed && !nArmed {
		return false
	}
	if !cArmed && (n.Abort() || n.Launch() || n.QDM() || n.Stab()) {
		return false
	}
	if cAbort && !n.Abort() {
		return false
	}
	if cLaunch && !n.Launch() {
		return false
	}
	if cQDM && !n.QDM() {
		return false
	}
	if n.Launch() && !cLaunch && (!cStab || cQDM || cAbort) {
		return false
	}
	return true
}
