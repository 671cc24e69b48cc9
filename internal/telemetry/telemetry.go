// Package telemetry declares the collaborator interface a launch-side
// simulator plugs into to produce outgoing Messages. Generating realistic
// telemetry is out of scope; only the seam is specified here, per the
// distilled requirements' instruction to name out-of-scope collaborators
// by interface rather than implement them.
package telemetry

import "orbitalcoms/message"

// Generator produces the next telemetry message a Launch endpoint should
// send. Implementations decide their own pacing; cmd/launchsim calls Next
// on a timer.
type Generator interface {
	Next() *message.Message
}
