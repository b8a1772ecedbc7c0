// Package segment detects action boundaries in recorded motion data.
// Two objects whose origins come within a contact distance of each
// other count as touching; contact changes between samples mark the
// boundaries, and an object leaving its supporting surface while
// touched by an agent marks a pick-up.
package segment

// EventType classifies a detected segment boundary.
type EventType string

const (
	EventContact       EventType = "contact"
	EventLossOfContact EventType = "loss_of_contact"
	EventPickUp        EventType = "pick_up"
)

// Event is one detected boundary in an episode's motion stream. Begin
// and End are stamps on the motion data's time axis; for contact and
// loss-of-contact they coincide, for a pick-up Begin is when the agent
// touched the object and End when the object cleared its surface.
type Event struct {
	Type EventType

	// Object is the tracked object the boundary is about.
	Object string

	// Other is the second party: the object touched or lost for
	// contact events, the picking agent for a pick-up.
	Other string

	Begin float64
	End   float64
}
