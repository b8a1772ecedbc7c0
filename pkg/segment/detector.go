package segment

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/replay"
)

// DefaultContactDistance is how close two object origins must be, in
// meters, to count as touching.
const DefaultContactDistance = 0.05

// AgentFunc reports whether an instance name denotes an acting agent,
// a hand or a robot, rather than a passive object.
type AgentFunc func(name string) bool

// DefaultAgent matches VR hands and known robot names.
func DefaultAgent(name string) bool {
	return strings.Contains(strings.ToLower(name), "hand") || neem.IsKnownRobot(name)
}

// Detector sweeps motion data for contact changes.
type Detector struct {
	data     replay.MotionData
	distance float64
	agent    AgentFunc
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithContactDistance overrides the contact distance.
func WithContactDistance(d float64) DetectorOption {
	return func(det *Detector) { det.distance = d }
}

// WithAgentFunc overrides how agents are recognized.
func WithAgentFunc(agent AgentFunc) DetectorOption {
	return func(det *Detector) { det.agent = agent }
}

// NewDetector creates a detector over the given motion data.
func NewDetector(data replay.MotionData, opts ...DetectorOption) *Detector {
	det := &Detector{data: data, distance: DefaultContactDistance, agent: DefaultAgent}
	for _, opt := range opts {
		opt(det)
	}
	return det
}

// contactPair is an unordered instance pair, stored with a <= b.
type contactPair struct{ a, b string }

func pairOf(x, y string) contactPair {
	if x > y {
		x, y = y, x
	}
	return contactPair{a: x, b: y}
}

// Detect walks the samples in stamp order and returns the boundary
// events in detection order. An instance participates from its first
// sample on; between samples its latest known pose is carried forward.
func (det *Detector) Detect() []Event {
	poses := make(map[string]neem.Pose)
	contactSince := make(map[contactPair]float64)
	var out []Event

	i := 0
	for i < det.data.Len() {
		stamp := det.data.Times[i]
		for i < det.data.Len() && det.data.Times[i] == stamp {
			poses[det.data.Instances[i]] = det.data.Poses[i]
			i++
		}
		out = det.sweep(stamp, poses, contactSince, out)
	}
	return out
}

func (det *Detector) sweep(stamp float64, poses map[string]neem.Pose, contactSince map[contactPair]float64, out []Event) []Event {
	names := make([]string, 0, len(poses))
	for name := range poses {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, x := range names {
		for _, y := range names[i+1:] {
			key := pairOf(x, y)
			_, was := contactSince[key]
			touching := r3.Norm(r3.Sub(poses[x].Position, poses[y].Position)) <= det.distance

			switch {
			case touching && !was:
				contactSince[key] = stamp
				out = append(out, Event{Type: EventContact, Object: key.a, Other: key.b, Begin: stamp, End: stamp})
			case !touching && was:
				delete(contactSince, key)
				out = append(out, Event{Type: EventLossOfContact, Object: key.a, Other: key.b, Begin: stamp, End: stamp})
				if ev, ok := det.pickUp(stamp, key, poses, contactSince); ok {
					out = append(out, ev)
				}
			}
		}
	}
	return out
}

// pickUp checks whether a lost contact frees an agent-held object from
// its supporting surface: neither party of the lost contact is an
// agent, the surface sits below the object, and the object is still
// touching an agent.
func (det *Detector) pickUp(stamp float64, lost contactPair, poses map[string]neem.Pose, contactSince map[contactPair]float64) (Event, bool) {
	if det.agent(lost.a) || det.agent(lost.b) {
		return Event{}, false
	}

	for _, oriented := range [][2]string{{lost.a, lost.b}, {lost.b, lost.a}} {
		object, surface := oriented[0], oriented[1]
		if poses[surface].Position.Z >= poses[object].Position.Z {
			continue
		}
		if agent, since, ok := heldBy(object, contactSince, det.agent); ok {
			return Event{Type: EventPickUp, Object: object, Other: agent, Begin: since, End: stamp}, true
		}
	}
	return Event{}, false
}

// heldBy returns the agent touching the object, preferring the oldest
// contact and breaking ties by name.
func heldBy(object string, contactSince map[contactPair]float64, isAgent AgentFunc) (string, float64, bool) {
	var (
		agent string
		since float64
		found bool
	)
	for pair, start := range contactSince {
		candidate := ""
		switch {
		case pair.a == object && isAgent(pair.b):
			candidate = pair.b
		case pair.b == object && isAgent(pair.a):
			candidate = pair.a
		default:
			continue
		}
		if !found || start < since || (start == since && candidate < agent) {
			agent, since, found = candidate, start, true
		}
	}
	return agent, since, found
}
