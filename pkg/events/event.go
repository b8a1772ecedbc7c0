package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeReplayStarted is emitted when motion replay of an episode begins.
	EventTypeReplayStarted = "neemsim.replay.started"

	// EventTypeReplayReady is emitted once every participant has reached
	// its recorded starting pose.
	EventTypeReplayReady = "neemsim.replay.ready"

	// EventTypeReplayFinished is emitted when motion replay completes.
	EventTypeReplayFinished = "neemsim.replay.finished"

	// EventTypeActionRedone is emitted after an abstract action is
	// re-executed in simulation.
	EventTypeActionRedone = "neemsim.action.redone"

	// EventTypeContactDetected is emitted when segmentation finds two
	// objects coming into contact.
	EventTypeContactDetected = "neemsim.segment.contact"

	// EventTypeContactLost is emitted when segmentation finds two
	// objects separating.
	EventTypeContactLost = "neemsim.segment.contact_lost"

	// EventTypePickUpDetected is emitted when segmentation finds an
	// object leaving its supporting surface while held by an agent.
	EventTypePickUpDetected = "neemsim.segment.pick_up"
)

// ReplayEvent is a transport-neutral event payload for replay and redo
// lifecycle notifications.
type ReplayEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	Episode       Episode   `json:"episode"`
	Task          string    `json:"task,omitempty"`
	Action        string    `json:"action,omitempty"`
	Participants  []string  `json:"participants,omitempty"`
	PoseCount     int       `json:"pose_count,omitempty"`
	DurationMs    int64     `json:"duration_ms,omitempty"`
}

// Episode identifies the episode an event belongs to.
type Episode struct {
	ID    string `json:"id,omitempty"`
	SQLID int64  `json:"sql_id,omitempty"`
}

// NewReplayEvent builds an event of the given type with a fresh id and
// the current time.
func NewReplayEvent(eventType string, episode Episode) *ReplayEvent {
	return &ReplayEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Episode:       episode,
	}
}
