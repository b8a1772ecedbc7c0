package events_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/events"
)

var _ = Describe("ReplayEvent", func() {
	It("marshals with expected top-level keys", func() {
		event := events.NewReplayEvent(events.EventTypeReplayStarted, events.Episode{
			ID:    "5f22b1f512eb8aa29babe320",
			SQLID: 2,
		})
		event.Participants = []string{"soma:Cup_1"}
		event.PoseCount = 1200

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("episode"))
		Expect(got).To(HaveKey("participants"))
		Expect(got).To(HaveKey("pose_count"))
	})

	It("assigns a unique id per event", func() {
		a := events.NewReplayEvent(events.EventTypeReplayStarted, events.Episode{})
		b := events.NewReplayEvent(events.EventTypeReplayStarted, events.Episode{})
		Expect(a.EventID).NotTo(BeEmpty())
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("defines stable event constants", func() {
		Expect(events.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(events.EventTypeReplayStarted).To(Equal("neemsim.replay.started"))
		Expect(events.EventTypeReplayReady).To(Equal("neemsim.replay.ready"))
		Expect(events.EventTypeReplayFinished).To(Equal("neemsim.replay.finished"))
		Expect(events.EventTypeActionRedone).To(Equal("neemsim.action.redone"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(events.ErrNilEvent).To(MatchError("nil replay event"))
	})
})
