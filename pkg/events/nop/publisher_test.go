package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knowrobco/neemsim/pkg/events"
	"github.com/knowrobco/neemsim/pkg/events/nop"
)

var _ = Describe("Publisher", func() {
	It("creates a non-nil publisher", func() {
		Expect(nop.NewPublisher()).NotTo(BeNil())
	})

	It("returns ErrNilEvent for nil events", func() {
		err := nop.NewPublisher().Publish(context.Background(), nil)
		Expect(err).To(MatchError(events.ErrNilEvent))
	})

	It("succeeds for non-nil events", func() {
		event := events.NewReplayEvent(events.EventTypeReplayStarted, events.Episode{})
		Expect(nop.NewPublisher().Publish(context.Background(), event)).To(Succeed())
	})

	It("closes successfully", func() {
		Expect(nop.NewPublisher().Close()).To(Succeed())
	})
})
