package segment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/knowrobco/neemsim/pkg/events"
	"github.com/knowrobco/neemsim/pkg/events/nop"
	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neemquery"
	"github.com/knowrobco/neemsim/pkg/replay"
)

// Segmenter queries an episode's motion data and detects its boundary
// events, reporting each one on the event publisher.
type Segmenter struct {
	iface        *neemquery.Interface
	publisher    events.Publisher
	log          *slog.Logger
	detectorOpts []DetectorOption
}

// SegmenterOption configures a Segmenter.
type SegmenterOption func(*Segmenter)

// WithSegmentPublisher sets the publisher boundary events are reported on.
func WithSegmentPublisher(pub events.Publisher) SegmenterOption {
	return func(s *Segmenter) { s.publisher = pub }
}

// WithSegmenterLogger sets the segmenter logger.
func WithSegmenterLogger(log *slog.Logger) SegmenterOption {
	return func(s *Segmenter) { s.log = log }
}

// WithDetectorOptions passes options through to the detector.
func WithDetectorOptions(opts ...DetectorOption) SegmenterOption {
	return func(s *Segmenter) { s.detectorOpts = opts }
}

// NewSegmenter creates a segmenter over an episode interface.
func NewSegmenter(iface *neemquery.Interface, opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		iface:     iface,
		publisher: nop.NewPublisher(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment detects the boundary events of one episode. Time stamps of
// the returned events are normalized to the episode's start.
func (s *Segmenter) Segment(ctx context.Context, episodeSQLID int64) ([]Event, error) {
	res, err := s.iface.MotionReplayData(ctx, episodeSQLID)
	if err != nil {
		return nil, fmt.Errorf("segment: querying motion data: %w", err)
	}
	if res.Len() == 0 {
		return nil, fmt.Errorf("segment: episode %d has no motion data", episodeSQLID)
	}

	episode := events.Episode{SQLID: episodeSQLID}
	if ids := res.EpisodeIDs(true); len(ids) > 0 {
		episode.ID = ids[0]
	}

	data := replay.FromResult(res.NormalizeTime())
	detected := NewDetector(data, s.detectorOpts...).Detect()
	s.log.Info("segmented episode", "episode", episodeSQLID, "events", len(detected))

	for _, ev := range detected {
		s.publish(ctx, episode, ev)
	}
	return detected, nil
}

func (s *Segmenter) publish(ctx context.Context, episode events.Episode, ev Event) {
	event := events.NewReplayEvent(eventTypeFor(ev.Type), episode)
	event.Participants = []string{ev.Object, ev.Other}
	event.DurationMs = int64((ev.End - ev.Begin) * 1000)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("publishing segment event", "type", ev.Type, "error", err)
	}
}

func eventTypeFor(t EventType) string {
	switch t {
	case EventLossOfContact:
		return events.EventTypeContactLost
	case EventPickUp:
		return events.EventTypePickUpDetected
	default:
		return events.EventTypeContactDetected
	}
}
