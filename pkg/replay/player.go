package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/knowrobco/neemsim/pkg/events"
	"github.com/knowrobco/neemsim/pkg/events/nop"
	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/sim"
)

// DefaultMaxStep caps the wait between two samples. Recorded streams
// can carry long gaps between tasks; replay skips over them instead of
// stalling.
const DefaultMaxStep = time.Second

// Player replays motion data against a scene in recorded order.
type Player struct {
	sim        sim.Simulator
	data       MotionData
	publisher  events.Publisher
	episode    events.Episode
	sceneNames map[string]string
	log        *slog.Logger

	realTime bool
	maxStep  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	ready     chan struct{}
	readyOnce sync.Once
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithRealTime toggles recorded-time pacing. Without it the player
// steps through samples as fast as the scene accepts them.
func WithRealTime(realTime bool) PlayerOption {
	return func(p *Player) { p.realTime = realTime }
}

// WithMaxStep caps the wait between two samples.
func WithMaxStep(d time.Duration) PlayerOption {
	return func(p *Player) { p.maxStep = d }
}

// WithPublisher sets the publisher notified of replay lifecycle events.
func WithPublisher(pub events.Publisher) PlayerOption {
	return func(p *Player) { p.publisher = pub }
}

// WithEpisode tags published events with the episode being replayed.
func WithEpisode(episode events.Episode) PlayerOption {
	return func(p *Player) { p.episode = episode }
}

// WithSceneNames maps recorded instance names onto the scene names
// objects were spawned under, usually the mapping a Spawner
// accumulated. Instances without an entry are addressed verbatim.
func WithSceneNames(names map[string]string) PlayerOption {
	return func(p *Player) { p.sceneNames = names }
}

// WithPlayerLogger sets the player logger.
func WithPlayerLogger(log *slog.Logger) PlayerOption {
	return func(p *Player) { p.log = log }
}

// WithSleep replaces the wait function used for pacing.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) PlayerOption {
	return func(p *Player) { p.sleep = sleep }
}

// NewPlayer creates a player for the given scene and motion data.
func NewPlayer(simulator sim.Simulator, data MotionData, opts ...PlayerOption) *Player {
	p := &Player{
		sim:       simulator,
		data:      data,
		publisher: nop.NewPublisher(),
		log:       logger.Nop(),
		realTime:  true,
		maxStep:   DefaultMaxStep,
		sleep:     sleepContext,
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ready is closed once every instance has moved away from the zero
// pose, i.e. the scene holds the recorded starting state. It is also
// closed when Start returns, so waiters never hang.
func (p *Player) Ready() <-chan struct{} { return p.ready }

// Start replays the motion data. It blocks until the stream is
// exhausted or the context is cancelled. Samples for instances missing
// from the scene are logged and skipped.
func (p *Player) Start(ctx context.Context) error {
	defer p.signalReady()

	started := time.Now()
	unique := p.data.UniqueInstances()
	startEvent := events.NewReplayEvent(events.EventTypeReplayStarted, p.episode)
	startEvent.Participants = unique
	startEvent.PoseCount = p.data.Len()
	p.publish(ctx, startEvent)

	moved := make(map[string]bool, len(unique))
	initialized := false
	prev := 0.0
	for i := range p.data.Poses {
		if err := ctx.Err(); err != nil {
			return err
		}

		current := p.data.Times[i]
		if prev > 0 && p.realTime {
			wait := time.Duration((current - prev) * float64(time.Second))
			if wait > p.maxStep {
				wait = p.maxStep
			}
			if wait > 0 {
				if err := p.sleep(ctx, wait); err != nil {
					return err
				}
			}
		}
		prev = current

		instance := p.data.Instances[i]
		pose := p.data.Poses[i]
		if err := p.sim.SetPose(ctx, p.sceneName(instance), pose); err != nil {
			if errors.Is(err, sim.ErrObjectNotFound) {
				p.log.Warn("skipping sample for unknown instance", "instance", instance)
				continue
			}
			return fmt.Errorf("replay: set pose of %q: %w", instance, err)
		}

		if !initialized {
			if !pose.IsZero() {
				moved[instance] = true
			}
			if len(moved) == len(unique) {
				initialized = true
				p.signalReady()
				p.publish(ctx, events.NewReplayEvent(events.EventTypeReplayReady, p.episode))
			}
		}
	}

	finished := events.NewReplayEvent(events.EventTypeReplayFinished, p.episode)
	finished.PoseCount = p.data.Len()
	finished.DurationMs = time.Since(started).Milliseconds()
	p.publish(ctx, finished)

	return nil
}

func (p *Player) sceneName(instance string) string {
	if name, ok := p.sceneNames[instance]; ok {
		return name
	}
	return instance
}

func (p *Player) signalReady() {
	p.readyOnce.Do(func() { close(p.ready) })
}

func (p *Player) publish(ctx context.Context, event *events.ReplayEvent) {
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.log.Warn("failed to publish replay event", "type", event.EventType, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
