package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/sim"
)

// Describer resolves entity names to description files, a URDF or mesh
// the simulator can load. The mesh package provides the production
// implementation.
type Describer interface {
	DescribeEnvironment(ctx context.Context, environment string) (string, error)
	DescribeParticipant(ctx context.Context, participant string, res *neem.Result) (string, error)
	DescribePerformer(ctx context.Context, performer string) (string, error)
}

// Spawner populates a scene with the environment and entities of a
// query result before replay starts. Entities enter the scene under a
// short name, the IRI suffix, deduplicated with a running number; the
// mapping back to the recorded instance names is kept so replay can
// address the spawned objects.
type Spawner struct {
	sim  sim.Simulator
	desc Describer
	log  *slog.Logger

	names map[string]string
	used  map[string]bool
}

// SpawnerOption configures a Spawner.
type SpawnerOption func(*Spawner)

// WithSpawnerLogger sets the spawner logger.
func WithSpawnerLogger(log *slog.Logger) SpawnerOption {
	return func(s *Spawner) { s.log = log }
}

// NewSpawner creates a spawner over the given scene and describer.
func NewSpawner(simulator sim.Simulator, desc Describer, opts ...SpawnerOption) *Spawner {
	s := &Spawner{
		sim:   simulator,
		desc:  desc,
		log:   logger.Nop(),
		names: make(map[string]string),
		used:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sceneName assigns a scene-unique name for the entity. The first
// entity with a given suffix keeps it plain, later ones get a running
// number.
func (s *Spawner) sceneName(entity string) string {
	if name, ok := s.names[entity]; ok {
		return name
	}
	base := neem.DisplayName(entity)
	name := base
	for n := 2; s.used[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	s.names[entity] = name
	s.used[name] = true
	return name
}

// SceneName returns the scene name an entity was spawned under.
// Entities this spawner never saw map to their display name.
func (s *Spawner) SceneName(entity string) string {
	if name, ok := s.names[entity]; ok {
		return name
	}
	return neem.DisplayName(entity)
}

// SceneNames returns a copy of the instance-to-scene-name mapping
// accumulated by the spawn calls so far.
func (s *Spawner) SceneNames() map[string]string {
	out := make(map[string]string, len(s.names))
	for instance, name := range s.names {
		out[instance] = name
	}
	return out
}

// SpawnEnvironment spawns the environment named by the query result.
func (s *Spawner) SpawnEnvironment(ctx context.Context, res *neem.Result) (sim.Object, error) {
	environments := res.Environments(true)
	if len(environments) == 0 {
		return sim.Object{}, errors.New("replay: result carries no environment")
	}

	description, err := s.desc.DescribeEnvironment(ctx, environments[0])
	if err != nil {
		return sim.Object{}, fmt.Errorf("replay: describe environment %q: %w", environments[0], err)
	}

	obj := sim.Object{
		Name:        s.sceneName(environments[0]),
		Kind:        neem.KindEnvironment,
		Description: description,
	}
	if err := s.sim.Spawn(ctx, obj); err != nil {
		return sim.Object{}, fmt.Errorf("replay: spawn environment: %w", err)
	}

	return obj, nil
}

// SpawnParticipants spawns every participant of the query result and
// returns them keyed by instance name. NIL placeholder participants are
// skipped. A participant whose description cannot be resolved is
// spawned without one, so replay can still move it; the failure is
// logged.
func (s *Spawner) SpawnParticipants(ctx context.Context, res *neem.Result) (map[string]sim.Object, error) {
	out := make(map[string]sim.Object)
	for _, participant := range res.Participants(true) {
		if participant == "" || neem.IsNil(participant) {
			continue
		}
		description, err := s.desc.DescribeParticipant(ctx, participant, res)
		if err != nil {
			s.log.Warn("no description for participant, spawning bare",
				"participant", participant, "error", err)
		}

		obj := sim.Object{
			Name:        s.sceneName(participant),
			Kind:        neem.ObjectKindForParticipant(participant),
			Description: description,
		}
		if err := s.sim.Spawn(ctx, obj); err != nil {
			return nil, fmt.Errorf("replay: spawn participant %q: %w", participant, err)
		}
		out[participant] = obj
	}

	return out, nil
}

// SpawnPerformers spawns the recorded performers, robots by their URDF
// and humans as bare bodies. Performers that are neither are skipped.
func (s *Spawner) SpawnPerformers(ctx context.Context, res *neem.Result) (map[string]sim.Object, error) {
	out := make(map[string]sim.Object)
	for _, performer := range res.Performers(true) {
		if performer == "" {
			continue
		}
		kind := neem.KindHuman
		if neem.IsKnownRobot(performer) {
			kind = neem.KindRobot
		} else if types := res.FilterByPerformer(performer).PerformerTypes(true); len(types) == 0 || !neem.IsHuman(types[0]) {
			s.log.Warn("skipping performer of unknown kind", "performer", performer)
			continue
		}

		description, err := s.desc.DescribePerformer(ctx, performer)
		if err != nil {
			s.log.Warn("no description for performer, spawning bare",
				"performer", performer, "error", err)
		}

		obj := sim.Object{
			Name:        s.sceneName(performer),
			Kind:        kind,
			Description: description,
		}
		if err := s.sim.Spawn(ctx, obj); err != nil {
			return nil, fmt.Errorf("replay: spawn performer %q: %w", performer, err)
		}
		out[performer] = obj
	}

	return out, nil
}
