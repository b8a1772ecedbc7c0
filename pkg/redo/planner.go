package redo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/knowrobco/neemsim/pkg/events"
	"github.com/knowrobco/neemsim/pkg/events/nop"
	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/neemquery"
	"github.com/knowrobco/neemsim/pkg/replay"
	"github.com/knowrobco/neemsim/pkg/sim"
)

// defaultRobot is spawned when an episode records no robot performer.
const defaultRobot = "pr2"

// defaultRobotPose matches where the stand-in robot is placed in the
// scene.
var defaultRobotPose = neem.Pose{
	Position:    r3.Vec{X: 1.5, Y: 2.5},
	Orientation: neem.IdentityQuaternion,
}

// Planner re-executes recorded tasks as abstract actions.
type Planner struct {
	iface     *neemquery.Interface
	sim       sim.Simulator
	spawner   *replay.Spawner
	publisher events.Publisher
	log       *slog.Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithPublisher sets the event publisher actions are reported on.
func WithPublisher(p events.Publisher) PlannerOption {
	return func(pl *Planner) { pl.publisher = p }
}

// WithPlannerLogger sets the planner logger.
func WithPlannerLogger(log *slog.Logger) PlannerOption {
	return func(pl *Planner) { pl.log = log }
}

// NewPlanner creates a planner over an episode interface and a scene.
func NewPlanner(iface *neemquery.Interface, simulator sim.Simulator, desc replay.Describer, opts ...PlannerOption) *Planner {
	pl := &Planner{
		iface:     iface,
		sim:       simulator,
		publisher: nop.NewPublisher(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(pl)
	}
	pl.spawner = replay.NewSpawner(simulator, desc, replay.WithSpawnerLogger(pl.log))
	return pl
}

// RedoPlan re-executes every task of an episode in recorded order.
// Tasks whose type has no action mapping are skipped with a warning.
func (pl *Planner) RedoPlan(ctx context.Context, episodeSQLID int64) error {
	q := pl.iface.TasksSemanticQuery(false).
		SelectEnvironment().
		JoinEpisodes().
		JoinEpisodeEnvironment().
		FilterByEpisodeSQLIDs(episodeSQLID)

	res, err := q.Result(ctx)
	if err != nil {
		return fmt.Errorf("redo: querying episode %d: %w", episodeSQLID, err)
	}
	if res.Len() == 0 {
		return fmt.Errorf("redo: episode %d has no tasks", episodeSQLID)
	}

	robot, err := pl.spawnScene(ctx, res)
	if err != nil {
		return err
	}

	performed := 0
	for _, task := range res.Tasks(true) {
		taskRows := res.FilterByTask(task)
		taskType := taskRows.TaskTypes(true)[0]

		category, ok := neem.ActionForTask(taskType)
		if !ok {
			pl.log.Warn("no action for task", "task", task, "type", taskType)
			continue
		}

		action, err := pl.buildAction(ctx, category, pl.spawner.SceneName(robot), taskRows)
		if err != nil {
			pl.log.Warn("cannot build action", "task", task, "category", category, "error", err)
			continue
		}

		if err := action.Perform(ctx, pl.sim); err != nil {
			return fmt.Errorf("redo: performing %s for task %q: %w", category, task, err)
		}
		performed++

		pl.publishRedone(ctx, res, task, category)
	}

	if performed == 0 {
		return fmt.Errorf("redo: episode %d: no task mapped to an action", episodeSQLID)
	}

	return nil
}

// RedoPick re-executes the first recorded pick-up task of an episode,
// using the recorded grasp when the episode names one.
func (pl *Planner) RedoPick(ctx context.Context, episodeSQLID int64) error {
	res, err := pl.iface.PickActionsQuery(episodeSQLID).Result(ctx)
	if err != nil {
		return fmt.Errorf("redo: querying pick actions: %w", err)
	}

	task, taskRows, err := firstTask(res, episodeSQLID)
	if err != nil {
		return err
	}

	robot, err := pl.spawnScene(ctx, taskRows)
	if err != nil {
		return err
	}

	participant, err := pickParticipant(taskRows)
	if err != nil {
		return err
	}
	robotName, object := pl.spawner.SceneName(robot), pl.spawner.SceneName(participant)

	if err := pl.getReady(ctx, robotName); err != nil {
		return err
	}

	action := PickUp{Robot: robotName, Object: object, Grasps: recordedGrasps(taskRows)}
	if err := action.Perform(ctx, pl.sim); err != nil {
		return fmt.Errorf("redo: picking up %q: %w", object, err)
	}

	pl.publishRedone(ctx, taskRows, task, neem.ActionPickUp)
	return nil
}

// RedoFetch re-executes the first recorded fetch task of an episode:
// park, navigate to the object, pick it up.
func (pl *Planner) RedoFetch(ctx context.Context, episodeSQLID int64) error {
	res, err := pl.iface.FetchActionsQuery(episodeSQLID).Result(ctx)
	if err != nil {
		return fmt.Errorf("redo: querying fetch actions: %w", err)
	}

	task, taskRows, err := firstTask(res, episodeSQLID)
	if err != nil {
		return err
	}

	robot, err := pl.spawnScene(ctx, taskRows)
	if err != nil {
		return err
	}

	participant, err := pickParticipant(taskRows)
	if err != nil {
		return err
	}
	robotName, object := pl.spawner.SceneName(robot), pl.spawner.SceneName(participant)

	if err := pl.getReady(ctx, robotName); err != nil {
		return err
	}

	target, err := pl.sim.Pose(ctx, object)
	if err != nil {
		return fmt.Errorf("redo: locating %q: %w", object, err)
	}
	if err := approach(ctx, pl.sim, robotName, target.Position); err != nil {
		return err
	}

	action := PickUp{Robot: robotName, Object: object}
	if err := action.Perform(ctx, pl.sim); err != nil {
		return fmt.Errorf("redo: fetching %q: %w", object, err)
	}

	pl.publishRedone(ctx, taskRows, task, neem.ActionPickUp)
	return nil
}

// RedoGrasp re-executes the first recorded grasping task of an episode.
// The scene is restored to its state just before the task started, then
// the robot approaches, looks at and grasps the participant.
func (pl *Planner) RedoGrasp(ctx context.Context, episodeSQLID int64) error {
	res, err := pl.iface.GraspActionsQuery(episodeSQLID).Result(ctx)
	if err != nil {
		return fmt.Errorf("redo: querying grasp actions: %w", err)
	}

	task, taskRows, err := firstTask(res, episodeSQLID)
	if err != nil {
		return err
	}

	robot, err := pl.restorePreTaskState(ctx, task, episodeSQLID, taskRows)
	if err != nil {
		return err
	}

	participant, err := pickParticipant(taskRows)
	if err != nil {
		return err
	}
	robotName, object := pl.spawner.SceneName(robot), pl.spawner.SceneName(participant)

	if err := pl.getReady(ctx, robotName); err != nil {
		return err
	}

	target, err := pl.sim.Pose(ctx, object)
	if err != nil {
		return fmt.Errorf("redo: locating %q: %w", object, err)
	}
	if err := approach(ctx, pl.sim, robotName, target.Position); err != nil {
		return err
	}
	look := LookAt{Robot: robotName, Target: target.Position}
	if err := look.Perform(ctx, pl.sim); err != nil {
		return err
	}

	action := Grasping{Robot: robotName, Object: object, Grasps: recordedGrasps(taskRows)}
	if err := action.Perform(ctx, pl.sim); err != nil {
		return fmt.Errorf("redo: grasping %q: %w", object, err)
	}

	pl.publishRedone(ctx, taskRows, task, neem.ActionGrasping)
	return nil
}

// restorePreTaskState rewinds every non-hand participant to its latest
// recorded pose before the task started and places the robot at its
// own latest pre-task pose, falling back to a stand-in robot when the
// episode recorded none.
func (pl *Planner) restorePreTaskState(ctx context.Context, task string, episodeSQLID int64, taskRows *neem.Result) (string, error) {
	robot, err := pl.spawnScene(ctx, taskRows)
	if err != nil {
		return "", err
	}

	startTime, err := taskRows.TaskStartTime(task)
	if err != nil {
		return "", fmt.Errorf("redo: %w", err)
	}

	motionRes, err := pl.iface.MotionReplayData(ctx, episodeSQLID)
	if err != nil {
		return "", fmt.Errorf("redo: querying motion data: %w", err)
	}
	motion := replay.FromResult(motionRes)

	for _, participant := range taskRows.Participants(true) {
		if isHand(participant) || neem.IsKnownRobot(participant) {
			continue
		}
		pose, ok := motion.LatestPoseBefore(participant, startTime)
		if !ok {
			continue
		}
		if err := pl.sim.SetPose(ctx, pl.spawner.SceneName(participant), pose); err != nil {
			if errors.Is(err, sim.ErrObjectNotFound) {
				continue
			}
			return "", fmt.Errorf("redo: restoring %q: %w", participant, err)
		}
	}

	if pose, ok := motion.LatestPoseBefore(robot, startTime); ok {
		if err := pl.sim.SetPose(ctx, pl.spawner.SceneName(robot), pose); err != nil && !errors.Is(err, sim.ErrObjectNotFound) {
			return "", fmt.Errorf("redo: restoring robot %q: %w", robot, err)
		}
	}

	return robot, nil
}

// spawnScene spawns the environment, participants and performers of the
// result and returns the recorded name of the robot to act with; the
// spawner maps it onto the name it holds in the scene. When the episode
// recorded no robot performer a stand-in is spawned.
func (pl *Planner) spawnScene(ctx context.Context, res *neem.Result) (string, error) {
	if _, err := pl.spawner.SpawnEnvironment(ctx, res); err != nil {
		pl.log.Warn("proceeding without environment", "error", err)
	}
	if _, err := pl.spawner.SpawnParticipants(ctx, res); err != nil {
		return "", fmt.Errorf("redo: %w", err)
	}
	performers, err := pl.spawner.SpawnPerformers(ctx, res)
	if err != nil {
		return "", fmt.Errorf("redo: %w", err)
	}

	for name, obj := range performers {
		if obj.Kind == neem.KindRobot {
			return name, nil
		}
	}

	standIn := sim.Object{
		Name:        defaultRobot,
		Kind:        neem.KindRobot,
		Description: defaultRobot + ".urdf",
		Pose:        defaultRobotPose,
	}
	if err := pl.sim.Spawn(ctx, standIn); err != nil {
		return "", fmt.Errorf("redo: spawning stand-in robot: %w", err)
	}

	return defaultRobot, nil
}

// getReady parks the arms and raises the torso before manipulation.
func (pl *Planner) getReady(ctx context.Context, robot string) error {
	park := ParkArms{Robot: robot}
	if err := park.Perform(ctx, pl.sim); err != nil {
		return fmt.Errorf("redo: parking arms: %w", err)
	}
	torso := MoveTorso{Robot: robot, Height: 0.25}
	if err := torso.Perform(ctx, pl.sim); err != nil {
		return fmt.Errorf("redo: moving torso: %w", err)
	}
	return nil
}

// buildAction turns an action category and the rows of one task into a
// performable action. Categories other than park and torso need a real
// participant in the rows.
func (pl *Planner) buildAction(ctx context.Context, category neem.Action, robot string, taskRows *neem.Result) (Action, error) {
	switch category {
	case neem.ActionParkArms:
		return ParkArms{Robot: robot}, nil
	case neem.ActionMoveTorso:
		return MoveTorso{Robot: robot, Height: 0.25}, nil
	}

	participant, err := pickParticipant(taskRows)
	if err != nil {
		return nil, err
	}
	object := pl.spawner.SceneName(participant)

	switch category {
	case neem.ActionSetGripper:
		return SetGripper{Robot: robot, Open: true, Object: object}, nil
	case neem.ActionDetect:
		return Detect{Robot: robot, Object: object}, nil
	case neem.ActionGrasping, neem.ActionGrip:
		return Grasping{Robot: robot, Object: object, Grasps: recordedGrasps(taskRows)}, nil
	case neem.ActionRelease:
		return Release{Robot: robot, Object: object}, nil
	case neem.ActionPickUp:
		return PickUp{Robot: robot, Object: object, Grasps: recordedGrasps(taskRows)}, nil
	case neem.ActionOpen:
		return OpenContainer{Robot: robot, Object: object}, nil
	case neem.ActionClose:
		return CloseContainer{Robot: robot, Object: object}, nil
	}

	// The remaining categories target the participant's current pose.
	pose, err := pl.sim.Pose(ctx, object)
	if err != nil {
		return nil, err
	}

	switch category {
	case neem.ActionLookAt:
		return LookAt{Robot: robot, Target: pose.Position}, nil
	case neem.ActionNavigate:
		return Navigate{Robot: robot, Target: pose}, nil
	case neem.ActionPlace:
		return Place{Robot: robot, Object: object, Target: pose}, nil
	case neem.ActionTransport:
		return Transport{Robot: robot, Object: object, Target: pose}, nil
	default:
		return nil, fmt.Errorf("no action implementation for category %q", category)
	}
}

func (pl *Planner) publishRedone(ctx context.Context, res *neem.Result, task string, category neem.Action) {
	episode := events.Episode{}
	if ids := res.EpisodeIDs(true); len(ids) > 0 {
		episode.ID = ids[0]
	}

	event := events.NewReplayEvent(events.EventTypeActionRedone, episode)
	event.Task = task
	event.Action = string(category)

	if err := pl.publisher.Publish(ctx, event); err != nil {
		pl.log.Warn("publishing redo event", "task", task, "error", err)
	}
}

// firstTask returns the first recorded task of the result and its rows.
func firstTask(res *neem.Result, episodeSQLID int64) (string, *neem.Result, error) {
	tasks := res.Tasks(true)
	if len(tasks) == 0 {
		return "", nil, fmt.Errorf("redo: episode %d has no matching tasks", episodeSQLID)
	}
	task := tasks[0]
	return task, res.FilterByTask(task), nil
}

// pickParticipant returns the first participant of the rows that is a
// real object: VR hands and the NIL filler don't count.
func pickParticipant(res *neem.Result) (string, error) {
	for _, participant := range res.Participants(true) {
		if participant == "" || isHand(participant) || neem.IsNil(participant) {
			continue
		}
		return participant, nil
	}
	return "", errors.New("no participant found")
}

// recordedGrasps returns the grasp directions the episode recorded for
// the task, or every direction when it recorded none.
func recordedGrasps(res *neem.Result) []neem.Grasp {
	var grasps []neem.Grasp
	for _, parameterType := range res.TaskParameterTypes(true) {
		if g, ok := neem.GraspForType(parameterType); ok {
			grasps = append(grasps, g)
		}
	}
	if len(grasps) == 0 {
		return neem.AllGrasps
	}
	return grasps
}

func isHand(name string) bool {
	return strings.Contains(strings.ToLower(name), "hand")
}
