package neemquery

import (
	"context"
	"log/slog"

	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neem"
)

// Interface bundles the query compositions the replay and redo layers
// need, so callers get ready-made queries instead of assembling joins
// by hand. Every *Query method returns an open query that can take
// further filters before Result.
type Interface struct {
	conn Conn
	log  *slog.Logger
}

// InterfaceOption configures an Interface.
type InterfaceOption func(*Interface)

// WithInterfaceLogger sets the logger handed to constructed queries.
func WithInterfaceLogger(log *slog.Logger) InterfaceOption {
	return func(i *Interface) { i.log = log }
}

// NewInterface returns an Interface over conn.
func NewInterface(conn Conn, opts ...InterfaceOption) *Interface {
	i := &Interface{conn: conn, log: logger.Nop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Query returns an empty query bound to the interface connection.
func (i *Interface) Query() *Query {
	return New(i.conn, WithLogger(i.log))
}

// MotionReplayQuery builds the query feeding motion replay: one row per
// participant transform inside a task interval, carrying the pose, the
// stamp, the participant identity, and the episode environment. With
// episode ids given, the result is restricted to those episodes.
func (i *Interface) MotionReplayQuery(episodeSQLIDs ...int64) *Query {
	q := i.Query().
		SelectFromTasks().
		SelectParticipant().
		SelectParticipantType().
		SelectTfColumns().
		SelectTfTransformColumns().
		SelectEpisodeID().
		SelectEpisodeSQLID().
		SelectEnvironment().
		JoinAllTaskParticipantsData(true).
		JoinTaskTimeInterval().
		JoinTfOnTimeInterval(DefaultTfBeginOffset, 0).
		JoinTfTransform().
		JoinEpisodes().
		JoinEpisodeEnvironment().
		FilterTfByBaseLinkOrParticipant().
		OrderByStamp()
	if len(episodeSQLIDs) > 0 {
		q.FilterByEpisodeSQLIDs(episodeSQLIDs...)
	}
	return q
}

// MotionReplayData runs MotionReplayQuery.
func (i *Interface) MotionReplayData(ctx context.Context, episodeSQLIDs ...int64) (*neem.Result, error) {
	return i.MotionReplayQuery(episodeSQLIDs...).Result(ctx)
}

// TaskSequenceQuery lists every executed task with its type and time
// interval, ordered by start time.
func (i *Interface) TaskSequenceQuery() *Query {
	return i.Query().
		SelectFromTasks().
		SelectTask().
		SelectTaskType().
		SelectTimeColumns().
		SelectEpisodeID().
		JoinTaskTypes(false).
		JoinTaskTimeInterval().
		OrderByIntervalBegin()
}

// TaskSequenceOfEpisode runs TaskSequenceQuery for one episode.
func (i *Interface) TaskSequenceOfEpisode(ctx context.Context, episodeSQLID int64) (*neem.Result, error) {
	return i.TaskSequenceQuery().
		JoinEpisodes().
		FilterByEpisodeSQLIDs(episodeSQLID).
		Result(ctx)
}

// PlanQuery extends the task sequence with subtasks, participants, and
// task parameters, enough to reconstruct the recorded plan.
func (i *Interface) PlanQuery() *Query {
	return i.TaskSequenceQuery().
		SelectSubtask().
		SelectSubtaskType().
		SelectParticipant().
		SelectParticipantType().
		SelectParameter().
		JoinSubtasks(true).
		JoinSubtaskTypes(true).
		JoinAllTaskParticipantsData(true).
		JoinTaskParameterCategory(true).
		JoinTaskParameter(true)
}

// PlanOfEpisode runs PlanQuery for one episode.
func (i *Interface) PlanOfEpisode(ctx context.Context, episodeSQLID int64) (*neem.Result, error) {
	return i.PlanQuery().
		JoinEpisodes().
		FilterByEpisodeSQLIDs(episodeSQLID).
		Result(ctx)
}

// TasksSemanticQuery lists tasks with their participants, performers,
// and time intervals. With parametersNecessary unset, tasks without
// parameters still appear.
func (i *Interface) TasksSemanticQuery(parametersNecessary bool) *Query {
	return i.Query().
		SelectFromTasks().
		SelectTask().
		SelectTaskType().
		SelectTimeColumns().
		SelectParticipant().
		SelectParticipantType().
		SelectParticipantBaseLink().
		SelectPerformer().
		SelectPerformerType().
		SelectParameter().
		SelectParameterType().
		SelectEpisodeID().
		JoinTaskTypes(false).
		JoinTaskTimeInterval().
		JoinAllTaskParticipantsData(true).
		JoinIsPerformedBy(true).
		JoinPerformerTypes(true).
		JoinAllTaskParameterData(!parametersNecessary).
		OrderByIntervalBegin()
}

// TasksSemanticData runs TasksSemanticQuery.
func (i *Interface) TasksSemanticData(ctx context.Context, parametersNecessary bool) (*neem.Result, error) {
	return i.TasksSemanticQuery(parametersNecessary).Result(ctx)
}

// EpisodesContainingTask finds episodes that executed a task type,
// returning the participant motion data of the matching tasks. With
// pattern set, task matches as a substring of the type name.
func (i *Interface) EpisodesContainingTask(ctx context.Context, task string, pattern bool) (*neem.Result, error) {
	return i.Query().
		SelectFromTasks().
		SelectParticipantType().
		SelectTfColumns().
		SelectTfTransformColumns().
		SelectEpisodeID().
		SelectEpisodeSQLID().
		SelectEnvironment().
		JoinTaskTypes(false).
		FilterByTaskTypes([]string{task}, pattern).
		JoinAllTaskParticipantsData(true).
		JoinTaskTimeInterval().
		JoinTfOnTimeInterval(DefaultTfBeginOffset, 0).
		JoinTfTransform().
		JoinEpisodes().
		JoinEpisodeEnvironment().
		OrderByStamp().
		Result(ctx)
}

// Episodes lists the episode index metadata.
func (i *Interface) Episodes(ctx context.Context) (*neem.Result, error) {
	return i.Query().
		SelectFromEpisodes().
		SelectEpisodeMetadata().
		Result(ctx)
}

// ActionsQuery builds a semantic task query restricted to the given
// task type names, matched as substrings so plain soma fragments work.
func (i *Interface) ActionsQuery(names []string, episodeSQLIDs ...int64) *Query {
	q := i.TasksSemanticQuery(false).
		FilterByTaskTypes(names, true).
		JoinEpisodes()
	if len(episodeSQLIDs) > 0 {
		q.FilterByEpisodeSQLIDs(episodeSQLIDs...)
	}
	return q
}

// PickActionsQuery targets picking-up tasks.
func (i *Interface) PickActionsQuery(episodeSQLIDs ...int64) *Query {
	return i.ActionsQuery([]string{"Pick"}, episodeSQLIDs...)
}

// FetchActionsQuery targets fetching tasks.
func (i *Interface) FetchActionsQuery(episodeSQLIDs ...int64) *Query {
	return i.ActionsQuery([]string{"Fetch"}, episodeSQLIDs...)
}

// TransportActionsQuery targets transporting tasks.
func (i *Interface) TransportActionsQuery(episodeSQLIDs ...int64) *Query {
	return i.ActionsQuery([]string{"Transport"}, episodeSQLIDs...)
}

// NavigateActionsQuery targets navigation tasks.
func (i *Interface) NavigateActionsQuery(episodeSQLIDs ...int64) *Query {
	return i.ActionsQuery([]string{"Navigat"}, episodeSQLIDs...)
}

// GraspActionsQuery targets grasping tasks.
func (i *Interface) GraspActionsQuery(episodeSQLIDs ...int64) *Query {
	return i.ActionsQuery([]string{"Grasp"}, episodeSQLIDs...)
}

// VRActionsQuery restricts an action query to tasks performed by a
// natural agent, which is how hand-tracked VR demonstrations are typed.
func (i *Interface) VRActionsQuery(names []string, episodeSQLIDs ...int64) *Query {
	return i.ActionsQuery(names, episodeSQLIDs...).
		FilterByPerformerTypes([]string{"Natural"}, true, false)
}

// VRPickActionsQuery targets picking-up tasks demonstrated in VR.
func (i *Interface) VRPickActionsQuery(episodeSQLIDs ...int64) *Query {
	return i.VRActionsQuery([]string{"Pick"}, episodeSQLIDs...)
}

// VRFetchActionsQuery targets fetching tasks demonstrated in VR.
func (i *Interface) VRFetchActionsQuery(episodeSQLIDs ...int64) *Query {
	return i.VRActionsQuery([]string{"Fetch"}, episodeSQLIDs...)
}

// PrevTaskQuery finds tasks of an episode that began before the given
// stamp, ordered by interval end ascending, so the most recently
// finished task comes last.
func (i *Interface) PrevTaskQuery(episodeSQLID int64, beforeStamp float64) *Query {
	return i.TasksSemanticQuery(false).
		JoinEpisodes().
		FilterByEpisodeSQLIDs(episodeSQLID).
		FilterIntervalBeginBefore(beforeStamp).
		OrderByIntervalEnd()
}
