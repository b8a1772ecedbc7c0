// Package neemquery builds and runs SQL queries against a relational
// episode store. A Query is a fluent accumulation of selected columns,
// joins, and filters over the triple tables; nothing touches the
// database until Result is called, so queries can be composed and
// inspected (String) without a connection.
package neemquery

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neem"
)

// Conn is the slice of a storage connection the query layer needs.
type Conn interface {
	DB() *stdsql.DB
	Dialect() string
}

// DefaultTfBeginOffset widens the tf time window to catch transforms
// logged shortly before a task interval officially begins.
const DefaultTfBeginOffset = -40.0

type column struct {
	ident string
	label string
}

type join struct {
	key    string
	table  *entsql.SelectTable
	on     *entsql.Predicate
	outer  bool
	neemID bool
}

// Query accumulates a SELECT over the episode store. Methods return the
// receiver so calls chain; each Select*/Join* is idempotent, repeated
// calls do not duplicate columns or joins.
type Query struct {
	conn    Conn
	log     *slog.Logger
	dialect string
	t       *schema

	from       *entsql.SelectTable
	fromNeemID bool

	cols     []column
	selected map[string]bool

	joins  []join
	joined map[string]bool

	preds    []*entsql.Predicate
	order    []string
	limit    int
	distinct bool
}

// Option configures a Query.
type Option func(*Query)

// WithLogger sets the logger used for query execution.
func WithLogger(log *slog.Logger) Option {
	return func(q *Query) { q.log = log }
}

// New returns an empty query bound to conn. A nil conn is allowed for
// pure query construction; Result will then fail.
func New(conn Conn, opts ...Option) *Query {
	d := dialect.MySQL
	if conn != nil {
		d = conn.Dialect()
	}
	q := &Query{
		conn:     conn,
		log:      logger.Nop(),
		dialect:  d,
		t:        newSchema(entsql.Dialect(d)),
		selected: make(map[string]bool),
		joined:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Reset drops all accumulated state, keeping the connection.
func (q *Query) Reset() *Query {
	q.from = nil
	q.fromNeemID = false
	q.cols = nil
	q.selected = make(map[string]bool)
	q.joins = nil
	q.joined = make(map[string]bool)
	q.preds = nil
	q.order = nil
	q.limit = 0
	q.distinct = false
	return q
}

func (q *Query) selectColumn(ident, label string) *Query {
	if q.selected[label] {
		return q
	}
	q.selected[label] = true
	q.cols = append(q.cols, column{ident: ident, label: label})
	return q
}

// SelectFromTasks anchors the query on the task execution table.
func (q *Query) SelectFromTasks() *Query {
	q.from = q.t.executesTask
	q.fromNeemID = true
	return q
}

// SelectFromTf anchors the query on the raw transform table.
func (q *Query) SelectFromTf() *Query {
	q.from = q.t.tf
	q.fromNeemID = true
	return q
}

// SelectFromEpisodes anchors the query on the episode index table.
func (q *Query) SelectFromEpisodes() *Query {
	q.from = q.t.neems
	q.fromNeemID = false
	return q
}

func (q *Query) SelectTfColumns() *Query {
	q.selectColumn(q.t.tf.C("child_frame_id"), neem.ColChildFrameID)
	q.selectColumn(q.t.tfHeader.C("frame_id"), neem.ColFrameID)
	q.selectColumn(q.t.tfHeader.C("stamp"), neem.ColStamp)
	return q
}

func (q *Query) SelectTfTransformColumns() *Query {
	q.selectColumn(q.t.translation.C("x"), neem.ColTranslationX)
	q.selectColumn(q.t.translation.C("y"), neem.ColTranslationY)
	q.selectColumn(q.t.translation.C("z"), neem.ColTranslationZ)
	q.selectColumn(q.t.rotation.C("x"), neem.ColOrientationX)
	q.selectColumn(q.t.rotation.C("y"), neem.ColOrientationY)
	q.selectColumn(q.t.rotation.C("z"), neem.ColOrientationZ)
	q.selectColumn(q.t.rotation.C("w"), neem.ColOrientationW)
	return q
}

func (q *Query) SelectTimeColumns() *Query {
	q.selectColumn(q.t.intervalBegin.C("o"), neem.ColIntervalBegin)
	q.selectColumn(q.t.intervalEnd.C("o"), neem.ColIntervalEnd)
	return q
}

func (q *Query) SelectTask() *Query {
	return q.selectColumn(q.t.executesTask.C("dul_Task_o"), neem.ColTask)
}

func (q *Query) SelectTaskType() *Query {
	return q.selectColumn(q.t.taskType.C("o"), neem.ColTaskType)
}

func (q *Query) SelectSubtask() *Query {
	return q.selectColumn(q.t.subtask.C("dul_Task_o"), neem.ColSubtask)
}

func (q *Query) SelectSubtaskType() *Query {
	return q.selectColumn(q.t.subtaskType.C("o"), neem.ColSubtaskType)
}

func (q *Query) SelectParticipant() *Query {
	return q.selectColumn(q.t.hasParticipant.C("dul_Object_o"), neem.ColParticipant)
}

func (q *Query) SelectParticipantType() *Query {
	return q.selectColumn(q.t.participantType.C("o"), neem.ColParticipantType)
}

func (q *Query) SelectParticipantBaseLink() *Query {
	return q.selectColumn(q.t.hasBaseLink.C("urdf_Link_o"), neem.ColParticipantBaseLink)
}

func (q *Query) SelectParameterCategory() *Query {
	return q.selectColumn(q.t.hasParameter.C("dul_Parameter_o"), neem.ColTaskParameterCategory)
}

func (q *Query) SelectParameter() *Query {
	return q.selectColumn(q.t.parameterCategory.C("dul_Entity_o"), neem.ColTaskParameter)
}

func (q *Query) SelectParameterType() *Query {
	return q.selectColumn(q.t.parameterType.C("o"), neem.ColTaskParameterType)
}

func (q *Query) SelectPerformer() *Query {
	return q.selectColumn(q.t.isPerformedBy.C("dul_Agent_o"), neem.ColPerformer)
}

func (q *Query) SelectPerformerType() *Query {
	return q.selectColumn(q.t.performerType.C("o"), neem.ColPerformerType)
}

func (q *Query) SelectObjectMeshPath() *Query {
	return q.selectColumn(q.t.hasFilePath.C("o"), neem.ColObjectMeshPath)
}

func (q *Query) SelectStamp() *Query {
	return q.selectColumn(q.t.tfHeader.C("stamp"), neem.ColStamp)
}

func (q *Query) SelectEnvironment() *Query {
	return q.selectColumn(q.t.environmentIndex.C("environment_values"), neem.ColEnvironment)
}

// SelectEpisodeID selects the episode hash id from whichever already
// anchored or joined table carries one.
func (q *Query) SelectEpisodeID() *Query {
	col, ok := q.neemIDColumn()
	if !ok {
		col = q.t.executesTask.C("neem_id")
	}
	return q.selectColumn(col, neem.ColEpisodeID)
}

func (q *Query) SelectEpisodeSQLID() *Query {
	return q.selectColumn(q.t.neems.C("ID"), neem.ColEpisodeSQLID)
}

// SelectEpisodeMetadata selects the descriptive columns of the episode
// index table.
func (q *Query) SelectEpisodeMetadata() *Query {
	q.SelectEpisodeSQLID()
	q.selectColumn(q.t.neems.C("_id"), neem.ColEpisodeID)
	q.selectColumn(q.t.neems.C("name"), "name")
	q.selectColumn(q.t.neems.C("description"), "description")
	q.selectColumn(q.t.neems.C("created_by"), "created_by")
	q.selectColumn(q.t.neems.C("created_at"), "created_at")
	return q
}

// Select adds an arbitrary column under the given result label.
func (q *Query) Select(ident, label string) *Query {
	return q.selectColumn(ident, label)
}

func (q *Query) joinOn(key string, t *entsql.SelectTable, on *entsql.Predicate, outer, neemID bool) *Query {
	if q.joined[key] {
		return q
	}
	q.joined[key] = true
	q.joins = append(q.joins, join{key: key, table: t, on: on, outer: outer, neemID: neemID})
	return q
}

// joinType joins an rdf_type alias on a subject column, excluding the
// owl:NamedIndividual typing every instance carries.
func (q *Query) joinType(key string, typeTable *entsql.SelectTable, subjectCol, neemIDCol string, outer bool) *Query {
	on := entsql.And(
		entsql.ColumnsEQ(typeTable.C("s"), subjectCol),
		entsql.ColumnsEQ(typeTable.C("neem_id"), neemIDCol),
		entsql.NEQ(typeTable.C("o"), "owl:NamedIndividual"),
	)
	return q.joinOn(key, typeTable, on, outer, true)
}

func (q *Query) JoinTaskTypes(outer bool) *Query {
	return q.joinType("task_type", q.t.taskType,
		q.t.executesTask.C("dul_Task_o"), q.t.executesTask.C("neem_id"), outer)
}

func (q *Query) JoinSubtasks(outer bool) *Query {
	q.joinOn("has_constituent", q.t.hasConstituent, entsql.And(
		entsql.ColumnsEQ(q.t.hasConstituent.C("dul_Entity_s"), q.t.executesTask.C("dul_Action_s")),
		entsql.ColumnsEQ(q.t.hasConstituent.C("neem_id"), q.t.executesTask.C("neem_id")),
	), outer, true)
	return q.joinOn("subtask", q.t.subtask, entsql.And(
		entsql.ColumnsEQ(q.t.subtask.C("dul_Action_s"), q.t.hasConstituent.C("dul_Entity_o")),
		entsql.ColumnsEQ(q.t.subtask.C("neem_id"), q.t.executesTask.C("neem_id")),
	), outer, true)
}

func (q *Query) JoinSubtaskTypes(outer bool) *Query {
	return q.joinType("subtask_type", q.t.subtaskType,
		q.t.subtask.C("dul_Task_o"), q.t.subtask.C("neem_id"), outer)
}

func (q *Query) JoinTaskParticipants(outer bool) *Query {
	return q.joinOn("has_participant", q.t.hasParticipant, entsql.And(
		entsql.ColumnsEQ(q.t.hasParticipant.C("dul_Event_s"), q.t.executesTask.C("dul_Action_s")),
		entsql.ColumnsEQ(q.t.hasParticipant.C("neem_id"), q.t.executesTask.C("neem_id")),
	), outer, true)
}

func (q *Query) JoinParticipantTypes(outer bool) *Query {
	return q.joinType("participant_type", q.t.participantType,
		q.t.hasParticipant.C("dul_Object_o"), q.t.hasParticipant.C("neem_id"), outer)
}

func (q *Query) JoinParticipantBaseLink(outer bool) *Query {
	return q.joinOn("has_base_link", q.t.hasBaseLink, entsql.And(
		entsql.ColumnsEQ(q.t.hasBaseLink.C("dul_PhysicalObject_s"), q.t.hasParticipant.C("dul_Object_o")),
		entsql.ColumnsEQ(q.t.hasBaseLink.C("neem_id"), q.t.hasParticipant.C("neem_id")),
	), outer, true)
}

// JoinAllTaskParticipantsData joins participants, their types, and
// their base links in one step.
func (q *Query) JoinAllTaskParticipantsData(outer bool) *Query {
	return q.JoinTaskParticipants(outer).
		JoinParticipantTypes(outer).
		JoinParticipantBaseLink(outer)
}

func (q *Query) JoinTaskTimeInterval() *Query {
	q.joinOn("has_time_interval", q.t.hasTimeInterval, entsql.And(
		entsql.ColumnsEQ(q.t.hasTimeInterval.C("dul_Event_s"), q.t.executesTask.C("dul_Action_s")),
		entsql.ColumnsEQ(q.t.hasTimeInterval.C("neem_id"), q.t.executesTask.C("neem_id")),
	), false, true)
	q.joinOn("interval_begin", q.t.intervalBegin, entsql.And(
		entsql.ColumnsEQ(q.t.intervalBegin.C("dul_TimeInterval_s"), q.t.hasTimeInterval.C("dul_TimeInterval_o")),
		entsql.ColumnsEQ(q.t.intervalBegin.C("neem_id"), q.t.executesTask.C("neem_id")),
	), false, true)
	return q.joinOn("interval_end", q.t.intervalEnd, entsql.And(
		entsql.ColumnsEQ(q.t.intervalEnd.C("dul_TimeInterval_s"), q.t.intervalBegin.C("dul_TimeInterval_s")),
		entsql.ColumnsEQ(q.t.intervalEnd.C("neem_id"), q.t.executesTask.C("neem_id")),
	), false, true)
}

// JoinTfOnTimeInterval joins transforms whose header stamp falls inside
// the task interval shifted by the given offsets (seconds).
func (q *Query) JoinTfOnTimeInterval(beginOffset, endOffset float64) *Query {
	q.joinOn("tf_header", q.t.tfHeader, entsql.And(
		columnCmpOffset(q.t.tfHeader.C("stamp"), " >= ", q.t.intervalBegin.C("o"), beginOffset),
		columnCmpOffset(q.t.tfHeader.C("stamp"), " <= ", q.t.intervalEnd.C("o"), endOffset),
	), false, false)
	return q.joinOn("tf", q.t.tf, entsql.And(
		entsql.ColumnsEQ(q.t.tf.C("header"), q.t.tfHeader.C("ID")),
		entsql.ColumnsEQ(q.t.tf.C("neem_id"), q.t.intervalBegin.C("neem_id")),
	), false, true)
}

// JoinTfOnTasks joins the full transform stream of each task's episode
// without any time restriction.
func (q *Query) JoinTfOnTasks() *Query {
	q.joinOn("tf", q.t.tf,
		entsql.ColumnsEQ(q.t.tf.C("neem_id"), q.t.executesTask.C("neem_id")),
		false, true)
	return q.joinOn("tf_header", q.t.tfHeader,
		entsql.ColumnsEQ(q.t.tf.C("header"), q.t.tfHeader.C("ID")),
		false, false)
}

// JoinTfOnBaseLink joins transforms of the participant base link frames.
func (q *Query) JoinTfOnBaseLink(outer bool) *Query {
	q.joinOn("tf", q.t.tf, entsql.And(
		q.linkNameEQ(q.t.tf.C("child_frame_id"), q.t.hasBaseLink.C("urdf_Link_o")),
		entsql.ColumnsEQ(q.t.tf.C("neem_id"), q.t.hasParticipant.C("neem_id")),
	), outer, true)
	return q.joinOn("tf_header", q.t.tfHeader,
		entsql.ColumnsEQ(q.t.tf.C("header"), q.t.tfHeader.C("ID")),
		outer, false)
}

func (q *Query) JoinTfTransform() *Query {
	q.joinOn("tf_transform", q.t.tfTransform,
		entsql.ColumnsEQ(q.t.tfTransform.C("ID"), q.t.tf.C("ID")),
		false, false)
	q.joinOn("translation", q.t.translation,
		entsql.ColumnsEQ(q.t.translation.C("ID"), q.t.tfTransform.C("translation")),
		false, false)
	return q.joinOn("rotation", q.t.rotation,
		entsql.ColumnsEQ(q.t.rotation.C("ID"), q.t.tfTransform.C("rotation")),
		false, false)
}

// JoinEpisodes joins the episode index on the hash id carried by the
// already joined triple tables.
func (q *Query) JoinEpisodes() *Query {
	col, ok := q.neemIDColumn()
	if !ok {
		col = q.t.executesTask.C("neem_id")
	}
	return q.joinOn("neems", q.t.neems,
		entsql.ColumnsEQ(q.t.neems.C("_id"), col),
		false, false)
}

func (q *Query) JoinEpisodeEnvironment() *Query {
	return q.joinOn("environment_index", q.t.environmentIndex,
		entsql.ColumnsEQ(q.t.environmentIndex.C("neems_ID"), q.t.neems.C("ID")),
		false, false)
}

func (q *Query) JoinTaskParameterCategory(outer bool) *Query {
	return q.joinOn("has_parameter", q.t.hasParameter, entsql.And(
		entsql.ColumnsEQ(q.t.hasParameter.C("dul_Concept_s"), q.t.executesTask.C("dul_Task_o")),
		entsql.ColumnsEQ(q.t.hasParameter.C("neem_id"), q.t.executesTask.C("neem_id")),
	), outer, true)
}

func (q *Query) JoinTaskParameter(outer bool) *Query {
	return q.joinOn("parameter_category", q.t.parameterCategory, entsql.And(
		entsql.ColumnsEQ(q.t.parameterCategory.C("dul_Concept_s"), q.t.hasParameter.C("dul_Parameter_o")),
		entsql.ColumnsEQ(q.t.parameterCategory.C("neem_id"), q.t.hasParameter.C("neem_id")),
	), outer, true)
}

func (q *Query) JoinTaskParameterTypes(outer bool) *Query {
	return q.joinType("parameter_type", q.t.parameterType,
		q.t.parameterCategory.C("dul_Entity_o"), q.t.parameterCategory.C("neem_id"), outer)
}

func (q *Query) JoinAllTaskParameterData(outer bool) *Query {
	return q.JoinTaskParameterCategory(outer).
		JoinTaskParameter(outer).
		JoinTaskParameterTypes(outer)
}

func (q *Query) JoinIsPerformedBy(outer bool) *Query {
	return q.joinOn("is_performed_by", q.t.isPerformedBy, entsql.And(
		entsql.ColumnsEQ(q.t.isPerformedBy.C("dul_Action_s"), q.t.executesTask.C("dul_Action_s")),
		entsql.ColumnsEQ(q.t.isPerformedBy.C("neem_id"), q.t.executesTask.C("neem_id")),
	), outer, true)
}

func (q *Query) JoinPerformerTypes(outer bool) *Query {
	return q.joinType("performer_type", q.t.performerType,
		q.t.isPerformedBy.C("dul_Agent_o"), q.t.isPerformedBy.C("neem_id"), outer)
}

func (q *Query) JoinObjectShape(outer bool) *Query {
	return q.joinOn("has_shape", q.t.hasShape, entsql.And(
		entsql.ColumnsEQ(q.t.hasShape.C("dul_PhysicalObject_s"), q.t.hasParticipant.C("dul_Object_o")),
		entsql.ColumnsEQ(q.t.hasShape.C("neem_id"), q.t.hasParticipant.C("neem_id")),
	), outer, true)
}

func (q *Query) JoinShapeMesh(outer bool) *Query {
	return q.joinOn("has_region", q.t.hasRegion, entsql.And(
		entsql.ColumnsEQ(q.t.hasRegion.C("dul_Entity_s"), q.t.hasShape.C("soma_Shape_o")),
		entsql.ColumnsEQ(q.t.hasRegion.C("neem_id"), q.t.hasShape.C("neem_id")),
	), outer, true)
}

func (q *Query) JoinMeshPath(outer bool) *Query {
	return q.joinOn("has_file_path", q.t.hasFilePath, entsql.And(
		entsql.ColumnsEQ(q.t.hasFilePath.C("dul_Entity_s"), q.t.hasRegion.C("dul_Region_o")),
		entsql.ColumnsEQ(q.t.hasFilePath.C("neem_id"), q.t.hasRegion.C("neem_id")),
	), outer, true)
}

// JoinObjectMeshPath joins the shape, region, and file path chain that
// leads from a participant to its mesh file.
func (q *Query) JoinObjectMeshPath(outer bool) *Query {
	return q.JoinObjectShape(outer).
		JoinShapeMesh(outer).
		JoinMeshPath(outer)
}

// Filter appends raw predicates, ANDed with everything else.
func (q *Query) Filter(preds ...*entsql.Predicate) *Query {
	q.preds = append(q.preds, preds...)
	return q
}

func (q *Query) filterByType(typeTable *entsql.SelectTable, types []string, pattern, negate bool) *Query {
	if len(types) == 0 {
		return q
	}
	conds := make([]*entsql.Predicate, len(types))
	for i, t := range types {
		if pattern {
			conds[i] = entsql.Like(typeTable.C("o"), "%"+t+"%")
		} else {
			conds[i] = entsql.EQ(typeTable.C("o"), t)
		}
	}
	cond := entsql.Or(conds...)
	if negate {
		cond = entsql.Not(cond)
	}
	return q.Filter(cond)
}

// FilterByTaskTypes keeps rows whose task type matches one of the given
// names. With pattern set, names match as substrings.
func (q *Query) FilterByTaskTypes(types []string, pattern bool) *Query {
	return q.filterByType(q.t.taskType, types, pattern, false)
}

func (q *Query) FilterByParticipantTypes(types []string, pattern bool) *Query {
	return q.filterByType(q.t.participantType, types, pattern, false)
}

func (q *Query) FilterByPerformerTypes(types []string, pattern, negate bool) *Query {
	return q.filterByType(q.t.performerType, types, pattern, negate)
}

func (q *Query) FilterByTasks(tasks ...string) *Query {
	return q.Filter(entsql.In(q.t.executesTask.C("dul_Task_o"), anySlice(tasks)...))
}

func (q *Query) FilterByParticipants(participants ...string) *Query {
	return q.Filter(entsql.In(q.t.hasParticipant.C("dul_Object_o"), anySlice(participants)...))
}

func (q *Query) FilterByEpisodeSQLIDs(ids ...int64) *Query {
	return q.Filter(entsql.In(q.t.neems.C("ID"), anySlice(ids)...))
}

// FilterByEpisodeID filters on the episode hash id of the already
// anchored or joined triple tables.
func (q *Query) FilterByEpisodeID(id string) *Query {
	col, ok := q.neemIDColumn()
	if !ok {
		col = q.t.executesTask.C("neem_id")
	}
	return q.Filter(entsql.EQ(col, id))
}

func (q *Query) FilterTfByChildFrameID(name string) *Query {
	return q.Filter(entsql.EQ(q.t.tf.C("child_frame_id"), name))
}

// FilterTfByBaseLink keeps transforms whose child frame is the
// participant base link name, the part of the link iri after the colon.
func (q *Query) FilterTfByBaseLink() *Query {
	return q.Filter(q.linkNameEQ(q.t.tf.C("child_frame_id"), q.t.hasBaseLink.C("urdf_Link_o")))
}

// FilterTfByBaseLinkOrParticipant accepts transforms of either the base
// link frame or the participant instance frame.
func (q *Query) FilterTfByBaseLinkOrParticipant() *Query {
	return q.Filter(entsql.Or(
		q.linkNameEQ(q.t.tf.C("child_frame_id"), q.t.hasBaseLink.C("urdf_Link_o")),
		q.linkNameEQ(q.t.tf.C("child_frame_id"), q.t.hasParticipant.C("dul_Object_o")),
	))
}

// FilterIntervalBeginBefore keeps tasks that started before the stamp.
func (q *Query) FilterIntervalBeginBefore(stamp float64) *Query {
	return q.Filter(entsql.LT(q.t.intervalBegin.C("o"), stamp))
}

func (q *Query) OrderBy(idents ...string) *Query {
	q.order = append(q.order, idents...)
	return q
}

func (q *Query) OrderByStamp() *Query {
	return q.OrderBy(q.t.tfHeader.C("stamp"))
}

func (q *Query) OrderByIntervalBegin() *Query {
	return q.OrderBy(q.t.intervalBegin.C("o"))
}

func (q *Query) OrderByIntervalEnd() *Query {
	return q.OrderBy(q.t.intervalEnd.C("o"))
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) Distinct() *Query {
	q.distinct = true
	return q
}

// Construct assembles the selector. The query state is left untouched,
// so Construct can be called repeatedly while filters accumulate.
func (q *Query) Construct() *entsql.Selector {
	cols := make([]string, len(q.cols))
	for i, c := range q.cols {
		cols[i] = entsql.As(c.ident, q.quoteLabel(c.label))
	}
	sel := entsql.Dialect(q.dialect).Select(cols...)
	from := q.from
	if from == nil {
		from = q.t.executesTask
	}
	sel.From(from)
	for _, j := range q.joins {
		if j.outer {
			sel.LeftJoin(j.table)
		} else {
			sel.Join(j.table)
		}
		sel.OnP(j.on)
	}
	if len(q.preds) > 0 {
		sel.Where(entsql.And(q.preds...))
	}
	if q.distinct {
		sel.Distinct()
	}
	if len(q.order) > 0 {
		sel.OrderBy(q.order...)
	}
	if q.limit > 0 {
		sel.Limit(q.limit)
	}
	return sel
}

// String renders the SQL text without executing it.
func (q *Query) String() string {
	s, _ := q.Construct().Query()
	return s
}

// Result executes the query and collects all rows.
func (q *Query) Result(ctx context.Context) (*neem.Result, error) {
	if q.conn == nil {
		return nil, errors.New("neemquery: query has no connection")
	}
	query, args := q.Construct().Query()
	q.log.Debug("executing episode query", "args", len(args), "sql", query)
	rows, err := q.conn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("neemquery: execute: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("neemquery: columns: %w", err)
	}
	var out []neem.Row
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("neemquery: scan: %w", err)
		}
		row := make(neem.Row, len(names))
		for i, n := range names {
			row[n] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("neemquery: rows: %w", err)
	}
	q.log.Debug("episode query done", "rows", len(out))
	return neem.NewResult(out), nil
}

// neemIDColumn finds the episode hash id column among the anchored and
// joined tables.
func (q *Query) neemIDColumn() (string, bool) {
	if q.from != nil && q.fromNeemID {
		return q.from.C("neem_id"), true
	}
	for _, j := range q.joins {
		if j.neemID {
			return j.table.C("neem_id"), true
		}
	}
	return "", false
}

// quoteLabel quotes a result label so reserved words like begin and end
// survive as column aliases.
func (q *Query) quoteLabel(label string) string {
	if q.dialect == dialect.Postgres {
		return `"` + label + `"`
	}
	return "`" + label + "`"
}

// linkNameEQ compares a frame column against the local part of a link
// iri, the text after the prefix colon.
func (q *Query) linkNameEQ(frameCol, linkCol string) *entsql.Predicate {
	d := q.dialect
	return entsql.P(func(b *entsql.Builder) {
		b.Ident(frameCol).WriteString(" = ")
		switch d {
		case dialect.MySQL:
			b.WriteString("SUBSTRING_INDEX(").Ident(linkCol).WriteString(", ':', -1)")
		case dialect.Postgres:
			b.WriteString("split_part(").Ident(linkCol).WriteString(", ':', 2)")
		default:
			b.WriteString("substr(").Ident(linkCol).WriteString(", instr(").Ident(linkCol).WriteString(", ':') + 1)")
		}
	})
}

// columnCmpOffset compares a column against another column shifted by a
// constant offset.
func columnCmpOffset(col, op, other string, offset float64) *entsql.Predicate {
	return entsql.P(func(b *entsql.Builder) {
		b.Ident(col).WriteString(op).Ident(other)
		if offset != 0 {
			b.WriteString(" + ").Arg(offset)
		}
	})
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
