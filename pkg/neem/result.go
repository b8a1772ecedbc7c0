package neem

import (
	"fmt"
	"math"
	"strconv"
)

// Row is a single query result row keyed by column label.
type Row map[string]any

// Result holds and processes the tabular output of an episode query.
// All filter methods return a new Result over a row subset; the receiver is
// never mutated except by NormalizeTime, which rewrites stamps in place the
// way the recorded data is consumed everywhere downstream.
type Result struct {
	rows []Row
}

// NewResult wraps query rows in a Result.
func NewResult(rows []Row) *Result {
	return &Result{rows: rows}
}

// Len returns the number of rows.
func (r *Result) Len() int { return len(r.rows) }

// Rows exposes the underlying rows.
func (r *Result) Rows() []Row { return r.rows }

// Filter returns the rows for which pred is true.
func (r *Result) Filter(pred func(Row) bool) *Result {
	out := make([]Row, 0, len(r.rows))
	for _, row := range r.rows {
		if pred(row) {
			out = append(out, row)
		}
	}
	return &Result{rows: out}
}

// FilterBy returns the rows whose column equals value (string comparison
// after normalization, since drivers may return []byte or numeric types).
func (r *Result) FilterBy(column string, value any) *Result {
	want := asString(value)
	return r.Filter(func(row Row) bool {
		return asString(row[column]) == want
	})
}

func (r *Result) FilterByEpisode(episodeID string) *Result {
	return r.FilterBy(ColEpisodeID, episodeID)
}

func (r *Result) FilterByEpisodeSQLID(id int64) *Result {
	return r.FilterBy(ColEpisodeSQLID, id)
}

func (r *Result) FilterByParticipant(participant string) *Result {
	return r.FilterBy(ColParticipant, participant)
}

func (r *Result) FilterByParticipantType(participantType string) *Result {
	return r.FilterBy(ColParticipantType, participantType)
}

func (r *Result) FilterByTask(task string) *Result {
	return r.FilterBy(ColTask, task)
}

func (r *Result) FilterByTaskType(taskType string) *Result {
	return r.FilterBy(ColTaskType, taskType)
}

func (r *Result) FilterByPerformer(performer string) *Result {
	return r.FilterBy(ColPerformer, performer)
}

// NormalizeTime shifts all stamps so the earliest sample is at zero.
// Idempotent on an already zero-based result.
func (r *Result) NormalizeTime() *Result {
	min := math.Inf(1)
	for _, row := range r.rows {
		if s, ok := asFloat(row[ColStamp]); ok && s < min {
			min = s
		}
	}
	if math.IsInf(min, 1) || min == 0 {
		return r
	}
	for _, row := range r.rows {
		if s, ok := asFloat(row[ColStamp]); ok {
			row[ColStamp] = s - min
		}
	}
	return r
}

// Strings returns a column's values as strings, optionally deduplicated in
// first-seen order.
func (r *Result) Strings(column string, unique bool) []string {
	out := make([]string, 0, len(r.rows))
	var seen map[string]struct{}
	if unique {
		seen = make(map[string]struct{}, len(r.rows))
	}
	for _, row := range r.rows {
		v := asString(row[column])
		if unique {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
		}
		out = append(out, v)
	}
	return out
}

// Floats returns a column's values as float64s. Non-numeric cells become 0.
func (r *Result) Floats(column string) []float64 {
	out := make([]float64, 0, len(r.rows))
	for _, row := range r.rows {
		f, _ := asFloat(row[column])
		out = append(out, f)
	}
	return out
}

func (r *Result) EpisodeIDs(unique bool) []string { return r.Strings(ColEpisodeID, unique) }

func (r *Result) Participants(unique bool) []string { return r.Strings(ColParticipant, unique) }

func (r *Result) ParticipantTypes(unique bool) []string {
	return r.Strings(ColParticipantType, unique)
}

func (r *Result) Performers(unique bool) []string { return r.Strings(ColPerformer, unique) }

func (r *Result) PerformerTypes(unique bool) []string { return r.Strings(ColPerformerType, unique) }

func (r *Result) Tasks(unique bool) []string { return r.Strings(ColTask, unique) }

func (r *Result) TaskTypes(unique bool) []string { return r.Strings(ColTaskType, unique) }

func (r *Result) Subtasks(unique bool) []string { return r.Strings(ColSubtask, unique) }

func (r *Result) SubtaskTypes(unique bool) []string { return r.Strings(ColSubtaskType, unique) }

func (r *Result) TaskParameters(unique bool) []string { return r.Strings(ColTaskParameter, unique) }

func (r *Result) TaskParameterTypes(unique bool) []string {
	return r.Strings(ColTaskParameterType, unique)
}

func (r *Result) Environments(unique bool) []string { return r.Strings(ColEnvironment, unique) }

func (r *Result) FrameIDs() []string { return r.Strings(ColFrameID, false) }

func (r *Result) ChildFrameIDs() []string { return r.Strings(ColChildFrameID, false) }

func (r *Result) Stamps() []float64 { return r.Floats(ColStamp) }

func (r *Result) IntervalBegins() []float64 { return r.Floats(ColIntervalBegin) }

func (r *Result) IntervalEnds() []float64 { return r.Floats(ColIntervalEnd) }

// Poses assembles a pose per row from the plain tf translation and rotation
// columns.
func (r *Result) Poses() []Pose {
	out := make([]Pose, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, poseFromRow(row,
			ColTranslationX, ColTranslationY, ColTranslationZ,
			ColOrientationX, ColOrientationY, ColOrientationZ, ColOrientationW))
	}
	return out
}

// ParticipantPoses assembles a pose per row from the participant-prefixed tf
// columns.
func (r *Result) ParticipantPoses() []Pose {
	out := make([]Pose, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, poseFromRow(row,
			ColParticipantTranslationX, ColParticipantTranslationY, ColParticipantTranslationZ,
			ColParticipantOrientationX, ColParticipantOrientationY, ColParticipantOrientationZ,
			ColParticipantOrientationW))
	}
	return out
}

// PerformerPoses assembles a pose per row from the performer-prefixed tf
// columns.
func (r *Result) PerformerPoses() []Pose {
	out := make([]Pose, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, poseFromRow(row,
			ColPerformerTranslationX, ColPerformerTranslationY, ColPerformerTranslationZ,
			ColPerformerOrientationX, ColPerformerOrientationY, ColPerformerOrientationZ,
			ColPerformerOrientationW))
	}
	return out
}

// Transforms assembles a stamped transform per row from the plain tf columns.
func (r *Result) Transforms() []Transform {
	out := make([]Transform, 0, len(r.rows))
	for _, row := range r.rows {
		stamp, _ := asFloat(row[ColStamp])
		out = append(out, Transform{
			FrameID:      asString(row[ColFrameID]),
			ChildFrameID: asString(row[ColChildFrameID]),
			Stamp:        stamp,
			Pose: poseFromRow(row,
				ColTranslationX, ColTranslationY, ColTranslationZ,
				ColOrientationX, ColOrientationY, ColOrientationZ, ColOrientationW),
		})
	}
	return out
}

// EpisodeValue pairs an episode id with one value of some column in that
// episode.
type EpisodeValue struct {
	EpisodeID string
	Value     string
}

// ValuePerEpisode lists a column's values grouped per episode.
func (r *Result) ValuePerEpisode(column string, unique bool) []EpisodeValue {
	var out []EpisodeValue
	for _, id := range r.EpisodeIDs(true) {
		for _, v := range r.FilterByEpisode(id).Strings(column, unique) {
			out = append(out, EpisodeValue{EpisodeID: id, Value: v})
		}
	}
	return out
}

// TaskStartTime returns the interval begin of the first row of the given
// task.
func (r *Result) TaskStartTime(task string) (float64, error) {
	filtered := r.FilterByTask(task)
	if filtered.Len() == 0 {
		return 0, fmt.Errorf("task %q not in result", task)
	}
	return filtered.IntervalBegins()[0], nil
}

func poseFromRow(row Row, xc, yc, zc, qxc, qyc, qzc, qwc string) Pose {
	x, _ := asFloat(row[xc])
	y, _ := asFloat(row[yc])
	z, _ := asFloat(row[zc])
	qx, _ := asFloat(row[qxc])
	qy, _ := asFloat(row[qyc])
	qz, _ := asFloat(row[qzc])
	qw, _ := asFloat(row[qwc])
	return NewPose(x, y, z, qx, qy, qz, qw)
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case []byte:
		f, err := strconv.ParseFloat(string(t), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
