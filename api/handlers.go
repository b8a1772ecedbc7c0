package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/replay"
)

// ErrorResponse is the JSON body returned on handler errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EpisodeResponse describes one entry of the episode index.
type EpisodeResponse struct {
	SQLID       int64  `json:"sql_id"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// TaskResponse is one executed task of an episode with its time interval.
type TaskResponse struct {
	Task  string  `json:"task"`
	Type  string  `json:"type"`
	Begin float64 `json:"begin"`
	End   float64 `json:"end"`
}

// PlanRowResponse is one row of the reconstructed plan of an episode.
type PlanRowResponse struct {
	Task        string  `json:"task"`
	Type        string  `json:"type"`
	Subtask     string  `json:"subtask,omitempty"`
	SubtaskType string  `json:"subtask_type,omitempty"`
	Participant string  `json:"participant,omitempty"`
	Parameter   string  `json:"parameter,omitempty"`
	Begin       float64 `json:"begin"`
	End         float64 `json:"end"`
}

// MotionSampleResponse is one recorded pose sample of a participant.
type MotionSampleResponse struct {
	Participant string    `json:"participant"`
	Stamp       float64   `json:"stamp"`
	Position    []float64 `json:"position"`
	Orientation []float64 `json:"orientation"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListEpisodes returns the episode index metadata.
func (s *Server) handleListEpisodes(c *fiber.Ctx) error {
	res, err := s.iface.Episodes(c.Context())
	if err != nil {
		s.logger.Error("listing episodes", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list episodes"})
	}

	sqlIDs := res.Strings(neem.ColEpisodeSQLID, false)
	ids := res.EpisodeIDs(false)
	names := res.Strings("name", false)
	descriptions := res.Strings("description", false)
	creators := res.Strings("created_by", false)
	createdAts := res.Strings("created_at", false)

	episodes := make([]EpisodeResponse, res.Len())
	for i := range episodes {
		sqlID, _ := strconv.ParseInt(sqlIDs[i], 10, 64)
		episodes[i] = EpisodeResponse{
			SQLID:       sqlID,
			ID:          ids[i],
			Name:        names[i],
			Description: descriptions[i],
			CreatedBy:   creators[i],
			CreatedAt:   createdAts[i],
		}
	}

	return c.JSON(map[string]any{
		"count":    len(episodes),
		"episodes": episodes,
	})
}

// handleEpisodeTasks returns the task sequence of one episode.
func (s *Server) handleEpisodeTasks(c *fiber.Ctx) error {
	id, err := episodeParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid episode id"})
	}

	res, err := s.iface.TaskSequenceOfEpisode(c.Context(), id)
	if err != nil {
		s.logger.Error("querying task sequence", "episode", id, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to query tasks"})
	}

	tasks := res.Tasks(false)
	types := res.TaskTypes(false)
	begins := res.IntervalBegins()
	ends := res.IntervalEnds()

	out := make([]TaskResponse, res.Len())
	for i := range out {
		out[i] = TaskResponse{
			Task:  tasks[i],
			Type:  types[i],
			Begin: begins[i],
			End:   ends[i],
		}
	}

	return c.JSON(map[string]any{
		"episode": id,
		"count":   len(out),
		"tasks":   out,
	})
}

// handleEpisodePlan returns the plan rows of one episode: tasks with
// subtasks, participants, and parameters.
func (s *Server) handleEpisodePlan(c *fiber.Ctx) error {
	id, err := episodeParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid episode id"})
	}

	res, err := s.iface.PlanOfEpisode(c.Context(), id)
	if err != nil {
		s.logger.Error("querying plan", "episode", id, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to query plan"})
	}

	tasks := res.Tasks(false)
	types := res.TaskTypes(false)
	subtasks := res.Subtasks(false)
	subtaskTypes := res.SubtaskTypes(false)
	participants := res.Participants(false)
	parameters := res.TaskParameters(false)
	begins := res.IntervalBegins()
	ends := res.IntervalEnds()

	rows := make([]PlanRowResponse, res.Len())
	for i := range rows {
		rows[i] = PlanRowResponse{
			Task:        tasks[i],
			Type:        types[i],
			Subtask:     subtasks[i],
			SubtaskType: subtaskTypes[i],
			Participant: participants[i],
			Parameter:   parameters[i],
			Begin:       begins[i],
			End:         ends[i],
		}
	}

	return c.JSON(map[string]any{
		"episode": id,
		"count":   len(rows),
		"plan":    rows,
	})
}

// handleEpisodeMotion returns the recorded motion samples of one episode
// with stamps normalized to start at zero.
func (s *Server) handleEpisodeMotion(c *fiber.Ctx) error {
	id, err := episodeParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid episode id"})
	}

	res, err := s.iface.MotionReplayData(c.Context(), id)
	if err != nil {
		s.logger.Error("querying motion", "episode", id, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to query motion"})
	}

	data := replay.FromResult(res.NormalizeTime())

	samples := make([]MotionSampleResponse, data.Len())
	for i := range samples {
		pose := data.Poses[i]
		samples[i] = MotionSampleResponse{
			Participant: data.Instances[i],
			Stamp:       data.Times[i],
			Position:    []float64{pose.Position.X, pose.Position.Y, pose.Position.Z},
			Orientation: []float64{pose.Orientation.X, pose.Orientation.Y, pose.Orientation.Z, pose.Orientation.W},
		}
	}

	return c.JSON(map[string]any{
		"episode": id,
		"count":   len(samples),
		"samples": samples,
	})
}

func episodeParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
