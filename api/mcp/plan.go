package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	episodePlanToolName    = "episode_plan"
	episodePlanDescription = "Return the recorded plan of one episode: the executed tasks in order with their types, subtasks, participants, parameters, and time intervals."
)

// EpisodePlanInput represents the input arguments for the episode_plan tool.
type EpisodePlanInput struct {
	EpisodeSQLID int64 `json:"episode_sql_id" jsonschema:"the sql_id of the episode, as returned by list_episodes"`
}

// PlanRow is one row of the reconstructed plan.
type PlanRow struct {
	Task        string  `json:"task"`
	Type        string  `json:"type"`
	Subtask     string  `json:"subtask,omitempty"`
	SubtaskType string  `json:"subtask_type,omitempty"`
	Participant string  `json:"participant,omitempty"`
	Parameter   string  `json:"parameter,omitempty"`
	Begin       float64 `json:"begin"`
	End         float64 `json:"end"`
}

// EpisodePlanOutput represents the output of the episode_plan tool.
type EpisodePlanOutput struct {
	EpisodeSQLID int64     `json:"episode_sql_id"`
	Rows         []PlanRow `json:"rows"`
	Count        int       `json:"count"`
}

// handleEpisodePlan processes an episode_plan request.
func (s *Server) handleEpisodePlan(ctx context.Context, _ *mcp.CallToolRequest, input EpisodePlanInput) (*mcp.CallToolResult, EpisodePlanOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP episode_plan request", "episode", input.EpisodeSQLID)

	res, err := s.config.Interface.PlanOfEpisode(ctx, input.EpisodeSQLID)
	if err != nil {
		logger.Error("failed to query plan", "episode", input.EpisodeSQLID, "err", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to query plan: %v", err)},
			},
		}, EpisodePlanOutput{}, nil
	}

	tasks := res.Tasks(false)
	types := res.TaskTypes(false)
	subtasks := res.Subtasks(false)
	subtaskTypes := res.SubtaskTypes(false)
	participants := res.Participants(false)
	parameters := res.TaskParameters(false)
	begins := res.IntervalBegins()
	ends := res.IntervalEnds()

	rows := make([]PlanRow, res.Len())
	for i := range rows {
		rows[i] = PlanRow{
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

	return nil, EpisodePlanOutput{
		EpisodeSQLID: input.EpisodeSQLID,
		Rows:         rows,
		Count:        len(rows),
	}, nil
}
