package mcp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/knowrobco/neemsim/pkg/neem"
)

var (
	listEpisodesToolName    = "list_episodes"
	listEpisodesDescription = "List the recorded robot episodes available for replay. Returns id, name, description, and creator metadata for each episode."
)

// ListEpisodesInput represents the input arguments for the list_episodes tool.
type ListEpisodesInput struct {
	Task string `json:"task,omitempty" jsonschema:"restrict to episodes containing a task type, matched as a substring (e.g. Pour)"`
}

// Episode represents one episode of the index.
type Episode struct {
	SQLID       int64  `json:"sql_id"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
}

// ListEpisodesOutput represents the output of the list_episodes tool.
type ListEpisodesOutput struct {
	Episodes []Episode `json:"episodes"`
	Count    int       `json:"count"`
}

// handleListEpisodes processes a list_episodes request.
func (s *Server) handleListEpisodes(ctx context.Context, _ *mcp.CallToolRequest, input ListEpisodesInput) (*mcp.CallToolResult, ListEpisodesOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP list_episodes request", "task", input.Task)

	res, err := s.config.Interface.Episodes(ctx)
	if err != nil {
		logger.Error("failed to list episodes", "err", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to list episodes: %v", err)},
			},
		}, ListEpisodesOutput{}, nil
	}

	var containing map[string]struct{}
	if input.Task != "" {
		matches, err := s.config.Interface.EpisodesContainingTask(ctx, input.Task, true)
		if err != nil {
			logger.Error("failed to match episodes by task", "task", input.Task, "err", err)
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: fmt.Sprintf("Failed to match episodes by task: %v", err)},
				},
			}, ListEpisodesOutput{}, nil
		}
		containing = make(map[string]struct{})
		for _, id := range matches.EpisodeIDs(true) {
			containing[id] = struct{}{}
		}
	}

	sqlIDs := res.Strings(neem.ColEpisodeSQLID, false)
	ids := res.EpisodeIDs(false)
	names := res.Strings("name", false)
	descriptions := res.Strings("description", false)
	creators := res.Strings("created_by", false)

	episodes := make([]Episode, 0, res.Len())
	for i := 0; i < res.Len(); i++ {
		if containing != nil {
			if _, ok := containing[ids[i]]; !ok {
				continue
			}
		}
		sqlID, _ := strconv.ParseInt(sqlIDs[i], 10, 64)
		episodes = append(episodes, Episode{
			SQLID:       sqlID,
			ID:          ids[i],
			Name:        names[i],
			Description: descriptions[i],
			CreatedBy:   creators[i],
		})
	}

	return nil, ListEpisodesOutput{
		Episodes: episodes,
		Count:    len(episodes),
	}, nil
}
