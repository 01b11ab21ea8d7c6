package cli

import (
	"context"
	"fmt"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

// Relation names an agent relationship change
type Relation string

const (
	RelationAddTool         Relation = "add-tool"
	RelationRemoveTool      Relation = "remove-tool"
	RelationAddHelper       Relation = "add-helper"
	RelationRemoveHelper    Relation = "remove-helper"
	RelationAddKnowledge    Relation = "add-knowledge"
	RelationRemoveKnowledge Relation = "remove-knowledge"
)

// Relations lists every relationship change with its help text
var Relations = map[Relation]string{
	RelationAddTool:         "Attach a tool to an agent",
	RelationRemoveTool:      "Detach a tool from an agent",
	RelationAddHelper:       "Let an agent delegate to a helper agent",
	RelationRemoveHelper:    "Remove a helper agent from an agent",
	RelationAddKnowledge:    "Give an agent access to a knowledge base",
	RelationRemoveKnowledge: "Revoke an agent's access to a knowledge base",
}

// AgentRelateCmd applies a relationship change and prints the resulting
// relationships of the agent
func AgentRelateCmd(ctx context.Context, rt *Runtime, relation Relation, agentName, target string) error {
	var change func(context.Context, string, string) (*api.AgentDetail, error)
	switch relation {
	case RelationAddTool:
		change = rt.Client.Agent.AddTool
	case RelationRemoveTool:
		change = rt.Client.Agent.RemoveTool
	case RelationAddHelper:
		change = rt.Client.Agent.AddHelper
	case RelationRemoveHelper:
		change = rt.Client.Agent.RemoveHelper
	case RelationAddKnowledge:
		change = rt.Client.Agent.AddKnowledgeBase
	case RelationRemoveKnowledge:
		change = rt.Client.Agent.RemoveKnowledgeBase
	default:
		return fmt.Errorf("unknown agent relation: %s", relation)
	}

	detail, err := change(ctx, agentName, target)
	if err != nil {
		return err
	}
	if rt.Config.OutputFormat == string(OutputFormatJSON) {
		return printJSON(rt.Out, detail)
	}

	headers := []string{"KIND", "NAME"}
	var rows [][]string
	for _, tool := range detail.Tools {
		rows = append(rows, []string{"tool", tool.Name})
	}
	for _, helper := range detail.HelperAgents {
		rows = append(rows, []string{"helper", helper.Name})
	}
	for _, kb := range detail.KnowledgeBases {
		rows = append(rows, []string{"knowledge", kb.Name})
	}
	fmt.Fprintf(rt.Out, "Agent %s\n", detail.Name) //nolint:errcheck
	return printOutput(rt.Out, rt.Config.OutputFormat, detail, headers, rows)
}
