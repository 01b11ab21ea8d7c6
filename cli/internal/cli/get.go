package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

func GetAgentCmd(ctx context.Context, rt *Runtime, resourceName string) error {
	if resourceName != "" {
		agent, err := rt.Client.Agent.GetAgent(ctx, resourceName)
		if err != nil {
			return fmt.Errorf("failed to get agent %s: %w", resourceName, err)
		}
		return printJSON(rt.Out, agent)
	}

	agents, err := rt.Client.Agent.ListAgents(ctx)
	if err != nil {
		return fmt.Errorf("failed to get agents: %w", err)
	}
	if len(agents) == 0 {
		fmt.Fprintln(rt.Out, "No agents found") //nolint:errcheck
		return nil
	}
	return printAgents(rt, agents)
}

func GetToolCmd(ctx context.Context, rt *Runtime, resourceName string) error {
	if resourceName != "" {
		tool, err := rt.Client.Tool.GetTool(ctx, resourceName)
		if err != nil {
			return fmt.Errorf("failed to get tool %s: %w", resourceName, err)
		}
		return printJSON(rt.Out, tool)
	}

	tools, err := rt.Client.Tool.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to get tools: %w", err)
	}
	if len(tools) == 0 {
		fmt.Fprintln(rt.Out, "No tools found") //nolint:errcheck
		return nil
	}
	return printTools(rt, tools)
}

func GetThreadCmd(ctx context.Context, rt *Runtime, resourceName string) error {
	if resourceName != "" {
		thread, err := rt.Client.Thread.GetThread(ctx, resourceName)
		if err != nil {
			return fmt.Errorf("failed to get thread %s: %w", resourceName, err)
		}
		return printJSON(rt.Out, thread)
	}

	threads, err := rt.Client.Thread.ListThreads(ctx)
	if err != nil {
		return fmt.Errorf("failed to get threads: %w", err)
	}
	if len(threads) == 0 {
		fmt.Fprintln(rt.Out, "No threads found") //nolint:errcheck
		return nil
	}
	return printThreads(rt, threads)
}

func GetKnowledgeCmd(ctx context.Context, rt *Runtime, resourceName string) error {
	if resourceName != "" {
		kb, err := rt.Client.Knowledge.GetKnowledgeBase(ctx, resourceName)
		if err != nil {
			return fmt.Errorf("failed to get knowledge base %s: %w", resourceName, err)
		}
		return printJSON(rt.Out, kb)
	}

	bases, err := rt.Client.Knowledge.ListKnowledgeBases(ctx)
	if err != nil {
		return fmt.Errorf("failed to get knowledge bases: %w", err)
	}
	if len(bases) == 0 {
		fmt.Fprintln(rt.Out, "No knowledge bases found") //nolint:errcheck
		return nil
	}
	return printKnowledgeBases(rt, bases)
}

func printAgents(rt *Runtime, agents []api.Agent) error {
	headers := []string{"#", "NAME", "PRIMARY_MODEL", "DESCRIPTION", "CREATED"}
	rows := make([][]string, len(agents))
	for i, agent := range agents {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			agent.Name,
			agent.PrimaryModel,
			truncate(agent.Description, 60),
			agent.CreatedAt.Format(time.RFC3339),
		}
	}

	return printOutput(rt.Out, rt.Config.OutputFormat, agents, headers, rows)
}

func printTools(rt *Runtime, tools []api.Tool) error {
	headers := []string{"#", "NAME", "METHOD", "ENDPOINT", "DESCRIPTION", "CREATED"}
	rows := make([][]string, len(tools))
	for i, tool := range tools {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			tool.Name,
			tool.Method,
			tool.Endpoint,
			truncate(tool.Description, 60),
			tool.CreatedAt.Format(time.RFC3339),
		}
	}

	return printOutput(rt.Out, rt.Config.OutputFormat, tools, headers, rows)
}

func printThreads(rt *Runtime, threads []api.Thread) error {
	headers := []string{"#", "ID", "PLATFORM", "AGENT", "AUTHORS"}
	rows := make([][]string, len(threads))
	for i, thread := range threads {
		platform := ""
		if thread.Platform != nil {
			platform = *thread.Platform
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			thread.ID,
			platform,
			thread.AgentName(),
			strings.Join(thread.Authors, ","),
		}
	}

	return printOutput(rt.Out, rt.Config.OutputFormat, threads, headers, rows)
}

func printKnowledgeBases(rt *Runtime, bases []api.KnowledgeBase) error {
	headers := []string{"#", "NAME", "EMBEDDING_MODEL", "DATABASE", "CREATED"}
	rows := make([][]string, len(bases))
	for i, kb := range bases {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			kb.Name,
			kb.EmbeddingModel,
			kb.DatabaseProvider,
			kb.CreatedAt.Format(time.RFC3339),
		}
	}

	return printOutput(rt.Out, rt.Config.OutputFormat, bases, headers, rows)
}
