package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"sigs.k8s.io/yaml"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

// Kind names a resource collection on the command line
type Kind string

const (
	KindAgent     Kind = "agent"
	KindTool      Kind = "tool"
	KindThread    Kind = "thread"
	KindKnowledge Kind = "knowledge"
)

// Kinds lists every resource collection
var Kinds = []Kind{KindAgent, KindTool, KindThread, KindKnowledge}

// readManifest decodes a YAML or JSON file into v using its JSON field names
func readManifest(file string, v any) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return nil
}

// CreateCmd creates one resource of the given kind from a manifest file and
// prints it
func CreateCmd(ctx context.Context, rt *Runtime, kind Kind, file string) error {
	var (
		created any
		err     error
	)
	switch kind {
	case KindAgent:
		var params api.AgentParams
		if err := readManifest(file, &params); err != nil {
			return err
		}
		created, err = rt.Client.Agent.CreateAgent(ctx, &params)
	case KindTool:
		var params api.ToolParams
		if err := readManifest(file, &params); err != nil {
			return err
		}
		created, err = rt.Client.Tool.CreateTool(ctx, &params)
	case KindThread:
		var params api.ThreadParams
		if err := readManifest(file, &params); err != nil {
			return err
		}
		created, err = rt.Client.Thread.CreateThread(ctx, &params)
	case KindKnowledge:
		var params api.KnowledgeBaseParams
		if err := readManifest(file, &params); err != nil {
			return err
		}
		created, err = rt.Client.Knowledge.CreateKnowledgeBase(ctx, &params)
	default:
		return fmt.Errorf("unknown resource type: %s", kind)
	}
	if err != nil {
		return err
	}
	return printJSON(rt.Out, created)
}

// DeleteCmd deletes every named resource, reporting each success and
// returning all failures together
func DeleteCmd(ctx context.Context, rt *Runtime, kind Kind, names []string) error {
	var del func(context.Context, string) (*api.StatusMessage, error)
	switch kind {
	case KindAgent:
		del = rt.Client.Agent.DeleteAgent
	case KindTool:
		del = rt.Client.Tool.DeleteTool
	case KindThread:
		del = rt.Client.Thread.DeleteThread
	case KindKnowledge:
		del = rt.Client.Knowledge.DeleteKnowledgeBase
	default:
		return fmt.Errorf("unknown resource type: %s", kind)
	}

	var result *multierror.Error
	for _, name := range names {
		msg, err := del(ctx, name)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		fmt.Fprintln(rt.Out, msg.Message) //nolint:errcheck
	}
	return result.ErrorOrNil()
}
