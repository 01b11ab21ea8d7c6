package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

// wrapWidth is the column messages are wrapped at
const wrapWidth = 100

var roleColors = map[api.Role]*color.Color{
	api.RoleHuman:        color.New(color.FgGreen, color.Bold),
	api.RoleAI:           color.New(color.FgCyan, color.Bold),
	api.RoleSystem:       color.New(color.FgYellow),
	api.RoleToolCalls:    color.New(color.FgMagenta),
	api.RoleToolResponse: color.New(color.FgMagenta),
}

// roleTitle turns a wire role such as tool_calls into "Tool Calls"
func roleTitle(role api.Role) string {
	if role == api.RoleAI {
		return "AI"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(string(role), "_", " "))
}

func speaker(m api.Message) string {
	switch m := m.(type) {
	case api.HumanMessage:
		return m.Name
	case api.AIMessage:
		return m.Name
	}
	return ""
}

func printMessage(w io.Writer, m api.Message) {
	label := roleTitle(m.Role())
	if name := speaker(m); name != "" {
		label = fmt.Sprintf("%s (%s)", label, name)
	}
	if c, ok := roleColors[m.Role()]; ok {
		label = c.Sprint(label)
	}
	fmt.Fprintf(w, "%s: %s\n", label, wordwrap.String(api.ContentOf(m), wrapWidth)) //nolint:errcheck
}

func ThreadMessagesCmd(ctx context.Context, rt *Runtime, threadID string) error {
	messages, err := rt.Client.Thread.ListMessages(ctx, threadID)
	if err != nil {
		return fmt.Errorf("failed to get messages of thread %s: %w", threadID, err)
	}
	if rt.Config.OutputFormat == string(OutputFormatJSON) {
		return printJSON(rt.Out, messages)
	}
	if len(messages) == 0 {
		fmt.Fprintln(rt.Out, "No messages found") //nolint:errcheck
		return nil
	}
	for _, m := range messages {
		printMessage(rt.Out, m)
	}
	return nil
}

// ThreadChatCmd sends text to a thread and prints the reply. agentName
// overrides the thread's default agent for this turn.
func ThreadChatCmd(ctx context.Context, rt *Runtime, threadID, text, agentName, author string) error {
	params := &api.ThreadChatParams{
		AgentName: agentName,
		Message:   api.HumanMessage{Name: author, Content: api.Text(text)},
	}

	stop := rt.spin("Waiting for the agent...")
	reply, err := rt.Client.Thread.Chat(ctx, threadID, params)
	stop()
	if err != nil {
		return fmt.Errorf("failed to chat in thread %s: %w", threadID, err)
	}
	if rt.Config.OutputFormat == string(OutputFormatJSON) {
		return printJSON(rt.Out, api.TypedMessage{Message: reply})
	}
	printMessage(rt.Out, reply)
	return nil
}

func ThreadSetAgentCmd(ctx context.Context, rt *Runtime, threadID, agentName string) error {
	thread, err := rt.Client.Thread.SetAgent(ctx, threadID, agentName)
	if err != nil {
		return fmt.Errorf("failed to set agent of thread %s: %w", threadID, err)
	}
	return printThreads(rt, []api.Thread{*thread})
}

// spin shows a spinner on Err until the returned func is called
func (rt *Runtime) spin(suffix string) func() {
	if !rt.Interactive {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[35], 100*time.Millisecond, spinner.WithWriter(rt.Err))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}
