package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/abiosoft/ishell/v2"
	"github.com/abiosoft/readline"
	"github.com/spf13/pflag"

	"github.com/makima-ai/makima-go/cli/internal/config"
	"github.com/makima-ai/makima-go/pkg/client/api"
)

const (
	threadCreateNew = "[New Thread]"
)

// ChatCmd runs an interactive chat inside the shell. The agent and thread are
// taken from the arguments or picked from the available ones.
func ChatCmd(c *ishell.Context) {
	var (
		threadID string
		author   string
	)
	flagSet := pflag.NewFlagSet(c.RawArgs[0], pflag.ContinueOnError)
	flagSet.StringVarP(&threadID, "thread", "t", "", "Thread ID to use")
	flagSet.StringVarP(&author, "name", "n", "", "Name to send messages as")
	if err := flagSet.Parse(c.Args); err != nil {
		c.Printf("Failed to parse flags: %v\n", err)
		return
	}

	ctx := context.Background()
	clientSet := config.GetClient(c)

	var agentName string
	if len(flagSet.Args()) > 0 {
		agentName = flagSet.Args()[0]
		if _, err := clientSet.Agent.GetAgent(ctx, agentName); err != nil {
			c.Println(err)
			return
		}
	} else {
		agents, err := clientSet.Agent.ListAgents(ctx)
		if err != nil {
			c.Println(err)
			return
		}
		if len(agents) == 0 {
			c.Println("No agents found, please create one with 'makima create agent -f FILE' before chatting.")
			return
		}

		agentNames := make([]string, len(agents))
		for i, agent := range agents {
			agentNames[i] = agent.Name
		}
		selected := c.MultiChoice(agentNames, "Select an agent:")
		if selected < 0 {
			return
		}
		agentName = agentNames[selected]
	}

	if threadID == "" {
		var err error
		if threadID, err = selectThread(ctx, c, agentName); err != nil {
			c.Println(err)
			return
		}
		if threadID == "" {
			return
		}
	}

	rt := &Runtime{
		Config: config.GetCfg(c),
		Client: clientSet,
		Out:    shellWriter{c},
		Err:    shellWriter{c},
	}
	c.SetPrompt(config.BoldBlue(agentName + " >> "))
	defer c.ShowPrompt(true)

	for {
		text, err := c.ReadLineErr()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			c.Println("exiting chat...")
			return
		}
		if err != nil {
			c.Printf("Failed to read input: %v\n", err)
			return
		}
		text = strings.TrimSpace(text)
		switch text {
		case "":
			continue
		case "exit", "quit":
			c.Println("exiting chat...")
			return
		case "help":
			c.Println("Available commands:")
			c.Println("  exit - exit the chat")
			c.Println("  help - show this help message")
			continue
		}

		if err := ThreadChatCmd(ctx, rt, threadID, text, agentName, author); err != nil {
			c.Println(err)
		}
	}
}

// selectThread offers the threads of an agent plus a new one and returns the
// chosen thread ID, empty when the choice was cancelled
func selectThread(ctx context.Context, c *ishell.Context, agentName string) (string, error) {
	threads, err := config.GetClient(c).Thread.ListThreads(ctx)
	if err != nil {
		return "", err
	}
	threads = slices.DeleteFunc(threads, func(thread api.Thread) bool {
		return thread.AgentName() != agentName
	})

	options := []string{threadCreateNew}
	for _, thread := range threads {
		if thread.Description != nil {
			options = append(options, fmt.Sprintf("%s (ID: %s)", *thread.Description, thread.ID))
		} else {
			options = append(options, thread.ID)
		}
	}

	selected := c.MultiChoice(options, "Select a thread:")
	switch {
	case selected < 0:
		return "", nil
	case selected > 0:
		return threads[selected-1].ID, nil
	}

	c.ShowPrompt(false)
	c.Print("Enter a thread description: ")
	description, err := c.ReadLineErr()
	c.ShowPrompt(true)
	if err != nil {
		return "", fmt.Errorf("failed to read thread description: %w", err)
	}
	thread, err := config.GetClient(c).Thread.CreateThread(ctx, &api.ThreadParams{
		Platform:    "cli",
		Description: strings.TrimSpace(description),
		AgentName:   agentName,
	})
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

// shellWriter prints through the shell so output interleaves with the prompt
type shellWriter struct {
	c *ishell.Context
}

func (w shellWriter) Write(p []byte) (int, error) {
	w.c.Print(string(p))
	return len(p), nil
}
