package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abiosoft/ishell/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/makima-ai/makima-go/cli/internal/cli"
	"github.com/makima-ai/makima-go/cli/internal/config"
	"github.com/makima-ai/makima-go/pkg/client/api"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		configFile string
		rt         *cli.Runtime
	)

	rootCmd := &cobra.Command{
		Use:          "makima",
		Short:        "makima is a CLI for the Makima agent service",
		Long:         `makima manages the agents, tools, threads and knowledge bases of a Makima service.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				var err error
				if configFile, err = config.DefaultConfigFile(); err != nil {
					return err
				}
			}
			if err := config.Init(configFile); err != nil {
				return fmt.Errorf("error initializing config: %w", err)
			}
			cfg, err := config.Get()
			if err != nil {
				return err
			}
			rt = cli.NewRuntime(cfg)
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			runInteractive(rt)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is $HOME/.makima/config.yaml)")
	flags.String("makima-url", config.DefaultMakimaURL, "Makima URL")
	flags.StringP("output-format", "o", config.DefaultOutputFormat, "Output format (table|json)")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.String("token", "", "Bearer token sent to the Makima service")
	viper.BindPFlag("makima_url", flags.Lookup("makima-url"))       //nolint:errcheck
	viper.BindPFlag("output_format", flags.Lookup("output-format")) //nolint:errcheck
	viper.BindPFlag("verbose", flags.Lookup("verbose"))             //nolint:errcheck
	viper.BindPFlag("token", flags.Lookup("token"))                 //nolint:errcheck

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Get a makima resource",
		Long:  `Get a makima resource`,
	}
	getFuncs := map[cli.Kind]func(context.Context, *cli.Runtime, string) error{
		cli.KindAgent:     cli.GetAgentCmd,
		cli.KindTool:      cli.GetToolCmd,
		cli.KindThread:    cli.GetThreadCmd,
		cli.KindKnowledge: cli.GetKnowledgeCmd,
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a makima resource from a YAML or JSON file",
	}
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete makima resources",
	}
	for _, kind := range cli.Kinds {
		get := getFuncs[kind]
		getCmd.AddCommand(&cobra.Command{
			Use:   fmt.Sprintf("%s [name]", kind),
			Short: fmt.Sprintf("Get a %s or list all of them", kind),
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := ""
				if len(args) > 0 {
					name = args[0]
				}
				return get(cmd.Context(), rt, name)
			},
		})

		var file string
		create := &cobra.Command{
			Use:     string(kind),
			Short:   fmt.Sprintf("Create a %s", kind),
			Args:    cobra.NoArgs,
			Example: fmt.Sprintf("makima create %s -f %s.yaml", kind, kind),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.CreateCmd(cmd.Context(), rt, kind, file)
			},
		}
		create.Flags().StringVarP(&file, "file", "f", "", "File holding the create parameters")
		create.MarkFlagRequired("file") //nolint:errcheck
		createCmd.AddCommand(create)

		deleteCmd.AddCommand(&cobra.Command{
			Use:   fmt.Sprintf("%s NAME...", kind),
			Short: fmt.Sprintf("Delete one or more of %s", kind),
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.DeleteCmd(cmd.Context(), rt, kind, args)
			},
		})
	}

	agentCmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage the tools, helpers and knowledge bases of an agent",
	}
	for relation, help := range cli.Relations {
		agentCmd.AddCommand(&cobra.Command{
			Use:   fmt.Sprintf("%s AGENT TARGET", relation),
			Short: help,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.AgentRelateCmd(cmd.Context(), rt, relation, args[0], args[1])
			},
		})
	}

	threadCmd := &cobra.Command{
		Use:   "thread",
		Short: "Read and chat in threads",
	}
	threadCmd.AddCommand(&cobra.Command{
		Use:   "messages ID",
		Short: "Print the messages of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ThreadMessagesCmd(cmd.Context(), rt, args[0])
		},
	})
	var chatAgent, chatName string
	chatCmd := &cobra.Command{
		Use:     "chat ID TEXT...",
		Short:   "Send a message to a thread and print the reply",
		Args:    cobra.MinimumNArgs(2),
		Example: `makima thread chat support-1 "What is the refund policy?" --agent support`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ThreadChatCmd(cmd.Context(), rt, args[0], strings.Join(args[1:], " "), chatAgent, chatName)
		},
	}
	chatCmd.Flags().StringVarP(&chatAgent, "agent", "a", "", "Agent answering this message instead of the thread's default")
	chatCmd.Flags().StringVarP(&chatName, "name", "n", "", "Name to send the message as")
	threadCmd.AddCommand(chatCmd, &cobra.Command{
		Use:   "set-agent ID AGENT",
		Short: "Change the default agent of a thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ThreadSetAgentCmd(cmd.Context(), rt, args[0], args[1])
		},
	})

	knowledgeCmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage and search the documents of knowledge bases",
	}
	knowledgeCmd.AddCommand(&cobra.Command{
		Use:   "docs NAME",
		Short: "List the documents of a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.KnowledgeDocsCmd(cmd.Context(), rt, args[0])
		},
	})
	var docFile string
	addDocCmd := &cobra.Command{
		Use:   "add-doc NAME",
		Short: "Add the documents of a YAML or JSON file to a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.KnowledgeAddDocCmd(cmd.Context(), rt, args[0], docFile)
		},
	}
	addDocCmd.Flags().StringVarP(&docFile, "file", "f", "", "File holding one document or a list of documents")
	addDocCmd.MarkFlagRequired("file") //nolint:errcheck
	search := &api.SearchRequest{}
	searchCmd := &cobra.Command{
		Use:   "search NAME QUERY...",
		Short: "Search a knowledge base",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			search.Query = strings.Join(args[1:], " ")
			return cli.KnowledgeSearchCmd(cmd.Context(), rt, args[0], search)
		},
	}
	searchCmd.Flags().IntVarP(&search.K, "k", "k", 5, "Number of results")
	searchCmd.Flags().StringVar(&search.Model, "model", "", "Only search documents embedded with this model")
	knowledgeCmd.AddCommand(addDocCmd, searchCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the makima version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.VersionCmd(cmd.Context(), rt)
		},
	}

	rootCmd.AddCommand(getCmd, createCmd, deleteCmd, agentCmd, threadCmd, knowledgeCmd, versionCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runInteractive(rt *cli.Runtime) {
	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting config directory: %v\n", err)
		os.Exit(1)
	}

	// by default, new shell includes 'exit', 'help' and 'clear' commands.
	shell := ishell.New()
	config.SetHistoryPath(dir, shell)
	if err := shell.ClearScreen(); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing screen: %v\n", err)
	}

	if err := cli.CheckServerConnection(context.Background(), rt.Client); err != nil {
		shell.Println(err)
	}
	shell.Println("Welcome to makima CLI. Type 'help' to see available commands.")

	config.SetCfg(shell, rt.Config)
	config.SetClient(shell, rt.Client)
	shell.SetPrompt(config.BoldBlue("makima >> "))

	shell.AddCmd(&ishell.Cmd{
		Name:    "chat",
		Aliases: []string{"c"},
		Help:    "Start a chat with a makima agent.",
		LongHelp: `Start a chat with a makima agent.

If no agent name is provided, then a list of available agents will be provided to select from.
If no thread is provided, then one of the agent's threads or a new thread can be selected.

Examples:
- chat [agent_name] -t [thread_id] -n [your_name]
- chat [agent_name]
- chat
`,
		Func: func(c *ishell.Context) {
			if err := cli.CheckServerConnection(context.Background(), rt.Client); err != nil {
				c.Println(err)
				return
			}
			cli.ChatCmd(c)
			c.SetPrompt(config.BoldBlue("makima >> "))
		},
	})

	getCmd := &ishell.Cmd{
		Name:    "get",
		Aliases: []string{"g"},
		Help:    "get makima resources.",
		LongHelp: `get makima resources.

		get [resource_type] [resource_name]

Examples:
  get agents
  get thread support-1
  `,
	}
	shellGets := []struct {
		kind    cli.Kind
		aliases []string
		get     func(context.Context, *cli.Runtime, string) error
	}{
		{cli.KindAgent, []string{"a", "agents"}, cli.GetAgentCmd},
		{cli.KindTool, []string{"t", "tools"}, cli.GetToolCmd},
		{cli.KindThread, []string{"th", "threads"}, cli.GetThreadCmd},
		{cli.KindKnowledge, []string{"k", "kb"}, cli.GetKnowledgeCmd},
	}
	for _, g := range shellGets {
		getCmd.AddCmd(&ishell.Cmd{
			Name:    string(g.kind),
			Aliases: g.aliases,
			Help:    fmt.Sprintf("get a %s.", g.kind),
			LongHelp: fmt.Sprintf(`get a %[1]s.

If no resource name is provided, then a list of available resources will be returned.
Examples:
  get %[1]s [name]
  get %[1]s
  `, g.kind),
			Func: func(c *ishell.Context) {
				name := ""
				if len(c.Args) > 0 {
					name = c.Args[0]
				}
				if err := g.get(context.Background(), rt, name); err != nil {
					c.Println(err)
				}
			},
		})
	}
	shell.AddCmd(getCmd)

	shell.AddCmd(&ishell.Cmd{
		Name:    "messages",
		Aliases: []string{"m"},
		Help:    "Print the messages of a thread.",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: messages THREAD_ID")
				return
			}
			if err := cli.ThreadMessagesCmd(context.Background(), rt, c.Args[0]); err != nil {
				c.Println(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "version",
		Aliases: []string{"v"},
		Help:    "Print the makima version.",
		Func: func(c *ishell.Context) {
			if err := cli.VersionCmd(context.Background(), rt); err != nil {
				c.Println(err)
			}
		},
	})

	shell.Run()
}
