package cli

import (
	"github.com/spf13/cobra"

	"inspectd/internal/config"
)

// CommandType represents the type of CLI command
type CommandType int

// Command type values
const (
	CommandListen CommandType = iota
	CommandReplay
	CommandTail
	CommandRelay
	CommandInit
	CommandVersion
	CommandHelp
)

// Options contains the parsed command-line arguments
type Options struct {
	Type     CommandType
	Apps     []string
	Sessions []string
	Format   string

	// listen
	Record string

	// replay
	File   string
	Strict bool
	Follow bool

	// tail
	Name string

	// init
	Output string
	Force  bool
	DryRun bool
}

// rootFlags holds flag values for the root command
type rootFlags struct {
	version bool
}

// Parse parses command-line args and returns a Options struct
func Parse(args []string) (*Options, error) {
	result := &Options{
		Type:   CommandListen,
		Output: config.ConfigFile,
	}

	var flags rootFlags

	root := buildRootCommand(result, &flags)
	root.AddCommand(
		buildListenCommand(result),
		buildReplayCommand(result),
		buildTailCommand(result),
		buildRelayCommand(result),
		buildInitCommand(result),
		buildVersionCommand(result),
	)

	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return nil, err
	}

	if flags.version {
		result.Type = CommandVersion
	}

	return result, nil
}

// buildRootCommand creates the root cobra command
func buildRootCommand(result *Options, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: config.AppDescription,
		Long: `inspectd receives SmartInspect log packets over TCP, local pipes and
WebSocket, prints or records them, and relays JSON logs to a remote listener.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandListen
		},
	}

	cmd.PersistentFlags().StringVar(&result.Format, "format", "", "Output format (console or json)")
	cmd.Flags().BoolVarP(&flags.version, "version", "v", false, "Show version information")
	addFilterFlags(cmd, result)

	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		result.Type = CommandHelp
	})

	return cmd
}

// addFilterFlags registers the --app and --session glob filters
func addFilterFlags(cmd *cobra.Command, result *Options) {
	cmd.Flags().StringSliceVarP(&result.Apps, "app", "a", nil, "Only show packets from apps matching these globs")
	cmd.Flags().StringSliceVarP(&result.Sessions, "session", "s", nil, "Only show packets from sessions matching these globs")
}

// buildListenCommand creates the listen subcommand
func buildListenCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "listen",
		Aliases: []string{"l"},
		Short:   "Receive packets on every enabled listener",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandListen
		},
	}

	addFilterFlags(cmd, result)
	cmd.Flags().StringVarP(&result.Record, "record", "r", "", "Record received packets to a .sil or .sil.zst file")

	return cmd
}

// buildReplayCommand creates the replay subcommand
func buildReplayCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "replay <file>",
		Aliases: []string{"p"},
		Short:   "Print the packets stored in a .sil file",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandReplay
			result.File = args[0]
		},
	}

	addFilterFlags(cmd, result)
	cmd.Flags().BoolVar(&result.Strict, "strict", false, "Fail on truncated or undecodable frames")
	cmd.Flags().BoolVarP(&result.Follow, "follow", "f", false, "Keep printing packets as the file grows")

	return cmd
}

// buildTailCommand creates the tail subcommand
func buildTailCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tail",
		Aliases: []string{"t"},
		Short:   "Stream packets from a running listen command",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandTail
		},
	}

	cmd.Flags().StringSliceVarP(&result.Apps, "app", "a", nil, "Only stream packets from apps matching these globs")
	cmd.Flags().StringVarP(&result.Name, "name", "n", "", "Tap name when more than one listen command runs")

	return cmd
}

// buildRelayCommand creates the relay subcommand
func buildRelayCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Accept JSON logs over HTTP and forward them to a WebSocket listener",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandRelay
		},
	}

	return cmd
}

// buildInitCommand creates the init subcommand
func buildInitCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Generate " + config.ConfigFile + " with the default settings",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandInit
		},
	}

	cmd.Flags().StringVarP(&result.Output, "output", "o", config.ConfigFile, "File to write")
	cmd.Flags().BoolVar(&result.Force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&result.DryRun, "dry-run", false, "Print the configuration instead of writing it")

	return cmd
}

// buildVersionCommand creates the version subcommand
func buildVersionCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandVersion
		},
	}

	return cmd
}
