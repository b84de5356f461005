package cli

import (
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/di/internal/integration"
	"github.com/idelchi/di/internal/scan"
)

// EnvPrefix is the prefix of environment variables that provide flag defaults.
const EnvPrefix = "DI"

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Settings holds the resolved configuration of one invocation.
type Settings struct {
	// Scan configures the scan itself.
	Scan scan.Options
	// Output is the report format (table, json or plain).
	Output string
	// Verbosity is the number of -v flags given.
	Verbosity int
}

//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"table", "json", "plain"}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	cfg := viper.New()

	cmd := &cobra.Command{
		Use:   "di [flags] [DIR]",
		Short: "See where disk space is used",
		Long: heredoc.Doc(`
			di scans a directory tree in parallel and reports how many files,
			directories and symlinks it holds, their total size, and the largest
			files and directories found.

			A directory's size is the sum of the files directly inside it;
			subdirectories are listed on their own. Hidden entries are included
			and ignore files are not honored.

			Every flag can also be set through the environment, e.g. DI_THREADS=4.
		`),
		Args:          cobra.MaximumNArgs(1),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.GetBool("init") {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return err
			}

			settings, err := resolve(cfg, args)
			if err != nil {
				return err
			}

			return logic(cmd.Context(), settings, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.IntP("threads", "t", 0, "Number of worker threads (0 = number of CPUs)")
	flags.IntP("top", "n", scan.DefaultTopN, "Number of largest files and directories to show")
	flags.StringP("output", "o", "table", "Output format: table, json or plain")
	flags.CountP("verbose", "v", "Verbose mode (-v, -vv, -vvv)")
	flags.BoolP("init", "i", false, "Output init script for shell usage")

	cfg.SetEnvPrefix(EnvPrefix)
	cfg.AutomaticEnv()
	cobra.CheckErr(cfg.BindPFlags(flags))

	return cmd
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// resolve validates the configuration and turns it into Settings.
func resolve(cfg *viper.Viper, args []string) (Settings, error) {
	settings := Settings{
		Scan: scan.Options{
			Path:    ".",
			Workers: cfg.GetInt("threads"),
			TopN:    cfg.GetInt("top"),
		},
		Output:    cfg.GetString("output"),
		Verbosity: cfg.GetInt("verbose"),
	}

	if len(args) > 0 {
		settings.Scan.Path = args[0]
	}

	if !slices.Contains(allowedOutputs, settings.Output) {
		return settings, fmt.Errorf("invalid output format %q: must be one of %v", settings.Output, allowedOutputs)
	}

	if settings.Scan.Workers < 0 {
		return settings, fmt.Errorf("threads cannot be negative: %d", settings.Scan.Workers)
	}

	if settings.Scan.TopN < 0 {
		return settings, fmt.Errorf("top cannot be negative: %d", settings.Scan.TopN)
	}

	return settings, nil
}
