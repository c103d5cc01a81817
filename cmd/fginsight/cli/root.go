package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fginsight",
		Short: "Analyze low-code project archives",
		Long: `FGinsight: see inside low-code project archives. One binary, no project runtime required.

FGinsight opens .fgcp project archives, recovers the JSON definitions inside,
and builds a typed model of the application: tables, pages, workflows, and
server commands with their logic flattened to readable pseudocode. On top of
the model it diffs project versions, reviews definitions for defects,
generates Markdown docs with Mermaid diagrams, emits OpenAPI specs, and
serves the whole thing to AI agents over MCP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// NO_COLOR and non-terminal output are handled by the color
			// package itself; the flag only forces it off.
			if noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./fginsight.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the snapshot store (default: ~/.fginsight)")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	cobra.OnInitialize(initConfig)

	// Add subcommands
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newDiffCmd())
	cmd.AddCommand(newReviewCmd())
	cmd.AddCommand(newDocsCmd())
	cmd.AddCommand(newOpenAPICmd())
	cmd.AddCommand(newSnapshotCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fginsight")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.fginsight")
	}

	viper.SetEnvPrefix("FGINSIGHT")
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional
}
