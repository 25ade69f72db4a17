// Package cli implements the commit-health command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

type rootOptions struct {
	configFile string
	output     string
}

// NewRootCmd builds the commit-health command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "commit-health",
		Short: "commit-health - repository health from commit history",
		Long: `commit-health ingests the commit history of GitHub repositories, ` +
			`classifies every commit by intent and scores the health of the project.`,
		Version:       Version + " (built at " + BuildTime + ")",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutput(opts.output)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Configuration file path (yaml, json, toml or env)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")

	cmd.AddCommand(
		newServeCmd(opts),
		newSyncCmd(opts),
		newScoreCmd(opts),
		newDiagnoseCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command tree with ctx
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) app(cmd *cobra.Command, jsonLogs bool) (*app, error) {
	return newApp(o.configFile, cmd.ErrOrStderr(), jsonLogs)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show commit-health version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "commit-health %s (built at %s)\n", Version, BuildTime)
		},
	}
}
