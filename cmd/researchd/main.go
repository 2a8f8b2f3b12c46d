// Researchd turns a free-text research query into a validated Markdown
// report by orchestrating LLM-backed agents: query planning, simulated web
// search, synthesis, and content validation.
//
// Usage:
//
//	# Run a research query
//	OPENAI_API_KEY=sk-... researchd "impact of rust adoption on systems programming"
//
//	# Configure via file and environment
//	researchd --config ~/.config/researchd/config.yaml "quantum error correction"
//
// Configuration is loaded from an optional YAML file overridden by
// environment variables. See internal/config for details.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "researchd \"query\"",
		Short:         "Intelligent research synthesizer",
		Long:          "Researchd runs a pipeline of LLM-backed agents that plan searches, gather results, synthesize a report, and validate its content.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResearch(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to YAML config file")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "overall run timeout (0 disables)")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (empty disables)")
	cmd.Flags().BoolVar(&flags.parallelSearch, "parallel-search", false, "run planned searches concurrently")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("researchd %s\n", version)
			fmt.Printf("  commit: %s\n", gitCommit)
			fmt.Printf("  built:  %s\n", buildDate)
		},
	}
}
