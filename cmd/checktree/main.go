// Command checktree browses and queries checkbox trees from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	verbose    bool
	configPath string
	checkModel string
	rawKeys    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "checktree",
		Short: "Browse and query checkbox trees",
		Long: `checktree loads a tree from JSON, YAML or SQLite and tracks which nodes are
checked, expanded and selected. Parents show a tri-state box derived from
their descendants.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if g.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(stderr, level)))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&g.configPath, "config", "c", "", "config file (default: .checktree/config.yaml found upward from cwd)")
	pf.StringVarP(&g.checkModel, "model", "m", "", "check model: leaf, all or a custom type tag (overrides config)")
	pf.BoolVar(&g.rawKeys, "raw-keys", false, "use raw node ids as keys (ids must be unique)")

	root.AddCommand(newViewCmd(&g))
	root.AddCommand(newFlattenCmd(&g))
	root.AddCommand(newCheckCmd(&g))
	root.AddCommand(newSearchCmd(&g))
	root.AddCommand(newReportCmd(&g))
	root.AddCommand(newInitCmd(&g))
	return root
}
