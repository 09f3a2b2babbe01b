package main

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/checktree/pkg/loader"
	"github.com/Dicklesworthstone/checktree/pkg/tree"
	"github.com/Dicklesworthstone/checktree/pkg/ui"
)

func newViewCmd(g *globalFlags) *cobra.Command {
	var plain, noWatch bool
	var expand string

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Browse the tree interactively",
		Long: `view opens the checkbox-tree browser. When stdout is not a terminal, or with
--plain, it prints the visible rows instead. On exit the browser prints the
raw ids of the checked nodes, one per line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []tree.Option
			if expand != "" {
				level, err := tree.ParseExpandLevel(expand)
				if err != nil {
					return err
				}
				extra = append(extra, tree.WithForceExpand(level))
			}
			s, err := g.open(cmd.Context(), args, extra...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plain || !isTerminal(out) {
				if expand == "" {
					s.tree.ExpandAll()
				}
				return writePlain(out, s)
			}
			return runBrowser(cmd, s, !noWatch)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print rows instead of starting the browser")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the input file changes")
	cmd.Flags().StringVarP(&expand, "expand", "e", "", "expand level: true, false or a depth")
	return cmd
}

func runBrowser(cmd *cobra.Command, s *session, watch bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	opts := []ui.Option{ui.WithDisplay(s.cfg.Display), ui.WithLogger(logger)}
	if watch {
		w, err := loader.NewWatcher(s.source, loader.WithLogger(logger))
		if err != nil {
			return err
		}
		w.Prime(s.tree.Nodes())
		if err := w.Start(ctx); err != nil {
			logger.Warn("live reload disabled", "err", err)
		} else {
			defer w.Stop()
			opts = append(opts, ui.WithWatcher(w))
		}
	}

	m := ui.New(s.tree, ui.DefaultTheme(lipgloss.DefaultRenderer()), opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	if fm, ok := final.(ui.Model); ok {
		for _, id := range fm.Tree().CheckedInfo().IDs {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
	}
	return nil
}

// writePlain prints the visible rows with indentation and tri-state boxes,
// applying the same display policy as the browser.
func writePlain(w io.Writer, s *session) error {
	t := s.tree
	p := ui.NewDisplayPolicy(s.cfg.Display, t.Index())
	for _, n := range t.Visible() {
		if p.Hidden(n) {
			continue
		}
		var sb strings.Builder
		sb.WriteString(strings.Repeat("  ", n.TreeDepth-1))
		box := p.ShowCheckbox(n)
		if box {
			switch t.Status(n.Key) {
			case tree.Checked:
				sb.WriteString("[x] ")
			case tree.Indeterminate:
				sb.WriteString("[-] ")
			default:
				sb.WriteString("[ ] ")
			}
		}
		sb.WriteString(n.Label)
		if p.ShowChildrenCount && n.IsParent {
			fmt.Fprintf(&sb, " (%d)", n.ChildrenCount)
		}
		if box && p.Disabled(n) {
			sb.WriteString(" (disabled)")
		}
		if t.IsSelected(n.Key) {
			sb.WriteString(" *")
		}
		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
