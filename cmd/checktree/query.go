package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/checktree/pkg/loader"
	"github.com/Dicklesworthstone/checktree/pkg/model"
	"github.com/Dicklesworthstone/checktree/pkg/tree"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FlattenOutput is the JSON printed by the flatten command.
type FlattenOutput struct {
	Source string           `json:"source"`
	Model  string           `json:"model"`
	Count  int              `json:"count"`
	Nodes  []*tree.FlatNode `json:"nodes"`
}

func newFlattenCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "flatten [file]",
		Short: "Print the flattened index as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd.Context(), args)
			if err != nil {
				return err
			}
			idx := s.tree.Index()
			return writeJSON(cmd.OutOrStdout(), FlattenOutput{
				Source: s.source,
				Model:  idx.Model().String(),
				Count:  idx.Len(),
				Nodes:  idx.Nodes(),
			})
		},
	}
}

// CheckOutput is the JSON printed by the check command.
type CheckOutput struct {
	Model    string                   `json:"model"`
	Checked  []model.NodeID           `json:"checked"`
	Keys     []tree.Key               `json:"keys"`
	Statuses map[tree.Key]tree.Status `json:"statuses"` // Checked and indeterminate nodes only
}

func newCheckCmd(g *globalFlags) *cobra.Command {
	var check, uncheck []string
	var all bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Apply check operations and print the resulting state",
		Long: `check starts from the configured initial state, checks every --check node,
unchecks every --uncheck node and prints the checked ids and the tri-state
status of every node that is not plain unchecked. Nodes are named by raw id
or key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd.Context(), args)
			if err != nil {
				return err
			}
			t := s.tree
			if all {
				t.CheckAll()
			}
			if err := applyChecks(t, check, uncheck); err != nil {
				return err
			}

			info := t.CheckedInfo()
			out := CheckOutput{
				Model:    t.Model().String(),
				Checked:  info.IDs,
				Keys:     t.CheckedKeys(),
				Statuses: map[tree.Key]tree.Status{},
			}
			if out.Checked == nil {
				out.Checked = []model.NodeID{}
			}
			if out.Keys == nil {
				out.Keys = []tree.Key{}
			}
			for _, k := range t.Index().Keys() {
				if st := t.Status(k); st != tree.Unchecked {
					out.Statuses[k] = st
				}
			}
			loggerFromContext(cmd.Context()).Debug("check state", "checked", len(info.IDs))
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringSliceVar(&check, "check", nil, "node ids or keys to check")
	cmd.Flags().StringSliceVar(&uncheck, "uncheck", nil, "node ids or keys to uncheck")
	cmd.Flags().BoolVar(&all, "all", false, "check every node first")
	return cmd
}

func newSearchCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search <text> [file]",
		Short: "Print the tree pruned to nodes whose label contains text",
		Long: `search keeps every node whose label contains text (case-insensitive) with
all of its children, plus the ancestors leading to it. The result is printed
in the input tree format.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd.Context(), args[1:])
			if err != nil {
				return err
			}
			f := loader.Format(format)
			if f != loader.FormatJSON && f != loader.FormatYAML {
				return fmt.Errorf("unsupported output format %q: want json or yaml", format)
			}
			result := s.tree.Search(args[0])
			loggerFromContext(cmd.Context()).Debug("search", "text", args[0], "matches", result.Len())
			if result == nil {
				result = model.Forest{}
			}
			return loader.Encode(cmd.OutOrStdout(), result, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(loader.FormatJSON), "output format: json or yaml")
	return cmd
}
