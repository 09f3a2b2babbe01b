package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/checktree/pkg/export"
)

func newReportCmd(g *globalFlags) *cobra.Command {
	var check, uncheck []string
	var title, outFile string
	var raw bool
	var width int

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Render a markdown report of the checked nodes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := applyChecks(s.tree, check, uncheck); err != nil {
				return err
			}

			r := export.Report{Title: title, Generated: time.Now(), Tree: s.tree}
			if outFile != "" {
				if err := export.SaveMarkdownToFile(r, outFile); err != nil {
					return err
				}
				loggerFromContext(cmd.Context()).Info("report written", "path", outFile)
				return nil
			}

			md, err := export.GenerateMarkdown(r)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if raw {
				_, err := fmt.Fprint(out, md)
				return err
			}

			style := glamour.WithStandardStyle("notty")
			if isTerminal(out) {
				style = glamour.WithAutoStyle()
			}
			renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
			if err != nil {
				return fmt.Errorf("create markdown renderer: %w", err)
			}
			rendered, err := renderer.Render(md)
			if err != nil {
				return fmt.Errorf("render markdown: %w", err)
			}
			_, err = fmt.Fprint(out, rendered)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&check, "check", nil, "node ids or keys to check first")
	cmd.Flags().StringSliceVar(&uncheck, "uncheck", nil, "node ids or keys to uncheck first")
	cmd.Flags().StringVarP(&title, "title", "t", "", "report title")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write markdown to this file instead of stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width for rendered output")
	return cmd
}
