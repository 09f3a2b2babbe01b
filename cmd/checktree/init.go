package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/checktree/pkg/config"
	"github.com/Dicklesworthstone/checktree/pkg/model"
	"github.com/Dicklesworthstone/checktree/pkg/tree"
)

// initAnswers are the values asked for by the init form.
type initAnswers struct {
	Source     string
	CheckModel string
	UniqueKeys bool
	Expand     string
}

func (a initAnswers) apply(cfg *config.Config) error {
	cfg.Source = strings.TrimSpace(a.Source)
	if m := strings.TrimSpace(a.CheckModel); m != "" {
		cfg.CheckModel = model.ParseCheckModel(m)
	}
	cfg.UniqueKeys = a.UniqueKeys
	if a.Expand != "" {
		level, err := tree.ParseExpandLevel(a.Expand)
		if err != nil {
			return err
		}
		cfg.ForceExpand = &level
	}
	return nil
}

func newInitCmd(g *globalFlags) *cobra.Command {
	var yes, force, useTOML bool
	answers := initAnswers{CheckModel: model.LeafModel.String(), UniqueKeys: true}

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a .checktree config for a project",
		Long: `init writes .checktree/config.yaml (or config.toml) under dir, the current
directory by default. Without --yes it asks for the settings interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path := config.DefaultPath(dir)
			if useTOML {
				path = filepath.Join(dir, config.DirName, "config.toml")
			}
			if fileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if !yes {
				if !isTerminal(os.Stdin) {
					return errors.New("init needs a terminal; pass --yes to use flags only")
				}
				if err := runInitForm(&answers); err != nil {
					return err
				}
			}

			cfg := config.Default()
			if err := answers.apply(&cfg); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("config saved", "path", path, "model", cfg.CheckModel)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the form and use flag values")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	cmd.Flags().BoolVar(&useTOML, "toml", false, "write TOML instead of YAML")
	cmd.Flags().StringVar(&answers.Source, "source", "", "input file, relative to dir")
	cmd.Flags().StringVar(&answers.CheckModel, "check-model", answers.CheckModel, "check model: leaf, all or a custom type tag")
	cmd.Flags().BoolVar(&answers.UniqueKeys, "unique-keys", true, "combine ids with parent ids into keys")
	cmd.Flags().StringVar(&answers.Expand, "force-expand", "", "expand level applied on load: true, false or a depth")
	return cmd
}

func runInitForm(a *initAnswers) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Input file").
				Description("JSON, YAML or SQLite, relative to the project root").
				Value(&a.Source),
			huh.NewInput().
				Title("Check model").
				Description("leaf, all, or a type tag such as employee").
				Value(&a.CheckModel).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("check model is required")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Unique keys").
				Description("Combine each id with its parent id so ids may repeat").
				Value(&a.UniqueKeys),
			huh.NewInput().
				Title("Force expand").
				Description("true, false or a depth; leave empty to use initial_expanded").
				Value(&a.Expand).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					_, err := tree.ParseExpandLevel(s)
					return err
				}),
		),
	)
	return form.Run()
}

// fileExists reports whether path names an existing file or directory.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
