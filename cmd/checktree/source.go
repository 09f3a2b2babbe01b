package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/Dicklesworthstone/checktree/pkg/config"
	"github.com/Dicklesworthstone/checktree/pkg/loader"
	"github.com/Dicklesworthstone/checktree/pkg/model"
	"github.com/Dicklesworthstone/checktree/pkg/tree"
)

// session is a loaded input file with its tree.
type session struct {
	cfg    config.Config
	source string
	tree   *tree.Tree
}

// loadConfig reads the config and applies flag overrides.
func (g *globalFlags) loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(g.configPath)
	if err != nil {
		return cfg, err
	}
	if g.checkModel != "" {
		cfg.CheckModel = model.ParseCheckModel(g.checkModel)
	}
	if g.rawKeys {
		cfg.UniqueKeys = false
	}
	return cfg, nil
}

// open loads the input named by args[0], or the config's source, and builds
// the tree with the config's options followed by extra.
func (g *globalFlags) open(ctx context.Context, args []string, extra ...tree.Option) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	source := cfg.SourcePath()
	if len(args) > 0 {
		source = args[0]
	}
	if source == "" {
		return nil, errors.New("no input file: pass one or set source in the config")
	}

	logger := loggerFromContext(ctx)
	logger.Debug("loading tree", "source", source, "model", cfg.CheckModel)

	forest, err := loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	t, err := tree.New(forest, append(cfg.TreeOptions(), extra...)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	logger.Debug("tree ready", "nodes", t.Index().Len(), "checked", len(t.CheckedKeys()))
	return &session{cfg: cfg, source: source, tree: t}, nil
}

// applyChecks checks and then unchecks the nodes named by raw id or key.
func applyChecks(t *tree.Tree, check, uncheck []string) error {
	resolve := func(ref string) ([]tree.Key, error) {
		keys := t.Index().Lookup(ref)
		if len(keys) == 0 {
			return nil, fmt.Errorf("unknown node %q", ref)
		}
		return keys, nil
	}
	for _, ref := range check {
		keys, err := resolve(ref)
		if err != nil {
			return err
		}
		for _, k := range keys {
			t.Check(k)
		}
	}
	for _, ref := range uncheck {
		keys, err := resolve(ref)
		if err != nil {
			return err
		}
		for _, k := range keys {
			t.Uncheck(k)
		}
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
