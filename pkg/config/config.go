// Package config loads checktree settings from YAML or TOML files.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/checktree/pkg/model"
	"github.com/Dicklesworthstone/checktree/pkg/tree"
)

// Display holds the presentation policy. None of it affects check state.
type Display struct {
	NoCheckboxes              bool `yaml:"no_checkboxes" toml:"no_checkboxes" json:"noCheckboxes"`
	OnlyLeafCheckboxes        bool `yaml:"only_leaf_checkboxes" toml:"only_leaf_checkboxes" json:"onlyLeafCheckboxes"`
	HideEmptyRoot             bool `yaml:"hide_empty_root" toml:"hide_empty_root" json:"hideEmptyRoot"`
	HideCheckboxEmptyNode     bool `yaml:"hide_checkbox_empty_node" toml:"hide_checkbox_empty_node" json:"hideCheckboxEmptyNode"`
	ShowChildrenCount         bool `yaml:"show_children_count" toml:"show_children_count" json:"showChildrenCount"`
	BoldLabelDepth            int  `yaml:"bold_label_depth" toml:"bold_label_depth" json:"boldLabelDepth"` // Labels at or above this depth are bold; 0 disables
	ExpandOnClick             bool `yaml:"expand_on_click" toml:"expand_on_click" json:"expandOnClick"`
	CheckOnClick              bool `yaml:"check_on_click" toml:"check_on_click" json:"checkOnClick"`
	DisableCheckboxesOfNoLeaf bool `yaml:"disable_checkboxes_of_no_leaf" toml:"disable_checkboxes_of_no_leaf" json:"disableCheckboxesOfNoLeaf"`
}

// Config is the contents of a checktree config file.
type Config struct {
	// Source is the default input file, relative to the config file.
	Source string `yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`

	CheckModel      model.CheckModel  `yaml:"check_model" toml:"check_model" json:"checkModel"`
	UniqueKeys      bool              `yaml:"unique_keys" toml:"unique_keys" json:"uniqueKeys"`
	ForceExpand     *tree.ExpandLevel `yaml:"force_expand,omitempty" toml:"force_expand,omitempty" json:"forceExpand,omitempty"`
	InitialExpanded []model.NodeID    `yaml:"initial_expanded,omitempty" toml:"initial_expanded,omitempty" json:"initialExpanded,omitempty"`
	InitialChecked  []model.NodeID    `yaml:"initial_checked,omitempty" toml:"initial_checked,omitempty" json:"initialChecked,omitempty"`
	InitialSelected model.NodeID      `yaml:"initial_selected,omitempty" toml:"initial_selected,omitempty" json:"initialSelected,omitempty"`
	CacheSize       int               `yaml:"cache_size" toml:"cache_size" json:"cacheSize"`
	MaxDepth        int               `yaml:"max_depth" toml:"max_depth" json:"maxDepth"`

	Display Display `yaml:"display" toml:"display" json:"display"`

	// path is where the config was loaded from, if anywhere.
	path string
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		CheckModel: model.LeafModel,
		UniqueKeys: true,
		CacheSize:  64,
		MaxDepth:   tree.DefaultMaxDepth,
	}
}

// Path returns the file the config was loaded from, or "".
func (c Config) Path() string {
	return c.path
}

// SourcePath resolves Source against the config file's directory.
func (c Config) SourcePath() string {
	if c.Source == "" || filepath.IsAbs(c.Source) || c.path == "" {
		return c.Source
	}
	// Config lives in <root>/.checktree/, Source is relative to <root>.
	return filepath.Join(filepath.Dir(filepath.Dir(c.path)), c.Source)
}

// Validate checks numeric bounds.
func (c Config) Validate() error {
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be >= 0, got %d", c.CacheSize)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.Display.BoldLabelDepth < 0 {
		return fmt.Errorf("display.bold_label_depth must be >= 0, got %d", c.Display.BoldLabelDepth)
	}
	return nil
}

// Load reads the config at path. Fields missing from the file keep their
// defaults. The decoder is chosen by extension: .toml for TOML, anything
// else is YAML.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// LoadOrDefault loads the config at path, or the one found by Discover from
// the working directory when path is empty. With nothing found it returns
// Default.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		found, ok := DiscoverFromCwd()
		if !ok {
			return Default(), nil
		}
		path = found
	}
	return Load(path)
}

// Save writes cfg to path as YAML or TOML, by extension, creating parent
// directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Flattener returns a memoizing flattener sized by CacheSize.
func (c Config) Flattener() *tree.Flattener {
	return tree.NewFlattener(c.CacheSize)
}

// TreeOptions converts the engine settings into tree options.
func (c Config) TreeOptions() []tree.Option {
	opts := []tree.Option{
		tree.WithCheckModel(c.CheckModel),
		tree.WithRawKeys(!c.UniqueKeys),
		tree.WithMaxDepth(c.MaxDepth),
		tree.WithFlattener(c.Flattener()),
	}
	if len(c.InitialExpanded) > 0 {
		opts = append(opts, tree.WithInitialExpanded(c.InitialExpanded...))
	}
	if len(c.InitialChecked) > 0 {
		opts = append(opts, tree.WithInitialChecked(c.InitialChecked...))
	}
	if c.InitialSelected != "" {
		opts = append(opts, tree.WithInitialSelected(c.InitialSelected))
	}
	if c.ForceExpand != nil {
		opts = append(opts, tree.WithForceExpand(*c.ForceExpand))
	}
	return opts
}
