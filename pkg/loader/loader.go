// Package loader reads forests from JSON, YAML and SQLite sources.
//
// A source holds either a nested forest (a top-level list of nodes, or a
// document with a "nodes" field) or the flat parent/child record lists that
// model.BuildForest assembles into one.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// Format names an input encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("unsupported file type %q (want .json, .yaml, .yml, .db, .sqlite)", filepath.Ext(path))
}

// FormatError reports a source that could not be decoded into a forest.
type FormatError struct {
	Path   string
	Format Format
	Cause  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode %s: %v", e.Format, e.Cause)
	}
	return fmt.Sprintf("decode %s %s: %v", e.Format, e.Path, e.Cause)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}

// Document is the object form of a source.
type Document struct {
	Nodes           model.Forest   `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Parents         []model.Record `json:"parents,omitempty" yaml:"parents,omitempty"`
	Children        []model.Record `json:"children,omitempty" yaml:"children,omitempty"`
	PrintChildFirst bool           `json:"printChildFirst,omitempty" yaml:"print_child_first,omitempty"`
}

// Forest returns the nested forest of the document, building it from the
// record lists when no nodes are given. Empty children lists are dropped and
// every node is validated.
func (d *Document) Forest() (model.Forest, error) {
	forest := d.Nodes
	if len(forest) == 0 && (len(d.Parents) > 0 || len(d.Children) > 0) {
		built, err := model.BuildForest(d.Parents, d.Children, model.BuildOptions{
			PrintChildFirst: d.PrintChildFirst,
		})
		if err != nil {
			return nil, err
		}
		forest = built
	}

	var err error
	forest.Walk(func(n, _ *model.Node, _ int) bool {
		if err != nil {
			return false
		}
		if n.Children != nil && len(n.Children) == 0 {
			n.Children = nil
		}
		err = n.Validate()
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return forest, nil
}

// Load reads the forest stored at path, choosing the decoder by extension.
func Load(ctx context.Context, path string) (model.Forest, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	if format == FormatSQLite {
		return LoadSQLite(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	forest, err := Decode(f, format)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	return forest, nil
}

// Decode reads a JSON or YAML source from r.
func Decode(r io.Reader, format Format) (model.Forest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc Document
	switch format {
	case FormatJSON:
		err = decodeJSON(data, &doc)
	case FormatYAML:
		err = decodeYAML(data, &doc)
	default:
		return nil, fmt.Errorf("cannot decode %s from a stream", format)
	}
	if err != nil {
		return nil, &FormatError{Format: format, Cause: err}
	}

	forest, err := doc.Forest()
	if err != nil {
		return nil, &FormatError{Format: format, Cause: err}
	}
	return forest, nil
}

func decodeJSON(data []byte, doc *Document) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &doc.Nodes)
	}
	return json.Unmarshal(trimmed, doc)
}

func decodeYAML(data []byte, doc *Document) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if len(root.Content) == 0 {
		return nil
	}
	if root.Content[0].Kind == yaml.SequenceNode {
		return root.Content[0].Decode(&doc.Nodes)
	}
	return root.Content[0].Decode(doc)
}

// Encode writes forest to w as a JSON or YAML node list.
func Encode(w io.Writer, forest model.Forest, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(forest)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(forest); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("cannot encode %s to a stream", format)
}
