package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/Dicklesworthstone/checktree/pkg/config"
	"github.com/Dicklesworthstone/checktree/pkg/loader"
	"github.com/Dicklesworthstone/checktree/pkg/model"
)

const orgJSON = `[
	{"id": 1, "label": "Engineering", "children": [
		{"id": 2, "label": "Platform", "children": [
			{"id": 3, "label": "Alice"},
			{"id": 4, "label": "Bob"}
		]},
		{"id": 5, "label": "Carol"}
	]},
	{"id": 6, "label": "Sales"}
]`

// project writes tree.json and a config next to it and returns the config
// path.
func project(t *testing.T, cfg string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "tree.json"), []byte(orgJSON), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, config.DirName, "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestFlatten(t *testing.T) {
	cfg := project(t, "source: tree.json\n")
	out, _, err := execute(t, "flatten", "--config", cfg)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	var got FlattenOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.Count != 6 || len(got.Nodes) != 6 {
		t.Fatalf("expected 6 nodes, got %d", got.Count)
	}
	if got.Model != "leaf" {
		t.Errorf("expected leaf model, got %q", got.Model)
	}
	if got.Nodes[2].Key != "3_2" || got.Nodes[2].TreeDepth != 3 {
		t.Errorf("unexpected third node: %+v", got.Nodes[2])
	}
	if got.Nodes[0].ChildrenCount != 3 {
		t.Errorf("expected Engineering to count 3 leaves, got %d", got.Nodes[0].ChildrenCount)
	}
}

func TestFlatten_ModelAndRawKeyFlags(t *testing.T) {
	cfg := project(t, "source: tree.json\n")
	out, _, err := execute(t, "flatten", "--config", cfg, "--model", "all", "--raw-keys")
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	var got FlattenOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Model != "all" || got.Nodes[0].Key != "1" || got.Nodes[0].ChildrenCount != 4 {
		t.Errorf("expected all model with raw keys, got model=%s key=%s count=%d",
			got.Model, got.Nodes[0].Key, got.Nodes[0].ChildrenCount)
	}
}

type checkResult struct {
	Checked  []model.NodeID    `json:"checked"`
	Keys     []string          `json:"keys"`
	Statuses map[string]string `json:"statuses"`
}

func TestCheck(t *testing.T) {
	cfg := project(t, "source: tree.json\n")
	out, _, err := execute(t, "check", "--config", cfg, "--check", "2", "--check", "5", "--uncheck", "4")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var got checkResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(got.Checked) != 2 || got.Checked[0] != "3" || got.Checked[1] != "5" {
		t.Errorf("expected ids 3 and 5 checked, got %v", got.Checked)
	}
	want := map[string]string{"1_": "indeterminate", "2_1": "indeterminate", "3_2": "checked", "5_1": "checked"}
	for k, v := range want {
		if got.Statuses[k] != v {
			t.Errorf("expected %s %s, got %q", k, v, got.Statuses[k])
		}
	}
	if _, ok := got.Statuses["6_"]; ok {
		t.Error("expected unchecked nodes omitted")
	}
}

func TestCheck_InitialFromConfig(t *testing.T) {
	cfg := project(t, "source: tree.json\ninitial_checked: [1]\n")
	out, _, err := execute(t, "check", "--config", cfg)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var got checkResult
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Statuses["1_"] != "checked" || len(got.Checked) != 3 {
		t.Errorf("expected Engineering fully checked, got %+v", got)
	}
}

func TestCheck_UnknownNode(t *testing.T) {
	cfg := project(t, "source: tree.json\n")
	_, _, err := execute(t, "check", "--config", cfg, "--check", "zz")
	if err == nil || !strings.Contains(err.Error(), `unknown node "zz"`) {
		t.Errorf("expected unknown node error, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	cfg := project(t, "source: tree.json\n")
	out, _, err := execute(t, "search", "ALI", "--config", cfg)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	forest, err := loader.Decode(strings.NewReader(out), loader.FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if forest.Len() != 3 || forest[0].Children[0].Children[0].Label != "Alice" {
		t.Errorf("expected Engineering > Platform > Alice, got %d nodes", forest.Len())
	}

	out, _, err = execute(t, "search", "zzz", "--config", cfg, "--format", "yaml")
	if err != nil {
		t.Fatalf("search yaml: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("expected empty list, got %q", out)
	}

	if _, _, err := execute(t, "search", "a", "--config", cfg, "--format", "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestReport(t *testing.T) {
	cfg := project(t, "source: tree.json\n")

	out, _, err := execute(t, "report", "--config", cfg, "--check", "2", "--raw", "--title", "Team")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.HasPrefix(out, "# Team\n") || !strings.Contains(out, "| 3 | Alice | Engineering › Platform |") {
		t.Errorf("unexpected raw report:\n%s", out)
	}

	out, _, err = execute(t, "report", "--config", cfg, "--check", "2")
	if err != nil {
		t.Fatalf("rendered report: %v", err)
	}
	if !strings.Contains(out, "Alice") || !strings.Contains(out, "Platform") {
		t.Errorf("expected rendered table, got:\n%s", out)
	}

	file := filepath.Join(t.TempDir(), "report.md")
	if _, _, err := execute(t, "report", "--config", cfg, "--check", "5", "-o", file); err != nil {
		t.Fatalf("report to file: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil || !strings.Contains(string(data), "Carol") {
		t.Errorf("expected report file with Carol, err=%v", err)
	}
}

func TestView_Plain(t *testing.T) {
	cfg := project(t, "source: tree.json\ninitial_checked: [2]\ninitial_selected: 5\n")
	out, _, err := execute(t, "view", "--config", cfg)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	want := strings.Join([]string{
		"[-] Engineering",
		"  [x] Platform",
		"    [x] Alice",
		"    [x] Bob",
		"  [ ] Carol *",
		"[ ] Sales",
	}, "\n") + "\n"
	if out != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, out)
	}
}

func TestView_PlainExpandLevel(t *testing.T) {
	cfg := project(t, "source: tree.json\ndisplay:\n  show_children_count: true\n  no_checkboxes: true\n")
	out, _, err := execute(t, "view", "--config", cfg, "--expand", "1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	want := "Engineering (3)\n  Platform (2)\n  Carol\nSales\n"
	if out != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, out)
	}

	if _, _, err := execute(t, "view", "--config", cfg, "--expand", "maybe"); err == nil {
		t.Error("expected error for bad expand level")
	}
}

func TestView_PlainSharesBrowserPolicy(t *testing.T) {
	cfg := project(t, "source: tree.json\ndisplay:\n  hide_checkbox_empty_node: true\n  disable_checkboxes_of_no_leaf: true\n")
	out, _, err := execute(t, "view", "--config", cfg, "--expand", "1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	// No node is tagged as a member, so every box is disabled; Sales is an
	// empty root and loses its box.
	want := "[ ] Engineering (disabled)\n  [ ] Platform (disabled)\n  [ ] Carol (disabled)\nSales\n"
	if out != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, out)
	}
}

func TestNoInput(t *testing.T) {
	cfg := project(t, "check_model: leaf\n")
	_, _, err := execute(t, "flatten", "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "no input file") {
		t.Errorf("expected no input error, got %v", err)
	}
}

func TestVerboseLogsToStderr(t *testing.T) {
	cfg := project(t, "source: tree.json\n")
	_, stderr, err := execute(t, "flatten", "--config", cfg, "-v")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "loading tree") {
		t.Errorf("expected debug log on stderr, got %q", stderr)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	out, _, err := execute(t, "init", dir, "--yes", "--source", "org.json", "--check-model", "employee", "--force-expand", "2")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	path := config.DefaultPath(dir)
	if !strings.Contains(out, path) {
		t.Errorf("expected path in output, got %q", out)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Source != "org.json" || cfg.CheckModel != model.CustomModel("employee") {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.ForceExpand == nil || *cfg.ForceExpand != 2 {
		t.Errorf("expected force_expand 2, got %v", cfg.ForceExpand)
	}

	if _, _, err := execute(t, "init", dir, "--yes"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already exists error, got %v", err)
	}
	if _, _, err := execute(t, "init", dir, "--yes", "--force", "--toml"); err != nil {
		t.Fatalf("init --toml: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, config.DirName, "config.toml")); err != nil {
		t.Errorf("expected toml config: %v", err)
	}
}

func TestInit_BadExpand(t *testing.T) {
	if _, _, err := execute(t, "init", t.TempDir(), "--yes", "--force-expand", "sometimes"); err == nil {
		t.Error("expected error for bad force expand")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug suppressed at info level, got %q", buf.String())
	}
	logger.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected info logged, got %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("expected default logger without one attached")
	}
	l := newLogger(&bytes.Buffer{}, log.DebugLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("expected attached logger")
	}
}
