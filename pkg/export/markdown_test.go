package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dicklesworthstone/checktree/pkg/model"
	"github.com/Dicklesworthstone/checktree/pkg/tree"
)

func newReportTree(t *testing.T, checked ...model.NodeID) *tree.Tree {
	t.Helper()
	forest := model.Forest{
		{ID: "1", Label: "Engineering", Children: []*model.Node{
			{ID: "2", Label: "Platform", Children: []*model.Node{
				{ID: "3", Label: "Alice"},
				{ID: "4", Label: "Bob | Ops"},
			}},
			{ID: "5", Label: "Carol"},
		}},
		{ID: "6", Label: "Sales"},
	}
	tr, err := tree.New(forest, tree.WithInitialChecked(checked...))
	if err != nil {
		t.Fatalf("tree.New: %v", err)
	}
	return tr
}

func TestGenerateMarkdown(t *testing.T) {
	tr := newReportTree(t, "2")
	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	md, err := GenerateMarkdown(Report{Title: "Team", Generated: when, Tree: tr})
	if err != nil {
		t.Fatalf("GenerateMarkdown: %v", err)
	}

	for _, want := range []string{
		"# Team\n",
		"Generated: " + when.Format(time.RFC1123),
		"- **Check model**: leaf",
		"- **Nodes**: 6",
		"- **Checked**: 3",       // Platform, Alice, Bob
		"- **Indeterminate**: 1", // Engineering
		"- [-] Engineering\n  - [x] Platform\n    - [x] Alice\n    - [x] Bob \\| Ops\n",
		"| 3 | Alice | Engineering › Platform |",
		"| 4 | Bob \\| Ops | Engineering › Platform |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in report:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Carol") || strings.Contains(md, "Sales") {
		t.Errorf("expected unchecked branches left out:\n%s", md)
	}
}

func TestGenerateMarkdown_NothingChecked(t *testing.T) {
	md, err := GenerateMarkdown(Report{Tree: newReportTree(t)})
	if err != nil {
		t.Fatalf("GenerateMarkdown: %v", err)
	}
	if !strings.HasPrefix(md, "# Checked Nodes\n") {
		t.Errorf("expected default title, got:\n%s", md)
	}
	if strings.Contains(md, "Generated:") {
		t.Error("expected no timestamp for zero time")
	}
	if !strings.Contains(md, "_Nothing is checked._") {
		t.Errorf("expected empty notice:\n%s", md)
	}
}

func TestGenerateMarkdown_NilTree(t *testing.T) {
	if _, err := GenerateMarkdown(Report{}); err == nil {
		t.Error("expected error for nil tree")
	}
}

func TestSaveMarkdownToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := SaveMarkdownToFile(Report{Tree: newReportTree(t, "5")}, path); err != nil {
		t.Fatalf("SaveMarkdownToFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "| 5 | Carol | Engineering |") {
		t.Errorf("unexpected file content:\n%s", data)
	}
}
