// Package export renders check state for people to read.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Dicklesworthstone/checktree/pkg/tree"
)

// Report is the input of GenerateMarkdown.
type Report struct {
	Title     string
	Generated time.Time // Zero omits the timestamp line
	Tree      *tree.Tree
}

// GenerateMarkdown creates a markdown report of what is checked in r.Tree:
// a summary, the checked outline and a flat list of checked nodes with
// their paths.
func GenerateMarkdown(r Report) (string, error) {
	if r.Tree == nil {
		return "", fmt.Errorf("generate markdown: nil tree")
	}
	t := r.Tree
	idx := t.Index()
	var sb strings.Builder

	title := r.Title
	if title == "" {
		title = "Checked Nodes"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if !r.Generated.IsZero() {
		sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.Generated.Format(time.RFC1123)))
	}

	info := t.CheckedInfo()
	var checked, partial int
	for _, k := range idx.Keys() {
		switch t.Status(k) {
		case tree.Checked:
			checked++
		case tree.Indeterminate:
			partial++
		}
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Check model**: %s\n", t.Model()))
	sb.WriteString(fmt.Sprintf("- **Nodes**: %d\n", idx.Len()))
	sb.WriteString(fmt.Sprintf("- **Checked**: %d\n", checked))
	sb.WriteString(fmt.Sprintf("- **Indeterminate**: %d\n", partial))
	sb.WriteString(fmt.Sprintf("- **Checked ids**: %d\n\n", len(info.IDs)))

	if len(info.Nodes) == 0 {
		sb.WriteString("_Nothing is checked._\n")
		return sb.String(), nil
	}

	// Outline of every branch that has something checked.
	sb.WriteString("## Outline\n\n")
	var outline func(keys []tree.Key, depth int)
	outline = func(keys []tree.Key, depth int) {
		for _, k := range keys {
			status := t.Status(k)
			if status == tree.Unchecked {
				continue
			}
			n, _ := idx.Get(k)
			box := "[x]"
			if status == tree.Indeterminate {
				box = "[-]"
			}
			sb.WriteString(fmt.Sprintf("%s- %s %s\n", strings.Repeat("  ", depth), box, escape(n.Label)))
			outline(n.ChildKeys, depth+1)
		}
	}
	outline(idx.Roots(), 0)
	sb.WriteString("\n")

	sb.WriteString("## Checked\n\n")
	sb.WriteString("| ID | Label | Path |\n")
	sb.WriteString("|---|---|---|\n")
	for _, n := range info.Nodes {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", n.ID, escape(n.Label), escape(path(idx, n))))
	}
	return sb.String(), nil
}

// path joins the labels of n's ancestors, root first.
func path(idx *tree.Index, n *tree.FlatNode) string {
	ancestors := idx.Ancestors(n.Key)
	parts := make([]string, 0, len(ancestors))
	for i := len(ancestors) - 1; i >= 0; i-- {
		if a, ok := idx.Get(ancestors[i]); ok {
			parts = append(parts, a.Label)
		}
	}
	return strings.Join(parts, " › ")
}

var mdEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "\n", " ")

func escape(s string) string {
	return mdEscaper.Replace(s)
}

// SaveMarkdownToFile writes the generated markdown to a file
func SaveMarkdownToFile(r Report, filename string) error {
	content, err := GenerateMarkdown(r)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}
