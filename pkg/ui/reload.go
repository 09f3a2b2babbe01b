package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/checktree/pkg/loader"
	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// ReloadMsg is sent to the browser when the watched source changed.
type ReloadMsg struct {
	Forest model.Forest
	Hash   uint64
	Err    error // Non-nil if loading failed; the current tree is kept
}

// WaitForReload returns a command that blocks until w delivers the next
// reload. It returns nil for a nil watcher, and the command yields nil once
// the watcher is stopped.
func WaitForReload(w *loader.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-w.Reloads()
		if !ok {
			return nil
		}
		msg := ReloadMsg{Forest: r.Forest, Hash: r.Hash}
		if r.Err != nil {
			msg.Err = r.Err
		}
		return msg
	}
}

// applyReload swaps in a reloaded forest, keeping the cursor on the same key
// when it survives. Check and expand state are rebased by the tree.
func (m *Model) applyReload(msg ReloadMsg) {
	if msg.Err != nil {
		m.logger.Warn("reload failed, keeping current tree", "err", msg.Err)
		m.status = "reload failed: " + msg.Err.Error()
		return
	}
	current := m.SelectedKey()
	if err := m.tree.SetNodes(msg.Forest); err != nil {
		m.logger.Warn("reloaded tree rejected", "err", err)
		m.status = "reload rejected: " + err.Error()
		return
	}
	m.logger.Debug("tree reloaded", "nodes", m.tree.Index().Len(), "hash", msg.Hash)

	if m.query != "" {
		m.applyFilter(m.query)
	} else {
		m.rebuildRows()
	}
	if current != "" {
		m.SelectByKey(current)
	}
	m.status = "reloaded"
}
