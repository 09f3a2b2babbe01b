package tree

import (
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// ErrDepthExceeded is returned when a forest is nested deeper than the
// configured maximum depth.
var ErrDepthExceeded = errors.New("tree exceeds maximum depth")

// DuplicateKeyError is returned when two nodes in one flatten run resolve to
// the same key, i.e. the same raw id appears twice under the same parent.
type DuplicateKeyError struct {
	Key      Key
	ID       model.NodeID
	ParentID model.NodeID // Empty for roots
}

func (e *DuplicateKeyError) Error() string {
	if e.ParentID == "" {
		return fmt.Sprintf("duplicate node key %q: id %s appears more than once at the root", e.Key, e.ID)
	}
	return fmt.Sprintf("duplicate node key %q: id %s appears more than once under parent %s", e.Key, e.ID, e.ParentID)
}

// CycleError is returned when a node is reachable from itself.
type CycleError struct {
	Key Key
	ID  model.NodeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("node %s (key %q) is its own ancestor", e.ID, e.Key)
}
