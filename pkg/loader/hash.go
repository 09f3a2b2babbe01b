package loader

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/Dicklesworthstone/checktree/pkg/model"
)

// Fingerprint hashes the content of forest. Two forests with equal ids,
// labels, types, flags, metadata and shape hash equally, whatever their
// addresses. The forest must be acyclic.
func Fingerprint(forest model.Forest) (uint64, error) {
	h, err := hashstructure.Hash(forest, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("fingerprint forest: %w", err)
	}
	return h, nil
}
