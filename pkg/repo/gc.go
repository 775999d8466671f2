package repo

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/odvcencio/shale/pkg/object"
)

// Prune removes stored objects that HEAD and the refs under refs/ cannot
// reach, and returns their hashes. With dryRun set nothing is removed.
// Pruning refuses to run while any reachable object is missing or corrupt:
// the walk below such an object is incomplete.
func (r *Repo) Prune(dryRun bool) ([]object.Hash, error) {
	var report FsckReport
	roots, err := r.collectRoots(&report)
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}
	reach, err := r.Store.Reachable(roots)
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}
	if len(reach.Missing) > 0 {
		return nil, fmt.Errorf("prune: %d reachable objects are missing, run fsck", len(reach.Missing))
	}
	if len(reach.Corrupt) > 0 {
		return nil, fmt.Errorf("prune: %d reachable objects are corrupt, run fsck", len(reach.Corrupt))
	}

	victims, err := r.unreachable(reach.Objects)
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}
	if dryRun {
		return victims, nil
	}
	for _, h := range victims {
		if err := r.Store.Remove(h); err != nil {
			return nil, fmt.Errorf("prune: %w", err)
		}
	}
	r.logger.Info("pruned unreachable objects", zap.Int("count", len(victims)))
	return victims, nil
}
