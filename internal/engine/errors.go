package engine

import (
	"github.com/dshills/treestorm/internal/engine/history"
	"github.com/dshills/treestorm/internal/engine/tracking"
)

// Sentinel errors surfaced by the engine. They alias the owning
// package's sentinels so callers can match with errors.Is against
// either package.
var (
	ErrNothingToUndo    = history.ErrNothingToUndo
	ErrNothingToRedo    = history.ErrNothingToRedo
	ErrGroupOpen        = history.ErrGroupOpen
	ErrNoOpenGroup      = history.ErrNoOpenGroup
	ErrSnapshotNotFound = tracking.ErrSnapshotNotFound
)
