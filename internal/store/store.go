// Package store persists game snapshots between process restarts.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
)

var ErrNotFound = errors.New("snapshot not found")

// Snapshot is enough to rebuild a game: the position it started from and
// every move played since, in long algebraic form.
type Snapshot struct {
	ID         string
	StartFEN   string
	Moves      []string
	White      string
	Black      string
	ResignedBy chess.Color
	Revision   int64 // changes applied so far; newer snapshots are higher
	UpdatedAt  time.Time
}

type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
}
