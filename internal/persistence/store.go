package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/suderio/roundkeeper/internal/engine"
)

var ErrNotFound = errors.New("not found")

// EncounterInfo is the listing row for a saved encounter.
type EncounterInfo struct {
	Name    string
	Round   int
	Ended   bool
	SavedAt time.Time
}

// Store persists engine snapshots keyed by encounter name. The sqlite
// implementation is the default; tests may substitute their own.
type Store interface {
	SaveSnapshot(ctx context.Context, name string, snap engine.Snapshot) error
	LoadSnapshot(ctx context.Context, name string) (engine.Snapshot, error)
	ListEncounters(ctx context.Context) ([]EncounterInfo, error)
	DeleteEncounter(ctx context.Context, name string) error
	Close() error
}
