// Package savegame stores sealed session snapshots. Backends share the
// Repository interface so the server can be pointed at files, redis or a SQL
// database from configuration.
package savegame

import (
	"context"
	"sort"
	"time"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/snapshot"
)

// Repository defines save game storage
type Repository interface {
	// Save stores a snapshot, replacing any earlier save with the same id.
	// The stored copy is stamped with the save time.
	Save(ctx context.Context, snap *snapshot.Snapshot) error

	// Load retrieves a snapshot by session id
	Load(ctx context.Context, id string) (*snapshot.Snapshot, error)

	// List returns summaries of every save, most recent first
	List(ctx context.Context) ([]snapshot.Summary, error)

	// Delete removes a save
	Delete(ctx context.Context, id string) error
}

// Clock returns the current time. Repositories take one so tests can pin
// save timestamps.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC().Round(0)
}

// stamp returns a shallow copy of snap with SavedAt set.
func stamp(snap *snapshot.Snapshot, now Clock) (*snapshot.Snapshot, error) {
	if snap == nil {
		return nil, gameerr.Configuration("snapshot cannot be nil")
	}
	if snap.ID == "" {
		return nil, gameerr.Configuration("snapshot ID cannot be empty")
	}
	out := *snap
	out.SavedAt = now()
	return &out, nil
}

func notFound(id string) error {
	return gameerr.NotFoundf("save %q not found", id)
}

// sortSummaries orders summaries most recent first, then by id.
func sortSummaries(list []snapshot.Summary) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].SavedAt.Equal(list[j].SavedAt) {
			return list[i].SavedAt.After(list[j].SavedAt)
		}
		return list[i].ID < list[j].ID
	})
}
