package savegame

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/snapshot"
)

const fileExt = ".yaml"

// FileRepository keeps one sealed yaml file per save under a directory.
type FileRepository struct {
	dir string
	now Clock
}

// NewFileRepository creates a file-backed repository rooted at dir. A nil
// clock uses the system time.
func NewFileRepository(dir string, now Clock) *FileRepository {
	if now == nil {
		now = systemClock
	}
	return &FileRepository{dir: dir, now: now}
}

// Dir returns the save directory.
func (r *FileRepository) Dir() string { return r.dir }

func (r *FileRepository) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", gameerr.Configurationf("invalid save id %q", id)
	}
	return filepath.Join(r.dir, id+fileExt), nil
}

// Save implements Repository.
func (r *FileRepository) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stamped, err := stamp(snap, r.now)
	if err != nil {
		return err
	}
	path, err := r.path(stamped.ID)
	if err != nil {
		return err
	}
	if err := snapshot.SaveFile(path, stamped); err != nil {
		return err
	}
	logger.Debug("Saved game to file", "session_id", stamped.ID, "path", path)
	return nil
}

// Load implements Repository.
func (r *FileRepository) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.path(id)
	if err != nil {
		return nil, err
	}
	if !snapshot.FileExists(path) {
		return nil, notFound(id)
	}
	return snapshot.LoadFile(path)
}

// List implements Repository. Unreadable files are skipped with a warning.
func (r *FileRepository) List(ctx context.Context) ([]snapshot.Summary, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []snapshot.Summary{}, nil
		}
		return nil, fmt.Errorf("failed to read save directory: %w", err)
	}

	out := []snapshot.Summary{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		snap, err := snapshot.LoadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			logger.Warning("Skipping unreadable save file", "file", e.Name(), "error", err)
			continue
		}
		out = append(out, snap.Summary())
	}
	sortSummaries(out)
	return out, nil
}

// Delete implements Repository.
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := r.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}
