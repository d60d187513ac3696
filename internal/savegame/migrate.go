package savegame

import (
	"context"
	"fmt"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
)

// MigrateOptions controls Migrate.
type MigrateOptions struct {
	// DryRun reads and checks every save without writing any.
	DryRun bool

	// Overwrite replaces saves that already exist in the destination.
	Overwrite bool
}

// MigrateReport counts what Migrate did.
type MigrateReport struct {
	Copied  int
	Skipped int
	Failed  []string // ids that could not be read or validated
}

// Migrate copies every save in from into to. Saves that fail to load or
// validate are reported and left behind; a write error stops the run.
func Migrate(ctx context.Context, from, to Repository, opts MigrateOptions) (MigrateReport, error) {
	var report MigrateReport

	summaries, err := from.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list source saves: %w", err)
	}

	for _, sum := range summaries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		snap, err := from.Load(ctx, sum.ID)
		if err == nil {
			err = snap.Validate()
		}
		if err != nil {
			logger.Warning("Skipping unreadable save", "save_id", sum.ID, "error", err)
			report.Failed = append(report.Failed, sum.ID)
			continue
		}

		if !opts.Overwrite {
			_, err := to.Load(ctx, sum.ID)
			switch {
			case err == nil:
				logger.Debug("Save already migrated", "save_id", sum.ID)
				report.Skipped++
				continue
			case !gameerr.IsNotFound(err):
				return report, fmt.Errorf("check destination for %s: %w", sum.ID, err)
			}
		}

		if !opts.DryRun {
			if err := to.Save(ctx, snap); err != nil {
				return report, fmt.Errorf("write save %s: %w", sum.ID, err)
			}
		}
		report.Copied++
	}

	logger.Info("Save migration finished",
		"copied", report.Copied,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
		"dry_run", opts.DryRun)
	return report, nil
}
