package balance

import (
	"context"
	"fmt"
	"runtime"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/combat"
	"golang.org/x/sync/errgroup"
)

// MatrixOptions controls a class x monster sweep.
type MatrixOptions struct {
	Definitions *character.Definitions
	Policy      combat.Policy
	Iterations  int
	Seed        int64
	Workers     int
}

// Matrix is the result of a sweep. Cells are ordered by class, then by monster
// kind.
type Matrix struct {
	Classes  []character.HeroClass
	Monsters []character.MonsterKind
	Cells    []SimulationResult
}

// Cell returns the result for one pairing.
func (m *Matrix) Cell(class character.HeroClass, kind character.MonsterKind) (SimulationResult, bool) {
	for _, c := range m.Cells {
		if c.Class == class && c.Monster == kind {
			return c, true
		}
	}
	return SimulationResult{}, false
}

// RunMatrix simulates every hero class against every monster kind. Each cell
// draws from its own stream seeded with Seed plus the cell index, so the
// outcome does not depend on the worker count.
func RunMatrix(ctx context.Context, opts MatrixOptions) (*Matrix, error) {
	defs := opts.Definitions
	if defs == nil {
		defs = character.DefaultDefinitions()
	}
	if opts.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", opts.Iterations)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	m := &Matrix{
		Classes:  character.AllHeroClasses(),
		Monsters: defs.MonsterKinds(),
	}
	m.Cells = make([]SimulationResult, len(m.Classes)*len(m.Monsters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ci, class := range m.Classes {
		for mi, kind := range m.Monsters {
			idx := ci*len(m.Monsters) + mi
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, err := RunSimulation(defs, class, kind, opts.Policy, opts.Iterations, opts.Seed+int64(idx))
				if err != nil {
					return err
				}
				m.Cells[idx] = r
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}
