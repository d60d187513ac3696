package balance

import (
	"context"
	"testing"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/combat"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetLogger(nil)
	m.Run()
}

func TestParsePolicy(t *testing.T) {
	for _, name := range []string{"", "attack", "Special", " alternate "} {
		p, err := ParsePolicy(name)
		require.NoError(t, err, name)
		assert.NotNil(t, p, name)
	}

	_, err := ParsePolicy("flee")
	assert.Error(t, err)
}

func TestSimulateCombatFinishes(t *testing.T) {
	defs := character.DefaultDefinitions()
	src := rng.NewSeeded(3)

	for _, class := range character.AllHeroClasses() {
		for _, kind := range defs.MonsterKinds() {
			r, err := SimulateCombat(defs, class, kind, combat.AlwaysAttack, src)
			require.NoError(t, err)
			assert.Positive(t, r.Rounds)
			if r.HeroWon {
				assert.Positive(t, r.HeroHPRemain)
				assert.Zero(t, r.MonsterHP)
			} else {
				assert.Zero(t, r.HeroHPRemain)
				assert.Positive(t, r.MonsterHP)
			}
			assert.Equal(t, defs.Heroes[class].MaxHP-r.HeroHPRemain, r.DamageTaken)
		}
	}
}

func TestSpecialPolicyFinishesForEveryClass(t *testing.T) {
	policy, err := ParsePolicy(PolicySpecial)
	require.NoError(t, err)

	for _, class := range character.AllHeroClasses() {
		r, err := RunSimulation(nil, class, character.Gremlin, policy, 50, 11)
		require.NoError(t, err, class)
		assert.Equal(t, 50, r.HeroWins+r.MonsterWins)
	}
}

func TestRunSimulationIsDeterministic(t *testing.T) {
	a, err := RunSimulation(nil, character.Warrior, character.Ogre, combat.AlwaysAttack, 200, 42)
	require.NoError(t, err)
	b, err := RunSimulation(nil, character.Warrior, character.Ogre, combat.AlwaysAttack, 200, 42)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 200, a.Simulations)
	assert.Equal(t, 200, a.HeroWins+a.MonsterWins)
	assert.InDelta(t, float64(a.HeroWins)/2, a.WinRate, 0.0001)
	assert.LessOrEqual(t, a.MinRounds, a.MaxRounds)
}

func TestRunSimulationRejectsBadInput(t *testing.T) {
	_, err := RunSimulation(nil, character.Warrior, character.Ogre, nil, 0, 1)
	assert.Error(t, err)

	_, err = RunSimulation(nil, character.Warrior, "hydra", nil, 10, 1)
	assert.Error(t, err)
}

func TestScaleMonster(t *testing.T) {
	defs := character.DefaultDefinitions()

	scaled, err := ScaleMonster(defs, character.Ogre, 2)
	require.NoError(t, err)
	assert.Equal(t, 400, scaled.Monsters[character.Ogre].MaxHP)
	assert.Equal(t, 60, scaled.Monsters[character.Ogre].MinDamage)
	assert.Equal(t, 120, scaled.Monsters[character.Ogre].MaxDamage)
	assert.Equal(t, 200, defs.Monsters[character.Ogre].MaxHP, "original must be untouched")
	assert.Equal(t, defs.Monsters[character.Gremlin], scaled.Monsters[character.Gremlin])

	_, err = ScaleMonster(defs, character.Ogre, 0)
	assert.Error(t, err)
	_, err = ScaleMonster(defs, "hydra", 1)
	assert.Error(t, err)
}

func TestRunScalingSimHarderMonsterWinsMore(t *testing.T) {
	results, err := RunScalingSim(nil, character.Thief, character.Skeleton, combat.AlwaysAttack,
		[]float64{0.25, 4}, 400, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 0.25, results[0].Factor)
	assert.Greater(t, results[0].WinRate, results[1].WinRate)
}

func TestRunMatrix(t *testing.T) {
	opts := MatrixOptions{Iterations: 100, Seed: 9, Workers: 4}

	m, err := RunMatrix(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, m.Cells, len(m.Classes)*len(m.Monsters))

	for _, c := range m.Cells {
		assert.Equal(t, 100, c.Simulations)
	}
	cell, ok := m.Cell(character.Priestess, character.Gremlin)
	require.True(t, ok)
	assert.Equal(t, character.Priestess, cell.Class)

	// The result must not depend on how many workers ran it.
	opts.Workers = 1
	serial, err := RunMatrix(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, m.Cells, serial.Cells)
}

func TestRunMatrixCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunMatrix(ctx, MatrixOptions{Iterations: 10, Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
