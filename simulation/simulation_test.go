package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingleHonestMinerStraightLine(t *testing.T) {
	sim := NewSimulation(Config{Honest: 1, Rounds: 5, Seed: 1})
	assert.NoError(t, sim.Run())
	assert.Equal(t, Done, sim.State())

	bc := sim.Chain()
	assert.Len(t, bc.Blocks(), 6)
	assert.Empty(t, bc.Forks())
	assert.Equal(t, uint64(5), bc.CanonicalTip().Height())

	report := Collect(bc, sim.Miners())
	assert.Equal(t, 0, report.NumForks)
	assert.Equal(t, float64(100), report.HonestScore)
	assert.Len(t, report.Canonical, 6)
}

func TestLoneCoalitionOvertakes(t *testing.T) {
	// With nobody else mining, the private branch is the only one
	// advancing, never falls behind and simply becomes the canonical
	// chain.
	sim := NewSimulation(Config{Colluding: 1, Gap: 3, Rounds: 4, Seed: 1})
	assert.NoError(t, sim.Run())

	bc := sim.Chain()
	assert.Equal(t, bc.CanonicalTip(), bc.CoalitionTip(3))
	assert.Equal(t, uint64(4), bc.CanonicalTip().Height())
	assert.Empty(t, bc.Forks())

	report := Collect(bc, sim.Miners())
	assert.Equal(t, float64(100), report.ColludingScore)
}

func TestRunIsNotReentrant(t *testing.T) {
	sim := NewSimulation(Config{Honest: 1, Rounds: 1, Seed: 1})
	assert.NoError(t, sim.Run())
	assert.ErrorIs(t, sim.Run(), ErrAlreadyRun)
}

func TestRunWithoutMiners(t *testing.T) {
	sim := NewSimulation(Config{Rounds: 3, Seed: 1})
	assert.Error(t, sim.Run())
}

func TestSeedMakesRunsReproducible(t *testing.T) {
	cfg := Config{Honest: 3, Colluding: 2, Gap: 5, Rounds: 200, Seed: 42}
	a := NewSimulation(cfg)
	b := NewSimulation(cfg)
	assert.NoError(t, a.Run())
	assert.NoError(t, b.Run())

	blocksA := a.Chain().Blocks()
	blocksB := b.Chain().Blocks()
	assert.Equal(t, len(blocksA), len(blocksB))
	for i := range blocksA {
		assert.Equal(t, blocksA[i].Producer(), blocksB[i].Producer())
		assert.Equal(t, blocksA[i].Height(), blocksB[i].Height())
	}
}

func TestSubscribeBlocks(t *testing.T) {
	sim := NewSimulation(Config{Honest: 1, Rounds: 5, Seed: 1})
	blockCh := make(chan *Block, 8)
	sub := sim.SubscribeBlocks(blockCh)
	defer sub.Unsubscribe()

	assert.NoError(t, sim.Run())
	for want := uint64(1); want <= 5; want++ {
		block := <-blockCh
		assert.Equal(t, want, block.ID())
	}
}

func TestBlockConservation(t *testing.T) {
	// total blocks - 1 == (canonical length - 1) + sum of fork depths,
	// for any completed run.
	for _, seed := range []int64{1, 2, 3, 99} {
		sim := NewSimulation(Config{Honest: 3, Colluding: 2, Gap: 5, Rounds: 500, Seed: seed})
		assert.NoError(t, sim.Run())

		bc := sim.Chain()
		var depths uint64
		for _, f := range bc.Forks() {
			depths += f.Depth()
		}
		canonical := bc.CanonicalTip().Height()
		assert.Equal(t, uint64(len(bc.Blocks())-1), canonical+depths, "seed %d", seed)
	}
}

func TestCanonicalWalk(t *testing.T) {
	sim := NewSimulation(Config{Honest: 2, Colluding: 1, Gap: 2, Rounds: 300, Seed: 7})
	assert.NoError(t, sim.Run())

	bc := sim.Chain()
	tip := bc.CanonicalTip()
	visited := 0
	for b := tip; ; {
		visited++
		parentID, ok := b.Parent()
		if !ok {
			break
		}
		parent, exists := bc.Block(parentID)
		assert.True(t, exists)
		assert.Equal(t, parent.Height()+1, b.Height())
		b = parent
	}
	assert.Equal(t, int(tip.Height())+1, visited)
}
