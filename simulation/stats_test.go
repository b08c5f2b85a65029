package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImmediateForkBehindTip(t *testing.T) {
	// Round 1: honest mines on genesis. Round 2: the coalition mines on
	// genesis as well and is immediately behind the new tip.
	bc := NewBlockchain()
	h := NewHonestMiner(1)
	c := NewColludingMiner(1, 0)

	_, err := bc.Append(Producer{Name: h.Name(), Kind: h.Kind()}, 0)
	assert.NoError(t, err)
	h.recordMined()
	_, err = bc.Append(Producer{Name: c.Name(), Kind: c.Kind()}, 0)
	assert.NoError(t, err)
	c.recordMined()

	report := Collect(bc, []Miner{h, c})
	assert.Equal(t, 1, report.NumForks)
	assert.Equal(t, uint64(1), report.MaxDepth)
	assert.Equal(t, uint64(1), report.AbandonedBlocks)
	assert.InDelta(t, 50.0, report.AbandonedPct, 1e-9)
	assert.Equal(t, float64(100), report.HonestScore)
	assert.Equal(t, float64(0), report.ColludingScore)
}

func TestCollectGenesisOnly(t *testing.T) {
	bc := NewBlockchain()
	report := Collect(bc, []Miner{NewHonestMiner(1)})

	assert.Equal(t, 0, report.NumForks)
	assert.Equal(t, float64(0), report.AbandonedPct)
	assert.Equal(t, []uint64{0}, report.Canonical)
	// A miner that mined nothing scores 100 by convention.
	assert.Equal(t, float64(100), report.Miners[0].Score)
	assert.Equal(t, float64(100), report.HonestScore)
	assert.Equal(t, float64(100), report.ColludingScore)
}

func TestCollectIsIdempotent(t *testing.T) {
	sim := NewSimulation(Config{Honest: 3, Colluding: 2, Gap: 4, Rounds: 400, Seed: 11})
	assert.NoError(t, sim.Run())

	first := Collect(sim.Chain(), sim.Miners())
	second := Collect(sim.Chain(), sim.Miners())
	assert.Equal(t, first, second)
}

func TestCollectPerMinerInclusion(t *testing.T) {
	bc := NewBlockchain()
	h1 := NewHonestMiner(1)
	h2 := NewHonestMiner(2)

	// h1 mines twice on the canonical chain, h2 once on a losing branch.
	b1, _ := bc.Append(Producer{Name: h1.Name(), Kind: h1.Kind()}, 0)
	h1.recordMined()
	bc.Append(Producer{Name: h1.Name(), Kind: h1.Kind()}, b1.ID())
	h1.recordMined()
	bc.Append(Producer{Name: h2.Name(), Kind: h2.Kind()}, b1.ID())
	h2.recordMined()

	report := Collect(bc, []Miner{h1, h2})
	assert.Equal(t, uint64(2), report.Miners[0].Included)
	assert.Equal(t, float64(100), report.Miners[0].Score)
	assert.Equal(t, uint64(0), report.Miners[1].Included)
	assert.Equal(t, float64(0), report.Miners[1].Score)

	assert.True(t, report.IsCanonical(b1.ID()))
	assert.False(t, report.IsCanonical(3))
	assert.Equal(t, uint64(2), report.TipID())
}

func TestCollectBlockOrder(t *testing.T) {
	sim := NewSimulation(Config{Honest: 2, Colluding: 1, Gap: 1, Rounds: 50, Seed: 5})
	assert.NoError(t, sim.Run())

	report := Collect(sim.Chain(), sim.Miners())
	for i, b := range report.Blocks {
		assert.Equal(t, uint64(i), b.ID)
		if i == 0 {
			assert.Equal(t, int64(-1), b.ParentID)
			continue
		}
		parent := report.Blocks[b.ParentID]
		assert.Equal(t, parent.Height+1, b.Height)
	}
}
