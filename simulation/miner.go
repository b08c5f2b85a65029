package simulation

import "fmt"

// Miner is the capability shared by all strategies: given the current
// ledger, pick the block to mine on top of.
type Miner interface {
	Name() string
	Kind() Kind
	// Mined is the cumulative number of blocks this miner produced,
	// independent of whether they ended up on the canonical chain.
	Mined() uint64
	ChooseParent(bc *Blockchain) *Block

	recordMined()
}

type minerBase struct {
	name  string
	mined uint64
}

func (m *minerBase) Name() string {
	return m.name
}

func (m *minerBase) Mined() uint64 {
	return m.mined
}

func (m *minerBase) recordMined() {
	m.mined++
}

// Honest miners always extend the longest public chain.
type Honest struct {
	minerBase
}

func NewHonestMiner(seq uint64) *Honest {
	return &Honest{minerBase{name: fmt.Sprintf("H%d", seq)}}
}

func (m *Honest) Kind() Kind {
	return HonestMiner
}

func (m *Honest) ChooseParent(bc *Blockchain) *Block {
	return bc.CanonicalTip()
}

// Colluding miners extend the coalition's shared branch. Every colluding
// miner consults the same coalition-tip pointer in the ledger, so the
// coalition acts as one coordinated actor even though the scheduler draws
// miners independently.
type Colluding struct {
	minerBase
	gap uint64
}

func NewColludingMiner(seq, gap uint64) *Colluding {
	return &Colluding{minerBase: minerBase{name: fmt.Sprintf("C%d", seq)}, gap: gap}
}

func (m *Colluding) Kind() Kind {
	return ColludingMiner
}

func (m *Colluding) Gap() uint64 {
	return m.gap
}

func (m *Colluding) ChooseParent(bc *Blockchain) *Block {
	return bc.CoalitionTip(m.gap)
}
