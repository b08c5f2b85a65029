package simulation

import "sort"

// The statistics collector is a read-only pass over a finished ledger. It
// produces plain structured data so that renderers never need to re-derive
// the fork analysis.

// BlockInfo is the exported view of one ledger entry.
type BlockInfo struct {
	ID       uint64
	Producer Producer
	// ParentID is -1 for genesis.
	ParentID int64
	Height   uint64
	Hash     Hash
}

// ForkInfo describes one maximal abandoned branch.
type ForkInfo struct {
	BaseID uint64
	TipID  uint64
	// FromHeight..ToHeight is the abandoned span, base excluded.
	FromHeight uint64
	ToHeight   uint64
	Depth      uint64
}

// MinerStat is the per-miner confirmation record. Score is
// included/mined*100; a miner that never mined reports 100 by convention so
// an idle miner does not read as fully censored.
type MinerStat struct {
	Name     string
	Kind     Kind
	Mined    uint64
	Included uint64
	Score    float64
}

// Report is everything the core exposes about a finished run.
type Report struct {
	Blocks []BlockInfo
	Forks  []ForkInfo
	// Canonical lists the canonical chain block ids, tip first, genesis
	// last.
	Canonical []uint64

	NumForks        int
	MaxDepth        uint64
	AbandonedBlocks uint64
	// AbandonedPct is abandoned blocks over all non-genesis blocks.
	AbandonedPct float64

	Miners         []MinerStat
	HonestScore    float64
	ColludingScore float64
}

// TipID returns the canonical tip's block id.
func (r *Report) TipID() uint64 {
	return r.Canonical[0]
}

// IsCanonical reports whether the block id lies on the canonical chain.
func (r *Report) IsCanonical(id uint64) bool {
	for _, c := range r.Canonical {
		if c == id {
			return true
		}
	}
	return false
}

func score(included, mined uint64) float64 {
	if mined == 0 {
		return 100
	}
	return float64(included) / float64(mined) * 100
}

// Collect walks the finished ledger and computes the fork summary and the
// canonical inclusion tallies. It never mutates its inputs, so repeated
// calls over the same ledger yield identical reports.
func Collect(bc *Blockchain, miners []Miner) *Report {
	blocks := bc.Blocks()
	report := &Report{
		Blocks: make([]BlockInfo, 0, len(blocks)),
	}

	for _, b := range blocks {
		info := BlockInfo{
			ID:       b.ID(),
			Producer: b.Producer(),
			ParentID: c_genesisParent,
			Height:   b.Height(),
			Hash:     b.Hash(),
		}
		if parent, ok := b.Parent(); ok {
			info.ParentID = int64(parent)
		}
		report.Blocks = append(report.Blocks, info)
	}

	for _, f := range bc.Forks() {
		report.Forks = append(report.Forks, ForkInfo{
			BaseID:     f.Base().ID(),
			TipID:      f.Tip().ID(),
			FromHeight: f.Base().Height() + 1,
			ToHeight:   f.Tip().Height(),
			Depth:      f.Depth(),
		})
		report.AbandonedBlocks += f.Depth()
		if f.Depth() > report.MaxDepth {
			report.MaxDepth = f.Depth()
		}
	}
	// Map iteration order is not stable; reports must be.
	sort.Slice(report.Forks, func(i, j int) bool {
		return report.Forks[i].TipID < report.Forks[j].TipID
	})
	report.NumForks = len(report.Forks)
	if mined := uint64(len(blocks) - 1); mined > 0 {
		report.AbandonedPct = float64(report.AbandonedBlocks) / float64(mined) * 100
	}

	// Canonical inclusion: walk parent links from the tip down to genesis.
	included := make(map[string]uint64)
	for b := bc.CanonicalTip(); ; {
		report.Canonical = append(report.Canonical, b.ID())
		if b.ID() != 0 {
			included[b.Producer().Name]++
		}
		parent, ok := b.Parent()
		if !ok {
			break
		}
		b, _ = bc.Block(parent)
	}

	var honestMined, honestIncluded, colludingMined, colludingIncluded uint64
	for _, m := range miners {
		stat := MinerStat{
			Name:     m.Name(),
			Kind:     m.Kind(),
			Mined:    m.Mined(),
			Included: included[m.Name()],
		}
		stat.Score = score(stat.Included, stat.Mined)
		report.Miners = append(report.Miners, stat)

		switch m.Kind() {
		case HonestMiner:
			honestMined += stat.Mined
			honestIncluded += stat.Included
		case ColludingMiner:
			colludingMined += stat.Mined
			colludingIncluded += stat.Included
		}
	}
	report.HonestScore = score(honestIncluded, honestMined)
	report.ColludingScore = score(colludingIncluded, colludingMined)

	return report
}
