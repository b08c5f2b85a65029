package simulation

// Fork choice. The canonical chain is the longest one; ties never move the
// tip, so the first block to reach a height keeps it. The coalition runs a
// second pointer over the same ledger: it extends its own branch for as long
// as the branch stays within the configured gap of the public chain.

// CanonicalTip returns the head of the longest known chain.
func (bc *Blockchain) CanonicalTip() *Block {
	return bc.tip
}

// CoalitionTip returns where the coalition should mine next. Once the public
// chain pulls more than gap blocks ahead, the private branch is a lost cause
// and the coalition rejoins the canonical tip.
func (bc *Blockchain) CoalitionTip(gap uint64) *Block {
	if bc.tip.height > bc.coalitionTip.height+gap {
		return bc.tip
	}
	return bc.coalitionTip
}
