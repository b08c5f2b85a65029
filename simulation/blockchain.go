package simulation

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"lukechampine.com/blake3"
)

const HashLength = 8

// Hash is a short display digest of a block, used by renderers as a stable
// node label. It carries no consensus meaning.
type Hash [HashLength]byte

// SetBytes sets the hash to the value of b.
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}

	copy(h[HashLength-len(b):], b)
}

func (h Hash) String() string {
	enc := make([]byte, len(h[:])*2+2)
	copy(enc, "0x")
	hex.Encode(enc[2:], h[:])
	return string(enc)
}

func (h Hash) Bytes() []byte {
	return h[:]
}

// Kind tags a miner, and every block it produces, as honest or colluding.
type Kind uint

const (
	HonestMiner Kind = iota
	ColludingMiner
)

func (k Kind) String() string {
	switch k {
	case HonestMiner:
		return "honest"
	case ColludingMiner:
		return "colluding"
	default:
		return "unknown"
	}
}

// Producer identifies who mined a block. The kind is carried explicitly
// rather than inferred from the name.
type Producer struct {
	Name string
	Kind Kind
}

const c_genesisParent = int64(-1)

// Block is immutable once appended. The parent is stored as an arena id, not
// a pointer, so the ledger stays append-only and trivially snapshottable.
type Block struct {
	id       uint64
	producer Producer
	parent   int64 // c_genesisParent only for genesis
	height   uint64
}

func (b *Block) ID() uint64 {
	return b.id
}

func (b *Block) Producer() Producer {
	return b.producer
}

// Parent returns the parent block id. The second return is false only for
// genesis.
func (b *Block) Parent() (uint64, bool) {
	if b.parent == c_genesisParent {
		return 0, false
	}
	return uint64(b.parent), true
}

func (b *Block) Height() uint64 {
	return b.height
}

func (b *Block) Hash() (hash Hash) {
	var data [16]byte
	binary.BigEndian.PutUint64(data[:8], b.id)
	binary.BigEndian.PutUint64(data[8:], b.height)
	sum := blake3.Sum256(append(data[:], b.producer.Name...))
	hash.SetBytes(sum[:HashLength])
	return hash
}

func (b *Block) String() string {
	return fmt.Sprintf("{ Id: %v, Producer: %v, Parent: %v, Height: %v }", b.id, b.producer.Name, b.parent, b.height)
}

// Fork records a maximal abandoned branch by the canonical block it diverged
// from and its current leaf.
type Fork struct {
	base *Block
	tip  *Block
}

func (f *Fork) Base() *Block {
	return f.base
}

func (f *Fork) Tip() *Block {
	return f.tip
}

func (f *Fork) Depth() uint64 {
	return f.tip.height - f.base.height
}

// ErrUnknownParent is returned when a block declares a parent that was never
// appended. The caller's invariants are broken at that point, so the run
// must abort.
var ErrUnknownParent = errors.New("parent not in ledger")

// Blockchain is the append-only block ledger. Blocks form a DAG rooted at
// genesis; the slice index of a block is its id.
type Blockchain struct {
	blocks       []*Block
	tip          *Block
	coalitionTip *Block
	forks        map[uint64]*Fork
}

func NewBlockchain() *Blockchain {
	genesis := &Block{
		id:       0,
		producer: Producer{Name: "genesis", Kind: HonestMiner},
		parent:   c_genesisParent,
		height:   0,
	}
	return &Blockchain{
		blocks:       []*Block{genesis},
		tip:          genesis,
		coalitionTip: genesis,
		forks:        make(map[uint64]*Fork),
	}
}

func (bc *Blockchain) Genesis() *Block {
	return bc.blocks[0]
}

// Block returns the block with the given id.
func (bc *Blockchain) Block(id uint64) (*Block, bool) {
	if id >= uint64(len(bc.blocks)) {
		return nil, false
	}
	return bc.blocks[id], true
}

// Blocks returns the full ledger in append order. The returned slice must
// not be mutated.
func (bc *Blockchain) Blocks() []*Block {
	return bc.blocks
}

// Forks returns the abandonment record, keyed by each branch's leaf id.
func (bc *Blockchain) Forks() map[uint64]*Fork {
	return bc.forks
}

// Append creates the next block on top of parentID, runs the fork
// bookkeeping and then advances the tips. It is the only way blocks enter
// the ledger.
func (bc *Blockchain) Append(producer Producer, parentID uint64) (*Block, error) {
	parent, ok := bc.Block(parentID)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownParent, parentID)
	}

	block := &Block{
		id:       uint64(len(bc.blocks)),
		producer: producer,
		parent:   int64(parentID),
		height:   parent.height + 1,
	}
	bc.blocks = append(bc.blocks, block)

	bc.trackForks(block, parent)

	if block.height > bc.tip.height {
		bc.tip = block
	}
	if producer.Kind == ColludingMiner && block.height > bc.coalitionTip.height {
		bc.coalitionTip = block
	}
	return block, nil
}

// trackForks keeps one record per maximal abandoned branch. A block landing
// at or behind the tip height either extends a tracked branch, in which case
// the record moves to the new leaf, or starts a new one off its parent.
func (bc *Blockchain) trackForks(block, parent *Block) {
	if parent == bc.tip || block.height > bc.tip.height {
		return
	}
	if extended, ok := bc.forks[parent.id]; ok {
		delete(bc.forks, parent.id)
		bc.forks[block.id] = &Fork{base: extended.base, tip: block}
		return
	}
	bc.forks[block.id] = &Fork{base: parent, tip: block}
}
