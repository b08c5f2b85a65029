package simulation

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dominant-strategies/go-quai/event"
)

// Config holds the inputs supplied by the CLI glue.
type Config struct {
	Honest    uint64
	Colluding uint64
	// Gap is the height deficit the coalition tolerates before giving up
	// its private branch. Shared by every colluding miner.
	Gap    uint64
	Rounds uint64
	// Seed drives the round scheduler. Zero picks a wall-clock seed, any
	// other value makes the run reproducible.
	Seed int64
}

type runState uint

const (
	Running runState = iota
	Done
)

var ErrAlreadyRun = errors.New("simulation already ran")

// Simulation drives the round loop: each round one miner is drawn uniformly
// at random, with replacement, and its chosen block is appended to the
// ledger. Fully sequential; the ledger is exclusively owned by the
// simulation until Run returns.
type Simulation struct {
	chain  *Blockchain
	miners []Miner
	rounds uint64
	rng    *rand.Rand
	state  runState

	blockFeed event.Feed
}

func NewSimulation(cfg Config) *Simulation {
	miners := make([]Miner, 0, cfg.Honest+cfg.Colluding)
	for i := uint64(1); i <= cfg.Honest; i++ {
		miners = append(miners, NewHonestMiner(i))
	}
	for i := uint64(1); i <= cfg.Colluding; i++ {
		miners = append(miners, NewColludingMiner(i, cfg.Gap))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulation{
		chain:  NewBlockchain(),
		miners: miners,
		rounds: cfg.Rounds,
		rng:    rand.New(rand.NewSource(seed)),
		state:  Running,
	}
}

// Chain exposes the ledger. Callers must not mutate it while Run is in
// progress; after Run it is the final, stable record handed to the
// statistics collector.
func (sim *Simulation) Chain() *Blockchain {
	return sim.chain
}

func (sim *Simulation) Miners() []Miner {
	return sim.miners
}

func (sim *Simulation) State() runState {
	return sim.state
}

// SubscribeBlocks delivers every appended block to ch, in append order.
func (sim *Simulation) SubscribeBlocks(ch chan<- *Block) event.Subscription {
	return sim.blockFeed.Subscribe(ch)
}

// Run executes the configured number of rounds and transitions the
// simulation to Done. There is no pausing and no early exit; a second call
// is an error.
func (sim *Simulation) Run() error {
	if sim.state != Running {
		return ErrAlreadyRun
	}
	if len(sim.miners) == 0 && sim.rounds > 0 {
		return errors.New("no miners in roster")
	}

	for round := uint64(0); round < sim.rounds; round++ {
		miner := sim.miners[sim.rng.Intn(len(sim.miners))]
		parent := miner.ChooseParent(sim.chain)
		block, err := sim.chain.Append(Producer{Name: miner.Name(), Kind: miner.Kind()}, parent.ID())
		if err != nil {
			// A strategy handed us a parent the ledger has never
			// seen. Nothing downstream is trustworthy anymore.
			return fmt.Errorf("round %d: %w", round, err)
		}
		miner.recordMined()
		sim.blockFeed.Send(block)
	}

	sim.state = Done
	return nil
}
