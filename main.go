package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/shreekarashastry/collusion/simulation"
	"github.com/shreekarashastry/collusion/vis"
)

// The vis server logs through the same standard logger, so the formatter
// and level set here apply to observer request logging too.
var log = logrus.StandardLogger()

func main() {
	app := cli.NewApp()
	app.Name = "collusion-sim"
	app.Usage = "simulate block withholding by a coalition of colluding miners"
	app.Flags = []cli.Flag{
		cli.Uint64Flag{Name: "honest", Value: 3, Usage: "number of honest miners"},
		cli.Uint64Flag{Name: "colluding", Value: 2, Usage: "number of colluding miners"},
		cli.Uint64Flag{Name: "rounds", Value: 10000, Usage: "number of mining rounds to simulate"},
		cli.Uint64Flag{Name: "gap", Value: 5, Usage: "height deficit tolerated on the colluding fork"},
		cli.Int64Flag{Name: "seed", Usage: "random seed (0 = wall clock)"},
		cli.BoolFlag{Name: "verbose", Usage: "print per-fork and per-miner detail"},
		cli.BoolFlag{Name: "graph", Usage: "write a Graphviz/HTML report of the block DAG"},
		cli.StringFlag{Name: "out", Value: "output", Usage: "report output directory"},
		cli.BoolFlag{Name: "observer", Usage: "serve the report and rebuild on POST /new_block"},
		cli.StringFlag{Name: "addr", Value: ":8080", Usage: "observer listen address"},
		cli.BoolFlag{Name: "debug", Usage: "log every appended block"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	log.SetFormatter(&logrus.TextFormatter{})
	if c.Bool("debug") {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := simulation.Config{
		Honest:    c.Uint64("honest"),
		Colluding: c.Uint64("colluding"),
		Gap:       c.Uint64("gap"),
		Rounds:    c.Uint64("rounds"),
		Seed:      c.Int64("seed"),
	}

	if c.Bool("observer") {
		rebuild := func() error {
			report, err := simulate(cfg, c.Bool("debug"))
			if err != nil {
				return err
			}
			return vis.WriteReport(c.String("out"), report)
		}
		if err := rebuild(); err != nil {
			return err
		}
		log.Info("running in observer mode")
		return vis.NewServer(c.String("out"), rebuild).ListenAndServe(c.String("addr"))
	}

	report, err := simulate(cfg, c.Bool("debug"))
	if err != nil {
		return err
	}
	if c.Bool("graph") {
		if err := vis.WriteReport(c.String("out"), report); err != nil {
			return err
		}
		log.WithField("dir", c.String("out")).Info("report written")
	}
	vis.Render(report, c.Bool("verbose"))
	return nil
}

func simulate(cfg simulation.Config, debug bool) (*simulation.Report, error) {
	sim := simulation.NewSimulation(cfg)

	if debug {
		blockCh := make(chan *simulation.Block, 16)
		sub := sim.SubscribeBlocks(blockCh)
		defer sub.Unsubscribe()
		go func() {
			for {
				select {
				case block := <-blockCh:
					log.WithFields(logrus.Fields{
						"id":       block.ID(),
						"producer": block.Producer().Name,
						"height":   block.Height(),
					}).Debug("block appended")
				case <-sub.Err():
					return
				}
			}
		}()
	}

	if err := sim.Run(); err != nil {
		return nil, err
	}
	return simulation.Collect(sim.Chain(), sim.Miners()), nil
}
