package vis

import (
	"github.com/pterm/pterm"

	"github.com/shreekarashastry/collusion/simulation"
)

// Render prints the fork and miner statistics to the terminal. With verbose
// set it also lists every abandoned branch and every miner's personal score.
func Render(report *simulation.Report, verbose bool) {
	pterm.DefaultSection.Println("Fork statistics")

	forkData := pterm.TableData{
		{"Forks", pterm.Sprintf("%d", report.NumForks)},
		{"Max depth", pterm.Sprintf("%d", report.MaxDepth)},
		{"Abandoned blocks", pterm.Sprintf("%d/%d (%.2f%%)",
			report.AbandonedBlocks, len(report.Blocks)-1, report.AbandonedPct)},
	}
	_ = pterm.DefaultTable.WithData(forkData).Render()

	if verbose && report.NumForks > 0 {
		rows := pterm.TableData{{"Base", "Leaf", "Heights", "Depth"}}
		for _, f := range report.Forks {
			rows = append(rows, []string{
				pterm.Sprintf("%d", f.BaseID),
				pterm.Sprintf("%d", f.TipID),
				pterm.Sprintf("%d..%d", f.FromHeight, f.ToHeight),
				pterm.Sprintf("%d", f.Depth),
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}

	pterm.DefaultSection.Println("Miner statistics")

	if verbose {
		rows := pterm.TableData{{"Miner", "Kind", "Mined", "Included", "Confirmed"}}
		for _, m := range report.Miners {
			rows = append(rows, []string{
				m.Name,
				m.Kind.String(),
				pterm.Sprintf("%d", m.Mined),
				pterm.Sprintf("%d", m.Included),
				pterm.Sprintf("%.2f%%", m.Score),
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	}

	summary := pterm.TableData{
		{"Honest miners", pterm.Sprintf("%.2f%% confirmed", report.HonestScore)},
		{"Colluding miners", pterm.Sprintf("%.2f%% confirmed", report.ColludingScore)},
	}
	_ = pterm.DefaultTable.WithData(summary).Render()
}
