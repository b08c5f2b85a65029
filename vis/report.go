package vis

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/shreekarashastry/collusion/simulation"
)

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Mining Simulation Report</title>
<style>
table, th, td { border: 1px solid black; border-collapse: collapse; }
th, td { padding: 5px; text-align: left; }
.responsive-svg { max-width: 100%; height: auto; }
</style>
</head>
<body>
<p>Generated at: {{.GeneratedAt}}</p>
<h1>Withholding Simulation</h1>
<h2>Fork Statistics</h2>
<table>
<tr><th>Forks</th><td>{{.Report.NumForks}}</td></tr>
<tr><th>Max depth</th><td>{{.Report.MaxDepth}}</td></tr>
<tr><th>Abandoned blocks</th><td>{{.Report.AbandonedBlocks}} ({{printf "%.2f" .Report.AbandonedPct}}%)</td></tr>
<tr><th>Honest miners</th><td>{{printf "%.2f" .Report.HonestScore}}% confirmed</td></tr>
<tr><th>Colluding miners</th><td>{{printf "%.2f" .Report.ColludingScore}}% confirmed</td></tr>
</table>
<h2>Miners</h2>
<table>
<tr><th>Miner</th><th>Kind</th><th>Mined</th><th>Included</th><th>Confirmed</th></tr>
{{range .Report.Miners}}<tr><td>{{.Name}}</td><td>{{.Kind}}</td><td>{{.Mined}}</td><td>{{.Included}}</td><td>{{printf "%.2f" .Score}}%</td></tr>
{{end}}</table>
<h2>Block DAG</h2>
{{if .SVG}}<div class="responsive-svg">{{.SVG}}</div>
{{else}}<p>Graphviz not available; see <a href="blockchain.dot">blockchain.dot</a>.</p>
{{end}}</body>
</html>
`

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

// WriteReport renders the report into dir: the DOT source, an SVG when the
// dot binary is on PATH, and an index.html with the statistics tables.
func WriteReport(dir string, report *simulation.Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	dot := Graph(report)
	dotPath := filepath.Join(dir, "blockchain.dot")
	if err := os.WriteFile(dotPath, []byte(dot), 0644); err != nil {
		return err
	}

	var svg []byte
	if _, err := exec.LookPath("dot"); err == nil {
		out, err := exec.Command("dot", "-Tsvg", dotPath).Output()
		if err != nil {
			return fmt.Errorf("dot render: %w", err)
		}
		svg = out
		if err := os.WriteFile(filepath.Join(dir, "blockchain.svg"), svg, 0644); err != nil {
			return err
		}
	}

	page := struct {
		GeneratedAt string
		Report      *simulation.Report
		SVG         template.HTML
	}{
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Report:      report,
		SVG:         template.HTML(svg),
	}
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, page); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "index.html"), buf.Bytes(), 0644)
}
