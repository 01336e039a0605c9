package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/archlens/archlens/pkg/types"
)

// dashboardTemplate is the self-contained HTML dashboard. It shows the
// project root, file and edge counts, the health summary, and the layer
// list; the diagram itself is emitted separately.
const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Architecture Health — {{.Root}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #2c3e50; }
  h1 { font-size: 1.4rem; }
  .grade { display: inline-block; font-size: 2.4rem; font-weight: 700; padding: .4rem 1.2rem;
           border-radius: .5rem; color: #fff; background: {{.GradeColor}}; }
  .status { text-transform: uppercase; letter-spacing: .05em; font-size: .8rem; color: #7f8c8d; }
  table { border-collapse: collapse; margin-top: 1.5rem; }
  th, td { text-align: left; padding: .4rem .9rem; border-bottom: 1px solid #ecf0f1; }
  th { font-size: .75rem; text-transform: uppercase; color: #95a5a6; }
  .swatch { display: inline-block; width: .8rem; height: .8rem; border-radius: .2rem; margin-right: .4rem; }
  .metrics { display: flex; gap: 1.5rem; flex-wrap: wrap; margin-top: 1.5rem; }
  .metric { border: 1px solid #ecf0f1; border-radius: .5rem; padding: .8rem 1.2rem; min-width: 9rem; }
  .metric b { display: block; font-size: 1.4rem; }
  .metric span { font-size: .75rem; color: #95a5a6; }
</style>
</head>
<body>
<h1>Architecture Health</h1>
<p class="status">{{.Health.Status}} — score {{.Health.Score}}/100</p>
<p><span class="grade">{{.Health.Grade}}</span></p>

<div class="metrics">
  <div class="metric"><b>{{.FileCount}}</b><span>modules</span></div>
  <div class="metric"><b>{{.EdgeCount}}</b><span>dependencies</span></div>
  <div class="metric"><b>{{.Health.CircularDeps}}</b><span>cycles</span></div>
  <div class="metric"><b>{{.Health.LayerViolations}}</b><span>layer violations</span></div>
  <div class="metric"><b>{{.Health.OrphanCount}}</b><span>orphans</span></div>
  <div class="metric"><b>{{printf "%.2f" .Health.AverageCoupling}}</b><span>avg coupling</span></div>
</div>

<table>
  <tr><th></th><th>Layer</th><th>Level</th><th>Modules</th></tr>
  {{range .Layers}}
  <tr>
    <td><span class="swatch" style="background:{{.Color}}"></span></td>
    <td>{{.Name}}</td>
    <td>{{.Level}}</td>
    <td>{{len .Modules}}</td>
  </tr>
  {{end}}
</table>
</body>
</html>
`

// gradeColors maps grades to badge backgrounds.
var gradeColors = map[string]string{
	"A": "#2ecc71",
	"B": "#27ae60",
	"C": "#f39c12",
	"D": "#e67e22",
	"F": "#e74c3c",
}

type dashboardData struct {
	*types.AnalysisResult
	GradeColor string
}

// HTML writes the health dashboard.
func HTML(w io.Writer, result *types.AnalysisResult) error {
	tmpl, err := template.New("dashboard").Parse(dashboardTemplate)
	if err != nil {
		return fmt.Errorf("parse dashboard template: %w", err)
	}

	gradeColor, ok := gradeColors[result.Health.Grade]
	if !ok {
		gradeColor = "#7f8c8d"
	}

	return tmpl.Execute(w, dashboardData{AnalysisResult: result, GradeColor: gradeColor})
}
