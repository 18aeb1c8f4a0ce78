package report

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samber/lo"

	"github.com/benchdeck/benchdeck/internal/result"
	"github.com/benchdeck/benchdeck/internal/score"
)

// CellType tags a comparison column so a presentation layer can sort
// it sensibly.
type CellType string

const (
	TypeText   CellType = "text"
	TypeNumber CellType = "number"
	TypeDate   CellType = "date"
)

// Column is one benchmark key ever observed across the scanned
// reports, carrying its most-recently-seen category and preset tags.
type Column struct {
	Key        string
	Categories []string
	Presets    []string
	Type       CellType
}

// Cell is one benchmark's rendering in one run.
type Cell struct {
	Text string
	// Sort carries the comparable scalar when Numeric is set.
	Sort    float64
	Numeric bool
	// Missing marks a benchmark this run never executed.
	Missing bool
}

// Row is one successfully parsed historical report.
type Row struct {
	GeneratedAt time.Time
	Hostname    string
	File        string
	Cells       []Cell
}

// Matrix is the cross-run comparison view.
type Matrix struct {
	Columns []Column
	Rows    []Row
}

// BuildMatrix scans every report file in dir and folds the parseable
// ones into a comparison matrix. Malformed or unreadable files are
// skipped; the scan never fails on account of a single report.
func BuildMatrix(dir string, rules score.Table) (*Matrix, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan results directory: %w", err)
	}

	type parsed struct {
		file string
		rep  *result.Report
	}
	var reports []parsed
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		rep, err := Read(filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable report", "file", entry.Name(), "error", err)
			continue
		}
		reports = append(reports, parsed{file: entry.Name(), rep: rep})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].rep.GeneratedAt.Before(reports[j].rep.GeneratedAt)
	})

	// Union of all keys ever observed; later reports win the tag fields.
	meta := map[string]Column{}
	for _, p := range reports {
		for _, res := range p.rep.Benchmarks {
			colType := TypeText
			if _, scored := rules[res.Name]; scored {
				colType = TypeNumber
			}
			meta[res.Name] = Column{
				Key:        res.Name,
				Categories: res.Categories,
				Presets:    res.Presets,
				Type:       colType,
			}
		}
	}

	keys := lo.Keys(meta)
	sort.Strings(keys)

	matrix := &Matrix{}
	for _, key := range keys {
		matrix.Columns = append(matrix.Columns, meta[key])
	}

	for _, p := range reports {
		byName := lo.KeyBy(p.rep.Benchmarks, func(r result.Result) string { return r.Name })
		row := Row{
			GeneratedAt: p.rep.GeneratedAt,
			Hostname:    p.rep.System.Hostname,
			File:        p.file,
		}
		for _, key := range keys {
			res, ran := byName[key]
			if !ran {
				row.Cells = append(row.Cells, Cell{Text: score.Placeholder, Missing: true})
				continue
			}
			cell := Cell{Text: rules.Cell(res)}
			if v, ok := rules.Extract(res); ok {
				cell.Sort = v
				cell.Numeric = true
			}
			row.Cells = append(row.Cells, cell)
		}
		matrix.Rows = append(matrix.Rows, row)
	}

	return matrix, nil
}

// WriteComparison scans dir and writes the comparison view as a single
// static HTML document at outPath.
func WriteComparison(dir, outPath string, rules score.Table) error {
	matrix, err := BuildMatrix(dir, rules)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = "Benchmark Comparison"
	chartCount := 0
	for i, col := range matrix.Columns {
		if col.Type != TypeNumber {
			continue
		}
		if chart := driftChart(matrix, i); chart != nil {
			page.AddCharts(chart)
			chartCount++
		}
	}

	var buf strings.Builder
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render comparison charts: %w", err)
	}

	tableHTML, err := renderTable(matrix)
	if err != nil {
		return err
	}

	html := buf.String()
	html = strings.Replace(html, "<body>", "<body>\n"+tableHTML, 1)
	html = strings.Replace(html, "</head>", comparisonCSS+"</head>", 1)

	outDir := filepath.Dir(outPath)
	if outDir != "" && outDir != "." {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("write comparison view: %w", err)
	}

	slog.Info("comparison view written",
		"path", outPath,
		"runs", len(matrix.Rows),
		"benchmarks", len(matrix.Columns),
		"charts", chartCount,
	)
	return nil
}

// driftChart plots one benchmark's score across runs, or nil when
// fewer than two runs carry a numeric value for it.
func driftChart(matrix *Matrix, col int) *charts.Line {
	var labels []string
	var data []opts.LineData
	for _, row := range matrix.Rows {
		cell := row.Cells[col]
		if !cell.Numeric {
			continue
		}
		labels = append(labels, row.GeneratedAt.Format("2006-01-02 15:04"))
		data = append(data, opts.LineData{Value: cell.Sort})
	}
	if len(data) < 2 {
		return nil
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: matrix.Columns[col].Key}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "320px"}),
	)
	line.SetXAxis(labels).AddSeries("", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(true)}),
	)
	return line
}

const comparisonCSS = `
    <style>
        body { font-family: sans-serif; max-width: 1400px; margin: 0 auto; padding: 20px; }
        table.compare { border-collapse: collapse; width: 100%; margin-bottom: 24px; }
        table.compare th, table.compare td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
        table.compare th { background: #f0f0f0; cursor: pointer; }
        table.compare td.missing { color: #999; text-align: center; }
    </style>
`

var tableTemplate = template.Must(template.New("compare").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`<h1>Benchmark Comparison</h1>
<table class="compare" id="compare">
  <thead>
    <tr>
      <th data-type="date">run</th>
      <th data-type="text">host</th>
{{- range .Columns}}
      <th data-type="{{.Type}}" title="{{join .Categories ", "}}">{{.Key}}</th>
{{- end}}
    </tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr>
      <td data-sort="{{.GeneratedAt.Unix}}">{{.GeneratedAt.Format "2006-01-02 15:04:05"}}</td>
      <td>{{.Hostname}}</td>
{{- range .Cells}}
{{- if .Numeric}}
      <td data-sort="{{.Sort}}">{{.Text}}</td>
{{- else if .Missing}}
      <td class="missing">{{.Text}}</td>
{{- else}}
      <td>{{.Text}}</td>
{{- end}}
{{- end}}
    </tr>
{{- end}}
  </tbody>
</table>
<script>
document.querySelectorAll('#compare th').forEach(function (th, col) {
  var asc = true;
  th.addEventListener('click', function () {
    var type = th.dataset.type;
    var body = th.closest('table').querySelector('tbody');
    var rows = Array.from(body.querySelectorAll('tr'));
    rows.sort(function (a, b) {
      var ca = a.children[col], cb = b.children[col];
      var va, vb;
      if (type === 'number' || type === 'date') {
        va = parseFloat(ca.dataset.sort); vb = parseFloat(cb.dataset.sort);
        if (isNaN(va)) va = -Infinity;
        if (isNaN(vb)) vb = -Infinity;
      } else {
        va = ca.textContent; vb = cb.textContent;
      }
      return (va < vb ? -1 : va > vb ? 1 : 0) * (asc ? 1 : -1);
    });
    rows.forEach(function (r) { body.appendChild(r); });
    asc = !asc;
  });
});
</script>
`))

func renderTable(matrix *Matrix) (string, error) {
	var buf strings.Builder
	if err := tableTemplate.Execute(&buf, matrix); err != nil {
		return "", fmt.Errorf("render comparison table: %w", err)
	}
	return buf.String(), nil
}
