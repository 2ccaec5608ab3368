// internal/evaluation/render.go
package evaluation

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"risk-predictor/internal/common/errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)

// Render writes the report as plain text tables.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Evaluated %d of %d rows\n", r.Evaluated, r.Rows)
	if len(r.Failures) > 0 {
		codes := make([]errors.ErrorCode, 0, len(r.Failures))
		for code := range r.Failures {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
		for _, code := range codes {
			fmt.Fprintf(&b, "  rejected %s: %d\n", code, r.Failures[code])
		}
	}

	section(&b, "Class distribution in test set")
	dist := newTable("label", "count")
	for _, label := range sortedKeys(r.Distribution) {
		dist.Row(label, fmt.Sprint(r.Distribution[label]))
	}
	b.WriteString(dist.String() + "\n")

	section(&b, "Classification report")
	report := newTable("class", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		report.Row(c.Label, f2(c.Precision), f2(c.Recall), f2(c.F1), fmt.Sprint(c.Support))
	}
	report.Row("accuracy", "", "", f2(r.Accuracy), fmt.Sprint(r.Evaluated))
	b.WriteString(report.String() + "\n")

	section(&b, "Confusion matrix (rows: actual, columns: predicted)")
	cm := newTable("", r.Classes[0].Label, r.Classes[1].Label)
	for i := 0; i < 2; i++ {
		cm.Row(r.Classes[i].Label, fmt.Sprint(r.Confusion[i][0]), fmt.Sprint(r.Confusion[i][1]))
	}
	b.WriteString(cm.String() + "\n")

	if r.Evaluated > 0 {
		section(&b, "Mean predicted probability")
		fmt.Fprintf(&b, "class 0: %.2f%%, class 1: %.2f%%\n", r.MeanHealthy, r.MeanRisk)

		section(&b, "Predicted probability percentiles for class 1")
		pct := newTable("percentile", "probability")
		for _, p := range r.RiskPercentiles {
			pct.Row(fmt.Sprintf("%g", p.Percent), fmt.Sprintf("%.4f", p.Value))
		}
		b.WriteString(pct.String() + "\n")
	}

	section(&b, fmt.Sprintf("False negatives (predicted healthy but actually bankrupt): %d", r.FalseNegatives))
	if len(r.FalseNegativeExamples) > 0 {
		headers := append([]string{"row"}, firstColumns(r.Header, exampleColumns)...)
		headers = append(headers, "risk")
		ex := newTable(headers...)
		for _, e := range r.FalseNegativeExamples {
			cells := append([]string{fmt.Sprint(e.Row)}, e.Values...)
			ex.Row(append(cells, f2(e.Risk))...)
		}
		b.WriteString(ex.String() + "\n")
	}

	if len(r.TopImportances) > 0 {
		section(&b, fmt.Sprintf("Top %d feature importance indices", len(r.TopImportances)))
		imp := newTable("index", "importance")
		for _, i := range r.TopImportances {
			imp.Row(fmt.Sprint(i.Index), fmt.Sprintf("%.6f", i.Value))
		}
		b.WriteString(imp.String() + "\n")
	} else {
		section(&b, "Model does not expose feature importances. Skipping importance check.")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string) {
	b.WriteString(sectionStyle.Render(title) + "\n")
}

func newTable(headers ...string) *table.Table {
	return table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
}

func f2(v float64) string { return fmt.Sprintf("%.2f", v) }

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
