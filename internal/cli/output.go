package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/ppiankov/feverpipe/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

func printBanner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// field prints one aligned "  name:  value" line
func field(w io.Writer, name string, value any) {
	fmt.Fprintf(w, "  %-20s %v\n", name+":", value)
}

func printReport(w io.Writer, title string, r model.Report) {
	printBanner(w, title)
	field(w, "Claims", r.Claims)
	field(w, "FEVER score", fmt.Sprintf("%.4f", r.Strict))
	field(w, "Label accuracy", fmt.Sprintf("%.4f", r.LabelAccuracy))
	field(w, "Evidence precision", fmt.Sprintf("%.4f", r.Precision))
	field(w, "Evidence recall", fmt.Sprintf("%.4f", r.Recall))
	field(w, "Evidence F1", fmt.Sprintf("%.4f", r.F1))
	fmt.Fprintln(w)
}

func printMetrics(w io.Writer, taskName string, metrics map[string]float64) {
	printBanner(w, "Metrics: "+taskName)
	for _, name := range slices.Sorted(maps.Keys(metrics)) {
		field(w, name, fmt.Sprintf("%.4f", metrics[name]))
	}
	fmt.Fprintln(w)
}
