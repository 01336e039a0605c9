package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/archlens/archlens/pkg/types"
)

// Summary writes a colorized terminal summary of the analysis. Color
// output degrades automatically when not writing to a TTY or when
// NO_COLOR is set.
func Summary(w io.Writer, result *types.AnalysisResult) {
	bold := color.New(color.Bold)

	bold.Fprintf(w, "Architecture analysis: %s\n\n", result.Root)
	fmt.Fprintf(w, "  Modules:       %d\n", result.FileCount)
	fmt.Fprintf(w, "  Dependencies:  %d\n", result.EdgeCount)
	fmt.Fprintf(w, "  External pkgs: %d\n", len(result.Graph.Externals))
	if result.ErrorCount > 0 {
		color.New(color.FgYellow).Fprintf(w, "  Parse errors:  %d file(s)\n", result.ErrorCount)
	}
	fmt.Fprintln(w)

	bold.Fprintln(w, "Layers")
	for _, layer := range result.Layers {
		fmt.Fprintf(w, "  %d. %-16s %d module(s)\n", layer.Level, layer.Name, len(layer.Modules))
	}
	fmt.Fprintln(w)

	h := result.Health
	bold.Fprintln(w, "Health")
	fmt.Fprintf(w, "  Avg coupling:     %.2f\n", h.AverageCoupling)
	fmt.Fprintf(w, "  Cycles:           %s\n", countColored(h.CircularDeps))
	fmt.Fprintf(w, "  Layer violations: %s\n", countColored(h.LayerViolations))
	fmt.Fprintf(w, "  Orphans:          %d\n", h.OrphanCount)
	fmt.Fprintf(w, "  Entry points:     %d\n", h.EntryPointCount)
	fmt.Fprintf(w, "  Score:            %d/100  grade %s  (%s)\n",
		h.Score, h.Grade, statusColor(h.Status).Sprint(h.Status))
}

// countColored renders zero in green and anything else in red.
func countColored(n int) string {
	if n == 0 {
		return color.New(color.FgGreen).Sprintf("%d", n)
	}
	return color.New(color.FgRed).Sprintf("%d", n)
}

func statusColor(status string) *color.Color {
	switch status {
	case "healthy":
		return color.New(color.FgGreen)
	case "warning":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
