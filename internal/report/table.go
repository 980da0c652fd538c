// Package report renders batch results and sensitivity tables for the
// terminal.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/n-veld/apogee/internal/mc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))
)

// Sensitivity renders the ranked index table with confidence bounds.
func Sensitivity(a *mc.Analysis) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("sensitivity: %s", a.Outcome)))
	sb.WriteString(fmt.Sprintf("  (%d sample rows)\n\n", a.Rows))

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("parameter\tS1\t95% CI\tST\t95% CI"))
	for _, idx := range a.Indices {
		fmt.Fprintf(w, "%s\t%.3f\t[%.3f, %.3f]\t%.3f\t[%.3f, %.3f]\n",
			idx.Name,
			idx.First, idx.FirstLow, idx.FirstHigh,
			idx.Total, idx.TotalLow, idx.TotalHigh)
	}
	w.Flush()
	return sb.String()
}

// BatchSummary renders trial counts and the outcome statistics table.
func BatchSummary(batch *mc.Batch, outcomes []string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("monte carlo batch"))
	sb.WriteString(fmt.Sprintf("  %d requested, %d completed, %d failed (%.1fs)\n",
		batch.Requested, batch.Completed, batch.Failed, batch.Elapsed.Seconds()))
	if batch.Failed > 0 {
		sb.WriteString(warnStyle.Render(fmt.Sprintf("%d trials excluded from statistics", batch.Failed)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("outcome\tmean\tstd\tmin\tp5\tp50\tp95\tmax"))
	for _, name := range outcomes {
		s := mc.Summarize(batch.OutcomeValues(name))
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			name, s.Mean, s.Std, s.Min, s.P5, s.P50, s.P95, s.Max)
	}
	w.Flush()
	return sb.String()
}

// FlightSummary renders the scalar outcomes of one flight.
func FlightSummary(o mc.Outcomes, target float64) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("flight summary"))
	sb.WriteString("\n\n")
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "apogee\t%.1f m\t(target %.0f m, miss %+.1f m)\n", o.Apogee, target, o.Apogee-target)
	fmt.Fprintf(w, "max velocity\t%.1f m/s\n", o.MaxVelocity)
	fmt.Fprintf(w, "max acceleration\t%.1f m/s^2\n", o.MaxAcceleration)
	fmt.Fprintf(w, "time to apogee\t%.1f s\n", o.TimeToApogee)
	fmt.Fprintf(w, "flight time\t%.1f s\n", o.FlightTime)
	fmt.Fprintf(w, "impact range\t%.1f m\n", o.ImpactRange)
	w.Flush()
	return sb.String()
}
