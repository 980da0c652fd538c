package report

import (
	"github.com/guptarohit/asciigraph"

	"github.com/n-veld/apogee/internal/flight"
)

// AltitudePlot renders altitude vs. time for one trajectory.
func AltitudePlot(traj []flight.Point) string {
	if len(traj) < 2 {
		return ""
	}
	data := make([]float64, len(traj))
	for i, p := range traj {
		data[i] = p.Altitude
	}
	return asciigraph.Plot(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("altitude [m] vs control ticks"),
	)
}

// DeploymentPlot renders the commanded deployment over the flight.
func DeploymentPlot(traj []flight.Point) string {
	if len(traj) < 2 {
		return ""
	}
	data := make([]float64, len(traj))
	for i, p := range traj {
		data[i] = p.Deployment
	}
	return asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("brake deployment [0-1] vs control ticks"),
	)
}

// Histogram renders an outcome distribution as a bar-count plot.
func Histogram(values []float64, bins int, caption string) string {
	if len(values) == 0 || bins < 2 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	counts := make([]float64, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		b := int((v - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	return asciigraph.Plot(counts,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}
