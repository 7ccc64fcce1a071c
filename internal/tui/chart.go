package tui

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"weighttrack/internal/app"
)

// NoDataMessage replaces the chart when there is nothing to plot.
const NoDataMessage = "No data to show."

// RenderChart draws s as an ASCII line chart of the given plot size.
func RenderChart(s app.ChartSeries, width, height int) string {
	if !s.HasData() {
		return NoDataMessage
	}
	values := s.Values()
	if len(values) == 1 {
		// a single point still needs two samples to draw a line
		values = []float64{values[0], values[0]}
	}
	caption := fmt.Sprintf("%s  %s to %s", s.Label, s.Points[0].Label, s.Points[len(s.Points)-1].Label)
	return asciigraph.Plot(values,
		asciigraph.Height(max(height, 2)),
		asciigraph.Width(max(width, 10)),
		asciigraph.Precision(1),
		asciigraph.Caption(caption))
}
