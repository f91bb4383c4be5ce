// Package report renders the one-dimensional histograms of a memory sink
// into a standalone HTML page for quick inspection of an analysis run.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/hepkit/jetcorr/internal/adapters/sink"
)

// Render writes one bar chart per registered 1D histogram to w. Higher
// dimensional histograms are skipped; their projections belong to a real
// analysis framework, not a monitoring page.
func Render(w io.Writer, mem *sink.Memory, title string) error {
	page := components.NewPage()
	page.PageTitle = title

	charted := 0
	for _, hname := range mem.Names() {
		axes := mem.Axes(hname)
		if len(axes) != 1 {
			continue
		}
		page.AddCharts(barChart(hname, axes[0], mem))
		charted++
	}
	if charted == 0 {
		return fmt.Errorf("render %q: no 1d histograms to chart", title)
	}
	return page.Render(w)
}

// RenderFile renders to path, creating or truncating the file.
func RenderFile(path string, mem *sink.Memory, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := Render(f, mem, title); err != nil {
		return err
	}
	return f.Close()
}

func barChart(hname string, axis sink.Axis, mem *sink.Memory) *charts.Bar {
	weights := mem.Weights(hname)
	edges := axis.Edges()

	labels := make([]string, len(weights))
	data := make([]opts.BarData, len(weights))
	for i, wgt := range weights {
		labels[i] = fmt.Sprintf("%.3g", (edges[i]+edges[i+1])/2)
		data[i] = opts.BarData{Value: wgt}
	}

	sub := fmt.Sprintf("entries=%d dropped=%d", mem.Entries(hname), mem.Dropped(hname))
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: hname, Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("weight", data)
	return bar
}
