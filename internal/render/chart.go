package render

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/mat"
)

type ChartOptions struct {
	Title string
	// MaxSide bounds the plotted grid; larger spectra are stride sampled.
	MaxSide int
}

// MagnitudeChart plots a log-magnitude spectrum as a heatmap with a
// grayscale colorbar. Row 0 is drawn at the top. Non-finite bins are left out.
func MagnitudeChart(m mat.Matrix, o ChartOptions) *charts.HeatMap {
	r, c := m.Dims()
	step := 1
	if o.MaxSide > 0 {
		step = max((max(r, c)+o.MaxSide-1)/o.MaxSide, 1)
	}

	var xLabels, yLabels []string
	for x := 0; x < c; x += step {
		xLabels = append(xLabels, fmt.Sprintf("%d", x))
	}
	for y := 0; y < r; y += step {
		yLabels = append(yLabels, fmt.Sprintf("%d", y))
	}
	rows := len(yLabels)
	// category axes grow upward, so labels run bottom to top
	for i, j := 0, len(yLabels)-1; i < j; i, j = i+1, j-1 {
		yLabels[i], yLabels[j] = yLabels[j], yLabels[i]
	}

	lo, hi, _ := finiteRange(m)
	var data []opts.HeatMapData
	for yi, y := 0, 0; y < r; yi, y = yi+1, y+step {
		for xi, x := 0, 0; x < c; xi, x = xi+1, x+step {
			v := m.At(y, x)
			if math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			data = append(data, opts.HeatMapData{
				Value: [3]any{xi, rows - 1 - yi, float32(v)},
			})
		}
	}

	title := o.Title
	if title == "" {
		title = "Magnitude Spectrum"
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "640px",
			Height: "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("20*ln|F| of a %dx%d spectrum, every %d bin(s)", r, c, step),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Data: xLabels,
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category",
			Data: yLabels,
			Show: opts.Bool(false),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Range:      []float32{float32(lo), float32(hi)},
			InRange:    &opts.VisualMapInRange{Color: []string{"#000000", "#ffffff"}},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	heatmap.AddSeries("Magnitude", data)
	return heatmap
}

// WriteChart renders the chart as a standalone HTML document.
func WriteChart(w io.Writer, chart *charts.HeatMap) error {
	return chart.Render(w)
}

// ChartHTML renders the chart into a string.
func ChartHTML(chart *charts.HeatMap) (string, error) {
	var buf bytes.Buffer
	if err := WriteChart(&buf, chart); err != nil {
		return "", err
	}
	return buf.String(), nil
}
