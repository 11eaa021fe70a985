// Package chart renders result tables as PNG charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/courtside/internal/domain/types"
)

// Palette holds the chart colors.
type Palette struct {
	Background string
	Text       string
	Primary    string
}

// DefaultPalette matches the site stylesheet.
var DefaultPalette = Palette{
	Background: "#ffffff",
	Text:       "#1f2933",
	Primary:    "#2e7d32",
}

// ErrRender reports a chart that could not be drawn.
var ErrRender = errors.New("render chart")

const (
	width    = 800
	height   = 400
	barWidth = 48
)

// Bar renders one bar per row, labelled by labelCol and sized by valueCol.
func Bar(title string, t *types.Table, labelCol, valueCol string, p Palette) ([]byte, error) {
	if t.Empty() {
		return Placeholder("No data", p)
	}

	bars := make([]gochart.Value, 0, t.Len())
	maxValue := 0.0
	for i := 0; i < t.Len(); i++ {
		v := t.Float(i, valueCol)
		if v > maxValue {
			maxValue = v
		}
		bars = append(bars, gochart.Value{
			Label: label(t.String(i, labelCol)),
			Value: v,
			Style: gochart.Style{
				FillColor:   color(p.Primary),
				StrokeColor: color(p.Primary),
			},
		})
	}
	if maxValue <= 0 {
		maxValue = 1
	}

	graph := gochart.BarChart{
		Title:      title,
		TitleStyle: gochart.Style{FontColor: color(p.Text)},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: 16,
		Background: gochart.Style{FillColor: color(p.Background), Padding: gochart.Box{Top: 48}},
		Canvas:     gochart.Style{FillColor: color(p.Background)},
		XAxis:      gochart.Style{FontColor: color(p.Text), FontSize: 8},
		YAxis: gochart.YAxis{
			Style: gochart.Style{FontColor: color(p.Text)},
			Range: &gochart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	return render(graph)
}

// Pie renders one slice per row with a positive value.
func Pie(title string, t *types.Table, labelCol, valueCol string, p Palette) ([]byte, error) {
	values := make([]gochart.Value, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		v := t.Float(i, valueCol)
		if v <= 0 {
			continue
		}
		name := t.String(i, labelCol)
		if name == "" {
			name = "(none)"
		}
		values = append(values, gochart.Value{Label: fmt.Sprintf("%s (%.0f)", name, v), Value: v})
	}
	if len(values) == 0 {
		return Placeholder("No data", p)
	}

	graph := gochart.PieChart{
		Title:      title,
		TitleStyle: gochart.Style{FontColor: color(p.Text)},
		Width:      height,
		Height:     height,
		Background: gochart.Style{FillColor: color(p.Background)},
		Canvas:     gochart.Style{FillColor: color(p.Background)},
		Values:     values,
	}
	return render(graph)
}

// Scatter renders xCol against yCol as dots. Fewer than two points render
// the placeholder since a single point has no axis range.
func Scatter(title string, t *types.Table, xCol, yCol, xName, yName string, p Palette) ([]byte, error) {
	if t.Len() < 2 {
		return Placeholder("No data", p)
	}

	xs := make([]float64, t.Len())
	ys := make([]float64, t.Len())
	for i := range xs {
		xs[i] = t.Float(i, xCol)
		ys[i] = t.Float(i, yCol)
	}

	graph := gochart.Chart{
		Title:      title,
		TitleStyle: gochart.Style{FontColor: color(p.Text)},
		Width:      width,
		Height:     height,
		Background: gochart.Style{FillColor: color(p.Background), Padding: gochart.Box{Top: 48, Left: 16}},
		Canvas:     gochart.Style{FillColor: color(p.Background)},
		XAxis: gochart.XAxis{
			Name:           xName,
			Style:          gochart.Style{FontColor: color(p.Text)},
			ValueFormatter: intFormatter,
		},
		YAxis: gochart.YAxis{
			Name:           yName,
			Style:          gochart.Style{FontColor: color(p.Text)},
			ValueFormatter: intFormatter,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeWidth: gochart.Disabled,
					DotWidth:    5,
					DotColor:    color(p.Primary),
				},
			},
		},
	}
	return render(graph)
}

// Placeholder renders msg centred on a blank canvas.
func Placeholder(msg string, p Palette) ([]byte, error) {
	graph := gochart.Chart{
		Width:      width / 2,
		Height:     height / 2,
		Background: gochart.Style{FillColor: color(p.Background)},
		Canvas:     gochart.Style{FillColor: color(p.Background)},
		Elements: []gochart.Renderable{
			func(r gochart.Renderer, cb gochart.Box, _ gochart.Style) {
				r.SetFontColor(color(p.Text))
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	return render(graph)
}

type renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

func render(g renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(trimHash(hex))
}

func trimHash(s string) string {
	if len(s) > 0 && s[0] == '#' {
		return s[1:]
	}
	return s
}

// label shortens long axis labels.
func label(s string) string {
	const max = 14
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
