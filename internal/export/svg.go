package export

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/template"

	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
)

// Scale selects the y axis of a spectrum plot.
type Scale int

const (
	// ScaleLog plots 20*log10(|X|/|X_peak|).
	ScaleLog Scale = iota
	// ScaleLinear plots |X|.
	ScaleLinear
)

const (
	plotWidth  = 800
	plotHeight = 480
	margin     = 60
	// maxPoints caps the polyline size; each pixel column keeps its
	// largest value so peaks survive decimation.
	maxPoints = plotWidth - 2*margin
)

type svgData struct {
	Title          string
	Width, Height  int
	Left, Top      int
	Right, Bottom  int
	Points         string
	XLabel, YLabel string
	XMin, XMax     string
	YMin, YMax     string
}

var svgTemplate = template.Must(template.New("plot").Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<rect width="100%" height="100%" fill="white"/>
<text x="{{.Left}}" y="{{.Top}}" dy="-20" font-family="sans-serif" font-size="14">{{.Title}}</text>
<line x1="{{.Left}}" y1="{{.Bottom}}" x2="{{.Right}}" y2="{{.Bottom}}" stroke="black"/>
<line x1="{{.Left}}" y1="{{.Top}}" x2="{{.Left}}" y2="{{.Bottom}}" stroke="black"/>
<text x="{{.Left}}" y="{{.Bottom}}" dy="16" font-family="sans-serif" font-size="11">{{.XMin}}</text>
<text x="{{.Right}}" y="{{.Bottom}}" dy="16" text-anchor="end" font-family="sans-serif" font-size="11">{{.XMax}}</text>
<text x="{{.Left}}" y="{{.Bottom}}" dx="-6" text-anchor="end" font-family="sans-serif" font-size="11">{{.YMin}}</text>
<text x="{{.Left}}" y="{{.Top}}" dx="-6" dy="10" text-anchor="end" font-family="sans-serif" font-size="11">{{.YMax}}</text>
<text x="{{.Right}}" y="{{.Bottom}}" dy="36" text-anchor="end" font-family="sans-serif" font-size="12">{{.XLabel}}</text>
<text x="{{.Left}}" y="{{.Top}}" dx="-40" dy="-6" font-family="sans-serif" font-size="12">{{.YLabel}}</text>
<polyline fill="none" stroke="steelblue" stroke-width="1" points="{{.Points}}"/>
</svg>
`))

// WriteSVG plots the search band of spec.
func WriteSVG(w io.Writer, spec spectrum.Spectrum, scale Scale, title string) error {
	pts := bins(spec)
	if len(pts) == 0 {
		return ErrEmptySpectrum
	}

	var peak float64
	for _, p := range pts {
		peak = math.Max(peak, p.Value)
	}

	yLabel := "magnitude"
	if scale == ScaleLog {
		yLabel = "dB"
		for i := range pts {
			pts[i].Value = toDB(pts[i].Value, peak)
		}
	}

	pts = decimate(pts, maxPoints)

	yMin, yMax := pts[0].Value, pts[0].Value
	for _, p := range pts {
		yMin = math.Min(yMin, p.Value)
		yMax = math.Max(yMax, p.Value)
	}
	if yMax == yMin {
		yMax = yMin + 1
	}
	xMax := pts[len(pts)-1].Freq
	if xMax == 0 {
		xMax = 1
	}

	data := svgData{
		Title:  title,
		Width:  plotWidth,
		Height: plotHeight,
		Left:   margin,
		Top:    margin,
		Right:  plotWidth - margin,
		Bottom: plotHeight - margin,
		XLabel: "frequency (Hz)",
		YLabel: yLabel,
		XMin:   "0",
		XMax:   fmt.Sprintf("%.0f", xMax),
		YMin:   fmt.Sprintf("%.1f", yMin),
		YMax:   fmt.Sprintf("%.1f", yMax),
	}

	var sb strings.Builder
	spanX := float64(data.Right - data.Left)
	spanY := float64(data.Bottom - data.Top)
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		x := float64(data.Left) + p.Freq/xMax*spanX
		y := float64(data.Bottom) - (p.Value-yMin)/(yMax-yMin)*spanY
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	data.Points = sb.String()

	return svgTemplate.Execute(w, data)
}

// decimate reduces pts to at most n points by keeping the maximum of each
// bucket.
func decimate(pts []point, n int) []point {
	if len(pts) <= n {
		return pts
	}

	out := make([]point, 0, n)
	for b := range n {
		lo := b * len(pts) / n
		hi := (b + 1) * len(pts) / n
		best := pts[lo]
		for _, p := range pts[lo+1 : hi] {
			if p.Value > best.Value {
				best = p
			}
		}
		out = append(out, best)
	}
	return out
}
