// Package charts renders small inline SVG charts for server-side pages.
package charts

import (
	"errors"
	"fmt"
	"html/template"
	"math"
	"regexp"
	"strings"
)

// Defaults for page charts.
const (
	DefaultWidth   = 640
	DefaultHeight  = 240
	DefaultPadding = 32.0
	DefaultTicks   = 5
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("charts: no data points")

// colorPattern accepts hex, rgb()/rgba() and named colors.
var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|rgba?\([0-9.,\s%]+\)|[a-zA-Z]+)$`)

// Point is one labelled value. Color is optional.
type Point struct {
	Label string
	Value float64
	Color string
}

// Style holds the options shared by every chart kind.
type Style struct {
	Title       string
	Description string
	Width       int
	Height      int
	Padding     float64
	TickCount   int
	AxisColor   string
	GridColor   string
}

func (s Style) withDefaults() Style {
	if s.Width <= 0 {
		s.Width = DefaultWidth
	}
	if s.Height <= 0 {
		s.Height = DefaultHeight
	}
	if s.Padding <= 0 {
		s.Padding = DefaultPadding
	}
	if s.TickCount <= 0 {
		s.TickCount = DefaultTicks
	}
	s.AxisColor = paint(s.AxisColor, "#475569")
	s.GridColor = paint(s.GridColor, "#cbd5e1")
	return s
}

// frame is the plotting area of an axis chart.
type frame struct {
	style          Style
	left, top      float64
	width, height  float64
	minVal, maxVal float64
}

func newFrame(style Style, values []float64) (frame, error) {
	f := frame{
		style:  style,
		left:   style.Padding,
		top:    style.Padding,
		width:  float64(style.Width) - 2*style.Padding,
		height: float64(style.Height) - 2*style.Padding,
	}
	if f.width <= 0 || f.height <= 0 {
		return frame{}, fmt.Errorf("charts: viewport too small")
	}
	f.minVal, f.maxVal = bounds(values)
	f.minVal = math.Min(f.minVal, 0)
	f.maxVal = math.Max(f.maxVal, 0)
	if almostEqual(f.maxVal, f.minVal) {
		f.maxVal = f.minVal + 1
	}
	return f, nil
}

func (f frame) bottom() float64 { return f.top + f.height }

func (f frame) y(value float64) float64 {
	return f.bottom() - (value-f.minVal)*f.height/(f.maxVal-f.minVal)
}

func openSVG(b *strings.Builder, style Style, kind, fallbackTitle string) {
	titleID := makeID(style.Title, kind+"-title")
	descID := makeID(style.Title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, style.Width, style.Height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(style.Title, fallbackTitle)))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(style.Description))
}

// grid draws dashed tick lines with value labels and both axes.
func (f frame) grid(b *strings.Builder) {
	s := f.style
	for i := 0; i <= s.TickCount; i++ {
		ratio := float64(i) / float64(s.TickCount)
		y := f.bottom() - ratio*f.height
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, f.left, y, f.left+f.width, y, s.GridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, f.left-6, y+4, s.AxisColor, formatTick(value))
	}
	fmt.Fprintf(b, `<g stroke="%s" aria-hidden="true">`, s.AxisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.left, f.top, f.left, f.bottom())
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.left, f.y(0), f.left+f.width, f.y(0))
	b.WriteString("</g>")
}

func (f frame) xLabel(b *strings.Builder, x float64, label string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x, f.bottom()+14, f.style.AxisColor, template.HTMLEscapeString(label))
}

func values(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

// paint returns value when it is a plain CSS color and defaultValue otherwise.
// Point colors come from backend data and end up inside attributes.
func paint(value, defaultValue string) string {
	value = strings.TrimSpace(value)
	if !colorPattern.MatchString(value) {
		return defaultValue
	}
	return value
}

func bounds(series []float64) (float64, float64) {
	if len(series) == 0 {
		return 0, 0
	}
	minVal, maxVal := series[0], series[0]
	for _, v := range series[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
