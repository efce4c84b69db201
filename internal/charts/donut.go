package charts

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// DonutOpts customises Donut.
type DonutOpts struct {
	Style
	// Thickness of the ring as a fraction of the radius.
	Thickness float64
	Palette   []string
}

var defaultPalette = []string{"#3b82f6", "#ef4444", "#f59e0b", "#10b981", "#8b5cf6", "#06b6d4", "#eab308", "#78716c", "#ec4899"}

// Donut renders shares of a whole as a ring with a legend.
func Donut(points []Point, opts DonutOpts) (template.HTML, error) {
	total := 0.0
	for _, p := range points {
		if p.Value > 0 {
			total += p.Value
		}
	}
	if len(points) == 0 || total == 0 {
		return "", ErrNoData
	}
	style := opts.Style
	if style.Height <= 0 {
		style.Height = 200
	}
	if style.Width <= 0 {
		style.Width = 360
	}
	style = style.withDefaults()
	thickness := opts.Thickness
	if thickness <= 0 || thickness >= 1 {
		thickness = 0.4
	}
	palette := opts.Palette
	if len(palette) == 0 {
		palette = defaultPalette
	}

	radius := float64(style.Height)/2 - 8
	cx, cy := radius+8, float64(style.Height)/2
	stroke := radius * thickness
	ring := radius - stroke/2
	circumference := 2 * math.Pi * ring

	var b strings.Builder
	openSVG(&b, style, "donut", "Share breakdown")
	offset := 0.0
	legendY := 20.0
	for i, p := range points {
		if p.Value <= 0 {
			continue
		}
		color := paint(p.Color, palette[i%len(palette)])
		share := p.Value / total
		length := share * circumference
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-width="%.2f" stroke-dasharray="%.2f %.2f" stroke-dashoffset="%.2f" transform="rotate(-90 %.2f %.2f)"><title>%s: %.1f%%</title></circle>`,
			cx, cy, ring, color, stroke, length, circumference-length, -offset, cx, cy, template.HTMLEscapeString(p.Label), share*100)
		offset += length
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, 2*cx+12, legendY-9, color)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="11">%s (%.1f%%)</text>`, 2*cx+28, legendY, style.AxisColor, template.HTMLEscapeString(p.Label), share*100)
		legendY += 18
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
