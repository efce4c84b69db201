package charts

import (
	"fmt"
	"html/template"
	"strings"
)

// LineOpts customises Line.
type LineOpts struct {
	Style
	StrokeColor string
	FillColor   string
	ShowDots    bool
}

// Line renders a trend line with a shaded area beneath it.
func Line(points []Point, opts LineOpts) (template.HTML, error) {
	if len(points) == 0 {
		return "", ErrNoData
	}
	style := opts.Style.withDefaults()
	f, err := newFrame(style, values(points))
	if err != nil {
		return "", err
	}
	stroke := paint(opts.StrokeColor, "#2563eb")
	fill := paint(opts.FillColor, "rgba(37,99,235,0.12)")

	xs := make([]float64, len(points))
	for i := range points {
		if len(points) == 1 {
			xs[i] = f.left + f.width/2
			continue
		}
		xs[i] = f.left + float64(i)*f.width/float64(len(points)-1)
	}

	var path strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, xs[i], f.y(p.Value))
	}
	d := strings.TrimSpace(path.String())

	var b strings.Builder
	openSVG(&b, style, "line", "Line chart")
	f.grid(&b)
	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none" aria-hidden="true"></path>`, d, xs[len(xs)-1], f.y(0), xs[0], f.y(0), fill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, d, stroke)
	for i, p := range points {
		if opts.ShowDots {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"><title>%s: %s</title></circle>`, xs[i], f.y(p.Value), stroke, template.HTMLEscapeString(p.Label), formatTick(p.Value))
		}
		f.xLabel(&b, xs[i], p.Label)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
