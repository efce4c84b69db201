package charts

import (
	"fmt"
	"html/template"
	"strings"
)

// BarOpts customises Bars.
type BarOpts struct {
	Style
	// Color is used for points without their own color.
	Color string
}

// Bars renders one bar per point.
func Bars(points []Point, opts BarOpts) (template.HTML, error) {
	if len(points) == 0 {
		return "", ErrNoData
	}
	style := opts.Style.withDefaults()
	f, err := newFrame(style, values(points))
	if err != nil {
		return "", err
	}
	defaultColor := paint(opts.Color, "#0ea5e9")
	slot := f.width / float64(len(points))
	barWidth := slot * 0.6

	var b strings.Builder
	openSVG(&b, style, "bar", "Bar chart")
	f.grid(&b)
	for i, p := range points {
		x := f.left + float64(i)*slot + (slot-barWidth)/2
		top, bottom := f.y(p.Value), f.y(0)
		if top > bottom {
			top, bottom = bottom, top
		}
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>%s: %s</title></rect>`,
			x, top, barWidth, bottom-top, paint(p.Color, defaultColor), template.HTMLEscapeString(p.Label), formatTick(p.Value))
		f.xLabel(&b, x+barWidth/2, p.Label)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
