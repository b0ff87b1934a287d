package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Pie renders slices drawn on a unit circle, scaled into the viewport. An
// empty slice list renders a neutral placeholder.
func Pie(width, height int, slices []PieSlice, opts PieOpts) (template.HTML, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	textColor := fallback(opts.TextColor, "#475569")
	stroke := fallback(opts.Stroke, "#ffffff")

	legendWidth := 0.0
	if opts.ShowLegend {
		legendWidth = float64(width) * 0.4
	}
	radius := (minFloat(float64(width)-legendWidth, float64(height)) / 2) - DefaultPadding/2
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	cx := (float64(width) - legendWidth) / 2
	cy := float64(height) / 2

	titleID := makeID(opts.Title, "pie-title")
	descID := makeID(opts.Title, "pie-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Pie chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share of each category"))))

	if len(slices) == 0 {
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"#e2e8f0\"></circle>", cx, cy, radius))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"middle\">%s</text>", cx, cy+4, textColor, template.HTMLEscapeString(fallback(opts.EmptyLabel, "No expenses recorded"))))
		b.WriteString("</svg>")
		return template.HTML(b.String()), nil
	}

	// Paths are in unit coordinates; rotate so the first slice starts at 12 o'clock.
	b.WriteString(fmt.Sprintf("<g transform=\"translate(%.2f %.2f) rotate(-90) scale(%.2f)\">", cx, cy, radius))
	for _, s := range slices {
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%.4f\" aria-label=\"%s %.1f%%\"></path>",
			template.HTMLEscapeString(s.Path), s.Color, stroke, 2/radius, template.HTMLEscapeString(s.Label), s.Percentage))
	}
	b.WriteString("</g>")

	if opts.ShowLegend {
		legendX := float64(width) - legendWidth + DefaultPadding/2
		legendY := cy - float64(len(slices))*18/2
		for i, s := range slices {
			y := legendY + float64(i)*18
			b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, y, s.Color))
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"start\">%s %.1f%%</text>",
				legendX+16, y+9, textColor, template.HTMLEscapeString(s.Label), s.Percentage))
		}
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
