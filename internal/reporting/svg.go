package reporting

import (
	"fmt"
	"strings"
)

// Chart geometry for the equity SVG.
const (
	svgWidth  = 1100
	svgHeight = 320
	svgPad    = 40
)

// RenderEquitySVG renders the cumulative-R curve as a standalone SVG line
// chart that GitHub Markdown can embed.
func RenderEquitySVG(values []float64) string {
	if len(values) == 0 {
		values = []float64{0}
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		hi = lo + 1
	}

	sx := func(i int) float64 {
		span := len(values) - 1
		if span < 1 {
			span = 1
		}
		return svgPad + float64(i)/float64(span)*(svgWidth-2*svgPad)
	}
	sy := func(v float64) float64 {
		return svgPad + (1-(v-lo)/(hi-lo))*(svgHeight-2*svgPad)
	}

	points := make([]string, len(values))
	for i, v := range values {
		points[i] = fmt.Sprintf("%.2f,%.2f", sx(i), sy(v))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		svgWidth, svgHeight, svgWidth, svgHeight))
	sb.WriteString(`
  <defs>
    <linearGradient id="bg" x1="0" y1="0" x2="1" y2="1">
      <stop offset="0%" stop-color="#0b1220"/>
      <stop offset="100%" stop-color="#111827"/>
    </linearGradient>
  </defs>
`)
	sb.WriteString(fmt.Sprintf(`  <rect x="0" y="0" width="%d" height="%d" rx="18" fill="url(#bg)"/>
`, svgWidth, svgHeight))
	sb.WriteString(fmt.Sprintf(`  <g opacity="0.18" stroke="#ffffff" stroke-width="1">
    <line x1="%d" y1="%d" x2="%d" y2="%d"/>
    <line x1="%d" y1="%d" x2="%d" y2="%d"/>
    <line x1="%d" y1="%d" x2="%d" y2="%d"/>
  </g>
`,
		svgPad, svgPad, svgWidth-svgPad, svgPad,
		svgPad, svgHeight/2, svgWidth-svgPad, svgHeight/2,
		svgPad, svgHeight-svgPad, svgWidth-svgPad, svgHeight-svgPad))
	sb.WriteString(fmt.Sprintf(`  <polyline fill="none" stroke="#22c55e" stroke-width="3.2" points="%s"/>
`, strings.Join(points, " ")))
	sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" fill="#e5e7eb" font-family="ui-sans-serif, system-ui" font-size="16">Equity Curve (Cumulative R)</text>
`, svgPad, svgPad-12))
	sb.WriteString(fmt.Sprintf(`  <text x="%d" y="%d" fill="#9ca3af" font-family="ui-sans-serif, system-ui" font-size="12">Auto-updated after each run</text>
`, svgPad, svgHeight-12))
	sb.WriteString("</svg>\n")

	return sb.String()
}
