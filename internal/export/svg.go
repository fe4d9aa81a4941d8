// Package export renders stored run data to standalone files.
package export

import (
	"fmt"
	"os"
	"strings"
)

const (
	svgWidth  = 800.0
	svgHeight = 400.0
	svgMargin = 40.0
)

// TraceSVG renders an energy trace as an SVG line plot with an error
// band around the mean.
func TraceSVG(energies, errors []float64, title string) string {
	if len(energies) < 2 {
		return ""
	}

	minE, maxE := energies[0], energies[0]
	for i, e := range energies {
		lo, hi := e, e
		if i < len(errors) {
			lo -= errors[i]
			hi += errors[i]
		}
		if lo < minE {
			minE = lo
		}
		if hi > maxE {
			maxE = hi
		}
	}
	span := maxE - minE
	if span == 0 {
		span = 1
	}

	x := func(i int) float64 {
		return svgMargin + (svgWidth-2*svgMargin)*float64(i)/float64(len(energies)-1)
	}
	y := func(e float64) float64 {
		return svgHeight - svgMargin - (svgHeight-2*svgMargin)*(e-minE)/span
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="%.0f" y="24" fill="#cccccc" font-family="monospace" font-size="14">%s</text>
`, svgWidth, svgHeight, svgWidth, svgHeight, svgMargin, title))

	if len(errors) == len(energies) {
		sb.WriteString(`<polygon fill="#00ff88" fill-opacity="0.15" points="`)
		for i, e := range energies {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f ", x(i), y(e+errors[i])))
		}
		for i := len(energies) - 1; i >= 0; i-- {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f ", x(i), y(energies[i]-errors[i])))
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString(`<polyline fill="none" stroke="#00ff88" stroke-width="1.5" points="`)
	for i, e := range energies {
		sb.WriteString(fmt.Sprintf("%.1f,%.1f ", x(i), y(e)))
	}
	sb.WriteString("\"/>\n")

	sb.WriteString(fmt.Sprintf(`<text x="%.0f" y="%.0f" fill="#888888" font-family="monospace" font-size="11">%.4f</text>
<text x="%.0f" y="%.0f" fill="#888888" font-family="monospace" font-size="11">%.4f</text>
</svg>
`, 4.0, y(maxE)+4, maxE, 4.0, y(minE)+4, minE))

	return sb.String()
}

func WriteTraceSVG(path string, energies, errors []float64, title string) error {
	svg := TraceSVG(energies, errors, title)
	if svg == "" {
		return fmt.Errorf("export: not enough data to plot")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
