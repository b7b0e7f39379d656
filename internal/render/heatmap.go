package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/KaramelBytes/raceda/internal/analysis"
)

// coolwarm anchors: -1, 0 and +1.
var (
	coolLow  = color.RGBA{R: 59, G: 76, B: 192, A: 255}
	coolMid  = color.RGBA{R: 221, G: 221, B: 221, A: 255}
	coolHigh = color.RGBA{R: 180, G: 4, B: 38, A: 255}
	nanCell  = color.RGBA{R: 245, G: 245, B: 245, A: 255}
)

const labelChars = 14

// Heatmap draws the correlation matrix as a colored grid with the
// coefficient printed in each cell.
func Heatmap(w io.Writer, title string, m *analysis.CorrMatrix, size Size) error {
	if m == nil || len(m.Columns) == 0 {
		return Blank(w, title, size)
	}
	size = size.orDefault()
	img := canvas(size)
	drawText(img, title, (size.Width-textWidth(title))/2, 24, textColor)

	n := len(m.Columns)
	left := 0
	for _, c := range m.Columns {
		left = max(left, textWidth(clip(c, labelChars)))
	}
	left += 16
	top := 60
	bottom := 50
	cell := min((size.Width-left-16)/n, (size.Height-top-bottom)/n)
	if cell < 4 {
		cell = 4
	}

	for i := 0; i < n; i++ {
		y := top + i*cell
		drawText(img, clip(m.Columns[i], labelChars), 8, y+cell/2+4, textColor)
		for j := 0; j < n; j++ {
			x := left + j*cell
			v := m.Values[i][j]
			r := image.Rect(x, y, x+cell-1, y+cell-1)
			draw.Draw(img, r, image.NewUniform(coolwarm(v)), image.Point{}, draw.Src)
			if cell >= 36 && !math.IsNaN(v) {
				s := fmt.Sprintf("%.2f", v)
				tc := textColor
				if math.Abs(v) > 0.6 {
					tc = color.RGBA{R: 255, G: 255, B: 255, A: 255}
				}
				drawText(img, s, x+(cell-textWidth(s))/2, y+cell/2+4, tc)
			}
		}
	}
	for j := 0; j < n; j++ {
		label := clip(m.Columns[j], max(cell/7, 1))
		drawText(img, label, left+j*cell+(cell-textWidth(label))/2, top-8, textColor)
	}
	drawScale(img, left, top+n*cell+16, min(n*cell, 300))
	return encode(w, img)
}

// drawScale draws the -1..+1 color bar.
func drawScale(img *image.RGBA, x, y, width int) {
	if width < 40 {
		return
	}
	for i := 0; i < width; i++ {
		v := -1 + 2*float64(i)/float64(width-1)
		draw.Draw(img, image.Rect(x+i, y, x+i+1, y+10), image.NewUniform(coolwarm(v)), image.Point{}, draw.Src)
	}
	drawText(img, "-1", x, y+24, mutedText)
	drawText(img, "+1", x+width-textWidth("+1"), y+24, mutedText)
}

func coolwarm(v float64) color.RGBA {
	if math.IsNaN(v) {
		return nanCell
	}
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return lerp(coolMid, coolLow, -v)
	}
	return lerp(coolMid, coolHigh, v)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t)) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "~"
}
