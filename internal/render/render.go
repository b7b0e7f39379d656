// Package render draws the race charts as PNG images. Every function writes one
// image to w and keeps no state between calls. Empty input yields a blank chart
// carrying the title and a "no data" note rather than an error.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Size is the pixel size of a chart.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when a caller passes a zero Size.
var DefaultSize = Size{Width: 1024, Height: 640}

func (s Size) orDefault() Size {
	if s.Width <= 0 {
		s.Width = DefaultSize.Width
	}
	if s.Height <= 0 {
		s.Height = DefaultSize.Height
	}
	return s
}

var (
	colorWin  = drawing.ColorFromHex("2ca02c")
	colorLoss = drawing.ColorFromHex("d62728")
	palette   = []drawing.Color{
		drawing.ColorFromHex("1f77b4"),
		drawing.ColorFromHex("ff7f0e"),
		drawing.ColorFromHex("2ca02c"),
		drawing.ColorFromHex("d62728"),
		drawing.ColorFromHex("9467bd"),
		drawing.ColorFromHex("8c564b"),
		drawing.ColorFromHex("e377c2"),
		drawing.ColorFromHex("7f7f7f"),
		drawing.ColorFromHex("bcbd22"),
		drawing.ColorFromHex("17becf"),
	}
)

func paletteColor(i int) drawing.Color { return palette[i%len(palette)] }

func padding() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

var (
	textColor = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	mutedText = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// Blank writes a white chart with the title and a "no data" note.
func Blank(w io.Writer, title string, size Size) error {
	size = size.orDefault()
	img := canvas(size)
	drawText(img, title, (size.Width-textWidth(title))/2, 24, textColor)
	note := "no data"
	drawText(img, note, (size.Width-textWidth(note))/2, size.Height/2, mutedText)
	return encode(w, img)
}

func canvas(size Size) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// drawText writes s with its baseline at y.
func drawText(dst draw.Image, s string, x, y int, c color.Color) {
	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	dr.DrawString(s)
}

func textWidth(s string) int {
	dr := &font.Drawer{Face: basicfont.Face7x13}
	return dr.MeasureString(s).Ceil()
}

func encode(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// renderable is satisfied by every go-chart chart type.
type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderPNG(w io.Writer, title string, c renderable) error {
	if err := c.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", title, err)
	}
	return nil
}
