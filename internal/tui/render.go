package tui

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const halfBlock = "▀"

type cellColors struct {
	top, bottom color.RGBA
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return color.RGBA{A: 0xff}
	}
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func hex(c color.RGBA) lipgloss.Color {
	cf, _ := colorful.MakeColor(c)
	return lipgloss.Color(cf.Hex())
}

// HalfBlocks renders img as cols x rows terminal cells. Each cell paints the
// upper pixel as foreground and the lower one as background of "▀". Runs of
// identical cells share one style.
func HalfBlocks(img image.Image, cols, rows int) string {
	var sb strings.Builder
	for cy := 0; cy < rows; cy++ {
		if cy > 0 {
			sb.WriteByte('\n')
		}
		run := 0
		var cur cellColors
		flush := func() {
			if run == 0 {
				return
			}
			style := lipgloss.NewStyle().Foreground(hex(cur.top)).Background(hex(cur.bottom))
			sb.WriteString(style.Render(strings.Repeat(halfBlock, run)))
			run = 0
		}
		for cx := 0; cx < cols; cx++ {
			c := cellColors{top: rgbaAt(img, cx, 2*cy), bottom: rgbaAt(img, cx, 2*cy+1)}
			if run > 0 && c != cur {
				flush()
			}
			cur = c
			run++
		}
		flush()
	}
	return sb.String()
}
