// Package term presents software framebuffers on a terminal. Each cell
// shows two vertically stacked pixels using the upper half block, with the
// foreground as the top pixel and the background as the bottom one.
package term

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/ortho/pkg/gpu/soft"
)

// Canvas is the part of uv.Screen the presenter writes to.
type Canvas interface {
	SetCell(x, y int, c *uv.Cell)
}

// FramebufferSize returns the pixel size that fills cols x rows cells.
func FramebufferSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// Draw converts fb to terminal cells inside area.
// The framebuffer height should be 2x the area height.
func Draw(scr Canvas, area uv.Rectangle, fb *soft.Framebuffer) {
	width := int(fb.Width())
	height := int(fb.Height())

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= width {
				break
			}
			top := fb.GetPixel(x, topY)
			bot := fb.GetPixel(x, botY)

			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(top),
					Bg: rgbaToColor(bot),
				},
			})
		}
	}
}

// Text writes s from (x, y) rightwards, one rune per cell, stopping at
// maxX. It returns the column after the last cell written.
func Text(scr Canvas, x, y, maxX int, s string, style uv.Style) int {
	for _, r := range s {
		if x >= maxX {
			break
		}
		scr.SetCell(x, y, &uv.Cell{Content: string(r), Width: 1, Style: style})
		x++
	}
	return x
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
