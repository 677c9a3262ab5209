package ascii

import (
	"image"
	"image/draw"
	"math"
	"strings"

	"github.com/nfnt/resize"
)

// Render converts img to a text block under cfg.
//
// Pipeline, fixed order: grayscale, target size calculation, resize,
// tone adjustment, glyph quantization. Rows are joined with "\n" and
// carry no trailing newline. The output always has the target row
// count and cfg.Width columns.
func Render(img image.Image, cfg Config) string {
	width := cfg.Width
	if width < 1 {
		width = 1
	}

	gray := toGray(img)
	height := targetHeight(gray.Bounds().Dx(), gray.Bounds().Dy(), width, cfg)

	scaled := toGray(resize.Resize(uint(width), uint(height), gray, resize.Bilinear))

	pixels := grayPixels(scaled)
	AdjustPixels(pixels, cfg.Brightness, cfg.Contrast, cfg.Invert)

	ramp := NewCharset(cfg.ActiveCharset())
	var b strings.Builder
	b.Grow(height * (width + 1))
	for y, row := range pixels {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, sample := range row {
			b.WriteRune(ramp.Glyph(sample))
		}
	}
	return b.String()
}

// targetHeight derives the output row count when cfg.Height is unset:
// round(width * srcH/srcW * line_spacing), floored to at least 1.
func targetHeight(srcW, srcH, width int, cfg Config) int {
	if cfg.Height > 0 {
		return cfg.Height
	}
	if srcW < 1 || srcH < 1 {
		return 1
	}
	h := int(math.Round(float64(width) * float64(srcH) / float64(srcW) * cfg.LineSpacing))
	if h < 1 {
		h = 1
	}
	return h
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

func grayPixels(g *image.Gray) [][]float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([][]float64, h)
	for y := 0; y < h; y++ {
		row := make([]float64, w)
		for x := 0; x < w; x++ {
			row[x] = float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
		pixels[y] = row
	}
	return pixels
}
