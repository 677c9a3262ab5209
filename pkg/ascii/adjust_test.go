package ascii

import "testing"

// buffer values are chosen so every intermediate mean is exactly
// representable and the identity laws hold bit-for-bit.
func testBuffer() [][]float64 {
	return [][]float64{
		{0, 64},
		{128, 192},
	}
}

func TestAdjustPixelsBrightnessOnly(t *testing.T) {
	pixels := testBuffer()
	AdjustPixels(pixels, 2.0, 1.0, false)

	// At contrast 1.0 the mean pivot is an identity, so the result is
	// brightness scaling with clamping and nothing else.
	want := [][]float64{
		{0, 128},
		{255, 255},
	}
	for y := range want {
		for x := range want[y] {
			if pixels[y][x] != want[y][x] {
				t.Errorf("pixel (%d,%d) = %v, expected %v", x, y, pixels[y][x], want[y][x])
			}
		}
	}
}

func TestAdjustPixelsInvertOnly(t *testing.T) {
	pixels := testBuffer()
	AdjustPixels(pixels, 1.0, 1.0, true)

	want := [][]float64{
		{255, 191},
		{127, 63},
	}
	for y := range want {
		for x := range want[y] {
			if pixels[y][x] != want[y][x] {
				t.Errorf("pixel (%d,%d) = %v, expected %v", x, y, pixels[y][x], want[y][x])
			}
		}
	}
}

func TestAdjustPixelsIdentity(t *testing.T) {
	pixels := testBuffer()
	AdjustPixels(pixels, 1.0, 1.0, false)

	want := testBuffer()
	for y := range want {
		for x := range want[y] {
			if pixels[y][x] != want[y][x] {
				t.Errorf("pixel (%d,%d) = %v, expected %v unchanged", x, y, pixels[y][x], want[y][x])
			}
		}
	}
}

func TestAdjustPixelsContrastPivotsOnMean(t *testing.T) {
	// Uniform buffer: contrast pivots on the mean, so any contrast
	// leaves a uniform image unchanged.
	pixels := [][]float64{
		{128, 128},
		{128, 128},
	}
	AdjustPixels(pixels, 1.0, 5.0, false)

	for y := range pixels {
		for x := range pixels[y] {
			if pixels[y][x] != 128 {
				t.Errorf("pixel (%d,%d) = %v, expected uniform 128 to survive contrast", x, y, pixels[y][x])
			}
		}
	}
}

func TestAdjustPixelsContrastSpreads(t *testing.T) {
	// Mean is 96; contrast 2.0 doubles each sample's distance from it.
	pixels := [][]float64{
		{0, 64},
		{128, 192},
	}
	AdjustPixels(pixels, 1.0, 2.0, false)

	want := [][]float64{
		{0, 32}, // 0-96 doubles to -192, clamped; 64-96 doubles to -64
		{160, 255},
	}
	for y := range want {
		for x := range want[y] {
			if pixels[y][x] != want[y][x] {
				t.Errorf("pixel (%d,%d) = %v, expected %v", x, y, pixels[y][x], want[y][x])
			}
		}
	}
}

func TestAdjustPixelsBrightnessBeforeContrast(t *testing.T) {
	// The contrast pivot is the mean of the brightness-adjusted
	// buffer: {0,128,255,255} after doubling, mean 159.5. If the mean
	// came from the original buffer (96) the results would differ.
	pixels := [][]float64{
		{0, 64},
		{128, 192},
	}
	AdjustPixels(pixels, 2.0, 2.0, false)

	want := [][]float64{
		{0, 96.5}, // (128-159.5)*2+159.5
		{255, 255},
	}
	for y := range want {
		for x := range want[y] {
			if pixels[y][x] != want[y][x] {
				t.Errorf("pixel (%d,%d) = %v, expected %v", x, y, pixels[y][x], want[y][x])
			}
		}
	}
}

func TestAdjustPixelsEmptyBuffer(t *testing.T) {
	AdjustPixels(nil, 2.0, 2.0, true)
	AdjustPixels([][]float64{}, 2.0, 2.0, true)
	// Nothing to assert beyond not panicking on a zero-sample buffer.
}
