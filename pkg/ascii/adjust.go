package ascii

// AdjustPixels applies tone controls to a luminance buffer in place.
// The order is fixed: brightness scaling, then contrast around the
// mean of the brightness-adjusted buffer, then inversion. Samples are
// clamped to [0, 255] after each arithmetic step.
func AdjustPixels(pixels [][]float64, brightness, contrast float64, invert bool) {
	var sum float64
	var count int
	for y := range pixels {
		for x := range pixels[y] {
			v := clampSample(pixels[y][x] * brightness)
			pixels[y][x] = v
			sum += v
			count++
		}
	}
	if count == 0 {
		return
	}

	mean := sum / float64(count)
	for y := range pixels {
		for x := range pixels[y] {
			v := clampSample((pixels[y][x]-mean)*contrast + mean)
			if invert {
				v = 255 - v
			}
			pixels[y][x] = v
		}
	}
}

func clampSample(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
