package ascii

// Built-in glyph ramps, darkest glyph first. These seed the three
// editable charset slots.
const (
	DefaultCharset = "@%#*+=-,."
	SoftCharset    = "@%#*+=-.: "
	BlockCharset   = "█▓▒░ "
)

// Charset is an ordered glyph ramp. Index 0 renders the darkest
// sample, the last index the brightest.
type Charset []rune

// NewCharset builds a Charset from s. An empty string falls back to
// DefaultCharset so rendering always has at least one glyph.
func NewCharset(s string) Charset {
	if s == "" {
		s = DefaultCharset
	}
	return Charset(s)
}

// Glyph maps a luminance sample in [0, 255] to a ramp glyph.
// Sample 0 yields the first glyph and 255 the last; a single-glyph
// ramp always yields its only glyph.
func (c Charset) Glyph(sample float64) rune {
	idx := int(sample / 255.0 * float64(len(c)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c) {
		idx = len(c) - 1
	}
	return c[idx]
}
