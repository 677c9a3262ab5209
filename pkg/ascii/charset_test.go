package ascii

import "testing"

func TestCharsetGlyphBoundaries(t *testing.T) {
	ramp := NewCharset("@%#*+=-,.")

	if g := ramp.Glyph(0); g != '@' {
		t.Errorf("expected darkest sample to map to '@', got %q", g)
	}
	if g := ramp.Glyph(255); g != '.' {
		t.Errorf("expected brightest sample to map to '.', got %q", g)
	}
}

func TestCharsetGlyphTwoGlyphRamp(t *testing.T) {
	ramp := NewCharset("#.")

	// Every sample must land on one of the two glyphs.
	for s := 0; s <= 255; s++ {
		g := ramp.Glyph(float64(s))
		if g != '#' && g != '.' {
			t.Fatalf("sample %d mapped to %q, expected '#' or '.'", s, g)
		}
	}

	// The midpoint boundary: 127/255*1 floors to 0, 128/255*1 still
	// floors to 0; only 255 reaches index 1.
	if g := ramp.Glyph(254); g != '#' {
		t.Errorf("expected sample 254 to map to '#', got %q", g)
	}
	if g := ramp.Glyph(255); g != '.' {
		t.Errorf("expected sample 255 to map to '.', got %q", g)
	}
}

func TestCharsetGlyphSingleGlyph(t *testing.T) {
	ramp := NewCharset("#")

	for _, s := range []float64{0, 100, 255} {
		if g := ramp.Glyph(s); g != '#' {
			t.Errorf("expected single-glyph ramp to always yield '#', got %q for sample %v", g, s)
		}
	}
}

func TestCharsetGlyphOutOfRange(t *testing.T) {
	ramp := NewCharset("@.")

	if g := ramp.Glyph(-10); g != '@' {
		t.Errorf("expected below-range sample to clamp to first glyph, got %q", g)
	}
	if g := ramp.Glyph(300); g != '.' {
		t.Errorf("expected above-range sample to clamp to last glyph, got %q", g)
	}
}

func TestCharsetUnicode(t *testing.T) {
	ramp := NewCharset(BlockCharset)

	if len(ramp) != 5 {
		t.Fatalf("expected 5 runes in block ramp, got %d", len(ramp))
	}
	if g := ramp.Glyph(0); g != '█' {
		t.Errorf("expected darkest block glyph, got %q", g)
	}
	if g := ramp.Glyph(255); g != ' ' {
		t.Errorf("expected space for brightest sample, got %q", g)
	}
}

func TestNewCharsetEmpty(t *testing.T) {
	ramp := NewCharset("")

	if string(ramp) != DefaultCharset {
		t.Errorf("expected empty charset to fall back to default, got %q", string(ramp))
	}
}
