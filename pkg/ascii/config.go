// Package ascii converts images to text blocks using a configurable
// glyph ramp. The conversion pipeline is grayscale, resize, tone
// adjustment, glyph quantization.
package ascii

import (
	"encoding/json"
)

// Config holds all conversion parameters.
// These can be modified at runtime and persist between runs.
type Config struct {
	// === Geometry ===
	Width  int `json:"width"`  // Output columns
	Height int `json:"height"` // Output rows; 0 derives from aspect ratio

	// LineSpacing corrects the derived height for character cells
	// being taller than they are wide. Used only when Height is 0.
	LineSpacing float64 `json:"line_spacing"`

	// === Glyphs ===
	// Charset is the active ramp, darkest glyph first.
	Charset string `json:"charset"`

	// Three editable ramp presets. SelectSlot copies one into Charset.
	CharsetSlot1 string `json:"charset_slot1"`
	CharsetSlot2 string `json:"charset_slot2"`
	CharsetSlot3 string `json:"charset_slot3"`
	ActiveSlot   int    `json:"active_slot"`

	// === Tone ===
	Brightness float64 `json:"brightness"` // Multiplier; 1.0 = unchanged
	Contrast   float64 `json:"contrast"`   // Multiplier around the mean; 1.0 = unchanged
	Invert     bool    `json:"invert"`     // Swap dark and bright

	// LastImage is the most recently loaded local image path.
	LastImage string `json:"last_image"`
}

// DefaultConfig returns the standard conversion configuration.
func DefaultConfig() Config {
	return Config{
		Width:       100,
		Height:      0, // Auto
		LineSpacing: 0.55,

		Charset:      DefaultCharset,
		CharsetSlot1: DefaultCharset,
		CharsetSlot2: SoftCharset,
		CharsetSlot3: BlockCharset,
		ActiveSlot:   1,

		Brightness: 1.0,
		Contrast:   1.0,
		Invert:     false,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Width < 1 {
		errors = append(errors, "width must be at least 1")
	}
	if c.Height < 0 {
		errors = append(errors, "height must be 0 (auto) or positive")
	}
	if c.LineSpacing <= 0 {
		errors = append(errors, "line_spacing must be positive")
	}
	if c.Charset == "" {
		errors = append(errors, "charset must not be empty")
	}
	if c.ActiveSlot < 1 || c.ActiveSlot > 3 {
		errors = append(errors, "active_slot must be 1, 2, or 3")
	}
	if c.Brightness <= 0 {
		errors = append(errors, "brightness must be positive")
	}
	if c.Contrast <= 0 {
		errors = append(errors, "contrast must be positive")
	}

	return errors
}

// ActiveCharset resolves the ramp used for rendering: the active
// Charset when set, otherwise the selected slot, otherwise the
// default ramp.
func (c Config) ActiveCharset() string {
	if c.Charset != "" {
		return c.Charset
	}
	if s := c.Slot(c.ActiveSlot); s != "" {
		return s
	}
	return DefaultCharset
}

// Slot returns the preset stored in slot n (1-3), or the slot 1
// preset for out-of-range n.
func (c Config) Slot(n int) string {
	switch n {
	case 2:
		return c.CharsetSlot2
	case 3:
		return c.CharsetSlot3
	default:
		return c.CharsetSlot1
	}
}

// SelectSlot copies the preset in slot n into the active Charset and
// records the selection.
func (c *Config) SelectSlot(n int) {
	if n < 1 || n > 3 {
		n = 1
	}
	c.ActiveSlot = n
	c.Charset = c.Slot(n)
}

// Apply merges recognized keys from params into a copy of the config.
// Unknown keys are ignored. A slot selection applies after every other
// key, so preset edits in the same request take effect.
func (c Config) Apply(params map[string]interface{}) Config {
	cfg := c

	slot, slotSet := 0, false
	for key, value := range params {
		switch key {
		case "width":
			if v, ok := toInt(value); ok {
				cfg.Width = v
			}
		case "height":
			if v, ok := toInt(value); ok {
				cfg.Height = v
			}
		case "line_spacing":
			if v, ok := toFloat(value); ok {
				cfg.LineSpacing = v
			}
		case "charset":
			if v, ok := value.(string); ok {
				cfg.Charset = v
			}
		case "charset_slot1":
			if v, ok := value.(string); ok {
				cfg.CharsetSlot1 = v
			}
		case "charset_slot2":
			if v, ok := value.(string); ok {
				cfg.CharsetSlot2 = v
			}
		case "charset_slot3":
			if v, ok := value.(string); ok {
				cfg.CharsetSlot3 = v
			}
		case "active_slot":
			if v, ok := toInt(value); ok {
				slot, slotSet = v, true
			}
		case "brightness":
			if v, ok := toFloat(value); ok {
				cfg.Brightness = v
			}
		case "contrast":
			if v, ok := toFloat(value); ok {
				cfg.Contrast = v
			}
		case "invert":
			if v, ok := toBool(value); ok {
				cfg.Invert = v
			}
		case "last_image":
			if v, ok := value.(string); ok {
				cfg.LastImage = v
			}
		}
	}
	if slotSet {
		cfg.SelectSlot(slot)
	}

	return cfg
}

// RenderKey returns a canonical serialization of the subset of the
// config that affects rendered output. Two configs with equal keys
// render any frame identically; field order never splits the key
// space because JSON object keys are emitted sorted.
func (c Config) RenderKey() string {
	data, _ := json.Marshal(map[string]interface{}{
		"width":        c.Width,
		"height":       c.Height,
		"line_spacing": c.LineSpacing,
		"charset":      c.ActiveCharset(),
		"brightness":   c.Brightness,
		"contrast":     c.Contrast,
		"invert":       c.Invert,
	})
	return string(data)
}

// Helper functions for type conversion

func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case json.Number:
		i, err := val.Int64()
		if err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

func toBool(v interface{}) (bool, bool) {
	if val, ok := v.(bool); ok {
		return val, true
	}
	return false, false
}
