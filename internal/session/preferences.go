package session

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Layout styles.
const (
	LayoutCard = "card"
	LayoutList = "list"
)

// Display languages.
const (
	LanguageOriginal    = "original"
	LanguageSimplified  = "simplified"
	LanguageTraditional = "traditional"
)

const (
	minFontSize   = 12
	maxFontSize   = 36
	minLineHeight = 1.0
	maxLineHeight = 3.0
)

// BackgroundPresets are the named background tokens offered to readers.
var BackgroundPresets = []string{"aliceblue", "honeydew", "mistyrose", "ivory", "lavender", "white"}

// FontFamilies are the selectable font stacks.
var FontFamilies = []string{
	"Roboto, sans-serif",
	"Arial, sans-serif",
	"'Times New Roman', serif",
	"Verdana, sans-serif",
	"'Courier New', monospace",
	"Georgia, serif",
	"'Microsoft YaHei', sans-serif",
	"'SimSun', serif",
	"'SimHei', serif",
	"'FangSong', serif",
	"'KaiTi', serif",
	"'PingFang SC', sans-serif",
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Preferences are a reader's display settings.
type Preferences struct {
	FontSize   int     `json:"fontSize"`
	LineHeight float64 `json:"lineHeight"`
	FontFamily string  `json:"fontFamily"`
	TextColor  string  `json:"textColor"`
	Background string  `json:"bgColor"`
	Layout     string  `json:"layoutStyle"`
	Language   string  `json:"language"`
}

// DefaultPreferences returns the settings of a first-time reader.
func DefaultPreferences() Preferences {
	return Preferences{
		FontSize:   16,
		LineHeight: 1.6,
		FontFamily: "Roboto, sans-serif",
		TextColor:  "#333333",
		Background: "white",
		Layout:     LayoutCard,
		Language:   LanguageOriginal,
	}
}

// HeadingSize is the title font size derived from the body size.
func (p Preferences) HeadingSize() int {
	return int(float64(p.FontSize)*1.375 + 0.5)
}

// ValidBackground reports whether token is a preset or a hex color.
func ValidBackground(token string) bool {
	return slices.Contains(BackgroundPresets, token) || hexColor.MatchString(token)
}

// Sanitize replaces every unrecognized field with its default, keeping the
// valid ones, and returns the JSON names of the fields it reset.
func (p *Preferences) Sanitize() []string {
	def := DefaultPreferences()

	var reset []string

	if p.FontSize < minFontSize || p.FontSize > maxFontSize {
		p.FontSize = def.FontSize
		reset = append(reset, "fontSize")
	}
	// Written so that NaN fails the range check.
	if !(p.LineHeight >= minLineHeight && p.LineHeight <= maxLineHeight) {
		p.LineHeight = def.LineHeight
		reset = append(reset, "lineHeight")
	}
	if !slices.Contains(FontFamilies, p.FontFamily) {
		p.FontFamily = def.FontFamily
		reset = append(reset, "fontFamily")
	}
	if !hexColor.MatchString(p.TextColor) {
		p.TextColor = def.TextColor
		reset = append(reset, "textColor")
	}
	if !ValidBackground(p.Background) {
		p.Background = def.Background
		reset = append(reset, "bgColor")
	}
	if p.Layout != LayoutCard && p.Layout != LayoutList {
		p.Layout = def.Layout
		reset = append(reset, "layoutStyle")
	}
	switch p.Language {
	case LanguageOriginal, LanguageSimplified, LanguageTraditional:
	default:
		p.Language = def.Language
		reset = append(reset, "language")
	}

	return reset
}

// DecodePreferences reads a stored preferences document field by field.
// Values stored as strings are accepted for numeric fields. A field that is
// missing or cannot be read keeps its default and is reported as reset.
func DecodePreferences(data []byte) (Preferences, []string, error) {
	p := DefaultPreferences()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return p, nil, fmt.Errorf("failed to decode preferences: %w", err)
	}

	var reset []string

	decodeInt := func(name string, dst *int) {
		raw, ok := fields[name]
		if !ok {
			return
		}
		if n, ok := numberField(raw); ok {
			*dst = int(n)
			return
		}
		reset = append(reset, name)
	}
	decodeFloat := func(name string, dst *float64) {
		raw, ok := fields[name]
		if !ok {
			return
		}
		if n, ok := numberField(raw); ok {
			*dst = n
			return
		}
		reset = append(reset, name)
	}
	decodeString := func(name string, dst *string) {
		raw, ok := fields[name]
		if !ok {
			return
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			*dst = s
			return
		}
		reset = append(reset, name)
	}

	decodeInt("fontSize", &p.FontSize)
	decodeFloat("lineHeight", &p.LineHeight)
	decodeString("fontFamily", &p.FontFamily)
	decodeString("textColor", &p.TextColor)
	decodeString("bgColor", &p.Background)
	decodeString("layoutStyle", &p.Layout)
	decodeString("language", &p.Language)

	reset = append(reset, p.Sanitize()...)

	return p, reset, nil
}

func numberField(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}

	return n, true
}
