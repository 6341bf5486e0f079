// Package convert maps text between simplified and traditional Chinese so a
// keyword typed in either script matches content written in the other.
package convert

import (
	"fmt"

	"github.com/longbridgeapp/opencc"
)

// Converter turns a string into its simplified or traditional form.
type Converter interface {
	ToSimplified(s string) string
	ToTraditional(s string) string
}

// Forms returns the simplified and traditional forms of keyword.
func Forms(c Converter, keyword string) (string, string) {
	if c == nil {
		return keyword, keyword
	}

	return c.ToSimplified(keyword), c.ToTraditional(keyword)
}

// Identity leaves text unchanged.
type Identity struct{}

func (Identity) ToSimplified(s string) string  { return s }
func (Identity) ToTraditional(s string) string { return s }

// Func adapts a pair of functions to Converter.
type Func struct {
	Simplified  func(string) string
	Traditional func(string) string
}

func (f Func) ToSimplified(s string) string {
	if f.Simplified == nil {
		return s
	}

	return f.Simplified(s)
}

func (f Func) ToTraditional(s string) string {
	if f.Traditional == nil {
		return s
	}

	return f.Traditional(s)
}

const (
	toSimplifiedConfig  = "tw2s"
	toTraditionalConfig = "s2tw"
)

// OpenCC converts with the Taiwan traditional / mainland simplified tables.
type OpenCC struct {
	t2s *opencc.OpenCC
	s2t *opencc.OpenCC
}

// NewOpenCC loads both conversion tables.
func NewOpenCC() (*OpenCC, error) {
	t2s, err := opencc.New(toSimplifiedConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s converter: %w", toSimplifiedConfig, err)
	}

	s2t, err := opencc.New(toTraditionalConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s converter: %w", toTraditionalConfig, err)
	}

	return &OpenCC{t2s: t2s, s2t: s2t}, nil
}

// ToSimplified returns s unchanged when the conversion fails.
func (o *OpenCC) ToSimplified(s string) string {
	out, err := o.t2s.Convert(s)
	if err != nil {
		return s
	}

	return out
}

// ToTraditional returns s unchanged when the conversion fails.
func (o *OpenCC) ToTraditional(s string) string {
	out, err := o.s2t.Convert(s)
	if err != nil {
		return s
	}

	return out
}

// New returns the converter selected by name: "opencc" or "none".
func New(name string) (Converter, error) {
	switch name {
	case "", "opencc":
		return NewOpenCC()
	case "none":
		return Identity{}, nil
	default:
		return nil, fmt.Errorf("unknown converter %q", name)
	}
}

// ForLanguage returns the display transform for a reader language:
// "simplified", "traditional", or anything else for the original text.
func ForLanguage(c Converter, language string) func(string) string {
	if c == nil {
		return func(s string) string { return s }
	}

	switch language {
	case "simplified":
		return c.ToSimplified
	case "traditional":
		return c.ToTraditional
	default:
		return func(s string) string { return s }
	}
}
