package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"commentarchive/internal/convert"
)

func TestHighlighter_Apply(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		in      string
		want    string
	}{
		{"plain", "foo", "a foo b", `a <span class="keyword-highlight">foo</span> b`},
		{"case insensitive", "foo", "FOO and Foo", `<span class="keyword-highlight">FOO</span> and <span class="keyword-highlight">Foo</span>`},
		{"attributes untouched", "foo", `<a href="/foo">foo</a>`, `<a href="/foo"><span class="keyword-highlight">foo</span></a>`},
		{"both forms", "谢谢", "謝謝 and 谢谢", `<span class="keyword-highlight">謝謝</span> and <span class="keyword-highlight">谢谢</span>`},
		{"entities", "a&b", "x a&amp;b y", `x <span class="keyword-highlight">a&amp;b</span> y`},
		{"script skipped", "foo", "<script>foo()</script>foo", `<script>foo()</script><span class="keyword-highlight">foo</span>`},
		{"blank keyword", "  ", "foo", "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHighlighter(scripts(), tt.keyword)
			assert.Equal(t, tt.want, h.Apply(tt.in))
		})
	}
}

func TestHighlighter_NoMatchIsIdentity(t *testing.T) {
	inputs := []string{
		"nothing here",
		`<p class="x">some &amp; text<br/>more</p>`,
		"<div><b>bold</b> &lt;tag&gt;</div>",
	}

	h := NewHighlighter(convert.Identity{}, "keyword")
	for _, in := range inputs {
		assert.Equal(t, in, h.Apply(in))
	}
}

func TestHighlighter_Deterministic(t *testing.T) {
	in := "<p>foo bar foo</p>"
	h := NewHighlighter(nil, "foo")

	assert.Equal(t, h.Apply(in), NewHighlighter(nil, "foo").Apply(in))
}

func TestHighlighter_Text(t *testing.T) {
	h := NewHighlighter(nil, "b")

	assert.Equal(t, `a<span class="keyword-highlight">b</span>&lt;c`, h.Text("ab<c"))
	assert.Equal(t, "a&lt;c", NewHighlighter(nil, "").Text("a<c"))
}
