package tree

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commentarchive/internal/models"
)

func str(s string) *string { return &s }

func rawComment(author, text string, children ...models.RawComment) models.RawComment {
	return models.RawComment{
		Author:   str(author),
		Time:     str("2024-01-01 10:00"),
		Content:  str(text),
		Children: children,
	}
}

func sampleThread() []models.RawComment {
	return []models.RawComment{
		rawComment("a", "root one",
			rawComment("b", "reply one",
				rawComment("c", "deep reply"),
			),
			rawComment("d", "reply two"),
		),
		rawComment("e", "root two"),
	}
}

func collectIDs(comments []*models.Comment) []string {
	var ids []string

	Walk(comments, func(c *models.Comment, _ int) bool {
		ids = append(ids, c.ID)
		return true
	})

	return ids
}

func TestGenerateID_MatchesDigestFormat(t *testing.T) {
	id := GenerateID("https://example.com/a", 0)

	assert.Len(t, id, 32)
	assert.Equal(t, id, GenerateID("https://example.com/a", 0))
	assert.NotEqual(t, id, GenerateID("https://example.com/a", 1))
	assert.NotEqual(t, id, GenerateID("https://example.com/b", 0))
}

func TestGenerateID_KnownValue(t *testing.T) {
	sum := md5.Sum([]byte("https://example.com/a-12"))

	assert.Equal(t, hex.EncodeToString(sum[:]), GenerateID("https://example.com/a", 12))
}

func TestBuild_PreOrderOrdinals(t *testing.T) {
	comments, next, err := Build(sampleThread(), "key", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, next)

	var ordinals []int
	var authors []string

	Walk(comments, func(c *models.Comment, _ int) bool {
		ordinals = append(ordinals, c.Ordinal)
		authors = append(authors, c.Author)
		return true
	})

	assert.Equal(t, []int{0, 1, 2, 3, 4}, ordinals)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, authors)
	assert.Equal(t, GenerateID("key", 2), comments[0].Children[0].Children[0].ID)
}

func TestBuild_Deterministic(t *testing.T) {
	first, _, err := Build(sampleThread(), "https://example.com/post", 0)
	require.NoError(t, err)

	second, _, err := Build(sampleThread(), "https://example.com/post", 0)
	require.NoError(t, err)

	assert.Equal(t, collectIDs(first), collectIDs(second))
}

func TestBuild_UniqueIDs(t *testing.T) {
	comments, _, err := Build(sampleThread(), "https://example.com/post", 0)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, id := range collectIDs(comments) {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestBuild_ContinuesFromStart(t *testing.T) {
	comments, next, err := Build([]models.RawComment{rawComment("x", "y")}, "key", 7)
	require.NoError(t, err)

	assert.Equal(t, 8, next)
	assert.Equal(t, GenerateID("key", 7), comments[0].ID)
}

func TestBuild_MissingFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *models.RawComment)
		wantField string
		wantPath  string
	}{
		{"missing author", func(c *models.RawComment) { c.Author = nil }, "author", "comments[0]"},
		{"missing time", func(c *models.RawComment) { c.Time = nil }, "time", "comments[0]"},
		{"missing content", func(c *models.RawComment) { c.Content = nil }, "content", "comments[0]"},
		{"nested missing", func(c *models.RawComment) { c.Children[0].Content = nil }, "content", "comments[0].children[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []models.RawComment{rawComment("a", "b", rawComment("c", "d"))}
			tt.mutate(&raw[0])

			_, _, err := Build(raw, "key", 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrMalformedRecord))

			var mre *models.MalformedRecordError
			require.ErrorAs(t, err, &mre)
			assert.Equal(t, tt.wantField, mre.Field)
			assert.Equal(t, tt.wantPath, mre.Path)
		})
	}
}

func TestBuild_EmptyContentIsNotMissing(t *testing.T) {
	_, _, err := Build([]models.RawComment{rawComment("a", "")}, "key", 0)
	assert.NoError(t, err)
}

func TestDisplayClass(t *testing.T) {
	class, bg := DisplayClass(&models.Comment{Highlighted: true}, "ivory")
	assert.Equal(t, ClassHighlight, class)
	assert.Equal(t, HighlightBackground, bg)

	class, bg = DisplayClass(&models.Comment{}, "ivory")
	assert.Equal(t, ClassReply, class)
	assert.Equal(t, "ivory", bg)

	_, bg = DisplayClass(&models.Comment{}, "lavender")
	assert.Equal(t, "lavender", bg)
}

func TestFlatten_PreOrderEntries(t *testing.T) {
	comments, _, err := Build(sampleThread(), "key", 0)
	require.NoError(t, err)

	flat := Flatten(comments, 3)
	require.Len(t, flat, 5)

	assert.Equal(t, collectIDs(comments), []string{flat[0].ID, flat[1].ID, flat[2].ID, flat[3].ID, flat[4].ID})
	assert.Equal(t, "deep reply", flat[2].Text)

	for _, e := range flat {
		assert.Equal(t, 3, e.ArticleIndex)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"<b>bold</b> text", "bold text"},
		{"a &amp; b", "a & b"},
		{"line<br>next", "line\nnext"},
		{`<a href="http://x">link</a>`, "link"},
		{"<script>var x = 1;</script>shown", "shown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainText(tt.in), tt.in)
	}
}

func TestCount(t *testing.T) {
	comments, _, err := Build(sampleThread(), "key", 0)
	require.NoError(t, err)

	assert.Equal(t, 5, Count(comments))
	assert.Equal(t, 0, Count(nil))
}
