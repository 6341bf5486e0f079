// Package tree builds article comment trees, assigns comment identities and
// flattens trees into the pre-order index used by search.
package tree

import (
	"fmt"

	"commentarchive/internal/models"
)

// Display classes carried into the model for renderers.
const (
	ClassHighlight = "highlight"
	ClassReply     = "reply"

	// HighlightBackground is the fixed background of source-highlighted comments.
	HighlightBackground = "#fff5cc"
)

// Build converts raw comment records into a comment tree, assigning each node an
// identity from its pre-order position. Numbering starts at start; the next
// unused ordinal is returned so callers can continue the sequence.
func Build(raw []models.RawComment, articleKey string, start int) ([]*models.Comment, int, error) {
	return build(raw, articleKey, start, "comments")
}

func build(raw []models.RawComment, articleKey string, next int, path string) ([]*models.Comment, int, error) {
	if len(raw) == 0 {
		return nil, next, nil
	}

	out := make([]*models.Comment, 0, len(raw))

	for i := range raw {
		rc := &raw[i]
		nodePath := fmt.Sprintf("%s[%d]", path, i)

		if err := checkRequired(rc, nodePath); err != nil {
			return nil, next, err
		}

		c := &models.Comment{
			ID:          GenerateID(articleKey, next),
			Ordinal:     next,
			Author:      *rc.Author,
			Timestamp:   *rc.Time,
			Content:     *rc.Content,
			Highlighted: rc.Highlight,
		}

		children, after, err := build(rc.Children, articleKey, next+1, nodePath+".children")
		if err != nil {
			return nil, next, err
		}

		c.Children = children
		next = after

		out = append(out, c)
	}

	return out, next, nil
}

func checkRequired(rc *models.RawComment, path string) error {
	switch {
	case rc.Author == nil:
		return &models.MalformedRecordError{Path: path, Field: "author"}
	case rc.Time == nil:
		return &models.MalformedRecordError{Path: path, Field: "time"}
	case rc.Content == nil:
		return &models.MalformedRecordError{Path: path, Field: "content"}
	}

	return nil
}

// DisplayClass returns the visual class and background of a comment. Highlighted
// comments have a fixed background; replies take the caller's background token,
// which is a render-time parameter and not part of the comment.
func DisplayClass(c *models.Comment, background string) (string, string) {
	if c.Highlighted {
		return ClassHighlight, HighlightBackground
	}

	return ClassReply, background
}

// Walk visits every comment in pre-order with its nesting depth (roots are 0).
// Returning false from fn skips the node's children.
func Walk(comments []*models.Comment, fn func(c *models.Comment, depth int) bool) {
	walk(comments, 0, fn)
}

func walk(comments []*models.Comment, depth int, fn func(c *models.Comment, depth int) bool) {
	for _, c := range comments {
		if fn(c, depth) {
			walk(c.Children, depth+1, fn)
		}
	}
}

// Count returns the number of comments in the tree.
func Count(comments []*models.Comment) int {
	n := 0

	Walk(comments, func(*models.Comment, int) bool {
		n++
		return true
	})

	return n
}
