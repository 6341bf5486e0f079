package models

// Comment is one reader remark, possibly nested under a parent comment.
type Comment struct {
	ID          string     `json:"id"`
	Ordinal     int        `json:"-"`
	Author      string     `json:"author"`
	Timestamp   string     `json:"time"`
	Content     string     `json:"content"`
	Highlighted bool       `json:"highlight,omitempty"`
	Children    []*Comment `json:"children,omitempty"`
}

// RawComment is a comment record as supplied by the ingestion source.
// Author, Time and Content are required; nil means the key was absent.
type RawComment struct {
	Author    *string      `json:"author"`
	Time      *string      `json:"time"`
	Content   *string      `json:"content"`
	Highlight bool         `json:"highlight,omitempty"`
	Children  []RawComment `json:"children,omitempty"`
}

// FlatComment is one entry of an article's flattened, pre-order comment index.
// Text is the markup-free comment text; Content keeps the original markup.
type FlatComment struct {
	ID           string
	ArticleIndex int
	Author       string
	Text         string
	Timestamp    string
	Content      string
}
