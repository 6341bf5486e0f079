// Package render produces the self-contained HTML document for an archive.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"commentarchive/internal/catalog"
	"commentarchive/internal/convert"
	"commentarchive/internal/models"
	"commentarchive/internal/session"
	"commentarchive/internal/tree"
	"commentarchive/pkg/metadata"
)

var tmpl = template.Must(template.New("document").Parse(documentTemplate))

// Options control one rendering of the document.
type Options struct {
	Title           string
	ArticlesPerPage int
	Preferences     session.Preferences
	// Converter is used when Preferences.Language asks for a script other
	// than the original.
	Converter convert.Converter
	Sign      bool
	Version   string
	Now       time.Time
}

type pickerEntry struct {
	Index int
	Title string
}

type pickerPage struct {
	Number  int
	Start   int
	Entries []pickerEntry
}

type articleView struct {
	Index       int
	Page        int
	Prev        int
	Next        int
	URL         string
	Title       string
	PublishedAt string
	Body        template.HTML
	Comments    []CommentView
}

// CommentView is a comment prepared for display.
type CommentView struct {
	ID         string        `json:"id"`
	Class      string        `json:"class"`
	Background string        `json:"background"`
	Author     string        `json:"author"`
	Time       string        `json:"time"`
	Content    template.HTML `json:"content"`
	Children   []CommentView `json:"children,omitempty"`
}

type documentView struct {
	Title      string
	RootStyle  template.CSS
	Layout     string
	TotalPages int
	Pages      []pickerPage
	Articles   []articleView
}

// Comments prepares a comment tree for display. Non-highlighted comments
// take the background token; text passes through display.
func Comments(comments []*models.Comment, background string, display func(string) string) []CommentView {
	if len(comments) == 0 {
		return nil
	}

	if display == nil {
		display = func(s string) string { return s }
	}

	out := make([]CommentView, 0, len(comments))

	for _, c := range comments {
		class, bg := tree.DisplayClass(c, background)
		out = append(out, CommentView{
			ID:         c.ID,
			Class:      class,
			Background: bg,
			Author:     display(c.Author),
			Time:       c.Timestamp,
			// Comment markup comes from the archive itself.
			Content:  template.HTML(display(c.Content)), //nolint:gosec
			Children: Comments(c.Children, background, display),
		})
	}

	return out
}

func rootStyle(p session.Preferences) template.CSS {
	// Preferences are sanitized against allow lists before they get here.
	return template.CSS(fmt.Sprintf( //nolint:gosec
		":root { --font-size: %dpx; --heading-size: %dpx; --line-height: %s; --font-family: %s; --text-color: %s; --background-color: %s; }",
		p.FontSize, p.HeadingSize(), strconv.FormatFloat(p.LineHeight, 'f', -1, 64), p.FontFamily, p.TextColor, p.Background,
	))
}

// Document renders the catalog as a single HTML page, signed when opts.Sign
// is set.
func Document(cat *catalog.Catalog, opts Options) ([]byte, error) {
	prefs := opts.Preferences
	if prefs == (session.Preferences{}) {
		prefs = session.DefaultPreferences()
	}
	prefs.Sanitize()

	perPage := opts.ArticlesPerPage
	if perPage <= 0 {
		perPage = session.DefaultArticlePageSize
	}

	display := convert.ForLanguage(opts.Converter, prefs.Language)

	view := documentView{
		Title:      display(opts.Title),
		RootStyle:  rootStyle(prefs),
		Layout:     prefs.Layout,
		TotalPages: cat.TotalPages(perPage),
	}

	for page := 1; page <= view.TotalPages; page++ {
		start, end := cat.Bounds(page, perPage)
		pp := pickerPage{Number: page, Start: start + 1}

		for i := start; i < end; i++ {
			a, _ := cat.At(i)
			pp.Entries = append(pp.Entries, pickerEntry{Index: i, Title: display(a.Title)})
		}

		view.Pages = append(view.Pages, pp)
	}

	for i, a := range cat.Articles() {
		av := articleView{
			Index:       i,
			Page:        catalog.PageOf(i, perPage),
			Prev:        i - 1,
			Next:        i + 1,
			URL:         a.URL,
			Title:       display(a.Title),
			PublishedAt: a.PublishedAt,
			Body:        template.HTML(display(a.Body)), //nolint:gosec
			Comments:    Comments(a.Comments, prefs.Background, display),
		}
		if av.Next >= cat.Len() {
			av.Next = -1
		}

		view.Articles = append(view.Articles, av)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}

	if !opts.Sign {
		return buf.Bytes(), nil
	}

	signed := metadata.Sign(buf.String(), metadata.Metadata{
		Version:    opts.Version,
		Articles:   cat.Len(),
		Comments:   cat.CommentCount(),
		LastModify: opts.Now,
	})

	return []byte(signed), nil
}

// WriteDocument writes doc to path. When the file already carries a
// signature for the same content the write is skipped and false returned.
func WriteDocument(path string, doc []byte) (bool, error) {
	_, clean := metadata.Extract(string(doc))

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if metadata.SameContent(string(existing), clean) {
			return false, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("failed to read existing document: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return false, fmt.Errorf("failed to write document: %w", err)
	}

	return true, nil
}
