package search

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Scope selects which field of the archive a keyword is matched against.
type Scope string

const (
	ScopeComment    Scope = "comment"
	ScopeAuthor     Scope = "author"
	ScopeArticle    Scope = "article"
	ScopeSiteBing   Scope = "site-bing"
	ScopeSiteGoogle Scope = "site-google"
)

var (
	ErrEmptyKeyword  = errors.New("search keyword is empty")
	ErrUnknownScope  = errors.New("unknown search scope")
	ErrExternalScope = errors.New("scope is served by an external site search")
)

// ParseScope maps a user-supplied name to a Scope. An empty name selects
// comment search.
func ParseScope(name string) (Scope, error) {
	switch s := Scope(strings.ToLower(strings.TrimSpace(name))); s {
	case "":
		return ScopeComment, nil
	case ScopeComment, ScopeAuthor, ScopeArticle, ScopeSiteBing, ScopeSiteGoogle:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, name)
	}
}

// IsExternal reports whether the scope is handled by a third-party search site.
func (s Scope) IsExternal() bool {
	return s == ScopeSiteBing || s == ScopeSiteGoogle
}

// SiteSearchURL builds the redirect target for an external scope, restricting
// the query to domain.
func SiteSearchURL(scope Scope, domain, keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", ErrEmptyKeyword
	}

	var base string
	switch scope {
	case ScopeSiteBing:
		base = "https://www.bing.com/search?q="
	case ScopeSiteGoogle:
		base = "https://www.google.com/search?q="
	default:
		return "", fmt.Errorf("%w: %q is not an external scope", ErrUnknownScope, scope)
	}

	q := url.QueryEscape("site:" + domain + " " + keyword)

	return base + strings.ReplaceAll(q, "+", "%20"), nil
}
