package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commentarchive/internal/catalog"
	"commentarchive/internal/models"
)

func catalogOf(n int) *catalog.Catalog {
	arts := make([]*models.Article, 0, n)
	for i := range n {
		arts = append(arts, &models.Article{Title: fmt.Sprintf("a%d", i), Page: 1, Order: i})
	}

	return catalog.New(arts)
}

func TestNavigator_Restore(t *testing.T) {
	nav := NewNavigator(catalogOf(25), 10)

	tests := []struct {
		name string
		in   State
		want State
	}{
		{"valid", State{ArticleIndex: 14, ArticlePage: 2, ResultPage: 3}, State{ArticleIndex: 14, ArticlePage: 2, ResultPage: 3}},
		{"stale page", State{ArticleIndex: 14, ArticlePage: 1, ResultPage: 1}, State{ArticleIndex: 14, ArticlePage: 2, ResultPage: 1}},
		{"index past end", State{ArticleIndex: 40, ArticlePage: 5}, State{ArticleIndex: 0, ArticlePage: 1, ResultPage: 1}},
		{"negative", State{ArticleIndex: -2}, State{ArticleIndex: 0, ArticlePage: 1, ResultPage: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nav.Restore(tt.in))
		})
	}
}

func TestNavigator_SelectResult(t *testing.T) {
	nav := NewNavigator(catalogOf(25), 10)

	s, err := nav.SelectResult(State{ArticleIndex: 0, ArticlePage: 1}, 23)
	require.NoError(t, err)
	assert.Equal(t, 23, s.ArticleIndex)
	assert.Equal(t, 3, s.ArticlePage)

	s, err = nav.SelectResult(s, 21)
	require.NoError(t, err)
	assert.Equal(t, 21, s.ArticleIndex)
	assert.Equal(t, 3, s.ArticlePage)

	unchanged, err := nav.SelectResult(s, 25)
	assert.ErrorIs(t, err, ErrArticleNotFound)
	assert.Equal(t, s, unchanged)
}

func TestNavigator_NextPrev(t *testing.T) {
	nav := NewNavigator(catalogOf(11), 10)

	s := State{ArticleIndex: 9, ArticlePage: 1}

	s, err := nav.Next(s)
	require.NoError(t, err)
	assert.Equal(t, State{ArticleIndex: 10, ArticlePage: 2}, s)

	same, err := nav.Next(s)
	assert.ErrorIs(t, err, ErrLastArticle)
	assert.Equal(t, s, same)

	s, err = nav.Prev(s)
	require.NoError(t, err)
	assert.Equal(t, State{ArticleIndex: 9, ArticlePage: 1}, s)

	first := State{ArticleIndex: 0, ArticlePage: 1}
	same, err = nav.Prev(first)
	assert.ErrorIs(t, err, ErrFirstArticle)
	assert.Equal(t, first, same)
	assert.Equal(t, "已经是第一篇文章了", err.Error())
}

func TestNavigator_GoToPage(t *testing.T) {
	nav := NewNavigator(catalogOf(25), 10)

	assert.Equal(t, State{ArticleIndex: 10, ArticlePage: 2}, nav.GoToPage(State{ArticleIndex: 3, ArticlePage: 1}, 2))
	assert.Equal(t, State{ArticleIndex: 20, ArticlePage: 3}, nav.GoToPage(State{}, 9))
	assert.Equal(t, State{ArticleIndex: 0, ArticlePage: 1}, nav.GoToPage(State{ArticleIndex: 15}, 0))
}

func TestNavigator_EmptyCatalog(t *testing.T) {
	nav := NewNavigator(catalog.New(nil), 0)

	assert.Equal(t, DefaultArticlePageSize, nav.PageSize())
	assert.Equal(t, State{ArticleIndex: 0, ArticlePage: 1, ResultPage: 1}, nav.Restore(State{ArticleIndex: 3}))

	_, err := nav.Next(State{})
	assert.ErrorIs(t, err, ErrLastArticle)
	assert.Equal(t, State{ArticlePage: 1}, nav.GoToPage(State{}, 4))
}

func TestState_WithQuery(t *testing.T) {
	first := Query{Scope: "comment", Keyword: "谢谢"}

	tests := []struct {
		name     string
		in       State
		q        Query
		wantPage int
	}{
		{"same query keeps page", State{ResultPage: 3, Query: first}, first, 3},
		{"new keyword", State{ResultPage: 3, Query: first}, Query{Scope: "comment", Keyword: "reader"}, 1},
		{"new scope", State{ResultPage: 3, Query: first}, Query{Scope: "author", Keyword: "谢谢"}, 1},
		{"new sort", State{ResultPage: 3, Query: first}, Query{Scope: "comment", Keyword: "谢谢", Sort: "desc"}, 1},
		{"new filter", State{ResultPage: 3, Query: first}, Query{Scope: "comment", Keyword: "谢谢", Filter: "special"}, 1},
		{"no previous search", State{ResultPage: 4}, first, 1},
		{"unset page", State{Query: first}, first, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.WithQuery(tt.q)
			assert.Equal(t, tt.wantPage, got.ResultPage)
			assert.Equal(t, tt.q, got.Query)
		})
	}
}
