package pager

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commentarchive/internal/search"
)

func results(authorsAndTimes ...string) []search.Result {
	var out []search.Result
	for i := 0; i+1 < len(authorsAndTimes); i += 2 {
		out = append(out, search.Result{
			ID:           fmt.Sprintf("r%d", i/2),
			Author:       authorsAndTimes[i],
			SortableTime: authorsAndTimes[i+1],
		})
	}

	return out
}

func ids(items []search.Result) []string {
	out := make([]string, 0, len(items))
	for _, r := range items {
		out = append(out, r.ID)
	}

	return out
}

func TestView_ScenarioD(t *testing.T) {
	v := New(results("andy", "1", "bob", "2", "李宗恩", "3"), 5, []string{"andy", "李宗恩"})
	v.SetFilter(FilterSpecial)

	p := v.Page()
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, []string{"r0", "r2"}, ids(p.Items))
}

func TestView_SpecialFilterCaseInsensitive(t *testing.T) {
	v := New(results("Andy", "1", "ANDY", "2", "bob", "3"), 5, nil)
	v.SetFilter(FilterSpecial)

	assert.Equal(t, 2, v.Page().Total)
	assert.True(t, v.IsPrivileged("李宗恩"))
	assert.False(t, v.IsPrivileged("bob"))
}

func TestView_IsPrivilegedExactName(t *testing.T) {
	v := New(nil, 5, nil)

	tests := []struct {
		author string
		want   bool
	}{
		{"andy", true},
		{"ANDY", true},
		{" andy", false},
		{"andy ", false},
		{"\tandy", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.author, func(t *testing.T) {
			assert.Equal(t, tt.want, v.IsPrivileged(tt.author))
		})
	}
}

func TestView_SpecialFilterSkipsPaddedAuthors(t *testing.T) {
	v := New(results("andy", "1", " andy", "2", "andy ", "3"), 5, nil)
	v.SetFilter(FilterSpecial)

	p := v.Page()
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, []string{"r0"}, ids(p.Items))
}

func TestView_Sort(t *testing.T) {
	in := results("a", "2023-05-02", "b", "2023-01-01", "c", "9999", "d", "2023-01-01")

	v := New(in, 10, nil)
	assert.Equal(t, []string{"r0", "r1", "r2", "r3"}, ids(v.Page().Items))

	v.SetSort(SortAscending)
	assert.Equal(t, []string{"r1", "r3", "r0", "r2"}, ids(v.Page().Items))

	v.SetSort(SortDescending)
	assert.Equal(t, []string{"r2", "r0", "r1", "r3"}, ids(v.Page().Items))

	v.SetSort(SortDefault)
	assert.Equal(t, []string{"r0", "r1", "r2", "r3"}, ids(v.Page().Items))

	// Results are never reordered in place.
	assert.Equal(t, []string{"r0", "r1", "r2", "r3"}, ids(in))
}

// Timestamps compare as strings, so mixed formats do not order
// chronologically. This pins the current behavior.
func TestView_SortIsLexicographic(t *testing.T) {
	v := New(results("a", "2023-9-1", "b", "2023-10-01", "c", "9999"), 10, nil)
	v.SetSort(SortAscending)

	assert.Equal(t, []string{"r1", "r0", "r2"}, ids(v.Page().Items))
}

func TestView_Paging(t *testing.T) {
	var in []string
	for i := range 12 {
		in = append(in, "x", fmt.Sprintf("%02d", i))
	}

	v := New(results(in...), 5, nil)

	p := v.Page()
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 12, p.Total)
	assert.Len(t, p.Items, 5)

	v.Next()
	v.Next()
	assert.Equal(t, 3, v.Page().Number)
	assert.Len(t, v.Page().Items, 2)

	v.Next()
	assert.Equal(t, 3, v.Page().Number)

	v.SetPage(-4)
	assert.Equal(t, 1, v.Page().Number)

	v.Prev()
	assert.Equal(t, 1, v.Page().Number)

	v.SetPage(99)
	assert.Equal(t, 3, v.Page().Number)
}

func TestView_FilterClampsPage(t *testing.T) {
	in := results("bob", "1", "bob", "2", "bob", "3", "andy", "4")

	v := New(in, 1, nil)
	v.SetPage(4)
	require.Equal(t, 4, v.Page().Number)

	v.SetFilter(FilterSpecial)
	p := v.Page()
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, []string{"r3"}, ids(p.Items))
}

func TestView_EmptyResults(t *testing.T) {
	v := New(nil, 5, nil)
	v.SetPage(3)

	p := v.Page()
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)
}

func TestView_FilterNeverIncreasesCount(t *testing.T) {
	sets := [][]search.Result{
		nil,
		results("andy", "1"),
		results("bob", "1", "carol", "2"),
		results("andy", "1", "bob", "2", "李宗恩", "3", "ANDY", "4"),
	}

	for _, rs := range sets {
		v := New(rs, 2, nil)
		all := v.Page().Total
		assert.LessOrEqual(t, len(v.Page().Items), all)

		v.SetFilter(FilterSpecial)
		assert.LessOrEqual(t, v.Page().Total, all)
		assert.LessOrEqual(t, len(v.Page().Items), v.Page().Total)
	}
}

func TestView_NewResetsSortAndFilter(t *testing.T) {
	in := results("andy", "1", "bob", "2")

	v := New(in, 5, nil)
	v.SetSort(SortDescending)
	v.SetFilter(FilterSpecial)

	v = New(in, 5, nil)
	assert.Equal(t, SortDefault, v.Sort())
	assert.Equal(t, FilterAll, v.Filter())
	assert.Equal(t, 1, v.Page().Number)
	assert.Equal(t, DefaultPageSize, New(in, 0, nil).PageSize())
}

func TestParse(t *testing.T) {
	o, err := ParseSortOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, SortDescending, o)

	o, err = ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortDefault, o)

	_, err = ParseSortOrder("random")
	assert.Error(t, err)

	f, err := ParseAuthorFilter("special")
	require.NoError(t, err)
	assert.Equal(t, FilterSpecial, f)

	_, err = ParseAuthorFilter("vip")
	assert.Error(t, err)
}
