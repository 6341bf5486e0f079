package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"commentarchive/internal/pager"
)

const (
	maxTitleWidth  = 24
	privilegedMark = "★"
	truncationTail = "…"
)

// ResultsTable renders one page of search results. Rows whose author passes
// privileged are marked with a star.
func ResultsTable(page pager.Page, privileged func(author string) bool) string {
	rows := make([][]string, 0, len(page.Items))

	for i, r := range page.Items {
		author := r.Author
		if author != "" && privileged != nil && privileged(author) {
			author = privilegedMark + " " + author
		}

		n := (page.Number-1)*page.Size + i + 1

		rows = append(rows, []string{
			strconv.Itoa(n),
			r.Time,
			author,
			runewidth.Truncate(r.ArticleTitle, maxTitleWidth, truncationTail),
			r.Preview,
		})
	}

	var sb strings.Builder

	sb.WriteString(Table([]string{"#", "时间", "作者", "文章", "内容"}, rows))
	fmt.Fprintf(&sb, "\n\n第 %d/%d 页，共找到 %d 条记录\n", page.Number, max(page.TotalPages, 1), page.Total)

	return sb.String()
}
