package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"commentarchive/internal/formatter"
	"commentarchive/internal/pager"
	"commentarchive/internal/search"
	"commentarchive/internal/session"
)

func searchCmd(opts *globalOptions) *cobra.Command {
	var (
		scopeName  string
		sortName   string
		filterName string
		page       int
	)

	cmd := &cobra.Command{
		Use:   "search KEYWORD",
		Short: "Search comments, authors or articles",
		Long: `Search the archive for KEYWORD. Simplified and traditional forms of the
keyword both match. Scopes: comment (default), author, article, site-bing,
site-google. Site scopes print the external search URL instead.

Without --page, repeating the previous search (same keyword, scope, sort
and filter) reopens its last result page; any other search starts on page 1.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			keyword := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			scope, err := search.ParseScope(scopeName)
			if err != nil {
				return err
			}

			if scope.IsExternal() {
				target, err := search.SiteSearchURL(scope, a.cfg.Search.SiteDomain, keyword)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, target)
				return nil
			}

			order, err := pager.ParseSortOrder(sortName)
			if err != nil {
				return err
			}

			filter, err := pager.ParseAuthorFilter(filterName)
			if err != nil {
				return err
			}

			cat, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}

			engine := search.NewEngine(cat, a.converter, a.cfg.Search.PreviewLength)

			rs, err := engine.Search(scope, keyword)
			if errors.Is(err, search.ErrEmptyKeyword) {
				return fmt.Errorf("请输入搜索关键字: %w", err)
			}
			if err != nil {
				return err
			}

			store := session.NewFileStore(a.cfg.Archive.SessionFile, a.log)

			state, err := store.LoadState()
			if err != nil {
				a.log.Warn("Failed to load session", "error", err)
			}

			state = state.WithQuery(session.Query{
				Scope:   string(scope),
				Keyword: strings.TrimSpace(keyword),
				Sort:    string(order),
				Filter:  string(filter),
			})

			if page <= 0 {
				page = state.ResultPage
			}

			view := pager.New(rs.Results, a.cfg.Search.ResultsPerPage, a.cfg.Search.PrivilegedAuthors)
			view.SetSort(order)
			view.SetFilter(filter)
			view.SetPage(page)

			if rs.Empty() {
				fmt.Fprintln(out, rs.NoResultsNotice())
			} else {
				fmt.Fprint(out, formatter.ResultsTable(view.Page(), view.IsPrivileged))
			}

			state.ResultPage = view.Page().Number
			if err := store.SaveState(state); err != nil {
				a.log.Warn("Failed to save session", "error", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&scopeName, "scope", "s", "comment", "Search scope (comment, author, article, site-bing, site-google)")
	cmd.Flags().StringVar(&sortName, "sort", "default", "Sort order (default, asc, desc)")
	cmd.Flags().StringVar(&filterName, "filter", "all", "Author filter (all, special)")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "Result page")

	return cmd
}
