package server

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"commentarchive/internal/catalog"
	"commentarchive/internal/convert"
	"commentarchive/internal/pager"
	"commentarchive/internal/render"
	"commentarchive/internal/search"
	"commentarchive/internal/session"
)

type articleSummary struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Comments    int    `json:"comments"`
}

type articleResponse struct {
	articleSummary
	Body     string               `json:"body"`
	Page     int                  `json:"page"`
	HasPrev  bool                 `json:"has_prev"`
	HasNext  bool                 `json:"has_next"`
	Thread   []render.CommentView `json:"thread"`
	Language string               `json:"language"`
}

type searchResponse struct {
	Scope   search.Scope       `json:"scope"`
	Keyword string             `json:"keyword"`
	Sort    pager.SortOrder    `json:"sort"`
	Filter  pager.AuthorFilter `json:"filter"`
	Page    pager.Page         `json:"results"`
	Notice  string             `json:"notice,omitempty"`
}

type sessionResponse struct {
	ID          string              `json:"id"`
	State       session.State       `json:"state"`
	Preferences session.Preferences `json:"preferences"`
}

func errorJSON(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

// sessionError maps a registry lookup failure to a response.
func sessionError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		errorJSON(c, http.StatusNotFound, err)
		return
	}

	errorJSON(c, http.StatusInternalServerError, err)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}

	return strconv.Atoi(raw)
}

func (s *Server) health(c *gin.Context) {
	snap := s.snapshot()

	sessions, err := s.sessions.Len(c.Request.Context())
	if err != nil {
		s.log.Warn("Session store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"articles": snap.catalog.Len(),
		"sessions": sessions,
	})
}

func (s *Server) listArticles(c *gin.Context) {
	snap := s.snapshot()

	page, err := queryInt(c, "page", 1)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	size := snap.nav.PageSize()
	total := snap.catalog.TotalPages(size)
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}

	start, _ := snap.catalog.Bounds(page, size)
	items := make([]articleSummary, 0, size)

	for i := range snap.catalog.Slice(page, size) {
		items = append(items, summarize(snap.catalog, start+i))
	}

	c.JSON(http.StatusOK, gin.H{
		"page":        page,
		"total_pages": total,
		"total":       snap.catalog.Len(),
		"articles":    items,
	})
}

func summarize(cat *catalog.Catalog, index int) articleSummary {
	a, _ := cat.At(index)

	return articleSummary{
		Index:       index,
		Title:       a.Title,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
		Comments:    len(cat.Comments(index)),
	}
}

func (s *Server) getArticle(c *gin.Context) {
	snap := s.snapshot()

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	a, ok := snap.catalog.At(index)
	if !ok {
		errorJSON(c, http.StatusNotFound, session.ErrArticleNotFound)
		return
	}

	prefs := session.DefaultPreferences()
	if id := c.Query("session"); id != "" {
		store, err := s.sessions.Session(c.Request.Context(), id)
		if err != nil {
			sessionError(c, err)
			return
		}
		if prefs, err = store.LoadPreferences(); err != nil {
			errorJSON(c, http.StatusInternalServerError, err)
			return
		}
	}

	display := convert.ForLanguage(s.converter, prefs.Language)
	thread := render.Comments(a.Comments, prefs.Background, display)
	body := display(a.Body)

	if q := c.Query("q"); q != "" {
		hl := search.NewHighlighter(s.converter, q)
		body = hl.Apply(body)
		highlightThread(thread, hl)
	}

	c.JSON(http.StatusOK, articleResponse{
		articleSummary: summarize(snap.catalog, index),
		Body:           body,
		Page:           catalog.PageOf(index, snap.nav.PageSize()),
		HasPrev:        index > 0,
		HasNext:        index < snap.catalog.Len()-1,
		Thread:         thread,
		Language:       prefs.Language,
	})
}

func highlightThread(views []render.CommentView, hl *search.Highlighter) {
	for i := range views {
		// Highlighter output only adds span tags to archive markup.
		views[i].Content = template.HTML(hl.Apply(string(views[i].Content))) //nolint:gosec
		highlightThread(views[i].Children, hl)
	}
}

func (s *Server) search(c *gin.Context) {
	snap := s.snapshot()

	scope, err := search.ParseScope(c.Query("scope"))
	if err != nil {
		s.metrics.searches.WithLabelValues("invalid", outcomeRejected).Inc()
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	keyword := c.Query("q")

	if scope.IsExternal() {
		target, err := search.SiteSearchURL(scope, s.opts.SiteDomain, keyword)
		if err != nil {
			s.metrics.searches.WithLabelValues(string(scope), outcomeRejected).Inc()
			errorJSON(c, http.StatusBadRequest, err)
			return
		}

		s.metrics.searches.WithLabelValues(string(scope), outcomeRedirect).Inc()
		c.JSON(http.StatusOK, gin.H{"scope": scope, "redirect": target})
		return
	}

	order, err := pager.ParseSortOrder(c.Query("sort"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	filter, err := pager.ParseAuthorFilter(c.Query("filter"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	var (
		store session.Store
		state session.State
	)

	if id := c.Query("session"); id != "" {
		if store, err = s.sessions.Session(c.Request.Context(), id); err != nil {
			sessionError(c, err)
			return
		}
		if state, err = store.LoadState(); err != nil {
			errorJSON(c, http.StatusInternalServerError, err)
			return
		}
	}

	state = state.WithQuery(session.Query{
		Scope:   string(scope),
		Keyword: strings.TrimSpace(keyword),
		Sort:    string(order),
		Filter:  string(filter),
	})

	page, err := queryInt(c, "page", state.ResultPage)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	rs, err := snap.engine.Search(scope, keyword)
	s.metrics.searchDuration.WithLabelValues(string(scope)).Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.searches.WithLabelValues(string(scope), outcomeRejected).Inc()
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	view := pager.New(rs.Results, s.opts.ResultsPerPage, s.opts.PrivilegedAuthors)
	view.SetSort(order)
	view.SetFilter(filter)
	view.SetPage(page)

	resp := searchResponse{
		Scope:   rs.Scope,
		Keyword: rs.Keyword,
		Sort:    view.Sort(),
		Filter:  view.Filter(),
		Page:    view.Page(),
	}

	if rs.Empty() {
		resp.Notice = rs.NoResultsNotice()
		s.metrics.searches.WithLabelValues(string(scope), outcomeEmpty).Inc()
	} else {
		s.metrics.searches.WithLabelValues(string(scope), outcomeHit).Inc()
	}

	if store != nil {
		state.ResultPage = resp.Page.Number
		if err := store.SaveState(state); err != nil {
			s.log.Warn("Failed to save result page", "error", err)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) createSession(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := s.sessions.Create(ctx)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	s.updateSessionGauge(c)

	store, err := s.sessions.Session(ctx, id)
	if err != nil {
		sessionError(c, err)
		return
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	state, err := store.LoadState()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{
		ID:          id,
		State:       s.snapshot().nav.Restore(state),
		Preferences: prefs,
	})
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		sessionError(c, err)
		return
	}

	s.updateSessionGauge(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) updateSessionGauge(c *gin.Context) {
	n, err := s.sessions.Len(c.Request.Context())
	if err != nil {
		s.log.Warn("Failed to count sessions", "error", err)
		return
	}

	s.metrics.sessions.Set(float64(n))
}

// loadSession resolves the :id parameter and restores its cursor against
// the current catalog. It writes the error response itself.
func (s *Server) loadSession(c *gin.Context) (session.Store, session.State, bool) {
	store, err := s.sessions.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return nil, session.State{}, false
	}

	state, err := store.LoadState()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return nil, session.State{}, false
	}

	return store, s.snapshot().nav.Restore(state), true
}

func (s *Server) respondSession(c *gin.Context, store session.Store, state session.State) {
	if err := store.SaveState(state); err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{ID: c.Param("id"), State: state, Preferences: prefs})
}

func (s *Server) getSession(c *gin.Context) {
	store, state, ok := s.loadSession(c)
	if !ok {
		return
	}

	s.respondSession(c, store, state)
}

func (s *Server) selectArticle(c *gin.Context) {
	store, state, ok := s.loadSession(c)
	if !ok {
		return
	}

	var req struct {
		ArticleIndex *int `json:"article_index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleIndex == nil {
		errorJSON(c, http.StatusBadRequest, errors.New("article_index is required"))
		return
	}

	state, err := s.snapshot().nav.SelectResult(state, *req.ArticleIndex)
	if err != nil {
		errorJSON(c, http.StatusNotFound, err)
		return
	}

	s.respondSession(c, store, state)
}

func (s *Server) nextArticle(c *gin.Context) {
	s.step(c, (*session.Navigator).Next)
}

func (s *Server) prevArticle(c *gin.Context) {
	s.step(c, (*session.Navigator).Prev)
}

func (s *Server) step(c *gin.Context, move func(*session.Navigator, session.State) (session.State, error)) {
	store, state, ok := s.loadSession(c)
	if !ok {
		return
	}

	next, err := move(s.snapshot().nav, state)
	if errors.Is(err, session.ErrFirstArticle) || errors.Is(err, session.ErrLastArticle) {
		c.JSON(http.StatusConflict, gin.H{"notice": err.Error(), "state": state})
		return
	}
	if err != nil {
		errorJSON(c, http.StatusNotFound, err)
		return
	}

	s.respondSession(c, store, next)
}

func (s *Server) goToPage(c *gin.Context) {
	store, state, ok := s.loadSession(c)
	if !ok {
		return
	}

	var req struct {
		Page int `json:"page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	s.respondSession(c, store, s.snapshot().nav.GoToPage(state, req.Page))
}

func (s *Server) getPreferences(c *gin.Context) {
	store, err := s.sessions.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

func (s *Server) putPreferences(c *gin.Context) {
	store, err := s.sessions.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	prefs, reset, err := session.DecodePreferences(data)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	if err := store.SavePreferences(prefs); err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	if len(reset) > 0 {
		s.log.Debug("Preferences fields reset", "session", c.Param("id"), "fields", reset)
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs, "reset": reset})
}
