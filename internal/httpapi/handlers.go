package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/version"
)

const (
	defaultPopularLimit = 6
	maxLimit            = 50
)

// toolView is the JSON shape of a tool.
type toolView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	CategoryName string   `json:"categoryName"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords,omitempty"`
	Icon         string   `json:"icon"`
	Color        string   `json:"color"`
	URL          string   `json:"url"`
	Score        *float64 `json:"score,omitempty"`
}

func newToolView(r catalog.ToolRecord) toolView {
	return toolView{
		ID:           r.ID,
		Name:         r.DisplayName,
		Category:     r.Category,
		CategoryName: r.CategoryDisplayName,
		Description:  r.Description,
		Icon:         r.Icon,
		Color:        r.Color,
		URL:          r.URL(),
	}
}

type categoryView struct {
	catalog.Category
	Count int `json:"count"`
}

type searchResponse struct {
	Query    string     `json:"query"`
	Status   string     `json:"status"`
	SearchID string     `json:"searchId,omitempty"`
	Count    int        `json:"count"`
	Results  []toolView `json:"results"`
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.app.Snapshot()
	hits, misses, size := snap.CacheStats()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"tools":    snap.Catalog.Len(),
		"revision": snap.Revision,
		"engine":   s.app.Config().Search.Engine,
		"version":  version.Version,
		"cache":    gin.H{"hits": hits, "misses": misses, "size": size},
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	limit, ok := parseLimit(c, 0)
	if !ok {
		return
	}

	out := s.app.Search(c.Query("q"), limit)

	resp := searchResponse{
		Query:    out.Query,
		Status:   out.Status,
		SearchID: out.SearchID,
		Count:    len(out.Results),
		Results:  make([]toolView, 0, len(out.Results)),
	}
	for _, r := range out.Results {
		view := newToolView(r.Record)
		score := r.Score
		view.Score = &score
		resp.Results = append(resp.Results, view)
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTools(c *gin.Context) {
	cat := s.app.Catalog()

	records := cat.Records()
	if category := c.Query("category"); category != "" {
		records = cat.ByCategory(category)
	}

	tools := make([]toolView, 0, len(records))
	for _, r := range records {
		view := newToolView(r)
		view.Keywords = r.Keywords
		tools = append(tools, view)
	}

	c.JSON(http.StatusOK, gin.H{"count": len(tools), "tools": tools})
}

func (s *Server) handleTool(c *gin.Context) {
	record, ok := s.app.Catalog().Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tool not found"})
		return
	}

	view := newToolView(record)
	view.Keywords = record.Keywords
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleOpen(c *gin.Context) {
	var req struct {
		Query    string `json:"query"`
		SearchID string `json:"searchId"`
	}
	// the body is optional, chunked or not
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := s.app.Open(c.Param("id"), req.Query, req.SearchID)
	if err != nil {
		if errors.Is(err, app.ErrToolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tool not found"})
			return
		}
		s.logger.Error("failed to record selection", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record selection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded", "tool": newToolView(record)})
}

func (s *Server) handleCategories(c *gin.Context) {
	cat := s.app.Catalog()
	counts := cat.CategoryCounts()

	categories := make([]categoryView, 0)
	for _, category := range cat.Categories() {
		categories = append(categories, categoryView{Category: category, Count: counts[category.ID]})
	}

	c.JSON(http.StatusOK, gin.H{"count": len(categories), "categories": categories})
}

func (s *Server) handlePopular(c *gin.Context) {
	limit, ok := parseLimit(c, defaultPopularLimit)
	if !ok {
		return
	}

	popular := s.app.Popular(limit)

	tools := make([]gin.H, 0, len(popular))
	for _, p := range popular {
		tools = append(tools, gin.H{
			"tool":       newToolView(p.Record),
			"score":      p.Score,
			"selections": p.Selections,
		})
	}

	c.JSON(http.StatusOK, gin.H{"count": len(tools), "tools": tools})
}

// parseLimit reads ?limit=, writing a 400 response when it is malformed.
func parseLimit(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 50"})
		return 0, false
	}
	return limit, true
}
