package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"propertybw/internal/ai"
	"propertybw/internal/config"
	"propertybw/internal/metrics"
	"propertybw/internal/model"
	"propertybw/internal/repository"
	"propertybw/internal/search"
	"propertybw/internal/store"
)

// aiCorpusLimit caps how many active listings are loaded for the in-memory
// AI filter pass.
const aiCorpusLimit = 500

// SearchHandler handles free-text and AI search requests.
type SearchHandler struct {
	repo      *repository.PostgresRepository
	resolver  *search.Resolver
	suggester *search.Suggester
	recents   *store.RecentSearches
	ai        *ai.Client
	cfg       config.SearchConfig
	logger    *zap.Logger
}

// NewSearchHandler creates a new search handler. aiClient may be nil.
func NewSearchHandler(
	repo *repository.PostgresRepository,
	resolver *search.Resolver,
	suggester *search.Suggester,
	recents *store.RecentSearches,
	aiClient *ai.Client,
	cfg config.SearchConfig,
	logger *zap.Logger,
) *SearchHandler {
	return &SearchHandler{
		repo:      repo,
		resolver:  resolver,
		suggester: suggester,
		recents:   recents,
		ai:        aiClient,
		cfg:       cfg,
		logger:    logger,
	}
}

// Search handles GET /api/search: full-text search ranked by relevance.
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) < h.cfg.MinQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query must be at least 2 characters"})
		return
	}

	sortBy := c.DefaultQuery("sort", search.SortNewest)
	if !search.ValidSortKey(sortBy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown sort key: " + sortBy})
		return
	}
	limit, _ := paging(c, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	start := time.Now()
	results, err := h.repo.SearchText(c.Request.Context(), query, sortBy, limit)
	if err != nil {
		h.logger.Error("text search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	if results == nil {
		results = []model.Property{}
	}
	took := time.Since(start).Milliseconds()

	metrics.SearchesTotal.WithLabelValues("text").Inc()
	h.recordSearch(deviceID(c), query, model.FilterState{SearchTerm: query}, len(results), took)

	c.JSON(http.StatusOK, model.SearchResponse{
		Results: results,
		Total:   len(results),
		Took:    took,
	})
}

// AISearch handles POST /api/search/ai: the query is interpreted into
// filters and applied to the active listings. Interpreter failures degrade
// to a local substring match, never to an error response.
func (h *SearchHandler) AISearch(c *gin.Context) {
	var req model.AISearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	current := model.DefaultFilters()
	if req.Filters != nil {
		if err := req.Filters.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters: " + err.Error()})
			return
		}
		current = *req.Filters
	}

	// Unconstrained load: the interpreted filters are applied in memory so
	// the merged state is the single source of truth for what matched.
	loaded, _, err := h.repo.ListActive(c.Request.Context(), unconstrainedFilters(), search.SortNewest, aiCorpusLimit, 0)
	if err != nil {
		h.logger.Error("loading listings for AI search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	start := time.Now()
	resolution, err := h.resolver.Resolve(c.Request.Context(), req.Query, current, loaded)
	if err != nil {
		if errors.Is(err, search.ErrQueryTooShort) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("resolving query failed", zap.String("query", req.Query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	took := time.Since(start).Milliseconds()

	mode := "ai"
	if resolution.Degraded {
		mode = "fallback"
	}
	metrics.SearchesTotal.WithLabelValues(mode).Inc()

	logged := current
	if resolution.Filters != nil {
		logged = *resolution.Filters
	}
	h.recordSearch(deviceID(c), req.Query, logged, len(resolution.Results), took)

	c.JSON(http.StatusOK, model.AISearchResponse{
		Results:     resolution.Results,
		Filters:     resolution.Filters,
		Explanation: resolution.Explanation,
		Confidence:  resolution.Confidence,
		Degraded:    resolution.Degraded,
		Took:        took,
	})
}

// Semantic handles GET /api/search/semantic: the query is embedded and
// matched against listing embeddings by cosine distance.
func (h *SearchHandler) Semantic(c *gin.Context) {
	if h.ai == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Semantic search is not configured"})
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) < h.cfg.MinQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query must be at least 2 characters"})
		return
	}
	limit, _ := paging(c, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	embeddings, err := h.ai.Embed(c.Request.Context(), []string{query})
	if err != nil {
		h.logger.Error("query embedding failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	start := time.Now()
	results, err := h.repo.VectorSearch(c.Request.Context(), embeddings[0], limit)
	if err != nil {
		h.logger.Error("vector search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	if results == nil {
		results = []model.Property{}
	}

	c.JSON(http.StatusOK, model.SearchResponse{
		Results: results,
		Total:   len(results),
		Took:    time.Since(start).Milliseconds(),
	})
}

// Suggest handles GET /api/suggest.
func (h *SearchHandler) Suggest(c *gin.Context) {
	suggestions := h.suggester.Suggest(c.Request.Context(), deviceID(c), c.Query("q"))
	c.JSON(http.StatusOK, model.SuggestResponse{Suggestions: suggestions})
}

// recordSearch persists the query to the device's recents and the
// analytics log, off the request path.
func (h *SearchHandler) recordSearch(device, query string, filters model.FilterState, resultCount int, tookMs int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.recents.Add(ctx, device, query)
		if err := h.repo.LogSearch(ctx, query, filters, resultCount, tookMs); err != nil {
			h.logger.Warn("search logging failed", zap.Error(err))
		}
	}()
}

// unconstrainedFilters matches every active listing: no price clauses, no
// dimension constraints.
func unconstrainedFilters() model.FilterState {
	return model.FilterState{
		PropertyType: model.FilterAll,
		Bedrooms:     model.FilterAny,
		Bathrooms:    model.FilterAny,
		ListingType:  model.FilterAll,
	}
}
