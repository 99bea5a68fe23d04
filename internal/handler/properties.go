package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"propertybw/internal/config"
	"propertybw/internal/model"
	"propertybw/internal/normalize"
	"propertybw/internal/repository"
	"propertybw/internal/search"
)

// PropertyHandler handles property listing HTTP requests.
type PropertyHandler struct {
	repo   *repository.PostgresRepository
	cfg    config.SearchConfig
	logger *zap.Logger
}

// NewPropertyHandler creates a new property handler.
func NewPropertyHandler(repo *repository.PostgresRepository, cfg config.SearchConfig, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{repo: repo, cfg: cfg, logger: logger}
}

// List handles GET /api/properties. Filter dimensions arrive as query
// params; omitted dimensions default to unconstrained.
func (h *PropertyHandler) List(c *gin.Context) {
	filters := model.DefaultFilters()
	filters.SearchTerm = c.Query("search")
	if v := c.Query("property_type"); v != "" {
		filters.PropertyType = v
	}
	if v := c.Query("listing_type"); v != "" {
		filters.ListingType = v
	}
	if v := c.Query("bedrooms"); v != "" {
		filters.Bedrooms = v
	}
	if v := c.Query("bathrooms"); v != "" {
		filters.Bathrooms = v
	}
	filters.PriceRange[0] = floatQuery(c, "min_price", 0)
	filters.PriceRange[1] = floatQuery(c, "max_price", model.DefaultPriceCeiling)

	if err := filters.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters: " + err.Error()})
		return
	}

	sortBy := c.DefaultQuery("sort", search.SortNewest)
	if !search.ValidSortKey(sortBy) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown sort key: " + sortBy})
		return
	}

	limit, offset := paging(c, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	properties, total, err := h.repo.ListActive(c.Request.Context(), filters, sortBy, limit, offset)
	if err != nil {
		h.logger.Error("listing properties failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}
	if properties == nil {
		properties = []model.Property{}
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": properties,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

// Get handles GET /api/properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	property, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("fetching property failed", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// Import handles POST /api/properties/import: raw feed records are
// normalized into the canonical shape and upserted. A bad record fails
// individually, never the batch.
func (h *PropertyHandler) Import(c *gin.Context) {
	var req model.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No records provided"})
		return
	}

	opts := normalize.Options{DemoCoordinates: h.cfg.DemoCoordinates}
	resp := model.ImportResponse{}

	for i, raw := range req.Records {
		property := normalize.Property(raw, i, opts)
		if property.ID == 0 {
			resp.Failed++
			resp.Errors = append(resp.Errors, "record "+strconv.Itoa(i)+": missing id")
			continue
		}
		if err := h.repo.Upsert(c.Request.Context(), &property); err != nil {
			h.logger.Warn("import upsert failed", zap.Int64("id", property.ID), zap.Error(err))
			resp.Failed++
			resp.Errors = append(resp.Errors, "record "+strconv.Itoa(i)+": "+err.Error())
			continue
		}
		resp.Imported++
	}

	status := http.StatusOK
	if resp.Failed > 0 {
		status = http.StatusPartialContent
	}
	c.JSON(status, resp)
}
