package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"propertybw/internal/compare"
	"propertybw/internal/model"
)

// CompareHandler handles the per-session comparison set. The comparison
// set is keyed by the same device id as the client-state stores.
type CompareHandler struct {
	manager *compare.Manager
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(m *compare.Manager) *CompareHandler {
	return &CompareHandler{manager: m}
}

// Get handles GET /api/compare.
func (h *CompareHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, model.CompareResponse{
		PropertyIDs: h.manager.List(deviceID(c)),
		Limit:       h.manager.Limit(),
	})
}

// Add handles POST /api/compare. A full set or a duplicate id is a user
// notice, reported with 409 so the client can show it without treating
// the request as failed input.
func (h *CompareHandler) Add(c *gin.Context) {
	var req model.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.manager.Add(deviceID(c), req.PropertyID); err != nil {
		if errors.Is(err, compare.ErrSetFull) || errors.Is(err, compare.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comparison set"})
		return
	}

	c.JSON(http.StatusOK, model.CompareResponse{
		PropertyIDs: h.manager.List(deviceID(c)),
		Limit:       h.manager.Limit(),
	})
}

// Remove handles DELETE /api/compare/:id. Removing a missing id succeeds.
func (h *CompareHandler) Remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	h.manager.Remove(deviceID(c), id)
	c.JSON(http.StatusOK, model.CompareResponse{
		PropertyIDs: h.manager.List(deviceID(c)),
		Limit:       h.manager.Limit(),
	})
}
