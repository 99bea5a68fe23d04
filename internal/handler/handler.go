// Package handler wires the HTTP API. Handlers bind and validate input,
// delegate to the stores and the search pipeline, and translate domain
// errors into status codes.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// deviceIDHeader identifies the client device for the per-device stores.
// Browsers without an id share the anonymous bucket.
const deviceIDHeader = "X-Device-ID"

func deviceID(c *gin.Context) string {
	if id := c.GetHeader(deviceIDHeader); id != "" {
		return id
	}
	return "anonymous"
}

// paging reads limit/offset query params and clamps them.
func paging(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = intQuery(c, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = intQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func floatQuery(c *gin.Context, key string, defaultValue float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return v
}
