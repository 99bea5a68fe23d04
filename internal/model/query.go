package model

// SearchResponse is the payload for GET /api/search.
type SearchResponse struct {
	Results []Property `json:"results"`
	Total   int        `json:"total"`
	Took    int64      `json:"took_ms"`
}

// AISearchRequest is the payload for POST /api/search/ai.
type AISearchRequest struct {
	Query   string       `json:"query" binding:"required"`
	Filters *FilterState `json:"filters,omitempty"`
}

// AISearchResponse carries the interpreted search outcome. Degraded is set
// when the interpreter failed and the results come from the local substring
// fallback instead.
type AISearchResponse struct {
	Results     []Property   `json:"results"`
	Filters     *FilterState `json:"filters,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
	Confidence  float64      `json:"confidence"`
	Degraded    bool         `json:"degraded,omitempty"`
	Took        int64        `json:"took_ms"`
}

// SuggestResponse is the payload for GET /api/suggest.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// SaveSearchRequest is the payload for POST /api/saved-searches.
type SaveSearchRequest struct {
	Name          string      `json:"name" binding:"required"`
	Query         string      `json:"query"`
	Filters       FilterState `json:"filters"`
	AlertsEnabled bool        `json:"alerts_enabled"`
}

// CompareRequest is the payload for POST /api/compare.
type CompareRequest struct {
	PropertyID int64 `json:"property_id" binding:"required"`
}

// CompareResponse lists the current comparison set membership.
type CompareResponse struct {
	PropertyIDs []int64 `json:"property_ids"`
	Limit       int     `json:"limit"`
}

// ImportRequest is the payload for POST /api/properties/import: raw records
// from an external feed, shape not enforced.
type ImportRequest struct {
	Records []map[string]any `json:"records" binding:"required"`
}

// ImportResponse reports how an import batch fared.
type ImportResponse struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// EmbeddingBatchRequest is the payload for POST /api/embeddings/batch.
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem carries a single embedding with its property id.
type EmbeddingItem struct {
	PropertyID int64     `json:"property_id" binding:"required"`
	Embedding  []float32 `json:"embedding" binding:"required"`
}

// EmbeddingBatchResponse reports the outcome of a batch embedding update.
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
