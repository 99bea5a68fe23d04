// Package ai wraps the OpenAI-compatible API used to interpret free-text
// queries into structured filters and to embed listing text.
package ai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"propertybw/internal/config"
	"propertybw/internal/model"
	"propertybw/internal/utils"
)

const systemPrompt = `You are a property search assistant for a Botswana real-estate marketplace. Parse the user's natural language query into structured filters.

Extract the following fields if present:
- min_price: minimum price in BWP (number)
- max_price: maximum price in BWP (number)
- property_type: one of "house", "apartment", "townhouse", "commercial", "farm", "land"
- min_bedrooms: minimum number of bedrooms (integer)
- min_bathrooms: minimum number of bathrooms (integer)
- listing_type: "agent" or "owner" (only when the user asks for agent listings or for-sale-by-owner)
- location: town or suburb name (e.g. Gaborone, Francistown, Maun, Phakalane)
- keywords: array of descriptive keywords worth matching (e.g. "modern", "borehole", "walled")
- explanation: one short sentence describing how you understood the query
- confidence: how confident you are in the interpretation, 0.0 to 1.0

Rules:
- Respond ONLY with valid JSON
- Omit any field the query says nothing about
- "1.2M" = 1200000, "800k" = 800000; prices are pula unless stated otherwise
- "FSBO" or "by owner" means listing_type "owner"
- "plot" or "stand" means property_type "land"

Examples:
Query: "3 bedroom house in Gaborone under 1.5M"
Response: {"min_bedrooms": 3, "property_type": "house", "location": "Gaborone", "max_price": 1500000, "explanation": "Houses in Gaborone with at least 3 bedrooms up to P1,500,000", "confidence": 0.95}

Query: "cheap plots near Maun by owner"
Response: {"property_type": "land", "location": "Maun", "listing_type": "owner", "keywords": ["cheap"], "explanation": "Owner-listed land around Maun at the lower end of the market", "confidence": 0.8}`

// Client is the LLM-backed query interpreter and embedder.
type Client struct {
	cfg    *config.AIConfig
	api    *openai.Client
	logger *zap.Logger
}

// New creates a client from config. Returns nil when no API key is set, so
// callers can wire the interpreter optionally.
func New(cfg *config.AIConfig, logger *zap.Logger) *Client {
	if !cfg.Enabled {
		return nil
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		oc.BaseURL = cfg.APIBase
	}
	return &Client{
		cfg:    cfg,
		api:    openai.NewClientWithConfig(oc),
		logger: logger,
	}
}

// Interpret converts a free-text query into a structured filter payload.
func (c *Client) Interpret(ctx context.Context, query string) (*model.AIFilterPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	var payload model.AIFilterPayload
	if err := utils.ParseAIJSON(content, &payload); err != nil {
		c.logger.Debug("unparseable interpreter output", zap.String("content", content))
		return nil, fmt.Errorf("parse interpreter response: %w", err)
	}

	if err := validatePayload(&payload); err != nil {
		return nil, fmt.Errorf("interpreter response rejected: %w", err)
	}
	return &payload, nil
}

// validatePayload applies business rules to the model output before it can
// reach the filter state.
func validatePayload(p *model.AIFilterPayload) error {
	if p.MinPrice != nil && *p.MinPrice < 0 {
		return fmt.Errorf("min_price must be non-negative")
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return fmt.Errorf("min_price (%g) exceeds max_price (%g)", *p.MinPrice, *p.MaxPrice)
	}
	if p.PropertyType != nil && !model.ValidPropertyType(*p.PropertyType) {
		return fmt.Errorf("unknown property_type %q", *p.PropertyType)
	}
	if p.ListingType != nil && !model.ValidListingType(*p.ListingType) {
		return fmt.Errorf("unknown listing_type %q", *p.ListingType)
	}
	if p.MinBedrooms != nil && (*p.MinBedrooms < 0 || *p.MinBedrooms > 20) {
		return fmt.Errorf("min_bedrooms out of range")
	}
	if p.MinBathrooms != nil && (*p.MinBathrooms < 0 || *p.MinBathrooms > 20) {
		return fmt.Errorf("min_bathrooms out of range")
	}
	return nil
}

// Embed generates embeddings for the given texts, batched per config.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	all := make([][]float32, 0, len(texts))
	batchSize := c.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}
		all = append(all, batch...)

		// Rate limiting: small delay between batches.
		if end < len(texts) {
			time.Sleep(100 * time.Millisecond)
		}
	}
	return all, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(c.cfg.EmbeddingModel),
		Dimensions: c.cfg.EmbeddingDimensions,
	})
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < len(out) {
			out[item.Index] = item.Embedding
		}
	}
	return out, nil
}
