// Package catalog talks to the provider catalog and match services.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventmarket/backend/internal/models"
)

const (
	cacheKeyFull = "catalog:full"
	maxBodyBytes = 5 << 20
)

// Cache stores raw catalog payloads.
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config holds catalog endpoints and limits.
type Config struct {
	BaseURL  string
	MatchURL string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client is an HTTP client for GET /catalog/full and POST /match-need.
type Client struct {
	cfg    Config
	http   *http.Client
	cache  Cache
	logger *zap.Logger
}

// NewClient creates a catalog client. cache may be nil.
func NewClient(cfg Config, cache Cache, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: logger,
	}
}

// Categories returns the normalized category list, served from cache when fresh.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	if c.cache != nil {
		cached, ok, err := c.cache.GetBytes(ctx, cacheKeyFull)
		if err != nil {
			c.logger.Warn("catalog cache read failed", zap.Error(err))
		} else if ok {
			var cats []Category
			if err := json.Unmarshal(cached, &cats); err == nil {
				return cats, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/catalog/full", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cats, err := NormalizeCategories(body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && c.cfg.CacheTTL > 0 {
		if encoded, err := json.Marshal(cats); err == nil {
			if err := c.cache.SetBytes(ctx, cacheKeyFull, encoded, c.cfg.CacheTTL); err != nil {
				c.logger.Warn("catalog cache write failed", zap.Error(err))
			}
		}
	}
	return cats, nil
}

type matchRequest struct {
	Need    models.EventNeed    `json:"need"`
	Context models.MatchContext `json:"context"`
}

type matchedProvider struct {
	ID     string  `json:"id"`
	UserID string  `json:"userId"`
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Score  float64 `json:"score"`
}

// MatchNeed asks the match service for ranked providers. Any failure, including a non-200
// answer, is logged and yields an empty list.
func (c *Client) MatchNeed(ctx context.Context, need models.EventNeed, mctx models.MatchContext) []models.ProviderMatch {
	log := c.logger.With(zap.String("need_id", need.ID.String()))

	body, err := json.Marshal(matchRequest{Need: need, Context: mctx})
	if err != nil {
		log.Warn("encode match request", zap.Error(err))
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.MatchURL+"/match-need", bytes.NewReader(body))
	if err != nil {
		log.Warn("create match request", zap.Error(err))
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("match service unreachable", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Warn("match service error", zap.Int("status", resp.StatusCode))
		return nil
	}

	var out struct {
		Providers []matchedProvider `json:"providers"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		log.Warn("decode match response", zap.Error(err))
		return nil
	}

	matches := make([]models.ProviderMatch, 0, len(out.Providers))
	for _, p := range out.Providers {
		raw := p.ID
		if raw == "" {
			raw = p.UserID
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		matches = append(matches, models.ProviderMatch{ProviderID: id, Name: p.Name, City: p.City, Score: p.Score})
	}
	return matches
}
