package models

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/Quotient-Labs/quote-agent/src/cache"
)

// CachedModel wraps a Model and caches Generate calls.
type CachedModel struct {
	Model    Model
	Cache    *cache.LRUCache
	FilePath string
}

// NewCachedModel creates a new CachedModel wrapper.
func NewCachedModel(model Model, size int, ttl time.Duration, filePath string) *CachedModel {
	c := &CachedModel{
		Model:    model,
		Cache:    cache.NewLRUCache(size, ttl),
		FilePath: filePath,
	}
	if filePath != "" {
		c.load()
	}
	return c
}

func (c *CachedModel) load() {
	f, err := os.Open(c.FilePath)
	if err != nil {
		return // ignore errors (file not found, etc)
	}
	defer f.Close()

	var dump map[string]cache.Entry
	if err := json.NewDecoder(f).Decode(&dump); err == nil {
		c.Cache.Restore(dump)
	}
}

func (c *CachedModel) save() {
	if c.FilePath == "" {
		return
	}
	dump := c.Cache.Dump()

	// Atomic write: write to temp, then rename
	tmp := c.FilePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return
	}

	if err := json.NewEncoder(f).Encode(dump); err != nil {
		f.Close()
		os.Remove(tmp)
		return
	}
	f.Close()
	os.Rename(tmp, c.FilePath)
}

// Generate checks the cache before calling the underlying model.
func (c *CachedModel) Generate(ctx context.Context, prompt string) (string, error) {
	key := cache.HashKey(prompt)
	if val, ok := c.Cache.Get(key); ok {
		if text, ok := val.(string); ok {
			return text, nil
		}
	}

	text, err := c.Model.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	c.Cache.Set(key, text)
	c.save()
	return text, nil
}

// TryCreateCachedModel checks env vars and wraps the model if caching is enabled.
func TryCreateCachedModel(model Model) Model {
	sizeStr := os.Getenv("QUOTE_AGENT_LLM_CACHE_SIZE")
	if sizeStr == "" {
		return model
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		return model
	}

	ttl := 300 * time.Second
	if ttlStr := os.Getenv("QUOTE_AGENT_LLM_CACHE_TTL"); ttlStr != "" {
		if sec, err := strconv.Atoi(ttlStr); err == nil && sec > 0 {
			ttl = time.Duration(sec) * time.Second
		}
	}

	path := os.Getenv("QUOTE_AGENT_LLM_CACHE_PATH")
	if path == "" {
		path = ".quote_agent_cache.json"
	}

	return NewCachedModel(model, size, ttl, path)
}

var _ Model = (*CachedModel)(nil)
