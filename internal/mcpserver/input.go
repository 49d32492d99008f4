package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/httpvalidator"
)

// specInput selects the contract a tool works on. At most one of File or
// Content may be set; with neither, the server's default contract is used.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OpenAPI 3.0/3.1 file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline OpenAPI document content (JSON or YAML)"`
}

// cacheEntry holds a built validator with LRU ordering.
type cacheEntry struct {
	validator *httpvalidator.Validator
	usedAt    time.Time
}

// validatorCache keeps validators built from tool inputs. File inputs are
// keyed by (absolutePath, modTime) so edits invalidate them. Content inputs
// are keyed by a SHA-256 hash.
type validatorCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	maxSize int
}

func newValidatorCache(maxSize int) *validatorCache {
	return &validatorCache{entries: make(map[string]*cacheEntry), maxSize: maxSize}
}

func (c *validatorCache) get(key string) *httpvalidator.Validator {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.usedAt = time.Now()
		return e.validator
	}
	return nil
}

// put stores v, evicting the least recently used entry if at capacity.
func (c *validatorCache) put(key string, v *httpvalidator.Validator) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.usedAt.Before(oldest) {
				oldestKey, oldest = k, e.usedAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = &cacheEntry{validator: v, usedAt: time.Now()}
}

func (c *validatorCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey returns the cache key for s, or "" when it cannot be cached.
func cacheKey(s specInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return ""
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return "content:" + hex.EncodeToString(h[:])
	default:
		return ""
	}
}

var errNoContract = errors.New("no contract: provide spec.file or spec.content, or start the server with a default contract")

// validator returns the validator for s, building and caching it on first use.
func (s *Server) validator(ctx context.Context, in specInput) (*httpvalidator.Validator, error) {
	if in.File != "" && in.Content != "" {
		return nil, errors.New("at most one of file or content may be provided")
	}
	if in.File == "" && in.Content == "" {
		if s.fallback == nil {
			return nil, errNoContract
		}
		return s.fallback(), nil
	}
	if in.Content != "" && int64(len(in.Content)) > s.cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASGUARD_MAX_INLINE_SIZE to increase",
			len(in.Content), s.cfg.MaxInlineSize)
	}

	key := cacheKey(in)
	if key != "" {
		if v := s.cache.get(key); v != nil {
			return v, nil
		}
	}

	var doc *contract.Document
	var err error
	if in.File != "" {
		doc, err = contract.LoadFile(in.File)
	} else {
		doc, err = contract.ParseDocument([]byte(in.Content))
	}
	if err != nil {
		return nil, err
	}
	c, err := contract.Build(ctx, doc, contract.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	v, err := httpvalidator.New(c, append(s.validatorOpts, httpvalidator.WithLogger(s.logger))...)
	if err != nil {
		return nil, err
	}

	if key != "" {
		s.cache.put(key, v)
	}
	return v, nil
}
