package completion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-panelsplit/internal/store"
)

// CacheCollection is the store collection holding cached responses.
const CacheCollection = "completions"

// Compile-time interface compliance check.
var _ Completer = (*CachedCompleter)(nil)

// CachedCompleter serves repeated prompts from a document store. Only
// successful raw responses are cached; errors always reach the provider again.
type CachedCompleter struct {
	next  Completer
	store store.Store
	model string
	now   func() time.Time
}

type cachedResponse struct {
	Model     string    `json:"model"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCachedCompleter wraps next. model is part of the cache key so switching
// models never serves a stale answer.
func NewCachedCompleter(next Completer, s store.Store, model string) *CachedCompleter {
	return &CachedCompleter{next: next, store: s, model: model, now: time.Now}
}

// CacheKey returns the content address of a prompt for model.
func CacheKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// Complete returns the cached response for prompt, calling the wrapped
// completer on a miss.
func (c *CachedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	key := CacheKey(c.model, prompt)

	doc, err := c.store.Get(ctx, CacheCollection, key)
	switch {
	case err == nil:
		var cached cachedResponse
		if jsonErr := json.Unmarshal(doc, &cached); jsonErr == nil {
			return cached.Response, nil
		}
	case !errors.Is(err, store.ErrNotFound):
		return "", fmt.Errorf("read cache: %w", err)
	}

	resp, err := c.next.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	doc, err = json.Marshal(cachedResponse{Model: c.model, Response: resp, CreatedAt: c.now().UTC()})
	if err != nil {
		return "", fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.store.Put(ctx, CacheCollection, key, doc); err != nil {
		return "", fmt.Errorf("write cache: %w", err)
	}
	return resp, nil
}
