// ABOUTME: Bounded recency cache of mention tokens persisted as a JSON array in a Store
// ABOUTME: First-occurrence dedup, evicts from the front past capacity, self-heals corrupt data

package recent

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	pilog "github.com/mauromedda/pi-post-go/internal/log"
	"github.com/mauromedda/pi-post-go/internal/storage"
)

// Defaults for the stored token list.
const (
	DefaultCapacity = 16
	DefaultKey      = "presets"
)

// Cache is the recently used token list. Storage failures are logged and
// treated as an absent cache; they never reach the caller.
type Cache struct {
	store    storage.Store
	key      string
	capacity int
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity bounds the number of kept tokens. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithKey sets the storage key holding the JSON array.
func WithKey(key string) Option {
	return func(c *Cache) {
		if key != "" {
			c.key = key
		}
	}
}

// New creates a cache over store.
func New(store storage.Store, opts ...Option) *Cache {
	c := &Cache{store: store, key: DefaultKey, capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capacity returns the maximum number of kept tokens.
func (c *Cache) Capacity() int { return c.capacity }

// Load returns the stored tokens in stored order. Unparsable data yields an
// empty list and the slot is immediately reset to an empty array.
func (c *Cache) Load() []string {
	raw, ok, err := c.store.Get(c.key)
	if err != nil {
		pilog.Debug("recent: reading %q: %v", c.key, err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	tokens, valid := parse(raw)
	if !valid {
		pilog.Debug("recent: resetting corrupt %q: %.64q", c.key, raw)
		c.save(nil)
		return nil
	}
	return tokens
}

// Record appends tokens, keeps the first occurrence of each, trims to the
// newest capacity entries, and persists. A token already present keeps its
// original position. Empty input writes nothing.
func (c *Cache) Record(tokens []string) {
	if len(tokens) == 0 {
		return
	}

	merged := append(c.Load(), tokens...)
	seen := make(map[string]struct{}, len(merged))
	deduped := merged[:0]
	for _, t := range merged {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		deduped = append(deduped, t)
	}
	if len(deduped) > c.capacity {
		deduped = deduped[len(deduped)-c.capacity:]
	}
	c.save(deduped)
}

// Clear empties the stored list.
func (c *Cache) Clear() {
	c.save(nil)
}

// Rendered returns the non-empty stored tokens for an autocomplete list.
func (c *Cache) Rendered() []string {
	all := c.Load()
	out := make([]string, 0, len(all))
	for _, t := range all {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (c *Cache) save(tokens []string) {
	if tokens == nil {
		tokens = []string{}
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		pilog.Debug("recent: encoding tokens: %v", err)
		return
	}
	if err := c.store.Set(c.key, string(data)); err != nil {
		pilog.Debug("recent: writing %q: %v", c.key, err)
	}
}

// parse accepts only a JSON array whose elements are all strings.
func parse(raw string) ([]string, bool) {
	if !gjson.Valid(raw) {
		return nil, false
	}
	res := gjson.Parse(raw)
	if !res.IsArray() {
		return nil, false
	}
	var tokens []string
	valid := true
	res.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.String {
			valid = false
			return false
		}
		tokens = append(tokens, v.String())
		return true
	})
	if !valid {
		return nil, false
	}
	return tokens, true
}
