package settings

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// snapshot holds the in-memory site settings values.
type snapshot struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

// globalSnapshot stores the latest snapshot atomically.
var globalSnapshot atomic.Value // stores snapshot

// init seeds the global snapshot.
func init() {
	globalSnapshot.Store(snapshot{values: map[string]json.RawMessage{}})
}

// Store replaces the in-memory snapshot of DB-backed site settings.
func Store(updatedAt time.Time, values map[string]json.RawMessage) {
	next := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		if v == nil {
			next[key] = nil
			continue
		}
		copied := make([]byte, len(v))
		copy(copied, v)
		next[key] = copied
	}

	globalSnapshot.Store(snapshot{
		updatedAt: updatedAt.UTC(),
		values:    next,
	})
}

// UpdatedAt returns the last update timestamp for site settings.
func UpdatedAt() time.Time {
	return load().updatedAt
}

// Value returns a copy of the raw setting value for a key.
func Value(key string) (json.RawMessage, bool) {
	cfg := load()
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	val, ok := cfg.values[key]
	if !ok {
		return nil, false
	}
	if val == nil {
		return nil, true
	}
	copied := make([]byte, len(val))
	copy(copied, val)
	return copied, true
}

// StringValue returns the setting as a string, or fallback when unset.
func StringValue(key, fallback string) string {
	raw, ok := Value(key)
	if !ok || len(raw) == 0 {
		return fallback
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal == nil && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// IntValue returns the setting as an int, or fallback when unset or invalid.
func IntValue(key string, fallback int) int {
	raw, ok := Value(key)
	if !ok || len(raw) == 0 {
		return fallback
	}
	var n int
	if errUnmarshal := json.Unmarshal(raw, &n); errUnmarshal == nil && n > 0 {
		return n
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal == nil {
		if n, errParse := strconv.Atoi(strings.TrimSpace(s)); errParse == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// SiteName returns the configured site name.
func SiteName() string {
	return StringValue(SiteNameKey, DefaultSiteName)
}

// SiteDescription returns the configured site tagline.
func SiteDescription() string {
	return StringValue(SiteDescriptionKey, DefaultSiteDescription)
}

// PostsPerPage returns the configured public listing size.
func PostsPerPage() int {
	return IntValue(PostsPerPageKey, DefaultPostsPerPage)
}

// FeaturedLimit returns the configured featured post count.
func FeaturedLimit() int {
	return IntValue(FeaturedLimitKey, DefaultFeaturedLimit)
}

// load returns the current snapshot with safe defaults.
func load() snapshot {
	v := globalSnapshot.Load()
	cfg, ok := v.(snapshot)
	if !ok {
		return snapshot{values: map[string]json.RawMessage{}}
	}
	if cfg.values == nil {
		return snapshot{updatedAt: cfg.updatedAt, values: map[string]json.RawMessage{}}
	}
	return cfg
}
