package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Helper wraps a Client with the convenience operations the HTTP layer and
// the cached repositories use. Failures are logged and reported through the
// boolean or zero results; they never propagate to the caller.
type Helper struct {
	client     Client
	logger     zerolog.Logger
	defaultTTL time.Duration
}

// NewHelper builds a Helper. A defaultTTL <= 0 uses DefaultTTL.
func NewHelper(client Client, logger zerolog.Logger, defaultTTL time.Duration) *Helper {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Helper{client: client, logger: logger, defaultTTL: defaultTTL}
}

// Client returns the wrapped client.
func (h *Helper) Client() Client { return h.client }

// SetKey stores value with the given ttl, or the default ttl when ttl <= 0.
// Strings are stored as-is, everything else is JSON encoded.
func (h *Helper) SetKey(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = h.defaultTTL
	}

	payload, err := encodeValue(value)
	if err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("cache value not encodable")
		return false
	}

	if err := h.client.Set(ctx, key, payload, ttl); err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
		return false
	}
	return true
}

// GetKey returns the decoded value stored under key, the raw string when it
// is not valid JSON, or nil on a miss or error.
func (h *Helper) GetKey(ctx context.Context, key string) any {
	raw, found, err := h.client.Get(ctx, key)
	if err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return nil
	}
	if !found {
		return nil
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}

// DeleteKey removes key and reports whether it existed.
func (h *Helper) DeleteKey(ctx context.Context, key string) bool {
	deleted, err := h.client.Delete(ctx, key)
	if err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
		return false
	}
	return deleted
}

// DeleteKeysByPattern removes every key matching pattern and returns the
// number removed. Keys are listed first and then deleted, so entries written
// in between survive.
func (h *Helper) DeleteKeysByPattern(ctx context.Context, pattern string) int64 {
	keys, err := h.client.Keys(ctx, pattern)
	if err != nil {
		h.logger.Warn().Err(err).Str("pattern", pattern).Msg("cache key listing failed")
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	n, err := h.client.DeleteKeys(ctx, keys...)
	if err != nil {
		h.logger.Warn().Err(err).Str("pattern", pattern).Int("keys", len(keys)).Msg("cache pattern delete failed")
		return 0
	}
	return n
}

// KeyExists reports whether key is present.
func (h *Helper) KeyExists(ctx context.Context, key string) bool {
	ok, err := h.client.Exists(ctx, key)
	if err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("cache exists failed")
		return false
	}
	return ok
}

// SetExpiry resets the ttl of an existing key.
func (h *Helper) SetExpiry(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := h.client.Expire(ctx, key, ttl)
	if err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("cache expire failed")
		return false
	}
	return ok
}

func encodeValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.RawMessage:
		return string(v), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
