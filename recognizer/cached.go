package recognizer

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/thearijain/digitalink/ink"
)

// Store is the byte store a Cached recognizer memoizes results in.
// cache.Cache satisfies it.
type Store interface {
	Get(key []byte) ([]byte, bool)
	Put(key, value []byte) error
}

// Cached wraps a Recognizer and memoizes results keyed by a digest of the
// language and the ink geometry. Identical ink (an exact replay, not merely
// similar handwriting) skips the backend entirely.
type Cached struct {
	inner Recognizer
	store Store
	lang  string
}

// NewCached wraps rec with a result cache.
func NewCached(rec Recognizer, store Store, lang string) *Cached {
	return &Cached{inner: rec, store: store, lang: lang}
}

// Recognize implements Recognizer.
func (c *Cached) Recognize(ctx context.Context, k ink.Ink, rc Context) (*Result, error) {
	key, err := c.digest(k, rc)
	if err != nil {
		return c.inner.Recognize(ctx, k, rc)
	}

	if raw, ok := c.store.Get(key); ok {
		var res Result
		if err := json.Unmarshal(raw, &res); err == nil {
			slog.Debug("recognition cache hit", "candidates", len(res.Candidates))
			return &res, nil
		}
	}

	res, err := c.inner.Recognize(ctx, k, rc)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(res); err == nil {
		if err := c.store.Put(key, raw); err != nil {
			slog.Warn("store recognition result", "error", err)
		}
	}
	return res, nil
}

func (c *Cached) digest(k ink.Ink, rc Context) ([]byte, error) {
	raw, err := k.MarshalBinary()
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|", c.lang, rc.PreContext)
	h.Write(raw)
	return h.Sum(nil), nil
}
