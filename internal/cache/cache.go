// Package cache keeps rendered GET responses of the JSON API in Redis.
//
// Entries are keyed by a generation number. Every successful mutating request
// increments the generation, which orphans all earlier entries at once; they
// expire through their TTL.
package cache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/izposoja/internal/metrics"
)

// ErrMiss is returned by Store.Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

// DefaultTTL bounds how stale a cached listing may get, including the
// derived reservedNow flag.
const DefaultTTL = 30 * time.Second

// maxBodyBytes caps the size of a cached response.
const maxBodyBytes = 1 << 20

// Store is the key-value backend of the cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}

// Cache caches successful GET responses. A nil *Cache caches nothing.
type Cache struct {
	store  Store
	ttl    time.Duration
	prefix string
}

// New creates a cache over store. A non-positive ttl means DefaultTTL.
func New(store Store, prefix string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "izposoja"
	}
	return &Cache{store: store, ttl: ttl, prefix: prefix}
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.store.Close()
}

func (c *Cache) generationKey() string {
	return c.prefix + ":generation"
}

// generation returns the current generation. A missing key reads as zero.
func (c *Cache) generation(ctx context.Context) (int64, error) {
	raw, err := c.store.Get(ctx, c.generationKey())
	if errors.Is(err, ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

// Invalidate orphans every cached response.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if _, err := c.store.Incr(ctx, c.generationKey()); err != nil {
		return fmt.Errorf("bumping cache generation: %w", err)
	}
	return nil
}

func (c *Cache) key(gen int64, r *http.Request) string {
	sum := sha1.Sum([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%d:%x", c.prefix, gen, sum[:])
}

// captureWriter forwards the response while keeping a copy of it.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.buf.Len() <= maxBodyBytes {
		cw.buf.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

// Middleware serves GET requests from the cache and stores 200 responses.
// Any other request that succeeds invalidates the cache.
func (c *Cache) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)
			if cw.status < 400 {
				if err := c.Invalidate(r.Context()); err != nil {
					slog.Warn("cache invalidation failed", "path", r.URL.Path, "error", err)
				}
			}
			return
		}

		ctx := r.Context()
		gen, err := c.generation(ctx)
		if err != nil {
			slog.Warn("cache unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		key := c.key(gen, r)

		if payload, err := c.store.Get(ctx, key); err == nil {
			if status, header, body, ok := decodePayload(payload); ok {
				metrics.CacheLookups.WithLabelValues("hit").Inc()
				for k, vals := range header {
					for _, v := range vals {
						w.Header().Add(k, v)
					}
				}
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(status)
				w.Write(body)
				return
			}
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()

		cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(cw, r)

		if cw.status != http.StatusOK || cw.buf.Len() > maxBodyBytes {
			return
		}
		header := http.Header{}
		if ct := w.Header().Get("Content-Type"); ct != "" {
			header.Set("Content-Type", ct)
		}
		payload, err := encodePayload(cw.status, header, cw.buf.Bytes())
		if err != nil {
			return
		}
		// The request context may already be cancelled once the client has
		// its response.
		if err := c.store.Set(context.WithoutCancel(ctx), key, payload, c.ttl); err != nil {
			slog.Warn("cache store failed", "path", r.URL.Path, "error", err)
		}
	})
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
		return 0, nil, nil, false
	}
	return status, header, bs[8+hlen:], true
}
