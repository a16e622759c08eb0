package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tablio/restaurant-reservation/internal/config"
)

// bufferedWriter tees the response body into a buffer, capped at limit
// bytes, while streaming it to the client. Oversized responses are
// still served but marked uncacheable.
type bufferedWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	overflow bool
	limit    int64
}

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.status = code
	bw.ResponseWriter.WriteHeader(code)
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	if !bw.overflow {
		if bw.limit > 0 && int64(bw.buf.Len()+len(b)) > bw.limit {
			bw.overflow = true
			bw.buf.Reset()
		} else {
			bw.buf.Write(b)
		}
	}
	return bw.ResponseWriter.Write(b)
}

// availabilityKey builds the cache key for a browse request. The
// tenant slug is always part of the key so two restaurants polling the
// same date never see each other's slot grids. The route and query
// tail is hashed to keep keys short regardless of query length.
func availabilityKey(cfg config.CacheConfig, c echo.Context) string {
	slug := c.Param("tenant")
	route := c.Path()

	var tail string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "tenant_route":
		tail = route
	default: // "tenant_route_query"
		tail = route + "?" + c.Request().URL.RawQuery
	}
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%s:%x", cfg.Prefix, slug, sum[:8])
}

// Entries store the status code ahead of the JSON body so non-200
// responses (a disabled booking page, say) replay faithfully.
func encodeEntry(status int, body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out[:4], uint32(status))
	copy(out[4:], body)
	return out
}

func decodeEntry(bs []byte) (status int, body []byte, ok bool) {
	if len(bs) < 4 {
		return 0, nil, false
	}
	return int(binary.BigEndian.Uint32(bs[:4])), bs[4:], true
}

// NewRedisCache caches GET responses from the public browse endpoints
// (settings, slots, tables) in Redis for a short TTL. Those endpoints
// recompute a tenant's slot grid on every request; a booking page left
// open polls them far more often than the underlying reservations
// change. Only GETs are considered, so the booking and cancellation
// POSTs on the same group pass through untouched.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := availabilityKey(cfg, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, body, ok := decodeEntry(bs); ok {
					h := c.Response().Header()
					h.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
					h.Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, werr := c.Response().Write(body)
					return werr
				}
			}

			bw := &bufferedWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = bw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Cache only clean JSON responses. Errors and oversized
			// bodies are cheap to recompute and not worth pinning.
			if bw.status == http.StatusOK && !bw.overflow {
				entry := encodeEntry(bw.status, bw.buf.Bytes())
				_ = rdb.SetEx(context.Background(), key, entry, cfg.TTL).Err()
			}
			return nil
		}
	}
}
