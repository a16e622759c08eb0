package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/tablio/restaurant-reservation/internal/config"
)

func browseContext(target, slug string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest("GET", target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/public/:tenant/reservation-slots")
	c.SetParamNames("tenant")
	c.SetParamValues(slug)
	return c
}

func TestAvailabilityKeySeparatesTenants(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "avail", KeyStrategy: "tenant_route_query"}
	target := "/v1/public/x/reservation-slots?date=2025-06-03&guests=2"

	luigi := availabilityKey(cfg, browseContext(target, "luigi"))
	mario := availabilityKey(cfg, browseContext(target, "mario"))
	again := availabilityKey(cfg, browseContext(target, "luigi"))

	assert.NotEqual(t, luigi, mario)
	assert.Equal(t, luigi, again)
	assert.Contains(t, luigi, "avail:luigi:")
}

func TestAvailabilityKeyStrategyDropsQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "avail", KeyStrategy: "tenant_route"}

	a := availabilityKey(cfg, browseContext("/v1/public/x/reservation-slots?date=2025-06-03", "luigi"))
	b := availabilityKey(cfg, browseContext("/v1/public/x/reservation-slots?date=2025-06-04", "luigi"))

	assert.Equal(t, a, b)
}

func TestBucketKeyStrategies(t *testing.T) {
	// httptest requests carry RemoteAddr 192.0.2.1.
	cases := []struct {
		strategy string
		want     string
	}{
		{"tenant_ip", "booking:t:luigi:ip:192.0.2.1"},
		{"tenant", "booking:t:luigi"},
		{"ip", "booking:ip:192.0.2.1"},
		{"tenant_ip_route", "booking:t:luigi:ip:192.0.2.1:r:GET /v1/public/:tenant/reservation-slots"},
	}
	for _, tc := range cases {
		t.Run(tc.strategy, func(t *testing.T) {
			cfg := config.RateLimitConfig{Prefix: "booking", KeyStrategy: tc.strategy}
			c := browseContext("/v1/public/luigi/reservation-slots", "luigi")
			assert.Equal(t, tc.want, bucketKey(cfg, c))
		})
	}
}

func TestCacheEntryRoundTrip(t *testing.T) {
	body := []byte(`{"slots":[]}`)
	status, got, ok := decodeEntry(encodeEntry(200, body))
	assert.True(t, ok)
	assert.Equal(t, 200, status)
	assert.Equal(t, body, got)

	_, _, ok = decodeEntry([]byte{0, 0})
	assert.False(t, ok)
}
