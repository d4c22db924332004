package wire

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seenAddr(trustProxy bool, forwardedFor string) string {
	var got string
	h := clientAddress(trustProxy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.RemoteAddr = "203.0.113.7:41000"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestClientAddress_IgnoresForwardedHeadersByDefault(t *testing.T) {
	// rotating the header must not give a client a fresh rate limit key
	assert.Equal(t, "203.0.113.7:41000", seenAddr(false, "10.0.0.1"))
	assert.Equal(t, "203.0.113.7:41000", seenAddr(false, "10.0.0.2"))
}

func TestClientAddress_TrustedProxy(t *testing.T) {
	assert.Equal(t, "198.51.100.9", seenAddr(true, "198.51.100.9"))
}
