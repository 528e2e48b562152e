package websocket

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func wsRequest(origin string) *http.Request {
	r := httptest.NewRequest("GET", "/api/ws/player", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

// TestOriginAllowed tests the upgrade origin policy
func TestOriginAllowed(t *testing.T) {
	t.Run("default allow list", func(t *testing.T) {
		t.Setenv("CADENZA_CORS_ORIGINS", "")

		assert.True(t, originAllowed(wsRequest("http://localhost:3000")))
		assert.True(t, originAllowed(wsRequest("http://localhost:5173")))
		assert.False(t, originAllowed(wsRequest("http://evil.invalid")))
	})

	t.Run("configured allow list", func(t *testing.T) {
		t.Setenv("CADENZA_CORS_ORIGINS", "https://player.home.lan, https://other.home.lan")

		assert.True(t, originAllowed(wsRequest("https://player.home.lan")))
		assert.True(t, originAllowed(wsRequest("https://other.home.lan")), "entries may carry spaces")
		assert.False(t, originAllowed(wsRequest("http://localhost:3000")), "defaults are replaced, not extended")
	})

	t.Run("wildcard disables the check", func(t *testing.T) {
		t.Setenv("CADENZA_CORS_ORIGINS", "*")

		assert.True(t, originAllowed(wsRequest("http://anything.invalid")))
	})

	t.Run("non-browser clients have no origin", func(t *testing.T) {
		t.Setenv("CADENZA_CORS_ORIGINS", "https://player.home.lan")

		assert.True(t, originAllowed(wsRequest("")))
	})
}
