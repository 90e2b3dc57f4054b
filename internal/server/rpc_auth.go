package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// codeUnauthorized is sent in the JSON-RPC error body of rejected requests.
const codeUnauthorized = -32600

// tokenQueryParam carries the token for WebSocket clients that cannot set
// headers, such as browsers.
const tokenQueryParam = "access_token"

// requireToken rejects requests that do not present secret, answering with a
// JSON-RPC error object and HTTP 401. An empty secret rejects everything.
func requireToken(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validToken(secret, requestToken(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"error": map[string]any{
					"code":    codeUnauthorized,
					"message": "Unauthorized",
				},
				"id": nil,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestToken extracts the Bearer token, falling back to the access_token
// query parameter on WebSocket upgrades.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if !strings.HasPrefix(h, "Bearer ") {
			return ""
		}
		return strings.TrimPrefix(h, "Bearer ")
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get(tokenQueryParam)
	}
	return ""
}

// validToken compares in constant time.
func validToken(secret, token string) bool {
	if secret == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
