package web

import (
	"net/http"
	"strings"
)

// refereeOnly rejects requests that don't carry one of the configured
// referee bearer tokens. Tokens live in the config, not in the source.
func (s *Server) refereeOnly(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !s.config.IsRefereeToken(token) {
			s.response(w, http.StatusUnauthorized, map[string]string{
				"error": "missing or invalid referee token",
			})
			return
		}

		h.ServeHTTP(w, r)
	})
}
