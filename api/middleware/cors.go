package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS applies the allowed origin policy. Origins come in as a
// comma-separated list; "*" opens the API up for local development.
func CORS(origins string) func(http.Handler) http.Handler {
	allowed := []string{"*"}
	if trimmed := strings.TrimSpace(origins); trimmed != "" && trimmed != "*" {
		allowed = allowed[:0]
		for _, origin := range strings.Split(trimmed, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowed = append(allowed, origin)
			}
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
