package api

import (
	"net/http"

	"github.com/aurasense/aurasense-server/internal/api/respond"
)

// notImplemented backs the agent surfaces that are routed but not yet built.
// Keeping them registered gives clients a stable 501 instead of a 404 they
// would treat as a broken deployment.
func notImplemented(feature string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.WriteNotImplemented(w, feature+" is not available yet")
	}
}
