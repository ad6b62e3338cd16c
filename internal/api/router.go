package api

import (
	"github.com/gorilla/mux"

	"github.com/aurasense/aurasense-server/internal/api/recovery"
)

// NewRouter registers every route the service serves. The agent surfaces that
// remain unbuilt are routed as 501s so clients can distinguish "not yet" from
// a bad path.
func NewRouter(onb *OnboardingHandler, users *UserHandler, ws *WSHandler, healthHandler *HealthHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery.Middleware)

	// auth / user records
	r.HandleFunc("/api/v1/auth/register", users.Register).Methods("POST")
	r.HandleFunc("/api/v1/users", users.GetUser).Methods("GET")

	// onboarding dialogue
	r.HandleFunc("/api/v1/onboarding/start", onb.StartOnboarding).Methods("POST")
	r.HandleFunc("/api/v1/onboarding/turn", onb.ProcessTurn).Methods("POST")
	r.HandleFunc("/api/v1/onboarding/sessions/{sessionId}", onb.StopOnboarding).Methods("DELETE")
	r.HandleFunc("/ws/onboarding", ws.Serve).Methods("GET")

	// agent surfaces pending implementation
	r.HandleFunc("/api/v1/food/recommendations", notImplemented("food recommendations")).Methods("POST")
	r.HandleFunc("/api/v1/food/orders", notImplemented("food ordering")).Methods("POST")
	r.HandleFunc("/api/v1/travel/hotels", notImplemented("hotel booking")).Methods("POST")
	r.HandleFunc("/api/v1/social/matches", notImplemented("social matching")).Methods("POST")

	r.HandleFunc("/api/v1/health", healthHandler.Health).Methods("GET")

	return r
}
