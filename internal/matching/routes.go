package matching

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()

	// Ranking
	api.HandleFunc("/discover/{userId:[0-9]+}", handler.Discover).Methods("GET")

	// Compatibility
	api.HandleFunc("/compatibility/{userIdA:[0-9]+}/{userIdB:[0-9]+}", handler.GetCompatibility).Methods("GET")

	// Daily picks
	api.HandleFunc("/picks/generate", handler.GeneratePicks).Methods("POST")
	api.HandleFunc("/picks/{userId:[0-9]+}", handler.GetDailyPicks).Methods("GET")
}
