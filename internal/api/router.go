package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nmorel/altered-companion/internal/api/handlers"
	"github.com/nmorel/altered-companion/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		collectionHandler := handlers.NewCollectionHandler(s.service)
		r.Route("/collection", func(r chi.Router) {
			r.Get("/", collectionHandler.GetCollection)
			r.Post("/refresh", collectionHandler.RefreshCollection)
			r.Get("/stats", collectionHandler.GetStats)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Post("/{reference}/wantlist", collectionHandler.ToggleWantlist)
			r.Put("/{reference}/tradelist", collectionHandler.UpdateTradelist)
		})

		friendsHandler := handlers.NewFriendsHandler(s.service)
		r.Route("/friends", func(r chi.Router) {
			r.Get("/", friendsHandler.GetFriends)
			r.Post("/refresh", friendsHandler.RefreshFriends)
		})
		r.Route("/tradelists", func(r chi.Router) {
			r.Get("/", friendsHandler.GetTradelists)
			r.Post("/refresh", friendsHandler.RefreshTradelists)
			r.Delete("/cache", friendsHandler.ClearCardCache)
		})

		tradesHandler := handlers.NewTradesHandler(s.service)
		r.Route("/trades", func(r chi.Router) {
			r.Get("/", tradesHandler.GetTrades)
			r.Post("/", tradesHandler.StartTrade)
			r.Put("/{tradeID}/accept", tradesHandler.AcceptTrade)
			r.Put("/{tradeID}/cancel", tradesHandler.CancelTrade)
		})
	})
}

// healthCheck reports server liveness.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
