package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/upal04/cardvault/internal/services"
)

// NewRouter assembles the HTTP surface over the auth and vault
// services.
func NewRouter(auth *services.AuthService, vault *services.VaultService, devKey string) chi.Router {
	authHandler := NewAuthHandler(auth)
	cardHandler := NewCardHandler(vault)
	devHandler := NewDevHandler(vault, devKey)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Get("/dev/stats", devHandler.Stats)

		// Everything below requires a live session
		r.Group(func(r chi.Router) {
			r.Use(Authenticator(auth))

			r.Post("/logout", authHandler.Logout)
			r.Delete("/account", authHandler.DeleteAccount)

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", cardHandler.Create)
				r.Get("/", cardHandler.List)
				r.Get("/{cardID}", cardHandler.Get)
				r.Delete("/{cardID}", cardHandler.Delete)
				r.Get("/{cardID}/validity", cardHandler.CheckValidity)
			})
		})
	})

	return router
}
