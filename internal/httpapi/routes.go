package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(src StateSource) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Route("/state", func(r chi.Router) {
		r.Get("/", State(src))
		r.Get("/chat", Chat(src))
		r.Get("/players", Players(src))
		r.Get("/roles", Roles(src))
		r.Get("/graves", Graves(src))
	})
	return r
}
