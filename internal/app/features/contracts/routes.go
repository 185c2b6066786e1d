// internal/app/features/contracts/routes.go
package contracts

import (
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the contract endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeListByStudent)
		pr.Get("/{id}", h.ServeGet)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleStaff, models.RoleAdmin))

		pr.Post("/", h.ServeCreate)
		pr.Patch("/{id}/status", h.ServeAdvance)
		pr.Post("/{id}/sign", h.ServeSign)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Post("/{id}/cancel", h.ServeCancel)
	})

	return r
}
