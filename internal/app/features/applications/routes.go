// internal/app/features/applications/routes.go
package applications

import (
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the application endpoints. Creation and workflow moves are
// back-office; the admin review gate is also enforced by the transition
// tables, so the route gate here is just the first line.
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
		pr.Post("/{id}/submit", h.ServeSubmit)
		pr.Post("/{id}/decision", h.ServeDecision)
		pr.Post("/{id}/resubmit", h.ServeResubmit)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Post("/{id}/review", h.ServeReview)
		pr.Post("/{id}/dispatch", h.ServeDispatch)
	})

	return r
}
