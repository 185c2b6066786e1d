// internal/app/features/unlocks/routes.go
package unlocks

import (
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the unlock-request endpoints. Staff file requests, admins
// work the queue.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleStaff, models.RoleAdmin))

		pr.Get("/", h.ServeListByStudent)
		pr.Post("/", h.ServeRequest)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Get("/pending", h.ServeListPending)
		pr.Post("/{id}/resolve", h.ServeResolve)
	})

	return r
}
