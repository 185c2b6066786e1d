// internal/app/features/commissions/routes.go
package commissions

import (
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the commission views.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleStaff, models.RoleAdmin))

		pr.Get("/", h.ServeListByStaff)
	})

	return r
}
