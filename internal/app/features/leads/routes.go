// internal/app/features/leads/routes.go
package leads

import (
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the lead endpoints. Leads are back-office records: only
// staff and admins see them.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleStaff, models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Post("/", h.ServeCreate)
		pr.Get("/{id}", h.ServeGet)
		pr.Patch("/{id}/status", h.ServeUpdateStatus)
		pr.Patch("/{id}/notes", h.ServeUpdateNotes)
		pr.Post("/{id}/convert", h.ServeConvert)
	})

	return r
}
