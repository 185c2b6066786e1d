// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit reporting endpoint. Admin only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeQuery)
	})

	return r
}
