// internal/app/features/invoices/routes.go
package invoices

import (
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the billing endpoints.
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
		pr.Post("/{id}/payment", h.ServePayment)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Post("/{id}/refund", h.ServeRefund)
	})

	return r
}
