// internal/app/features/students/routes.go
package students

import (
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the student profile endpoints. Students may work on their
// own profile, so reads, field edits and submission accept any signed-in
// role; the workflow layer enforces the per-operation role gates. Review
// actions are gated to back-office roles up front.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/{id}", h.ServeGet)
		pr.Patch("/{id}/fields", h.ServeUpdateField)
		pr.Post("/{id}/family-members", h.ServeAddFamilyMember)
		pr.Post("/{id}/education", h.ServeAddEducation)
		pr.Post("/{id}/employment", h.ServeAddEmployment)
		pr.Post("/{id}/submit", h.ServeSubmit)
		pr.Post("/{id}/documents", h.ServeAddDocument)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleStaff, models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Post("/{id}/activate", h.ServeActivate)
		pr.Post("/documents/{docID}/review", h.ServeReviewDocument)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Post("/{id}/forward", h.ServeForward)
		pr.Post("/{id}/return", h.ServeReturn)
	})

	return r
}
