// internal/app/features/universities/handler.go
package universities

import (
	"net/http"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	universitystore "github.com/jmassawe/edupath/internal/app/store/universities"
	"github.com/jmassawe/edupath/internal/app/system/inputval"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"github.com/jmassawe/edupath/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the university catalog.
type Handler struct {
	Universities *universitystore.Store
	Log          *zap.Logger
}

// NewHandler constructs a universities Handler.
func NewHandler(unis *universitystore.Store, logger *zap.Logger) *Handler {
	return &Handler{Universities: unis, Log: logger}
}

type createRequest struct {
	Name     string   `json:"name"`
	Country  string   `json:"country"`
	City     string   `json:"city"`
	Ranking  int      `json:"ranking"`
	Programs []string `json:"programs"`
}

// ServeCreate handles POST /universities (admin).
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	name := inputval.Clean(req.Name)
	country := inputval.Clean(req.Country)
	if name == "" || country == "" {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "name and country are required"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create university")
	defer cancel()

	u := &models.University{
		Name:     name,
		Country:  country,
		City:     inputval.Clean(req.City),
		Ranking:  req.Ranking,
		Programs: inputval.CleanAll(req.Programs),
	}
	if err := h.Universities.Insert(ctx, u); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusCreated, u)
}

// ServeGet handles GET /universities/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid university id"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get university")
	defer cancel()

	u, err := h.Universities.GetByID(ctx, id)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, u)
}

// ServeList handles GET /universities.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list universities")
	defer cancel()

	list, err := h.Universities.List(ctx)
	if err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	apierr.JSON(w, http.StatusOK, list)
}
