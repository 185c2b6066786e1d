// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler clears the session.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs a logout Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// Serve handles POST /logout.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if err := auth.SignOut(w, r); err != nil {
		h.Log.Error("logout: session clear failed", zap.Error(err))
		apierr.JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
