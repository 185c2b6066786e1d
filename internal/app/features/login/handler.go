// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"

	"github.com/jmassawe/edupath/internal/app/features/apierr"
	userstore "github.com/jmassawe/edupath/internal/app/store/users"
	"github.com/jmassawe/edupath/internal/app/system/auth"
	"github.com/jmassawe/edupath/internal/app/system/inputval"
	"github.com/jmassawe/edupath/internal/app/system/ratelimit"
	"github.com/jmassawe/edupath/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves email/password sign-in.
type Handler struct {
	Users   *userstore.Store
	Limiter *ratelimit.LoginLimiter
	Log     *zap.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(users *userstore.Store, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Limiter: limiter, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Serve handles POST /login. Unknown email and wrong password return the
// same 401 so the endpoint cannot be used to enumerate accounts.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, err, h.Log)
		return
	}
	email := inputval.NormalizeEmail(req.Email)
	if !inputval.IsValidEmail(email) || req.Password == "" {
		apierr.JSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	if h.Limiter != nil {
		if allowed, reason := h.Limiter.Check(r, email); !allowed {
			apierr.JSON(w, http.StatusTooManyRequests, map[string]string{"error": reason})
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "login")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			apierr.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		apierr.Write(w, err, h.Log)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		apierr.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}

	su := auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if err := auth.SignIn(w, r, su); err != nil {
		h.Log.Error("login: session write failed", zap.Error(err))
		apierr.JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", su.ID), zap.String("role", su.Role))
	apierr.JSON(w, http.StatusOK, su)
}
