package login

import (
	"net/http"
	"testing"

	"github.com/jmassawe/edupath/internal/testutil"
	"go.uber.org/zap"
)

func newRouter() http.Handler {
	return Routes(NewHandler(nil, nil, zap.NewNop()))
}

func TestServe_MissingEmail(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", `{"password":"hunter22"}`))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "email and password are required")
}

func TestServe_MissingPassword(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", `{"email":"staff@example.com"}`))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServe_InvalidEmail(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/",
		`{"email":"not-an-email","password":"hunter22"}`))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServe_BadJSON(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", `{"email":`))
	rec.AssertStatus(t, http.StatusBadRequest)
}
