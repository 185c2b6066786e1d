package students

import (
	"net/http"
	"testing"

	"github.com/jmassawe/edupath/internal/testutil"
	"go.uber.org/zap"
)

func newRouter() http.Handler {
	return Routes(NewHandler(nil, nil, zap.NewNop()))
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/64f000000000000000000001"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestRoutes_ForwardIsAdminOnly(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodPost,
		"/64f000000000000000000001/forward", testutil.StaffUser())
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestRoutes_ActivateIsBackOffice(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodPost,
		"/64f000000000000000000001/activate", testutil.StudentUser())
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestRoutes_InvalidStudentID(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/bogus", testutil.StaffUser())
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "invalid student id")
}
