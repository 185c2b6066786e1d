package leads

import (
	"net/http"
	"testing"

	"github.com/jmassawe/edupath/internal/testutil"
	"go.uber.org/zap"
)

// Router-level tests cover the auth gates and input parsing that run before
// any store access; workflow behavior is tested in the lifecycle package.

func newRouter() http.Handler {
	return Routes(NewHandler(nil, nil, zap.NewNop()))
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestRoutes_StudentForbidden(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.StudentUser())
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestRoutes_InvalidLeadID(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/not-a-hex-id", testutil.StaffUser())
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "invalid lead id")
}

func TestServeCreate_BadJSON(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	req := testutil.WithUser(
		testutil.NewJSONRequest(http.MethodPost, "/", `{"full_name": }`),
		testutil.StaffUser(),
	)
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeConvert_InvalidStaffID(t *testing.T) {
	r := newRouter()

	rec := testutil.NewRecorder()
	req := testutil.WithUser(
		testutil.NewJSONRequest(http.MethodPost,
			"/64f000000000000000000001/convert",
			`{"assigned_staff_id":"nope","payment_amount":1000,"payment_currency":"TZS","receipt_ref":"RCT-1"}`),
		testutil.StaffUser(),
	)
	r.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "invalid assigned_staff_id")
}
