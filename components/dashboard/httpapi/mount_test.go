package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-training/components/dashboard"
	"github.com/goliatone/go-training/components/dashboard/commands"
	"github.com/goliatone/go-training/components/dashboard/queries"
)

func TestMountRegistersRoutes(t *testing.T) {
	handlers := &Handlers{
		Toggle: &stubCommander[commands.ToggleWidgetInput]{},
		Layout: &stubQuerier[queries.LayoutInput, dashboard.ResolvedLayout]{
			out: dashboard.ResolvedLayout{UserID: "u1"},
		},
	}
	mux := http.NewServeMux()
	handlers.Mount(mux, "/training/dashboard", dashboard.NewBroadcastHook())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, postJSON(t, commands.ToggleWidgetInput{UserID: "u1", WidgetID: "courses"}, "/training/dashboard/widgets/toggle"))
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/training/dashboard/layout?user_id=u1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("layout status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/training/dashboard/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d", rec.Code)
	}
}

func TestMountWithoutHookSkipsLiveRoutes(t *testing.T) {
	handlers := &Handlers{}
	mux := http.NewServeMux()
	handlers.Mount(mux, "/api", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("events route must be absent without a hook, status = %d", rec.Code)
	}
}
