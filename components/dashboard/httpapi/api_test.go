package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-training/components/dashboard"
	"github.com/goliatone/go-training/components/dashboard/commands"
	"github.com/goliatone/go-training/components/dashboard/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

type stubQuerier[I any, O any] struct {
	last I
	out  O
	err  error
}

func (s *stubQuerier[I, O]) Query(ctx context.Context, input I) (O, error) {
	s.last = input
	return s.out, s.err
}

func postJSON(t *testing.T, payload any, target string) *http.Request {
	t.Helper()
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return httptest.NewRequest(http.MethodPost, target, bytes.NewReader(buf))
}

func TestHandleToggleWidget(t *testing.T) {
	toggle := &stubCommander[commands.ToggleWidgetInput]{}
	api := &Handlers{Toggle: toggle}
	req := postJSON(t, commands.ToggleWidgetInput{UserID: "u1", WidgetID: dashboard.WidgetCourses}, "/dashboard/widgets/toggle")
	rec := httptest.NewRecorder()
	api.HandleToggleWidget(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if toggle.calls != 1 || toggle.last.WidgetID != dashboard.WidgetCourses {
		t.Fatalf("expected toggle to execute with payload, got %+v", toggle.last)
	}
}

func TestHandleToggleWidgetRejectsBadJSON(t *testing.T) {
	api := &Handlers{Toggle: &stubCommander[commands.ToggleWidgetInput]{}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/widgets/toggle", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	api.HandleToggleWidget(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleReorderWidgetsRangeError(t *testing.T) {
	reorder := &stubCommander[commands.ReorderWidgetsInput]{err: dashboard.ErrIndexOutOfRange}
	api := &Handlers{Reorder: reorder}
	req := postJSON(t, commands.ReorderWidgetsInput{UserID: "u1", From: 0, To: 99}, "/dashboard/widgets/reorder")
	rec := httptest.NewRecorder()
	api.HandleReorderWidgets(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestHandleResetState(t *testing.T) {
	reset := &stubCommander[commands.ResetStateInput]{}
	api := &Handlers{ResetState: reset}
	req := postJSON(t, commands.ResetStateInput{UserID: "u1"}, "/dashboard/state/reset")
	rec := httptest.NewRecorder()
	api.HandleResetState(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if reset.last.UserID != "u1" {
		t.Fatalf("expected user id propagation")
	}
}

func TestHandleLayout(t *testing.T) {
	layout := &stubQuerier[queries.LayoutInput, dashboard.ResolvedLayout]{
		out: dashboard.ResolvedLayout{UserID: "u1"},
	}
	api := &Handlers{Layout: layout}
	req := httptest.NewRequest(http.MethodGet, "/dashboard/layout?user_id=u1&locale=es", nil)
	rec := httptest.NewRecorder()
	api.HandleLayout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if layout.last.UserID != "u1" || layout.last.Locale != "es" {
		t.Fatalf("expected query params propagation, got %+v", layout.last)
	}
	var resolved dashboard.ResolvedLayout
	if err := json.Unmarshal(rec.Body.Bytes(), &resolved); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resolved.UserID != "u1" {
		t.Fatalf("unexpected body: %+v", resolved)
	}
}

func TestHandleSearch(t *testing.T) {
	search := &stubQuerier[queries.SearchInput, dashboard.DashboardData]{
		out: dashboard.DemoDashboardData(),
	}
	api := &Handlers{Search: search}
	text := "excel"
	req := postJSON(t, queries.SearchInput{UserID: "u1", Query: &text}, "/dashboard/search")
	rec := httptest.NewRecorder()
	api.HandleSearch(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if search.last.Query == nil || *search.last.Query != "excel" {
		t.Fatalf("expected query propagation, got %+v", search.last)
	}
}

func TestHandleFilterOptions(t *testing.T) {
	options := &stubQuerier[queries.OptionsInput, dashboard.FilterOptions]{
		out: dashboard.CollectFilterOptions(dashboard.DemoDashboardData()),
	}
	api := &Handlers{Options: options}
	req := httptest.NewRequest(http.MethodGet, "/dashboard/filters?user_id=u1", nil)
	rec := httptest.NewRecorder()
	api.HandleFilterOptions(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if options.last.UserID != "u1" {
		t.Fatalf("expected user id propagation")
	}
}
