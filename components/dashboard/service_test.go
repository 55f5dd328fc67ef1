package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goliatone/go-training/pkg/kvstore"
)

type recordingHook struct {
	mu     sync.Mutex
	events []LayoutEvent
	err    error
}

func (h *recordingHook) LayoutUpdated(_ context.Context, event LayoutEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHook) reasons() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, event := range h.events {
		out[i] = event.Reason
	}
	return out
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (t *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *recordingTelemetry) has(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.events {
		if e == event {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T, hook RefreshHook, telemetry Telemetry) *Service {
	t.Helper()
	return NewService(Options{
		Store:       kvstore.NewMemoryStore(),
		RefreshHook: hook,
		Telemetry:   telemetry,
	})
}

func TestServiceRequiresUserID(t *testing.T) {
	svc := newTestService(t, nil, nil)
	if _, err := svc.LayoutEngine(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if err := svc.ToggleWidget(context.Background(), "", WidgetStats); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestServiceRequiresStore(t *testing.T) {
	svc := NewService(Options{})
	if _, err := svc.LayoutEngine(context.Background(), "u1"); err == nil {
		t.Fatal("expected error without a store")
	}
	if _, err := svc.StateEngine(context.Background(), "u1"); err == nil {
		t.Fatal("expected error without a store")
	}
}

func TestServiceEnginesAreCachedPerUser(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	first, err := svc.LayoutEngine(ctx, "u1")
	if err != nil {
		t.Fatalf("layout engine: %v", err)
	}
	second, _ := svc.LayoutEngine(ctx, "u1")
	if first != second {
		t.Fatal("same user must share one layout engine")
	}
	other, _ := svc.LayoutEngine(ctx, "u2")
	if first == other {
		t.Fatal("different users must not share engines")
	}
	if svc.SearchEngine("u1") != svc.SearchEngine("u1") {
		t.Fatal("same user must share one search engine")
	}
}

func TestMutationsFireRefreshHook(t *testing.T) {
	hook := &recordingHook{}
	svc := newTestService(t, hook, nil)
	ctx := context.Background()

	if err := svc.ToggleWidget(ctx, "u1", WidgetTeamAlerts); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := svc.ResizeWidget(ctx, "u1", WidgetStats, SizeSmall); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := svc.ReorderWidgets(ctx, "u1", 0, 2); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if err := svc.ResetLayout(ctx, "u1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	want := []string{"toggle", "resize", "reorder", "reset"}
	got := hook.reasons()
	if len(got) != len(want) {
		t.Fatalf("hook fired %d times, want %d (%v)", len(got), len(want), got)
	}
	for i, reason := range want {
		if got[i] != reason {
			t.Fatalf("event %d reason = %s, want %s", i, got[i], reason)
		}
	}
}

func TestRefreshHookErrorsAreSwallowed(t *testing.T) {
	telemetry := &recordingTelemetry{}
	hook := &recordingHook{err: errors.New("socket closed")}
	svc := newTestService(t, hook, telemetry)

	if err := svc.ToggleWidget(context.Background(), "u1", WidgetStats); err != nil {
		t.Fatalf("hook failures must not fail the mutation: %v", err)
	}
	if !telemetry.has("dashboard.refresh_hook_error") {
		t.Fatal("expected hook error telemetry")
	}
}

func TestConfigureWidgetRejectsSchemaViolations(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	if err := svc.ConfigureWidget(ctx, "u1", WidgetCourses, map[string]any{"limit": 0}); err == nil {
		t.Fatal("limit below minimum must be rejected")
	}
	if err := svc.ConfigureWidget(ctx, "u1", WidgetCourses, map[string]any{"bogus": true}); err == nil {
		t.Fatal("unknown properties must be rejected")
	}
	if err := svc.ConfigureWidget(ctx, "u1", WidgetCourses, map[string]any{"limit": 5}); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	engine, _ := svc.LayoutEngine(ctx, "u1")
	for _, widget := range engine.Layout().Widgets {
		if widget.ID == WidgetCourses {
			if widget.Settings["limit"] != 5 {
				t.Fatalf("settings not stored: %+v", widget.Settings)
			}
			return
		}
	}
	t.Fatal("courses widget missing from layout")
}

func TestResolveLayoutProjection(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	layout, err := svc.ResolveLayout(ctx, "u1", "es")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if layout.UserID != "u1" || layout.Editing {
		t.Fatalf("layout header = %+v", layout)
	}
	if len(layout.Widgets) != 7 {
		t.Fatalf("default layout shows 7 widgets, got %d", len(layout.Widgets))
	}
	for i, widget := range layout.Widgets {
		if i > 0 && layout.Widgets[i-1].Config.Position > widget.Config.Position {
			t.Fatal("widgets must arrive in position order")
		}
	}
	if layout.Widgets[1].Name != "Mis cursos" {
		t.Fatalf("expected localized name, got %q", layout.Widgets[1].Name)
	}
	if layout.Widgets[1].Data == nil {
		t.Fatal("courses widget must carry provider data")
	}
}

func TestResolveLayoutSkipsFailingProvider(t *testing.T) {
	telemetry := &recordingTelemetry{}
	svc := newTestService(t, nil, telemetry)
	err := svc.Registry().RegisterProvider(WidgetStats, ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) {
		return nil, errors.New("upstream down")
	}))
	if err != nil {
		t.Fatalf("register provider: %v", err)
	}

	layout, err := svc.ResolveLayout(context.Background(), "u1", "en")
	if err != nil {
		t.Fatalf("one broken provider must not fail the layout: %v", err)
	}
	if layout.Widgets[0].Config.ID != WidgetStats || layout.Widgets[0].Data != nil {
		t.Fatalf("failing provider must yield no data: %+v", layout.Widgets[0])
	}
	if !telemetry.has("dashboard.widget.provider_error") {
		t.Fatal("expected provider error telemetry")
	}
}

func TestResolveLayoutReflectsState(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	if err := svc.ToggleWidget(ctx, "u1", WidgetFavorites); err != nil {
		t.Fatalf("toggle favorites widget: %v", err)
	}
	if err := svc.ToggleFavorite(ctx, "u1", "c-2"); err != nil {
		t.Fatalf("toggle favorite: %v", err)
	}

	layout, err := svc.ResolveLayout(ctx, "u1", "en")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var favorites *ResolvedWidget
	for i := range layout.Widgets {
		if layout.Widgets[i].Config.ID == WidgetFavorites {
			favorites = &layout.Widgets[i]
		}
	}
	if favorites == nil {
		t.Fatal("favorites widget missing after toggle")
	}
	courses, ok := favorites.Data["courses"].([]Course)
	if !ok || len(courses) != 1 || courses[0].ID != "c-2" {
		t.Fatalf("favorites payload = %+v", favorites.Data)
	}
}

func TestFilteredDataUsesSearchEngine(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	svc.SearchEngine("u1").SetQuery("excel")
	data, err := svc.FilteredData(ctx, "u1")
	if err != nil {
		t.Fatalf("filtered data: %v", err)
	}
	if len(data.Courses) != 1 || data.Courses[0].Title != "Excel Basics" {
		t.Fatalf("courses = %+v", data.Courses)
	}

	other, err := svc.FilteredData(ctx, "u2")
	if err != nil {
		t.Fatalf("filtered data: %v", err)
	}
	if len(other.Courses) != 4 {
		t.Fatal("queries must be scoped per user")
	}
}

func TestFilterOptionsFromSourceData(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.SearchEngine("u1").SetQuery("nothing-matches")

	options, err := svc.FilterOptions(context.Background(), "u1")
	if err != nil {
		t.Fatalf("filter options: %v", err)
	}
	if len(options.Categories) != 4 {
		t.Fatalf("options must come from unfiltered data: %+v", options)
	}
}

func TestDataSourceErrorPropagates(t *testing.T) {
	svc := NewService(Options{
		Store: kvstore.NewMemoryStore(),
		DataSource: dataSourceFunc(func(context.Context, string) (DashboardData, error) {
			return DashboardData{}, errors.New("backend offline")
		}),
	})
	if _, err := svc.ResolveLayout(context.Background(), "u1", "en"); err == nil {
		t.Fatal("data source failures must surface")
	}
	if _, err := svc.FilteredData(context.Background(), "u1"); err == nil {
		t.Fatal("data source failures must surface")
	}
}

type dataSourceFunc func(ctx context.Context, userID string) (DashboardData, error)

func (f dataSourceFunc) DashboardData(ctx context.Context, userID string) (DashboardData, error) {
	return f(ctx, userID)
}
