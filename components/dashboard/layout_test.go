package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/goliatone/go-training/pkg/kvstore"
)

func newLayoutEngine(t *testing.T) (*LayoutEngine, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	return NewLayoutEngine(context.Background(), store, "u1", nil), store
}

func storedLayout(t *testing.T, store kvstore.Store, userID string) WidgetsLayout {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), LayoutKey(userID))
	if err != nil || !ok {
		t.Fatalf("expected stored layout, ok=%v err=%v", ok, err)
	}
	var layout WidgetsLayout
	if err := json.Unmarshal([]byte(raw), &layout); err != nil {
		t.Fatalf("decode stored layout: %v", err)
	}
	return layout
}

func TestToggleWidgetParity(t *testing.T) {
	engine, store := newLayoutEngine(t)
	ctx := context.Background()

	before := engine.Layout()
	engine.ToggleWidget(ctx, WidgetCourses)
	engine.ToggleWidget(ctx, WidgetCourses)

	after := engine.Layout()
	for i := range before.Widgets {
		if before.Widgets[i].Visible != after.Widgets[i].Visible {
			t.Fatalf("double toggle must restore visibility for %s", before.Widgets[i].ID)
		}
	}
	// two writes happened; the last one stores the original visibility
	stored := storedLayout(t, store, "u1")
	if len(stored.Widgets) != len(before.Widgets) {
		t.Fatalf("stored layout lost widgets: %d vs %d", len(stored.Widgets), len(before.Widgets))
	}
}

func TestToggleUnknownWidgetIsNoop(t *testing.T) {
	engine, store := newLayoutEngine(t)
	ctx := context.Background()

	engine.ToggleWidget(ctx, WidgetType("no-such-widget"))
	if _, ok, _ := store.Get(ctx, LayoutKey("u1")); ok {
		t.Fatal("unknown widget toggles must not persist anything")
	}
}

func TestResizeWidgetValidatesSize(t *testing.T) {
	engine, _ := newLayoutEngine(t)
	ctx := context.Background()

	if err := engine.ResizeWidget(ctx, WidgetStats, SizeLarge); err != nil {
		t.Fatalf("resize returned error: %v", err)
	}
	if err := engine.ResizeWidget(ctx, WidgetStats, WidgetSize("huge")); err == nil {
		t.Fatal("expected error for invalid size")
	}
}

func TestReorderKeepsPositionsContiguous(t *testing.T) {
	engine, store := newLayoutEngine(t)
	ctx := context.Background()

	if err := engine.ReorderWidgets(ctx, 0, 3); err != nil {
		t.Fatalf("reorder returned error: %v", err)
	}
	layout := engine.Layout()
	for i, w := range layout.Widgets {
		if w.Position != i {
			t.Fatalf("positions must be contiguous 0-based, widget %d has %d", i, w.Position)
		}
	}
	stored := storedLayout(t, store, "u1")
	for i, w := range stored.Widgets {
		if w.Position != i {
			t.Fatalf("stored positions must match memory, widget %d has %d", i, w.Position)
		}
	}
}

func TestReorderOutOfRange(t *testing.T) {
	engine, _ := newLayoutEngine(t)
	ctx := context.Background()

	count := len(engine.Layout().Widgets)
	if err := engine.ReorderWidgets(ctx, 0, count); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := engine.ReorderWidgets(ctx, -1, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestVisibleWidgetsProjection(t *testing.T) {
	engine, _ := newLayoutEngine(t)
	ctx := context.Background()

	engine.ToggleWidget(ctx, WidgetTeamAlerts) // hidden by default, now visible
	engine.ToggleWidget(ctx, WidgetStats)      // visible by default, now hidden

	visible := engine.VisibleWidgets()
	last := -1
	for _, w := range visible {
		if !w.Visible {
			t.Fatalf("hidden widget %s escaped the projection", w.ID)
		}
		if w.ID == WidgetStats {
			t.Fatal("toggled-off widget must not be visible")
		}
		if w.Position < last {
			t.Fatalf("projection must be sorted by position, got %d after %d", w.Position, last)
		}
		last = w.Position
	}
}

func TestResetLayoutRestoresDefaults(t *testing.T) {
	engine, store := newLayoutEngine(t)
	ctx := context.Background()

	engine.ToggleWidget(ctx, WidgetCourses)
	if err := engine.ReorderWidgets(ctx, 0, 2); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	engine.ResetLayout(ctx)

	defaults := DefaultLayout()
	layout := engine.Layout()
	if len(layout.Widgets) != len(defaults.Widgets) {
		t.Fatalf("reset lost widgets: %d vs %d", len(layout.Widgets), len(defaults.Widgets))
	}
	for i := range defaults.Widgets {
		if layout.Widgets[i].ID != defaults.Widgets[i].ID || layout.Widgets[i].Visible != defaults.Widgets[i].Visible {
			t.Fatalf("widget %d differs from defaults after reset", i)
		}
	}
	stored := storedLayout(t, store, "u1")
	if len(stored.Widgets) != len(defaults.Widgets) {
		t.Fatal("reset must persist the default layout")
	}
}

func TestEditingIsSessionOnly(t *testing.T) {
	engine, store := newLayoutEngine(t)
	ctx := context.Background()

	engine.SetEditing(true)
	engine.ToggleWidget(ctx, WidgetCourses)

	raw, ok, err := store.Get(ctx, LayoutKey("u1"))
	if err != nil || !ok {
		t.Fatalf("expected stored layout, ok=%v err=%v", ok, err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("decode stored layout: %v", err)
	}
	if _, present := doc["Editing"]; present {
		t.Fatal("editing flag must never be persisted")
	}

	reloaded := NewLayoutEngine(ctx, store, "u1", nil)
	if reloaded.Editing() {
		t.Fatal("editing must not survive a reload")
	}
}

func TestLoadMergesMissingDefaults(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()

	// store a pruned layout missing most default widgets
	partial := WidgetsLayout{Widgets: []WidgetConfig{
		{ID: WidgetCourses, Visible: true, Position: 0, Size: SizeLarge},
		{ID: WidgetStats, Visible: true, Position: 1, Size: SizeSmall},
	}}
	raw, err := json.Marshal(partial)
	if err != nil {
		t.Fatalf("marshal partial layout: %v", err)
	}
	if err := store.Set(ctx, LayoutKey("u1"), string(raw)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	engine := NewLayoutEngine(ctx, store, "u1", nil)
	layout := engine.Layout()
	if len(layout.Widgets) != len(DefaultLayout().Widgets) {
		t.Fatalf("expected merged widget count %d, got %d", len(DefaultLayout().Widgets), len(layout.Widgets))
	}
	if layout.Widgets[0].ID != WidgetCourses || layout.Widgets[0].Size != SizeLarge {
		t.Fatalf("stored widgets must keep their configuration, got %+v", layout.Widgets[0])
	}
	for _, w := range layout.Widgets[2:] {
		if w.Visible {
			t.Fatalf("merged default %s must arrive hidden", w.ID)
		}
	}
	positions := map[int]bool{}
	for _, w := range layout.Widgets {
		if positions[w.Position] {
			t.Fatalf("duplicate position %d after merge", w.Position)
		}
		positions[w.Position] = true
	}
}

func TestLoadFallsBackOnCorruptDocument(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, LayoutKey("u1"), "{corrupt"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	engine := NewLayoutEngine(ctx, store, "u1", nil)
	if len(engine.Layout().Widgets) != len(DefaultLayout().Widgets) {
		t.Fatal("corrupt documents must fall back to defaults")
	}
}

func TestPersistErrorsAreSwallowed(t *testing.T) {
	store := &failingStore{Store: kvstore.NewMemoryStore()}
	var events []string
	telemetry := TelemetryFunc(func(_ context.Context, event string, _ map[string]any) {
		events = append(events, event)
	})
	engine := NewLayoutEngine(context.Background(), store, "u1", telemetry)

	engine.ToggleWidget(context.Background(), WidgetCourses)

	found := false
	for _, w := range engine.Layout().Widgets {
		if w.ID == WidgetCourses && !w.Visible {
			found = true
		}
	}
	if !found {
		t.Fatal("in-memory mutation must survive the failed write")
	}
	hasPersistError := false
	for _, event := range events {
		if event == "dashboard.layout.persist_error" {
			hasPersistError = true
		}
	}
	if !hasPersistError {
		t.Fatalf("expected persist_error telemetry, got %v", events)
	}
}

type failingStore struct {
	kvstore.Store
}

func (s *failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}
