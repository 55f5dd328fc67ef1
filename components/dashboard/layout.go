package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-training/pkg/kvstore"
)

// LayoutKey returns the storage key owning a user's widget layout.
func LayoutKey(userID string) string {
	return "dashboard:widgets:" + userID
}

// ErrIndexOutOfRange rejects reorder calls whose indices fall outside the
// current widget list.
var ErrIndexOutOfRange = fmt.Errorf("dashboard: reorder index out of range")

// LayoutEngine owns one user's ordered widget configuration. Mutations apply
// in memory first and are written through to the store; a failed write never
// rolls back the in-memory change, it is only reported via telemetry.
type LayoutEngine struct {
	store     kvstore.Store
	userID    string
	telemetry Telemetry

	mu     sync.RWMutex
	layout WidgetsLayout
}

// NewLayoutEngine builds an engine seeded from the store. A stored layout is
// adopted wholesale, with any default widget ids that are missing from the
// stored copy appended hidden at the tail so newly shipped widgets stay
// reachable after a schema change. Absent or unparseable documents fall back
// silently to the compiled-in defaults.
func NewLayoutEngine(ctx context.Context, store kvstore.Store, userID string, telemetry Telemetry) *LayoutEngine {
	engine := &LayoutEngine{
		store:     store,
		userID:    userID,
		telemetry: normalizeTelemetry(telemetry),
		layout:    DefaultLayout(),
	}
	engine.load(ctx)
	return engine
}

func (e *LayoutEngine) load(ctx context.Context) {
	if e.store == nil {
		return
	}
	raw, ok, err := e.store.Get(ctx, LayoutKey(e.userID))
	if err != nil || !ok {
		return
	}
	var stored WidgetsLayout
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || len(stored.Widgets) == 0 {
		return
	}
	e.layout = mergeMissingDefaults(stored)
}

// mergeMissingDefaults appends default widgets absent from the stored layout,
// hidden, after the last stored position.
func mergeMissingDefaults(stored WidgetsLayout) WidgetsLayout {
	known := make(map[WidgetType]struct{}, len(stored.Widgets))
	next := 0
	for _, w := range stored.Widgets {
		known[w.ID] = struct{}{}
		if w.Position >= next {
			next = w.Position + 1
		}
	}
	for _, def := range DefaultLayout().Widgets {
		if _, ok := known[def.ID]; ok {
			continue
		}
		def.Visible = false
		def.Position = next
		next++
		stored.Widgets = append(stored.Widgets, def)
	}
	return stored
}

// Layout returns a copy of the current layout.
func (e *LayoutEngine) Layout() WidgetsLayout {
	e.mu.RLock()
	defer e.mu.RUnlock()
	widgets := make([]WidgetConfig, len(e.layout.Widgets))
	copy(widgets, e.layout.Widgets)
	return WidgetsLayout{Widgets: widgets, Editing: e.layout.Editing}
}

// VisibleWidgets projects the visible widgets sorted ascending by position.
// The sort is stable so equal positions keep list order.
func (e *LayoutEngine) VisibleWidgets() []WidgetConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var visible []WidgetConfig
	for _, w := range e.layout.Widgets {
		if w.Visible {
			visible = append(visible, w)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Position < visible[j].Position
	})
	return visible
}

// ToggleWidget flips visibility for the widget with the given id. Unknown
// ids are a no-op.
func (e *LayoutEngine) ToggleWidget(ctx context.Context, id WidgetType) {
	e.mu.Lock()
	changed := false
	for i := range e.layout.Widgets {
		if e.layout.Widgets[i].ID == id {
			e.layout.Widgets[i].Visible = !e.layout.Widgets[i].Visible
			changed = true
			break
		}
	}
	e.mu.Unlock()
	if changed {
		e.persist(ctx)
	}
}

// ResizeWidget sets the widget's render footprint.
func (e *LayoutEngine) ResizeWidget(ctx context.Context, id WidgetType, size WidgetSize) error {
	if !size.Valid() {
		return fmt.Errorf("dashboard: unknown widget size %q", size)
	}
	e.mu.Lock()
	changed := false
	for i := range e.layout.Widgets {
		if e.layout.Widgets[i].ID == id {
			e.layout.Widgets[i].Size = size
			changed = true
			break
		}
	}
	e.mu.Unlock()
	if changed {
		e.persist(ctx)
	}
	return nil
}

// ReorderWidgets moves the widget at from to the slot at to, then reassigns
// every position to its list index so positions stay contiguous from zero.
func (e *LayoutEngine) ReorderWidgets(ctx context.Context, from, to int) error {
	e.mu.Lock()
	n := len(e.layout.Widgets)
	if from < 0 || from >= n || to < 0 || to >= n {
		e.mu.Unlock()
		return ErrIndexOutOfRange
	}
	widget := e.layout.Widgets[from]
	rest := append(e.layout.Widgets[:from:from], e.layout.Widgets[from+1:]...)
	widgets := make([]WidgetConfig, 0, n)
	widgets = append(widgets, rest[:to]...)
	widgets = append(widgets, widget)
	widgets = append(widgets, rest[to:]...)
	for i := range widgets {
		widgets[i].Position = i
	}
	e.layout.Widgets = widgets
	e.mu.Unlock()
	e.persist(ctx)
	return nil
}

// SetSettings replaces the widget's settings document. Callers validate
// against the definition schema before reaching the engine.
func (e *LayoutEngine) SetSettings(ctx context.Context, id WidgetType, settings map[string]any) {
	e.mu.Lock()
	changed := false
	for i := range e.layout.Widgets {
		if e.layout.Widgets[i].ID == id {
			e.layout.Widgets[i].Settings = settings
			changed = true
			break
		}
	}
	e.mu.Unlock()
	if changed {
		e.persist(ctx)
	}
}

// ResetLayout restores the compiled-in defaults and leaves edit mode.
func (e *LayoutEngine) ResetLayout(ctx context.Context) {
	e.mu.Lock()
	e.layout = DefaultLayout()
	e.mu.Unlock()
	e.persist(ctx)
}

// Editing reports whether the layout is in edit mode.
func (e *LayoutEngine) Editing() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.layout.Editing
}

// SetEditing toggles edit mode. Edit mode is session state and is never
// written to the store, unlike every other mutator.
func (e *LayoutEngine) SetEditing(editing bool) {
	e.mu.Lock()
	e.layout.Editing = editing
	e.mu.Unlock()
}

func (e *LayoutEngine) persist(ctx context.Context) {
	if e.store == nil {
		return
	}
	e.mu.RLock()
	raw, err := json.Marshal(WidgetsLayout{Widgets: e.layout.Widgets})
	e.mu.RUnlock()
	if err == nil {
		err = e.store.Set(ctx, LayoutKey(e.userID), string(raw))
	}
	if err != nil {
		e.telemetry.Record(ctx, "dashboard.layout.persist_error", map[string]any{
			"user_id": e.userID,
			"error":   err.Error(),
		})
	}
}
