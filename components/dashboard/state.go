package dashboard

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/goliatone/go-training/pkg/kvstore"
)

// Storage keys owned by the state engine, relative to a user id.
func viewModeKey(userID string) string { return "dashboard:view_mode:" + userID }
func sortKeyKey(userID string) string  { return "dashboard:sort_key:" + userID }
func favoritesKey(userID string) string {
	return "dashboard:favorites:" + userID
}
func tourCompletedKey(userID string) string {
	return "dashboard:tour_completed:" + userID
}

// StateKeys lists every storage key the state engine owns for a user.
func StateKeys(userID string) []string {
	return []string{
		viewModeKey(userID),
		sortKeyKey(userID),
		favoritesKey(userID),
		tourCompletedKey(userID),
	}
}

// TourState is the guided-tour machine: idle, active with a step counter,
// then idle again with the completed flag latched.
type TourState struct {
	Active    bool `json:"active"`
	Step      int  `json:"step"`
	Completed bool `json:"completed"`
}

// StateEngine owns one user's dashboard view state: view mode, sort order,
// favorite courses, and the guided tour. All persisted pieces are loaded
// before the engine accepts writes, so compiled-in defaults can never
// clobber stored values on startup.
type StateEngine struct {
	store     kvstore.Store
	userID    string
	telemetry Telemetry

	mu        sync.RWMutex
	viewMode  ViewMode
	sortKey   SortKey
	favorites map[string]struct{}
	tour      TourState
}

// NewStateEngine builds an engine and loads every persisted piece. The
// loads run concurrently; construction returns only after all settle.
func NewStateEngine(ctx context.Context, store kvstore.Store, userID string, telemetry Telemetry) *StateEngine {
	engine := &StateEngine{
		store:     store,
		userID:    userID,
		telemetry: normalizeTelemetry(telemetry),
		viewMode:  ViewGrid,
		sortKey:   SortByProgress,
		favorites: make(map[string]struct{}),
	}
	engine.load(ctx)
	return engine
}

func (e *StateEngine) load(ctx context.Context) {
	if e.store == nil {
		return
	}
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		if raw, ok, err := e.store.Get(ctx, viewModeKey(e.userID)); err == nil && ok {
			if mode := ViewMode(raw); mode == ViewGrid || mode == ViewList {
				e.mu.Lock()
				e.viewMode = mode
				e.mu.Unlock()
			}
		}
	}()
	go func() {
		defer wg.Done()
		if raw, ok, err := e.store.Get(ctx, sortKeyKey(e.userID)); err == nil && ok {
			switch key := SortKey(raw); key {
			case SortByProgress, SortByTitle, SortByDueDate, SortByStatus:
				e.mu.Lock()
				e.sortKey = key
				e.mu.Unlock()
			}
		}
	}()
	go func() {
		defer wg.Done()
		if raw, ok, err := e.store.Get(ctx, favoritesKey(e.userID)); err == nil && ok {
			var ids []string
			if err := json.Unmarshal([]byte(raw), &ids); err == nil {
				e.mu.Lock()
				for _, id := range ids {
					e.favorites[id] = struct{}{}
				}
				e.mu.Unlock()
			}
		}
	}()
	go func() {
		defer wg.Done()
		if raw, ok, err := e.store.Get(ctx, tourCompletedKey(e.userID)); err == nil && ok && raw == "true" {
			e.mu.Lock()
			e.tour.Completed = true
			e.mu.Unlock()
		}
	}()
	wg.Wait()
}

// ViewMode returns the current course list presentation.
func (e *StateEngine) ViewMode() ViewMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.viewMode
}

// SetViewMode stores and persists the presentation mode.
func (e *StateEngine) SetViewMode(ctx context.Context, mode ViewMode) {
	if mode != ViewGrid && mode != ViewList {
		return
	}
	e.mu.Lock()
	e.viewMode = mode
	e.mu.Unlock()
	e.persistRaw(ctx, viewModeKey(e.userID), string(mode))
}

// SortKey returns the current course ordering.
func (e *StateEngine) SortKey() SortKey {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sortKey
}

// SetSortKey stores and persists the course ordering.
func (e *StateEngine) SetSortKey(ctx context.Context, key SortKey) {
	switch key {
	case SortByProgress, SortByTitle, SortByDueDate, SortByStatus:
	default:
		return
	}
	e.mu.Lock()
	e.sortKey = key
	e.mu.Unlock()
	e.persistRaw(ctx, sortKeyKey(e.userID), string(key))
}

// IsFavorite is a pure membership test.
func (e *StateEngine) IsFavorite(courseID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.favorites[courseID]
	return ok
}

// Favorites returns the favorite course ids as a JSON-stable sorted list.
func (e *StateEngine) Favorites() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return sortedKeys(e.favorites)
}

// ToggleFavorite adds the course when absent and removes it when present,
// then persists the full set. Two toggles restore the original set.
func (e *StateEngine) ToggleFavorite(ctx context.Context, courseID string) {
	e.mu.Lock()
	if _, ok := e.favorites[courseID]; ok {
		delete(e.favorites, courseID)
	} else {
		e.favorites[courseID] = struct{}{}
	}
	ids := sortedKeys(e.favorites)
	e.mu.Unlock()
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	e.persistRaw(ctx, favoritesKey(e.userID), string(raw))
}

// Tour returns the current guided-tour state.
func (e *StateEngine) Tour() TourState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tour
}

// StartTour activates the tour at step zero.
func (e *StateEngine) StartTour() {
	e.mu.Lock()
	e.tour.Active = true
	e.tour.Step = 0
	e.mu.Unlock()
}

// NextStep advances the step counter. The presenting layer owns the upper
// bound and is expected to call EndTour at the final step.
func (e *StateEngine) NextStep() {
	e.mu.Lock()
	if e.tour.Active {
		e.tour.Step++
	}
	e.mu.Unlock()
}

// PrevStep retreats the step counter, never below zero.
func (e *StateEngine) PrevStep() {
	e.mu.Lock()
	if e.tour.Active && e.tour.Step > 0 {
		e.tour.Step--
	}
	e.mu.Unlock()
}

// EndTour leaves the active state, latches the completed flag, and resets
// the step. Only the completed flag is persisted; active/step are session
// state.
func (e *StateEngine) EndTour(ctx context.Context) {
	e.mu.Lock()
	e.tour.Active = false
	e.tour.Step = 0
	e.tour.Completed = true
	e.mu.Unlock()
	e.persistRaw(ctx, tourCompletedKey(e.userID), "true")
}

// ResetState restores every in-memory default and removes the engine's
// storage keys in one batch. This is the only operation that deletes keys
// instead of rewriting them.
func (e *StateEngine) ResetState(ctx context.Context) error {
	e.mu.Lock()
	e.viewMode = ViewGrid
	e.sortKey = SortByProgress
	e.favorites = make(map[string]struct{})
	e.tour = TourState{}
	e.mu.Unlock()
	if e.store == nil {
		return nil
	}
	return e.store.MultiRemove(ctx, StateKeys(e.userID))
}

// persistRaw mirrors the layout engine's write-through contract: the store
// write is best-effort and never affects in-memory state.
func (e *StateEngine) persistRaw(ctx context.Context, key, value string) {
	if e.store == nil {
		return
	}
	if err := e.store.Set(ctx, key, value); err != nil {
		e.telemetry.Record(ctx, "dashboard.state.persist_error", map[string]any{
			"user_id": e.userID,
			"key":     key,
			"error":   err.Error(),
		})
	}
}
