package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-training/pkg/kvstore"
)

var (
	errMissingStore  = errors.New("dashboard: key-value store not configured")
	errMissingUserID = errors.New("dashboard: user id is required")
)

// Options configures the dashboard Service. Collaborators arrive via
// interfaces so applications can swap implementations without importing
// internals.
type Options struct {
	Store       kvstore.Store
	DataSource  DataSource
	Registry    *Registry
	Validator   SettingsValidator
	RefreshHook RefreshHook
	Telemetry   Telemetry
}

// Service orchestrates the per-user dashboard engines: widget layout,
// search/filter, and view state.
type Service struct {
	opts Options

	mu       sync.Mutex
	layouts  map[string]*LayoutEngine
	states   map[string]*StateEngine
	searches map[string]*SearchEngine
}

// NewService builds a Service with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.DataSource == nil {
		opts.DataSource = StaticDataSource{Data: DemoDashboardData()}
	}
	return &Service{
		opts:     opts,
		layouts:  make(map[string]*LayoutEngine),
		states:   make(map[string]*StateEngine),
		searches: make(map[string]*SearchEngine),
	}
}

// LayoutEngine returns the layout engine owning the user's widget list,
// constructing and loading it on first use.
func (s *Service) LayoutEngine(ctx context.Context, userID string) (*LayoutEngine, error) {
	if userID == "" {
		return nil, errMissingUserID
	}
	if s.opts.Store == nil {
		return nil, errMissingStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if engine, ok := s.layouts[userID]; ok {
		return engine, nil
	}
	engine := NewLayoutEngine(ctx, s.opts.Store, userID, s.opts.Telemetry)
	s.layouts[userID] = engine
	return engine, nil
}

// StateEngine returns the user's view-state engine, loading persisted state
// on first use.
func (s *Service) StateEngine(ctx context.Context, userID string) (*StateEngine, error) {
	if userID == "" {
		return nil, errMissingUserID
	}
	if s.opts.Store == nil {
		return nil, errMissingStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if engine, ok := s.states[userID]; ok {
		return engine, nil
	}
	engine := NewStateEngine(ctx, s.opts.Store, userID, s.opts.Telemetry)
	s.states[userID] = engine
	return engine, nil
}

// SearchEngine returns the user's ephemeral search engine.
func (s *Service) SearchEngine(userID string) *SearchEngine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if engine, ok := s.searches[userID]; ok {
		return engine
	}
	engine := NewSearchEngine()
	s.searches[userID] = engine
	return engine
}

// ToggleWidget flips a widget's visibility and notifies transports.
func (s *Service) ToggleWidget(ctx context.Context, userID string, id WidgetType) error {
	engine, err := s.LayoutEngine(ctx, userID)
	if err != nil {
		return err
	}
	engine.ToggleWidget(ctx, id)
	s.notify(ctx, LayoutEvent{UserID: userID, WidgetID: id, Reason: "toggle"})
	s.record(ctx, "dashboard.widget.toggle", map[string]any{"user_id": userID, "widget_id": id})
	return nil
}

// ResizeWidget updates a widget's footprint.
func (s *Service) ResizeWidget(ctx context.Context, userID string, id WidgetType, size WidgetSize) error {
	engine, err := s.LayoutEngine(ctx, userID)
	if err != nil {
		return err
	}
	if err := engine.ResizeWidget(ctx, id, size); err != nil {
		return err
	}
	s.notify(ctx, LayoutEvent{UserID: userID, WidgetID: id, Reason: "resize"})
	s.record(ctx, "dashboard.widget.resize", map[string]any{"user_id": userID, "widget_id": id, "size": size})
	return nil
}

// ReorderWidgets moves a widget between list slots.
func (s *Service) ReorderWidgets(ctx context.Context, userID string, from, to int) error {
	engine, err := s.LayoutEngine(ctx, userID)
	if err != nil {
		return err
	}
	if err := engine.ReorderWidgets(ctx, from, to); err != nil {
		return err
	}
	s.notify(ctx, LayoutEvent{UserID: userID, Reason: "reorder"})
	s.record(ctx, "dashboard.widget.reorder", map[string]any{"user_id": userID, "from": from, "to": to})
	return nil
}

// ConfigureWidget validates settings against the widget's schema and stores
// them on the layout entry.
func (s *Service) ConfigureWidget(ctx context.Context, userID string, id WidgetType, settings map[string]any) error {
	engine, err := s.LayoutEngine(ctx, userID)
	if err != nil {
		return err
	}
	if def, ok := s.opts.Registry.Definition(id); ok {
		if err := s.opts.Validator.Validate(def, settings); err != nil {
			return err
		}
	}
	engine.SetSettings(ctx, id, settings)
	s.notify(ctx, LayoutEvent{UserID: userID, WidgetID: id, Reason: "configure"})
	s.record(ctx, "dashboard.widget.configure", map[string]any{"user_id": userID, "widget_id": id})
	return nil
}

// ResetLayout restores the default widget list for the user.
func (s *Service) ResetLayout(ctx context.Context, userID string) error {
	engine, err := s.LayoutEngine(ctx, userID)
	if err != nil {
		return err
	}
	engine.ResetLayout(ctx)
	s.notify(ctx, LayoutEvent{UserID: userID, Reason: "reset"})
	s.record(ctx, "dashboard.layout.reset", map[string]any{"user_id": userID})
	return nil
}

// SetEditing toggles layout edit mode (session-only).
func (s *Service) SetEditing(ctx context.Context, userID string, editing bool) error {
	engine, err := s.LayoutEngine(ctx, userID)
	if err != nil {
		return err
	}
	engine.SetEditing(editing)
	return nil
}

// ResolvedWidget pairs a layout entry with its definition metadata and the
// data payload its provider produced.
type ResolvedWidget struct {
	Config      WidgetConfig `json:"config"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category,omitempty"`
	Data        WidgetData   `json:"data,omitempty"`
}

// ResolvedLayout is the renderable dashboard for one viewer.
type ResolvedLayout struct {
	UserID  string           `json:"user_id"`
	Editing bool             `json:"editing"`
	Widgets []ResolvedWidget `json:"widgets"`
}

// ResolveLayout projects the user's visible widgets in order, localizes
// their names, and attaches provider data. Provider failures skip the data
// payload rather than failing the whole layout.
func (s *Service) ResolveLayout(ctx context.Context, userID, locale string) (ResolvedLayout, error) {
	engine, err := s.LayoutEngine(ctx, userID)
	if err != nil {
		return ResolvedLayout{}, err
	}
	state, err := s.StateEngine(ctx, userID)
	if err != nil {
		return ResolvedLayout{}, err
	}
	data, err := s.opts.DataSource.DashboardData(ctx, userID)
	if err != nil {
		return ResolvedLayout{}, err
	}
	favorites := make(map[string]bool)
	for _, id := range state.Favorites() {
		favorites[id] = true
	}
	resolved := ResolvedLayout{UserID: userID, Editing: engine.Editing()}
	for _, widget := range engine.VisibleWidgets() {
		item := ResolvedWidget{Config: widget}
		if def, ok := s.opts.Registry.Definition(widget.ID); ok {
			item.Name = def.NameForLocale(locale)
			item.Description = def.DescriptionForLocale(locale)
			item.Category = def.Category
		}
		if provider, ok := s.opts.Registry.Provider(widget.ID); ok {
			payload, err := provider.Fetch(ctx, WidgetContext{
				Widget:    widget,
				Data:      data,
				UserID:    userID,
				Locale:    locale,
				Favorites: favorites,
				SortKey:   state.SortKey(),
			})
			if err != nil {
				s.record(ctx, "dashboard.widget.provider_error", map[string]any{
					"widget_id": widget.ID,
					"error":     err.Error(),
				})
			} else {
				item.Data = payload
			}
		}
		resolved.Widgets = append(resolved.Widgets, item)
	}
	s.record(ctx, "dashboard.layout.resolve", map[string]any{"user_id": userID})
	return resolved, nil
}

// FilteredData applies the user's current query and facets to fresh
// dashboard data.
func (s *Service) FilteredData(ctx context.Context, userID string) (DashboardData, error) {
	data, err := s.opts.DataSource.DashboardData(ctx, userID)
	if err != nil {
		return DashboardData{}, err
	}
	return s.SearchEngine(userID).Results(data), nil
}

// FilterOptions enumerates facet values from the unfiltered source data.
func (s *Service) FilterOptions(ctx context.Context, userID string) (FilterOptions, error) {
	data, err := s.opts.DataSource.DashboardData(ctx, userID)
	if err != nil {
		return FilterOptions{}, err
	}
	return CollectFilterOptions(data), nil
}

// ToggleFavorite flips a course in the user's favorite set.
func (s *Service) ToggleFavorite(ctx context.Context, userID, courseID string) error {
	state, err := s.StateEngine(ctx, userID)
	if err != nil {
		return err
	}
	state.ToggleFavorite(ctx, courseID)
	s.record(ctx, "dashboard.favorite.toggle", map[string]any{"user_id": userID, "course_id": courseID})
	return nil
}

// SetViewMode switches the persisted grid/list presentation.
func (s *Service) SetViewMode(ctx context.Context, userID string, mode ViewMode) error {
	state, err := s.StateEngine(ctx, userID)
	if err != nil {
		return err
	}
	state.SetViewMode(ctx, mode)
	s.record(ctx, "dashboard.view_mode.set", map[string]any{"user_id": userID, "mode": mode})
	return nil
}

// SetSortKey switches the persisted course ordering.
func (s *Service) SetSortKey(ctx context.Context, userID string, key SortKey) error {
	state, err := s.StateEngine(ctx, userID)
	if err != nil {
		return err
	}
	state.SetSortKey(ctx, key)
	s.record(ctx, "dashboard.sort_key.set", map[string]any{"user_id": userID, "key": key})
	return nil
}

// StartTour activates the guided tour at step zero.
func (s *Service) StartTour(ctx context.Context, userID string) error {
	state, err := s.StateEngine(ctx, userID)
	if err != nil {
		return err
	}
	state.StartTour()
	s.record(ctx, "dashboard.tour.start", map[string]any{"user_id": userID})
	return nil
}

// AdvanceTour moves the tour forward (delta > 0) or back (delta < 0) one
// step per call.
func (s *Service) AdvanceTour(ctx context.Context, userID string, delta int) error {
	state, err := s.StateEngine(ctx, userID)
	if err != nil {
		return err
	}
	if delta >= 0 {
		state.NextStep()
	} else {
		state.PrevStep()
	}
	return nil
}

// EndTour exits the tour and persists the completion flag.
func (s *Service) EndTour(ctx context.Context, userID string) error {
	state, err := s.StateEngine(ctx, userID)
	if err != nil {
		return err
	}
	state.EndTour(ctx)
	s.record(ctx, "dashboard.tour.end", map[string]any{"user_id": userID})
	return nil
}

// ResetState clears the user's view state and its storage keys.
func (s *Service) ResetState(ctx context.Context, userID string) error {
	state, err := s.StateEngine(ctx, userID)
	if err != nil {
		return err
	}
	if err := state.ResetState(ctx); err != nil {
		return err
	}
	s.record(ctx, "dashboard.state.reset", map[string]any{"user_id": userID})
	return nil
}

// Registry exposes the widget registry for manifest loading and tooling.
func (s *Service) Registry() *Registry {
	return s.opts.Registry
}

// NotifyLayoutUpdated exposes refresh hook invocation for transports.
func (s *Service) NotifyLayoutUpdated(ctx context.Context, event LayoutEvent) error {
	if err := s.opts.RefreshHook.LayoutUpdated(ctx, event); err != nil {
		return err
	}
	s.record(ctx, "dashboard.layout.event", map[string]any{
		"user_id":   event.UserID,
		"widget_id": event.WidgetID,
		"reason":    event.Reason,
	})
	return nil
}

func (s *Service) notify(ctx context.Context, event LayoutEvent) {
	if err := s.opts.RefreshHook.LayoutUpdated(ctx, event); err != nil {
		s.record(ctx, "dashboard.refresh_hook_error", map[string]any{"error": err.Error()})
	}
}

func (s *Service) record(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
