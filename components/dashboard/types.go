package dashboard

import (
	"context"
	"time"
)

// WidgetType identifies an independently toggleable dashboard panel.
type WidgetType string

// Built-in widget panels for the training dashboard.
const (
	WidgetStats         WidgetType = "stats"
	WidgetCourses       WidgetType = "courses"
	WidgetProgressChart WidgetType = "progress_chart"
	WidgetCertificates  WidgetType = "certificates"
	WidgetAlerts        WidgetType = "alerts"
	WidgetTeamAlerts    WidgetType = "team_alerts"
	WidgetQuickActions  WidgetType = "quick_actions"
	WidgetDeadlines     WidgetType = "deadlines"
	WidgetFavorites     WidgetType = "favorites"
)

// WidgetSize is the render footprint of a widget.
type WidgetSize string

const (
	SizeSmall  WidgetSize = "small"
	SizeMedium WidgetSize = "medium"
	SizeLarge  WidgetSize = "large"
)

// Valid reports whether the size is one of the known footprints.
func (s WidgetSize) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// WidgetConfig is a single entry of a user's dashboard layout. Position
// defines render order; ids are unique within a layout.
type WidgetConfig struct {
	ID       WidgetType     `json:"id"`
	Visible  bool           `json:"visible"`
	Position int            `json:"position"`
	Size     WidgetSize     `json:"size"`
	Settings map[string]any `json:"settings,omitempty"`
}

// WidgetsLayout is the persisted layout document. Editing is session-only
// and deliberately excluded from the stored form.
type WidgetsLayout struct {
	Widgets []WidgetConfig `json:"widgets"`
	Editing bool           `json:"-"`
}

// WidgetDefinition describes a widget's display metadata and its settings
// schema. Names and descriptions carry per-locale variants.
type WidgetDefinition struct {
	Code                 WidgetType        `json:"code" yaml:"code"`
	Name                 string            `json:"name" yaml:"name"`
	NameLocalized        map[string]string `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	Description          string            `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Category             string            `json:"category,omitempty" yaml:"category,omitempty"`
	Schema               map[string]any    `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Course is a catalog entry with the viewer's progress folded in.
type Course struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Status   string    `json:"status"`
	Progress int       `json:"progress"`
	DueDate  time.Time `json:"due_date,omitempty"`
}

// Certificate is an earned credential.
type Certificate struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	CourseID string    `json:"course_id,omitempty"`
	IssuedAt time.Time `json:"issued_at"`
	Expires  time.Time `json:"expires,omitempty"`
}

// Alert is a personal notification shown on the dashboard.
type Alert struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamAlert is a notification about a direct report, visible to managers.
type TeamAlert struct {
	ID       string `json:"id"`
	Member   string `json:"member"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Stats aggregates the viewer's headline numbers.
type Stats struct {
	CoursesCompleted  int `json:"courses_completed"`
	CoursesInProgress int `json:"courses_in_progress"`
	Certificates      int `json:"certificates"`
	TeamMembers       int `json:"team_members,omitempty"`
}

// QuickAction is a shortcut rendered on the dashboard.
type QuickAction struct {
	Label string `json:"label"`
	Route string `json:"route"`
	Icon  string `json:"icon,omitempty"`
}

// DashboardData is the read-only input the search/filter engine and the
// widget providers project from. Engines never mutate it.
type DashboardData struct {
	Courses      []Course      `json:"courses"`
	Certificates []Certificate `json:"certificates"`
	Alerts       []Alert       `json:"alerts"`
	TeamAlerts   []TeamAlert   `json:"team_alerts"`
	Stats        Stats         `json:"stats"`
	QuickActions []QuickAction `json:"quick_actions"`
}

// DataSource supplies dashboard data for a viewer from the hosted backend
// (or a fixture, under the mock flag).
type DataSource interface {
	DashboardData(ctx context.Context, userID string) (DashboardData, error)
}

// ProgressFilter is the single-valued progress facet.
type ProgressFilter string

const (
	ProgressCompleted  ProgressFilter = "completed"
	ProgressInProgress ProgressFilter = "in-progress"
	ProgressNotStarted ProgressFilter = "not-started"
)

// ActiveFilters narrows dashboard data along named facets. Multi-valued
// facets combine with OR internally; facets compose with AND.
type ActiveFilters struct {
	Status   []string       `json:"status,omitempty"`
	Category []string       `json:"category,omitempty"`
	Progress ProgressFilter `json:"progress,omitempty"`
	Priority []string       `json:"priority,omitempty"`
}

// Empty reports whether no facet is set.
func (f ActiveFilters) Empty() bool {
	return len(f.Status) == 0 && len(f.Category) == 0 && f.Progress == "" && len(f.Priority) == 0
}

// FilterOptions enumerates the values a filter UI can offer, derived from
// the unfiltered source data.
type FilterOptions struct {
	Statuses   []string         `json:"statuses"`
	Categories []string         `json:"categories"`
	Priorities []string         `json:"priorities"`
	Progress   []ProgressFilter `json:"progress"`
}

// ViewMode selects the course list presentation.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// SortKey orders the course list.
type SortKey string

const (
	SortByProgress SortKey = "progress"
	SortByTitle    SortKey = "title"
	SortByDueDate  SortKey = "dueDate"
	SortByStatus   SortKey = "status"
)

// LayoutEvent describes a layout or state change that transports may fan out.
type LayoutEvent struct {
	UserID   string     `json:"user_id"`
	WidgetID WidgetType `json:"widget_id,omitempty"`
	Reason   string     `json:"reason"`
}

// RefreshHook notifies transports (REST/WebSocket/SSE) about layout changes.
type RefreshHook interface {
	LayoutUpdated(ctx context.Context, event LayoutEvent) error
}
