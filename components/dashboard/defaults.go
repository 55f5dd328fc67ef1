package dashboard

import (
	"context"
	"time"
)

var defaultLayoutWidgets = []WidgetConfig{
	{ID: WidgetStats, Visible: true, Position: 0, Size: SizeLarge},
	{ID: WidgetCourses, Visible: true, Position: 1, Size: SizeLarge},
	{ID: WidgetProgressChart, Visible: true, Position: 2, Size: SizeMedium},
	{ID: WidgetAlerts, Visible: true, Position: 3, Size: SizeMedium},
	{ID: WidgetCertificates, Visible: true, Position: 4, Size: SizeMedium},
	{ID: WidgetDeadlines, Visible: true, Position: 5, Size: SizeSmall},
	{ID: WidgetQuickActions, Visible: true, Position: 6, Size: SizeSmall},
	{ID: WidgetTeamAlerts, Visible: false, Position: 7, Size: SizeMedium},
	{ID: WidgetFavorites, Visible: false, Position: 8, Size: SizeSmall},
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code: WidgetStats,
		Name: "Training Stats",
		NameLocalized: map[string]string{
			"es": "Estadísticas de capacitación",
		},
		Description: "Completed, in-progress, and certificate counts",
		DescriptionLocalized: map[string]string{
			"es": "Cursos completados, en progreso y certificados",
		},
		Category: "stats",
	},
	{
		Code: WidgetCourses,
		Name: "My Courses",
		NameLocalized: map[string]string{
			"es": "Mis cursos",
		},
		Description: "Assigned courses with progress",
		Category:    "courses",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 50, "default": 12},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetProgressChart,
		Name: "Progress Chart",
		NameLocalized: map[string]string{
			"es": "Gráfica de progreso",
		},
		Description: "Per-course completion percentage chart",
		Category:    "charts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"chart": map[string]any{
					"type":    "string",
					"enum":    []string{"bar", "line"},
					"default": "bar",
				},
				"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 20, "default": 8},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetCertificates,
		Name: "Certificates",
		NameLocalized: map[string]string{
			"es": "Certificados",
		},
		Description: "Earned credentials and expiry dates",
		Category:    "certificates",
	},
	{
		Code: WidgetAlerts,
		Name: "Alerts",
		NameLocalized: map[string]string{
			"es": "Alertas",
		},
		Description: "Personal notifications",
		Category:    "alerts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"types": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string", "enum": []string{"info", "warning", "urgent"}},
					"uniqueItems": true,
				},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetTeamAlerts,
		Name: "Team Alerts",
		NameLocalized: map[string]string{
			"es": "Alertas de equipo",
		},
		Description: "Notifications about direct reports",
		Category:    "alerts",
	},
	{
		Code: WidgetQuickActions,
		Name: "Quick Actions",
		NameLocalized: map[string]string{
			"es": "Acciones rápidas",
		},
		Description: "Common shortcuts",
		Category:    "actions",
	},
	{
		Code: WidgetDeadlines,
		Name: "Upcoming Deadlines",
		NameLocalized: map[string]string{
			"es": "Fechas límite",
		},
		Description: "Courses due soon",
		Category:    "courses",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"window_days": map[string]any{"type": "integer", "minimum": 1, "maximum": 90, "default": 14},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetFavorites,
		Name: "Favorite Courses",
		NameLocalized: map[string]string{
			"es": "Cursos favoritos",
		},
		Description: "Courses the viewer starred",
		Category:    "courses",
	},
}

// DefaultLayout returns a copy of the compiled-in nine-widget layout.
func DefaultLayout() WidgetsLayout {
	widgets := make([]WidgetConfig, len(defaultLayoutWidgets))
	copy(widgets, defaultLayoutWidgets)
	return WidgetsLayout{Widgets: widgets}
}

// DefaultWidgetDefinitions returns copies of the built-in definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// ProgressFilterValues is the fixed progress facet enumeration.
func ProgressFilterValues() []ProgressFilter {
	return []ProgressFilter{ProgressCompleted, ProgressInProgress, ProgressNotStarted}
}

// DemoDashboardData returns a deterministic fixture used by examples and the
// mock data source.
func DemoDashboardData() DashboardData {
	now := time.Now().UTC()
	return DashboardData{
		Courses: []Course{
			{ID: "c-1", Title: "Safety 101", Category: "seguridad-higiene", Status: "in-progress", Progress: 40, DueDate: now.AddDate(0, 0, 10)},
			{ID: "c-2", Title: "Excel Basics", Category: "tecnologia", Status: "completed", Progress: 100},
			{ID: "c-3", Title: "Leadership", Category: "gestion", Status: "not-started", Progress: 0, DueDate: now.AddDate(0, 1, 0)},
			{ID: "c-4", Title: "Data Privacy", Category: "cumplimiento", Status: "in-progress", Progress: 75, DueDate: now.AddDate(0, 0, 5)},
		},
		Certificates: []Certificate{
			{ID: "cert-1", Title: "Excel Basics", CourseID: "c-2", IssuedAt: now.AddDate(0, -1, 0), Expires: now.AddDate(1, 0, 0)},
		},
		Alerts: []Alert{
			{ID: "a-1", Message: "Safety 101 expires soon", Type: "warning", CreatedAt: now.AddDate(0, 0, -1)},
			{ID: "a-2", Message: "New course assigned: Data Privacy", Type: "info", CreatedAt: now.AddDate(0, 0, -3)},
			{ID: "a-3", Message: "Leadership enrollment closes tomorrow", Type: "urgent", CreatedAt: now},
		},
		TeamAlerts: []TeamAlert{
			{ID: "t-1", Member: "Luis Martínez", Message: "Overdue: Safety 101", Severity: "warning"},
		},
		Stats: Stats{CoursesCompleted: 1, CoursesInProgress: 2, Certificates: 1, TeamMembers: 4},
		QuickActions: []QuickAction{
			{Label: "Browse catalog", Route: "/courses", Icon: "book-open"},
			{Label: "My certificates", Route: "/certificates", Icon: "award"},
			{Label: "Team overview", Route: "/team", Icon: "users"},
		},
	}
}

// StaticDataSource serves a fixed snapshot to every viewer.
type StaticDataSource struct {
	Data DashboardData
}

// DashboardData implements DataSource.
func (s StaticDataSource) DashboardData(context.Context, string) (DashboardData, error) {
	return s.Data, nil
}
