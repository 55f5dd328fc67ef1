package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"
)

var defaultProviders = map[WidgetType]Provider{
	WidgetStats: ProviderFunc(func(_ context.Context, meta WidgetContext) (WidgetData, error) {
		return WidgetData{
			"completed":    meta.Data.Stats.CoursesCompleted,
			"in_progress":  meta.Data.Stats.CoursesInProgress,
			"certificates": meta.Data.Stats.Certificates,
			"team_members": meta.Data.Stats.TeamMembers,
		}, nil
	}),
	WidgetCourses:       ProviderFunc(fetchCourses),
	WidgetProgressChart: NewProgressChartProvider(),
	WidgetCertificates: ProviderFunc(func(_ context.Context, meta WidgetContext) (WidgetData, error) {
		return WidgetData{"certificates": meta.Data.Certificates}, nil
	}),
	WidgetAlerts:     ProviderFunc(fetchAlerts),
	WidgetTeamAlerts: ProviderFunc(fetchTeamAlerts),
	WidgetQuickActions: ProviderFunc(func(_ context.Context, meta WidgetContext) (WidgetData, error) {
		return WidgetData{"actions": meta.Data.QuickActions}, nil
	}),
	WidgetDeadlines: ProviderFunc(fetchDeadlines),
	WidgetFavorites: ProviderFunc(fetchFavorites),
}

func fetchCourses(_ context.Context, meta WidgetContext) (WidgetData, error) {
	courses := append([]Course(nil), meta.Data.Courses...)
	SortCourses(courses, meta.SortKey)
	limit := settingsInt(meta.Widget.Settings, "limit", 12)
	if len(courses) > limit {
		courses = courses[:limit]
	}
	return WidgetData{"courses": courses}, nil
}

func fetchAlerts(_ context.Context, meta WidgetContext) (WidgetData, error) {
	alerts := meta.Data.Alerts
	if types := settingsStrings(meta.Widget.Settings, "types"); len(types) > 0 {
		allowed := toSet(types)
		alerts = filterAlerts(append([]Alert(nil), alerts...), func(a Alert) bool {
			_, ok := allowed[a.Type]
			return ok
		})
	}
	return WidgetData{"alerts": alerts}, nil
}

func fetchTeamAlerts(_ context.Context, meta WidgetContext) (WidgetData, error) {
	return WidgetData{"team_alerts": meta.Data.TeamAlerts}, nil
}

func fetchDeadlines(_ context.Context, meta WidgetContext) (WidgetData, error) {
	window := settingsInt(meta.Widget.Settings, "window_days", 14)
	cutoff := time.Now().UTC().AddDate(0, 0, window)
	var due []Course
	for _, c := range meta.Data.Courses {
		if c.Progress < 100 && !c.DueDate.IsZero() && c.DueDate.Before(cutoff) {
			due = append(due, c)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].DueDate.Before(due[j].DueDate) })
	return WidgetData{"courses": due}, nil
}

func fetchFavorites(_ context.Context, meta WidgetContext) (WidgetData, error) {
	var starred []Course
	for _, c := range meta.Data.Courses {
		if meta.Favorites[c.ID] {
			starred = append(starred, c)
		}
	}
	return WidgetData{"courses": starred}, nil
}

// SortCourses orders courses by the given key. Progress sorts descending so
// nearly finished courses surface first; everything else ascends.
func SortCourses(courses []Course, key SortKey) {
	switch key {
	case SortByTitle:
		sort.SliceStable(courses, func(i, j int) bool {
			return strings.ToLower(courses[i].Title) < strings.ToLower(courses[j].Title)
		})
	case SortByDueDate:
		sort.SliceStable(courses, func(i, j int) bool {
			// zero due dates sink to the end
			if courses[i].DueDate.IsZero() != courses[j].DueDate.IsZero() {
				return !courses[i].DueDate.IsZero()
			}
			return courses[i].DueDate.Before(courses[j].DueDate)
		})
	case SortByStatus:
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].Status < courses[j].Status
		})
	default:
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].Progress > courses[j].Progress
		})
	}
}

func settingsInt(settings map[string]any, key string, fallback int) int {
	switch v := settings[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}

func settingsStrings(settings map[string]any, key string) []string {
	switch v := settings[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
