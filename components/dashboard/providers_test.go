package dashboard

import (
	"context"
	"testing"
	"time"
)

func TestFetchCoursesSortsAndLimits(t *testing.T) {
	meta := WidgetContext{
		Widget:  WidgetConfig{ID: WidgetCourses, Settings: map[string]any{"limit": 2}},
		Data:    DemoDashboardData(),
		SortKey: SortByTitle,
	}
	payload, err := fetchCourses(context.Background(), meta)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	courses := payload["courses"].([]Course)
	if len(courses) != 2 {
		t.Fatalf("limit ignored: %d courses", len(courses))
	}
	if courses[0].Title != "Data Privacy" || courses[1].Title != "Excel Basics" {
		t.Fatalf("title order = %s, %s", courses[0].Title, courses[1].Title)
	}
}

func TestFetchCoursesDefaultSortByProgress(t *testing.T) {
	payload, err := fetchCourses(context.Background(), WidgetContext{Data: DemoDashboardData()})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	courses := payload["courses"].([]Course)
	for i := 1; i < len(courses); i++ {
		if courses[i-1].Progress < courses[i].Progress {
			t.Fatalf("progress must sort descending: %+v", courses)
		}
	}
}

func TestFetchCoursesNeverMutatesSource(t *testing.T) {
	data := DemoDashboardData()
	first := data.Courses[0].ID
	if _, err := fetchCourses(context.Background(), WidgetContext{Data: data, SortKey: SortByTitle}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if data.Courses[0].ID != first {
		t.Fatal("provider reordered the shared dataset")
	}
}

func TestFetchAlertsFiltersByType(t *testing.T) {
	meta := WidgetContext{
		Widget: WidgetConfig{ID: WidgetAlerts, Settings: map[string]any{"types": []any{"urgent"}}},
		Data:   DemoDashboardData(),
	}
	payload, err := fetchAlerts(context.Background(), meta)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	alerts := payload["alerts"].([]Alert)
	if len(alerts) != 1 || alerts[0].Type != "urgent" {
		t.Fatalf("alerts = %+v", alerts)
	}
}

func TestFetchAlertsWithoutFilterPassesAll(t *testing.T) {
	payload, err := fetchAlerts(context.Background(), WidgetContext{Data: DemoDashboardData()})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if alerts := payload["alerts"].([]Alert); len(alerts) != 3 {
		t.Fatalf("alerts = %+v", alerts)
	}
}

func TestFetchDeadlinesWindow(t *testing.T) {
	meta := WidgetContext{
		Widget: WidgetConfig{ID: WidgetDeadlines, Settings: map[string]any{"window_days": 7}},
		Data:   DemoDashboardData(),
	}
	payload, err := fetchDeadlines(context.Background(), meta)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// only Data Privacy (due in 5 days) is unfinished and inside the window
	due := payload["courses"].([]Course)
	if len(due) != 1 || due[0].ID != "c-4" {
		t.Fatalf("due = %+v", due)
	}
}

func TestFetchDeadlinesExcludesCompleted(t *testing.T) {
	data := DemoDashboardData()
	data.Courses[1].DueDate = time.Now().UTC().AddDate(0, 0, 1)
	payload, err := fetchDeadlines(context.Background(), WidgetContext{Data: data})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, c := range payload["courses"].([]Course) {
		if c.Progress == 100 {
			t.Fatalf("completed course %s listed as due", c.ID)
		}
	}
}

func TestSortCoursesByDueDateSinksZeroDates(t *testing.T) {
	courses := DemoDashboardData().Courses
	SortCourses(courses, SortByDueDate)
	last := courses[len(courses)-1]
	if !last.DueDate.IsZero() {
		t.Fatalf("zero due dates must sort last, got %+v", last)
	}
}

func TestSettingsIntIgnoresInvalid(t *testing.T) {
	cases := []struct {
		settings map[string]any
		want     int
	}{
		{nil, 12},
		{map[string]any{"limit": -3}, 12},
		{map[string]any{"limit": 0}, 12},
		{map[string]any{"limit": float64(4)}, 4},
		{map[string]any{"limit": "ten"}, 12},
	}
	for _, tc := range cases {
		if got := settingsInt(tc.settings, "limit", 12); got != tc.want {
			t.Fatalf("settingsInt(%v) = %d, want %d", tc.settings, got, tc.want)
		}
	}
}
