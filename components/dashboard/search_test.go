package dashboard

import (
	"reflect"
	"testing"
)

func TestTextQueryNarrowsAllCollections(t *testing.T) {
	engine := NewSearchEngine()
	engine.SetQuery("excel")

	result := engine.Results(DemoDashboardData())
	if len(result.Courses) != 1 || result.Courses[0].Title != "Excel Basics" {
		t.Fatalf("unexpected courses: %+v", result.Courses)
	}
	if len(result.Certificates) != 1 {
		t.Fatalf("expected certificate match, got %+v", result.Certificates)
	}
	if len(result.Alerts) != 0 {
		t.Fatalf("no alert mentions excel, got %+v", result.Alerts)
	}
}

func TestQueryMatchesCategory(t *testing.T) {
	engine := NewSearchEngine()
	engine.SetQuery("tecnologia")

	result := engine.Results(DemoDashboardData())
	if len(result.Courses) != 1 || result.Courses[0].ID != "c-2" {
		t.Fatalf("expected category match, got %+v", result.Courses)
	}
}

func TestFacetsComposeConjunctively(t *testing.T) {
	engine := NewSearchEngine()
	engine.SetQuery("e")
	engine.ApplyStatusFilter("completed")

	result := engine.Results(DemoDashboardData())
	if len(result.Courses) != 1 || result.Courses[0].Title != "Excel Basics" {
		t.Fatalf("text+status must intersect, got %+v", result.Courses)
	}
}

func TestMultiValueFacetIsDisjunctive(t *testing.T) {
	engine := NewSearchEngine()
	engine.ApplyStatusFilter("completed", "not-started")

	result := engine.Results(DemoDashboardData())
	if len(result.Courses) != 2 {
		t.Fatalf("values within a facet combine with OR, got %+v", result.Courses)
	}
}

func TestProgressFacet(t *testing.T) {
	engine := NewSearchEngine()
	engine.ApplyProgressFilter(ProgressInProgress)

	result := engine.Results(DemoDashboardData())
	if len(result.Courses) != 2 {
		t.Fatalf("expected two in-progress courses, got %+v", result.Courses)
	}
	for _, c := range result.Courses {
		if c.Progress <= 0 || c.Progress >= 100 {
			t.Fatalf("course %s is not in progress", c.ID)
		}
	}
}

func TestUnknownProgressValueFiltersNothing(t *testing.T) {
	engine := NewSearchEngine()
	engine.ApplyProgressFilter(ProgressFilter("halfway"))

	data := DemoDashboardData()
	result := engine.Results(data)
	if len(result.Courses) != len(data.Courses) {
		t.Fatalf("unknown progress values must not filter, got %d courses", len(result.Courses))
	}
}

func TestPriorityFacetOnlyTouchesAlerts(t *testing.T) {
	engine := NewSearchEngine()
	engine.ApplyPriorityFilter("urgent")

	data := DemoDashboardData()
	result := engine.Results(data)
	if len(result.Alerts) != 1 || result.Alerts[0].Type != "urgent" {
		t.Fatalf("unexpected alerts: %+v", result.Alerts)
	}
	if len(result.Courses) != len(data.Courses) {
		t.Fatal("priority facet must leave courses alone")
	}
}

func TestFacetReplacementIsWholesale(t *testing.T) {
	engine := NewSearchEngine()
	engine.ApplyStatusFilter("completed", "in-progress")
	engine.ApplyStatusFilter("not-started")

	if got := engine.Filters().Status; !reflect.DeepEqual(got, []string{"not-started"}) {
		t.Fatalf("facet application must replace, got %v", got)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	engine := NewSearchEngine()
	engine.SetQuery("excel")
	engine.ApplyStatusFilter("completed")
	engine.ApplyProgressFilter(ProgressCompleted)

	engine.Reset()
	if engine.HasActiveFilters() {
		t.Fatalf("expected clear engine after reset: %+v", engine.Filters())
	}
	engine.Reset()
	if engine.HasActiveFilters() {
		t.Fatal("second reset must be a no-op")
	}

	data := DemoDashboardData()
	if got := engine.ResultCount(data); got != len(data.Courses)+len(data.Alerts)+len(data.Certificates) {
		t.Fatalf("reset engine must pass everything through, count=%d", got)
	}
}

func TestWhitespaceQueryIsInactive(t *testing.T) {
	engine := NewSearchEngine()
	engine.SetQuery("   ")
	if engine.HasActiveFilters() {
		t.Fatal("whitespace-only queries count as no query")
	}
	data := DemoDashboardData()
	if got := len(engine.Results(data).Courses); got != len(data.Courses) {
		t.Fatalf("whitespace query must not filter, got %d courses", got)
	}
}

func TestFilteringNeverMutatesSource(t *testing.T) {
	data := DemoDashboardData()
	courses := len(data.Courses)

	engine := NewSearchEngine()
	engine.SetQuery("excel")
	engine.ApplyStatusFilter("completed")
	_ = engine.Results(data)

	if len(data.Courses) != courses {
		t.Fatal("filtering must work on copies")
	}
}

func TestCollectFilterOptionsFromUnfilteredData(t *testing.T) {
	options := CollectFilterOptions(DemoDashboardData())

	wantStatuses := []string{"completed", "in-progress", "not-started"}
	if !reflect.DeepEqual(options.Statuses, wantStatuses) {
		t.Fatalf("statuses = %v, want %v", options.Statuses, wantStatuses)
	}
	wantPriorities := []string{"info", "urgent", "warning"}
	if !reflect.DeepEqual(options.Priorities, wantPriorities) {
		t.Fatalf("priorities = %v, want %v", options.Priorities, wantPriorities)
	}
	if len(options.Categories) != 4 {
		t.Fatalf("expected four categories, got %v", options.Categories)
	}
	if !reflect.DeepEqual(options.Progress, ProgressFilterValues()) {
		t.Fatalf("progress options must be the fixed enum, got %v", options.Progress)
	}
}
