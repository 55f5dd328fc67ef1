package dashboard

import (
	"sort"
	"strings"
	"sync"
)

// SearchEngine derives a filtered projection of dashboard data from a
// free-text query plus facet filters. Query and filters are ephemeral view
// state; nothing here touches the store.
type SearchEngine struct {
	mu      sync.RWMutex
	query   string
	filters ActiveFilters
}

// NewSearchEngine creates an engine with no query and no active facets.
func NewSearchEngine() *SearchEngine {
	return &SearchEngine{}
}

// SetQuery replaces the free-text query.
func (e *SearchEngine) SetQuery(query string) {
	e.mu.Lock()
	e.query = query
	e.mu.Unlock()
}

// Query returns the current free-text query.
func (e *SearchEngine) Query() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.query
}

// ApplyStatusFilter replaces the status facet wholesale.
func (e *SearchEngine) ApplyStatusFilter(values ...string) {
	e.mu.Lock()
	e.filters.Status = append([]string(nil), values...)
	e.mu.Unlock()
}

// ApplyCategoryFilter replaces the category facet wholesale.
func (e *SearchEngine) ApplyCategoryFilter(values ...string) {
	e.mu.Lock()
	e.filters.Category = append([]string(nil), values...)
	e.mu.Unlock()
}

// ApplyProgressFilter replaces the single-valued progress facet.
func (e *SearchEngine) ApplyProgressFilter(value ProgressFilter) {
	e.mu.Lock()
	e.filters.Progress = value
	e.mu.Unlock()
}

// ApplyPriorityFilter replaces the alert-priority facet wholesale.
func (e *SearchEngine) ApplyPriorityFilter(values ...string) {
	e.mu.Lock()
	e.filters.Priority = append([]string(nil), values...)
	e.mu.Unlock()
}

// Filters returns a copy of the active facets.
func (e *SearchEngine) Filters() ActiveFilters {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return copyFilters(e.filters)
}

// Reset clears the query and every facet. Calling it on an already clear
// engine is a no-op.
func (e *SearchEngine) Reset() {
	e.mu.Lock()
	e.query = ""
	e.filters = ActiveFilters{}
	e.mu.Unlock()
}

// HasActiveFilters reports whether any facet is set or the trimmed query is
// non-empty.
func (e *SearchEngine) HasActiveFilters() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.filters.Empty() || strings.TrimSpace(e.query) != ""
}

// Results applies the engine's query and facets to data.
func (e *SearchEngine) Results(data DashboardData) DashboardData {
	e.mu.RLock()
	query, filters := e.query, copyFilters(e.filters)
	e.mu.RUnlock()
	return FilterDashboardData(data, query, filters)
}

// ResultCount sums the filtered courses, alerts, and certificates. Elements
// appearing in more than one collection are counted once per collection.
func (e *SearchEngine) ResultCount(data DashboardData) int {
	filtered := e.Results(data)
	return len(filtered.Courses) + len(filtered.Alerts) + len(filtered.Certificates)
}

// FilterDashboardData is the pure projection both the engine and the query
// layer use. Stages run in a fixed order, each narrowing the previous one:
// free text, then status, category, progress over courses, then priority
// over alerts. Facets compose as AND; values within a facet as OR.
func FilterDashboardData(data DashboardData, query string, filters ActiveFilters) DashboardData {
	out := data
	out.Courses = append([]Course(nil), data.Courses...)
	out.Alerts = append([]Alert(nil), data.Alerts...)
	out.Certificates = append([]Certificate(nil), data.Certificates...)

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		out.Courses = filterCourses(out.Courses, func(c Course) bool {
			return strings.Contains(strings.ToLower(c.Title), q) ||
				strings.Contains(strings.ToLower(c.Category), q)
		})
		out.Alerts = filterAlerts(out.Alerts, func(a Alert) bool {
			return strings.Contains(strings.ToLower(a.Message), q)
		})
		out.Certificates = filterCertificates(out.Certificates, func(c Certificate) bool {
			return strings.Contains(strings.ToLower(c.Title), q)
		})
	}
	if len(filters.Status) > 0 {
		allowed := toSet(filters.Status)
		out.Courses = filterCourses(out.Courses, func(c Course) bool {
			_, ok := allowed[c.Status]
			return ok
		})
	}
	if len(filters.Category) > 0 {
		allowed := toSet(filters.Category)
		out.Courses = filterCourses(out.Courses, func(c Course) bool {
			_, ok := allowed[c.Category]
			return ok
		})
	}
	if predicate, ok := progressPredicate(filters.Progress); ok {
		out.Courses = filterCourses(out.Courses, predicate)
	}
	if len(filters.Priority) > 0 {
		allowed := toSet(filters.Priority)
		out.Alerts = filterAlerts(out.Alerts, func(a Alert) bool {
			_, ok := allowed[a.Type]
			return ok
		})
	}
	return out
}

// progressPredicate returns no predicate for unknown or absent values, so
// bad input degrades to "no filtering" rather than an empty result.
func progressPredicate(value ProgressFilter) (func(Course) bool, bool) {
	switch value {
	case ProgressCompleted:
		return func(c Course) bool { return c.Progress == 100 }, true
	case ProgressInProgress:
		return func(c Course) bool { return c.Progress > 0 && c.Progress < 100 }, true
	case ProgressNotStarted:
		return func(c Course) bool { return c.Progress == 0 }, true
	default:
		return nil, false
	}
}

// CollectFilterOptions enumerates distinct facet values from the unfiltered
// source data, plus the fixed progress enum. Active filters never narrow the
// options offered.
func CollectFilterOptions(data DashboardData) FilterOptions {
	statuses := map[string]struct{}{}
	categories := map[string]struct{}{}
	priorities := map[string]struct{}{}
	for _, c := range data.Courses {
		if c.Status != "" {
			statuses[c.Status] = struct{}{}
		}
		if c.Category != "" {
			categories[c.Category] = struct{}{}
		}
	}
	for _, a := range data.Alerts {
		if a.Type != "" {
			priorities[a.Type] = struct{}{}
		}
	}
	return FilterOptions{
		Statuses:   sortedKeys(statuses),
		Categories: sortedKeys(categories),
		Priorities: sortedKeys(priorities),
		Progress:   ProgressFilterValues(),
	}
}

func copyFilters(filters ActiveFilters) ActiveFilters {
	return ActiveFilters{
		Status:   append([]string(nil), filters.Status...),
		Category: append([]string(nil), filters.Category...),
		Progress: filters.Progress,
		Priority: append([]string(nil), filters.Priority...),
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func filterCourses(in []Course, keep func(Course) bool) []Course {
	out := in[:0:0]
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func filterAlerts(in []Alert, keep func(Alert) bool) []Alert {
	out := in[:0:0]
	for _, a := range in {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func filterCertificates(in []Certificate, keep func(Certificate) bool) []Certificate {
	out := in[:0:0]
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
