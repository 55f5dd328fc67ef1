package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-training/components/dashboard"
)

// SearchInput carries the viewer plus the query and facets to apply before
// filtering. Nil facet slices leave the engine's current selection alone.
type SearchInput struct {
	UserID     string                    `json:"user_id"`
	Query      *string                   `json:"query,omitempty"`
	Statuses   []string                  `json:"statuses,omitempty"`
	Categories []string                  `json:"categories,omitempty"`
	Progress   *dashboard.ProgressFilter `json:"progress,omitempty"`
	Priorities []string                  `json:"priorities,omitempty"`
	Reset      bool                      `json:"reset,omitempty"`
}

type searchService interface {
	SearchEngine(userID string) *dashboard.SearchEngine
	FilteredData(ctx context.Context, userID string) (dashboard.DashboardData, error)
}

// SearchQuery applies facet updates and returns the filtered dashboard data.
type SearchQuery struct {
	service searchService
}

// NewSearchQuery builds the query.
func NewSearchQuery(service searchService) *SearchQuery {
	return &SearchQuery{service: service}
}

var _ gocommand.Querier[SearchInput, dashboard.DashboardData] = (*SearchQuery)(nil)

// Query updates the viewer's search engine from the input, then filters.
func (q *SearchQuery) Query(ctx context.Context, input SearchInput) (dashboard.DashboardData, error) {
	engine := q.service.SearchEngine(input.UserID)
	if input.Reset {
		engine.Reset()
	}
	if input.Query != nil {
		engine.SetQuery(*input.Query)
	}
	if input.Statuses != nil {
		engine.ApplyStatusFilter(input.Statuses...)
	}
	if input.Categories != nil {
		engine.ApplyCategoryFilter(input.Categories...)
	}
	if input.Progress != nil {
		engine.ApplyProgressFilter(*input.Progress)
	}
	if input.Priorities != nil {
		engine.ApplyPriorityFilter(input.Priorities...)
	}
	return q.service.FilteredData(ctx, input.UserID)
}

// OptionsInput identifies a filter-option request for a viewer.
type OptionsInput struct {
	UserID string `json:"user_id"`
}

type optionsService interface {
	FilterOptions(ctx context.Context, userID string) (dashboard.FilterOptions, error)
}

// FilterOptionsQuery enumerates facet values from the unfiltered data.
type FilterOptionsQuery struct {
	service optionsService
}

// NewFilterOptionsQuery builds the query.
func NewFilterOptionsQuery(service optionsService) *FilterOptionsQuery {
	return &FilterOptionsQuery{service: service}
}

var _ gocommand.Querier[OptionsInput, dashboard.FilterOptions] = (*FilterOptionsQuery)(nil)

// Query returns the facet values the filter UI can offer.
func (q *FilterOptionsQuery) Query(ctx context.Context, input OptionsInput) (dashboard.FilterOptions, error) {
	return q.service.FilterOptions(ctx, input.UserID)
}
