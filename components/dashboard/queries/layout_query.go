package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-training/components/dashboard"
)

// LayoutInput identifies a layout request for a viewer.
type LayoutInput struct {
	UserID string `json:"user_id"`
	Locale string `json:"locale,omitempty"`
}

type layoutService interface {
	ResolveLayout(ctx context.Context, userID, locale string) (dashboard.ResolvedLayout, error)
}

// LayoutQuery executes read-only layout resolution.
type LayoutQuery struct {
	service layoutService
}

// NewLayoutQuery builds the query.
func NewLayoutQuery(service layoutService) *LayoutQuery {
	return &LayoutQuery{service: service}
}

var _ gocommand.Querier[LayoutInput, dashboard.ResolvedLayout] = (*LayoutQuery)(nil)

// Query resolves the visible, localized widget list for the viewer.
func (q *LayoutQuery) Query(ctx context.Context, input LayoutInput) (dashboard.ResolvedLayout, error) {
	return q.service.ResolveLayout(ctx, input.UserID, input.Locale)
}
