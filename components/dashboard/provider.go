package dashboard

import "context"

// Provider projects the slice of dashboard data a widget renders.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

// Fetch implements Provider.
func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetContext carries everything a provider needs: the widget's layout
// entry, the viewer's dashboard data, and the viewer's state.
type WidgetContext struct {
	Widget    WidgetConfig
	Data      DashboardData
	UserID    string
	Locale    string
	Favorites map[string]bool
	SortKey   SortKey
}

// WidgetData is an opaque payload passed to templates and JSON transports.
type WidgetData map[string]any
