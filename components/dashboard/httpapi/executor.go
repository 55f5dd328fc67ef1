package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-training/components/dashboard"
	"github.com/goliatone/go-training/components/dashboard/commands"
	"github.com/goliatone/go-training/components/dashboard/queries"
)

// Executor is the command/query surface transports invoke. Routers depend on
// this interface instead of concrete command types.
type Executor interface {
	Toggle(ctx context.Context, msg commands.ToggleWidgetInput) error
	Resize(ctx context.Context, msg commands.ResizeWidgetInput) error
	Reorder(ctx context.Context, msg commands.ReorderWidgetsInput) error
	Configure(ctx context.Context, msg commands.ConfigureWidgetInput) error
	ResetLayout(ctx context.Context, msg commands.ResetLayoutInput) error
	SetEditing(ctx context.Context, msg commands.SetEditingInput) error
	Favorite(ctx context.Context, msg commands.ToggleFavoriteInput) error
	ViewMode(ctx context.Context, msg commands.SetViewModeInput) error
	SortKey(ctx context.Context, msg commands.SetSortKeyInput) error
	Tour(ctx context.Context, msg commands.TourInput) error
	ResetState(ctx context.Context, msg commands.ResetStateInput) error
	Layout(ctx context.Context, msg queries.LayoutInput) (dashboard.ResolvedLayout, error)
	Search(ctx context.Context, msg queries.SearchInput) (dashboard.DashboardData, error)
	FilterOptions(ctx context.Context, msg queries.OptionsInput) (dashboard.FilterOptions, error)
}

// CommandExecutor implements Executor over concrete commands and queries.
// Nil commanders reject their operation instead of panicking.
type CommandExecutor struct {
	ToggleCommander      gocommand.Commander[commands.ToggleWidgetInput]
	ResizeCommander      gocommand.Commander[commands.ResizeWidgetInput]
	ReorderCommander     gocommand.Commander[commands.ReorderWidgetsInput]
	ConfigureCommander   gocommand.Commander[commands.ConfigureWidgetInput]
	ResetLayoutCommander gocommand.Commander[commands.ResetLayoutInput]
	SetEditingCommander  gocommand.Commander[commands.SetEditingInput]
	FavoriteCommander    gocommand.Commander[commands.ToggleFavoriteInput]
	ViewModeCommander    gocommand.Commander[commands.SetViewModeInput]
	SortKeyCommander     gocommand.Commander[commands.SetSortKeyInput]
	TourCommander        gocommand.Commander[commands.TourInput]
	ResetStateCommander  gocommand.Commander[commands.ResetStateInput]
	LayoutQuerier        gocommand.Querier[queries.LayoutInput, dashboard.ResolvedLayout]
	SearchQuerier        gocommand.Querier[queries.SearchInput, dashboard.DashboardData]
	OptionsQuerier       gocommand.Querier[queries.OptionsInput, dashboard.FilterOptions]
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: operation not configured")

func run[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func (e *CommandExecutor) Toggle(ctx context.Context, msg commands.ToggleWidgetInput) error {
	return run(ctx, e.ToggleCommander, msg)
}

func (e *CommandExecutor) Resize(ctx context.Context, msg commands.ResizeWidgetInput) error {
	return run(ctx, e.ResizeCommander, msg)
}

func (e *CommandExecutor) Reorder(ctx context.Context, msg commands.ReorderWidgetsInput) error {
	return run(ctx, e.ReorderCommander, msg)
}

func (e *CommandExecutor) Configure(ctx context.Context, msg commands.ConfigureWidgetInput) error {
	return run(ctx, e.ConfigureCommander, msg)
}

func (e *CommandExecutor) ResetLayout(ctx context.Context, msg commands.ResetLayoutInput) error {
	return run(ctx, e.ResetLayoutCommander, msg)
}

func (e *CommandExecutor) SetEditing(ctx context.Context, msg commands.SetEditingInput) error {
	return run(ctx, e.SetEditingCommander, msg)
}

func (e *CommandExecutor) Favorite(ctx context.Context, msg commands.ToggleFavoriteInput) error {
	return run(ctx, e.FavoriteCommander, msg)
}

func (e *CommandExecutor) ViewMode(ctx context.Context, msg commands.SetViewModeInput) error {
	return run(ctx, e.ViewModeCommander, msg)
}

func (e *CommandExecutor) SortKey(ctx context.Context, msg commands.SetSortKeyInput) error {
	return run(ctx, e.SortKeyCommander, msg)
}

func (e *CommandExecutor) Tour(ctx context.Context, msg commands.TourInput) error {
	return run(ctx, e.TourCommander, msg)
}

func (e *CommandExecutor) ResetState(ctx context.Context, msg commands.ResetStateInput) error {
	return run(ctx, e.ResetStateCommander, msg)
}

func (e *CommandExecutor) Layout(ctx context.Context, msg queries.LayoutInput) (dashboard.ResolvedLayout, error) {
	if e.LayoutQuerier == nil {
		return dashboard.ResolvedLayout{}, errNotConfigured
	}
	return e.LayoutQuerier.Query(ctx, msg)
}

func (e *CommandExecutor) Search(ctx context.Context, msg queries.SearchInput) (dashboard.DashboardData, error) {
	if e.SearchQuerier == nil {
		return dashboard.DashboardData{}, errNotConfigured
	}
	return e.SearchQuerier.Query(ctx, msg)
}

func (e *CommandExecutor) FilterOptions(ctx context.Context, msg queries.OptionsInput) (dashboard.FilterOptions, error) {
	if e.OptionsQuerier == nil {
		return dashboard.FilterOptions{}, errNotConfigured
	}
	return e.OptionsQuerier.Query(ctx, msg)
}
