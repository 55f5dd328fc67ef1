package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-training/components/dashboard"
)

// ToggleFavoriteInput flips a course in the user's favorite set.
type ToggleFavoriteInput struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
}

type favoriteService interface {
	ToggleFavorite(ctx context.Context, userID, courseID string) error
}

// ToggleFavoriteCommand wraps Service.ToggleFavorite.
type ToggleFavoriteCommand struct {
	service   favoriteService
	telemetry Telemetry
}

// NewToggleFavoriteCommand creates the command.
func NewToggleFavoriteCommand(service favoriteService, telemetry Telemetry) *ToggleFavoriteCommand {
	return &ToggleFavoriteCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleFavoriteInput] = (*ToggleFavoriteCommand)(nil)

// Execute flips the favorite flag.
func (c *ToggleFavoriteCommand) Execute(ctx context.Context, msg ToggleFavoriteInput) error {
	if c.service == nil {
		return errors.New("favorite command requires service")
	}
	if msg.CourseID == "" {
		return errors.New("favorite command requires course id")
	}
	if err := c.service.ToggleFavorite(ctx, msg.UserID, msg.CourseID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.favorite", map[string]any{
		"user_id":   msg.UserID,
		"course_id": msg.CourseID,
	})
	return nil
}

// SetViewModeInput switches the grid/list presentation.
type SetViewModeInput struct {
	UserID string             `json:"user_id"`
	Mode   dashboard.ViewMode `json:"mode"`
}

type viewModeService interface {
	SetViewMode(ctx context.Context, userID string, mode dashboard.ViewMode) error
}

// SetViewModeCommand wraps Service.SetViewMode.
type SetViewModeCommand struct {
	service   viewModeService
	telemetry Telemetry
}

// NewSetViewModeCommand creates the command.
func NewSetViewModeCommand(service viewModeService, telemetry Telemetry) *SetViewModeCommand {
	return &SetViewModeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetViewModeInput] = (*SetViewModeCommand)(nil)

// Execute switches the view mode.
func (c *SetViewModeCommand) Execute(ctx context.Context, msg SetViewModeInput) error {
	if c.service == nil {
		return errors.New("view mode command requires service")
	}
	return c.service.SetViewMode(ctx, msg.UserID, msg.Mode)
}

// SetSortKeyInput switches the persisted course ordering.
type SetSortKeyInput struct {
	UserID string            `json:"user_id"`
	Key    dashboard.SortKey `json:"key"`
}

type sortKeyService interface {
	SetSortKey(ctx context.Context, userID string, key dashboard.SortKey) error
}

// SetSortKeyCommand wraps Service.SetSortKey.
type SetSortKeyCommand struct {
	service   sortKeyService
	telemetry Telemetry
}

// NewSetSortKeyCommand creates the command.
func NewSetSortKeyCommand(service sortKeyService, telemetry Telemetry) *SetSortKeyCommand {
	return &SetSortKeyCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetSortKeyInput] = (*SetSortKeyCommand)(nil)

// Execute switches the sort key.
func (c *SetSortKeyCommand) Execute(ctx context.Context, msg SetSortKeyInput) error {
	if c.service == nil {
		return errors.New("sort key command requires service")
	}
	return c.service.SetSortKey(ctx, msg.UserID, msg.Key)
}

// TourAction names a guided-tour transition.
type TourAction string

// Tour transitions accepted by TourCommand.
const (
	TourStart TourAction = "start"
	TourNext  TourAction = "next"
	TourPrev  TourAction = "prev"
	TourEnd   TourAction = "end"
)

// TourInput carries a guided-tour transition.
type TourInput struct {
	UserID string     `json:"user_id"`
	Action TourAction `json:"action"`
}

type tourService interface {
	StartTour(ctx context.Context, userID string) error
	AdvanceTour(ctx context.Context, userID string, delta int) error
	EndTour(ctx context.Context, userID string) error
}

// TourCommand drives the guided-tour state machine.
type TourCommand struct {
	service   tourService
	telemetry Telemetry
}

// NewTourCommand creates the command.
func NewTourCommand(service tourService, telemetry Telemetry) *TourCommand {
	return &TourCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[TourInput] = (*TourCommand)(nil)

// Execute applies the requested transition.
func (c *TourCommand) Execute(ctx context.Context, msg TourInput) error {
	if c.service == nil {
		return errors.New("tour command requires service")
	}
	var err error
	switch msg.Action {
	case TourStart:
		err = c.service.StartTour(ctx, msg.UserID)
	case TourNext:
		err = c.service.AdvanceTour(ctx, msg.UserID, 1)
	case TourPrev:
		err = c.service.AdvanceTour(ctx, msg.UserID, -1)
	case TourEnd:
		err = c.service.EndTour(ctx, msg.UserID)
	default:
		return errors.New("tour command: unknown action " + string(msg.Action))
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.tour", map[string]any{
		"user_id": msg.UserID,
		"action":  msg.Action,
	})
	return nil
}

// ResetStateInput identifies the user whose view state resets.
type ResetStateInput struct {
	UserID string `json:"user_id"`
}

type resetStateService interface {
	ResetState(ctx context.Context, userID string) error
}

// ResetStateCommand wraps Service.ResetState.
type ResetStateCommand struct {
	service   resetStateService
	telemetry Telemetry
}

// NewResetStateCommand creates the command.
func NewResetStateCommand(service resetStateService, telemetry Telemetry) *ResetStateCommand {
	return &ResetStateCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetStateInput] = (*ResetStateCommand)(nil)

// Execute clears the user's view state and its storage keys.
func (c *ResetStateCommand) Execute(ctx context.Context, msg ResetStateInput) error {
	if c.service == nil {
		return errors.New("reset state command requires service")
	}
	if err := c.service.ResetState(ctx, msg.UserID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.reset_state", map[string]any{
		"user_id": msg.UserID,
	})
	return nil
}
