package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-training/components/dashboard"
)

// ToggleWidgetInput identifies the widget whose visibility flips.
type ToggleWidgetInput struct {
	UserID   string               `json:"user_id"`
	WidgetID dashboard.WidgetType `json:"widget_id"`
}

type toggleService interface {
	ToggleWidget(ctx context.Context, userID string, id dashboard.WidgetType) error
}

// ToggleWidgetCommand wraps Service.ToggleWidget so transports can flip
// widget visibility without linking directly against the service.
type ToggleWidgetCommand struct {
	service   toggleService
	telemetry Telemetry
}

// NewToggleWidgetCommand creates the command.
func NewToggleWidgetCommand(service toggleService, telemetry Telemetry) *ToggleWidgetCommand {
	return &ToggleWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleWidgetInput] = (*ToggleWidgetCommand)(nil)

// Execute flips the widget's visibility.
func (c *ToggleWidgetCommand) Execute(ctx context.Context, msg ToggleWidgetInput) error {
	if c.service == nil {
		return errors.New("toggle command requires service")
	}
	if err := c.service.ToggleWidget(ctx, msg.UserID, msg.WidgetID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.toggle", map[string]any{
		"user_id":   msg.UserID,
		"widget_id": msg.WidgetID,
	})
	return nil
}

// ResizeWidgetInput carries the new widget footprint.
type ResizeWidgetInput struct {
	UserID   string               `json:"user_id"`
	WidgetID dashboard.WidgetType `json:"widget_id"`
	Size     dashboard.WidgetSize `json:"size"`
}

type resizeService interface {
	ResizeWidget(ctx context.Context, userID string, id dashboard.WidgetType, size dashboard.WidgetSize) error
}

// ResizeWidgetCommand wraps Service.ResizeWidget.
type ResizeWidgetCommand struct {
	service   resizeService
	telemetry Telemetry
}

// NewResizeWidgetCommand creates the command.
func NewResizeWidgetCommand(service resizeService, telemetry Telemetry) *ResizeWidgetCommand {
	return &ResizeWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResizeWidgetInput] = (*ResizeWidgetCommand)(nil)

// Execute applies the new size.
func (c *ResizeWidgetCommand) Execute(ctx context.Context, msg ResizeWidgetInput) error {
	if c.service == nil {
		return errors.New("resize command requires service")
	}
	if err := c.service.ResizeWidget(ctx, msg.UserID, msg.WidgetID, msg.Size); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.resize", map[string]any{
		"user_id":   msg.UserID,
		"widget_id": msg.WidgetID,
		"size":      msg.Size,
	})
	return nil
}

// ReorderWidgetsInput moves a widget between list slots.
type ReorderWidgetsInput struct {
	UserID string `json:"user_id"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

type reorderService interface {
	ReorderWidgets(ctx context.Context, userID string, from, to int) error
}

// ReorderWidgetsCommand wraps Service.ReorderWidgets.
type ReorderWidgetsCommand struct {
	service   reorderService
	telemetry Telemetry
}

// NewReorderWidgetsCommand builds the command.
func NewReorderWidgetsCommand(service reorderService, telemetry Telemetry) *ReorderWidgetsCommand {
	return &ReorderWidgetsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderWidgetsInput] = (*ReorderWidgetsCommand)(nil)

// Execute applies the new ordering.
func (c *ReorderWidgetsCommand) Execute(ctx context.Context, msg ReorderWidgetsInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	if err := c.service.ReorderWidgets(ctx, msg.UserID, msg.From, msg.To); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.reorder", map[string]any{
		"user_id": msg.UserID,
		"from":    msg.From,
		"to":      msg.To,
	})
	return nil
}

// ConfigureWidgetInput replaces a widget's settings document.
type ConfigureWidgetInput struct {
	UserID   string               `json:"user_id"`
	WidgetID dashboard.WidgetType `json:"widget_id"`
	Settings map[string]any       `json:"settings"`
}

type configureService interface {
	ConfigureWidget(ctx context.Context, userID string, id dashboard.WidgetType, settings map[string]any) error
}

// ConfigureWidgetCommand wraps Service.ConfigureWidget, including schema
// validation of the settings payload.
type ConfigureWidgetCommand struct {
	service   configureService
	telemetry Telemetry
}

// NewConfigureWidgetCommand creates the command.
func NewConfigureWidgetCommand(service configureService, telemetry Telemetry) *ConfigureWidgetCommand {
	return &ConfigureWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ConfigureWidgetInput] = (*ConfigureWidgetCommand)(nil)

// Execute validates and stores the widget settings.
func (c *ConfigureWidgetCommand) Execute(ctx context.Context, msg ConfigureWidgetInput) error {
	if c.service == nil {
		return errors.New("configure command requires service")
	}
	if err := c.service.ConfigureWidget(ctx, msg.UserID, msg.WidgetID, msg.Settings); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.configure", map[string]any{
		"user_id":   msg.UserID,
		"widget_id": msg.WidgetID,
	})
	return nil
}

// ResetLayoutInput identifies the user whose layout resets to defaults.
type ResetLayoutInput struct {
	UserID string `json:"user_id"`
}

type resetLayoutService interface {
	ResetLayout(ctx context.Context, userID string) error
}

// ResetLayoutCommand wraps Service.ResetLayout.
type ResetLayoutCommand struct {
	service   resetLayoutService
	telemetry Telemetry
}

// NewResetLayoutCommand creates the command.
func NewResetLayoutCommand(service resetLayoutService, telemetry Telemetry) *ResetLayoutCommand {
	return &ResetLayoutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetLayoutInput] = (*ResetLayoutCommand)(nil)

// Execute restores the default widget list.
func (c *ResetLayoutCommand) Execute(ctx context.Context, msg ResetLayoutInput) error {
	if c.service == nil {
		return errors.New("reset layout command requires service")
	}
	if err := c.service.ResetLayout(ctx, msg.UserID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.reset_layout", map[string]any{
		"user_id": msg.UserID,
	})
	return nil
}

// SetEditingInput toggles layout edit mode for the session.
type SetEditingInput struct {
	UserID  string `json:"user_id"`
	Editing bool   `json:"editing"`
}

type editingService interface {
	SetEditing(ctx context.Context, userID string, editing bool) error
}

// SetEditingCommand wraps Service.SetEditing. Edit mode is session-only and
// never persisted.
type SetEditingCommand struct {
	service   editingService
	telemetry Telemetry
}

// NewSetEditingCommand creates the command.
func NewSetEditingCommand(service editingService, telemetry Telemetry) *SetEditingCommand {
	return &SetEditingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetEditingInput] = (*SetEditingCommand)(nil)

// Execute toggles edit mode.
func (c *SetEditingCommand) Execute(ctx context.Context, msg SetEditingInput) error {
	if c.service == nil {
		return errors.New("set editing command requires service")
	}
	return c.service.SetEditing(ctx, msg.UserID, msg.Editing)
}
