package dashboard

import (
	"context"
	"errors"
	"io"
)

// DefaultTemplate is the template name rendered for the dashboard page.
const DefaultTemplate = "dashboard.html"

type layoutResolver interface {
	ResolveLayout(ctx context.Context, userID, locale string) (ResolvedLayout, error)
}

// ControllerOptions wires the service and renderer into a Controller.
type ControllerOptions struct {
	Service  layoutResolver
	Renderer Renderer
	Template string
}

// Controller adapts the dashboard service for HTML and JSON transports.
type Controller struct {
	service  layoutResolver
	renderer Renderer
	template string
}

// NewController builds a controller; Template defaults to DefaultTemplate.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
	}
}

// LayoutPayload resolves the JSON layout for a viewer.
func (c *Controller) LayoutPayload(ctx context.Context, userID, locale string) (ResolvedLayout, error) {
	if c.service == nil {
		return ResolvedLayout{}, errors.New("dashboard: controller requires service")
	}
	return c.service.ResolveLayout(ctx, userID, locale)
}

// RenderTemplate resolves the layout and renders the dashboard page into w.
func (c *Controller) RenderTemplate(ctx context.Context, userID, locale string, w io.Writer) error {
	if c.renderer == nil {
		return errors.New("dashboard: controller requires renderer")
	}
	layout, err := c.LayoutPayload(ctx, userID, locale)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, map[string]any{
		"user_id": layout.UserID,
		"locale":  locale,
		"editing": layout.Editing,
		"widgets": layout.Widgets,
	}, w)
	return err
}
