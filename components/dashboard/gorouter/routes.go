package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-training/components/dashboard"
	"github.com/goliatone/go-training/components/dashboard/commands"
	"github.com/goliatone/go-training/components/dashboard/httpapi"
	"github.com/goliatone/go-training/components/dashboard/queries"
)

// Viewer identifies the request's user and preferred locale.
type Viewer struct {
	UserID string
	Locale string
}

// ViewerResolver converts a router.Context into a Viewer.
type ViewerResolver func(router.Context) Viewer

// Config wires go-router with the dashboard controller, executor, and
// broadcast hook.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML       string
	Layout     string
	Toggle     string
	Resize     string
	Reorder    string
	Configure  string
	ResetL     string
	Editing    string
	Favorite   string
	ViewMode   string
	SortKey    string
	Tour       string
	ResetState string
	Search     string
	Filters    string
	WebSocket  string
}

// Register mounts dashboard routes (HTML, JSON, mutations, WebSocket) on a
// go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/training"
	}
	resolver := cfg.ViewerResolver
	if resolver == nil {
		resolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		viewer := resolver(ctx)
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), viewer.UserID, viewer.Locale, &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		viewer := resolver(ctx)
		payload, err := cfg.Controller.LayoutPayload(ctx.Context(), viewer.UserID, viewer.Locale)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, resolver, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Post(routes.Toggle, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload commands.ToggleWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		return respondMutation(ctx, api.Toggle(ctx.Context(), payload), "toggled")
	}))

	r.Post(routes.Resize, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload commands.ResizeWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		return respondMutation(ctx, api.Resize(ctx.Context(), payload), "resized")
	}))

	r.Post(routes.Reorder, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload commands.ReorderWidgetsInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		return respondMutation(ctx, api.Reorder(ctx.Context(), payload), "reordered")
	}))

	r.Post(routes.Configure, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload commands.ConfigureWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		return respondMutation(ctx, api.Configure(ctx.Context(), payload), "configured")
	}))

	r.Post(routes.ResetL, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		return respondMutation(ctx, api.ResetLayout(ctx.Context(), commands.ResetLayoutInput{UserID: viewer.UserID}), "reset")
	}))

	r.Post(routes.Editing, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload commands.SetEditingInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		return respondMutation(ctx, api.SetEditing(ctx.Context(), payload), "saved")
	}))

	r.Post(routes.Favorite, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload commands.ToggleFavoriteInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		return respondMutation(ctx, api.Favorite(ctx.Context(), payload), "toggled")
	}))

	r.Post(routes.ViewMode, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload commands.SetViewModeInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		return respondMutation(ctx, api.ViewMode(ctx.Context(), payload), "saved")
	}))

	r.Post(routes.SortKey, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload commands.SetSortKeyInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		return respondMutation(ctx, api.SortKey(ctx.Context(), payload), "saved")
	}))

	r.Post(routes.Tour, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload commands.TourInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		return respondMutation(ctx, api.Tour(ctx.Context(), payload), "applied")
	}))

	r.Post(routes.ResetState, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		return respondMutation(ctx, api.ResetState(ctx.Context(), commands.ResetStateInput{UserID: viewer.UserID}), "reset")
	}))

	r.Post(routes.Search, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		var payload queries.SearchInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.UserID = viewer.UserID
		data, err := api.Search(ctx.Context(), payload)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, data)
	}))

	r.Get(routes.Filters, mutation(resolver, func(ctx router.Context, viewer Viewer) error {
		options, err := api.FilterOptions(ctx.Context(), queries.OptionsInput{UserID: viewer.UserID})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, options)
	}))
}

func mutation(resolver ViewerResolver, handler func(router.Context, Viewer) error) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		return handler(ctx, resolver(ctx))
	})
}

func respondMutation(ctx router.Context, err error, status string) error {
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, dashboard.ErrIndexOutOfRange) {
			code = http.StatusUnprocessableEntity
		}
		return respondError(ctx, code, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": status})
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(ctx router.Context) Viewer {
	var viewer Viewer
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		if lang := parseAcceptLanguage(header); lang != "" {
			return lang
		}
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Toggle == "" {
		routes.Toggle = "/dashboard/widgets/toggle"
	}
	if routes.Resize == "" {
		routes.Resize = "/dashboard/widgets/resize"
	}
	if routes.Reorder == "" {
		routes.Reorder = "/dashboard/widgets/reorder"
	}
	if routes.Configure == "" {
		routes.Configure = "/dashboard/widgets/configure"
	}
	if routes.ResetL == "" {
		routes.ResetL = "/dashboard/widgets/reset"
	}
	if routes.Editing == "" {
		routes.Editing = "/dashboard/editing"
	}
	if routes.Favorite == "" {
		routes.Favorite = "/dashboard/favorites/toggle"
	}
	if routes.ViewMode == "" {
		routes.ViewMode = "/dashboard/view-mode"
	}
	if routes.SortKey == "" {
		routes.SortKey = "/dashboard/sort"
	}
	if routes.Tour == "" {
		routes.Tour = "/dashboard/tour"
	}
	if routes.ResetState == "" {
		routes.ResetState = "/dashboard/state/reset"
	}
	if routes.Search == "" {
		routes.Search = "/dashboard/search"
	}
	if routes.Filters == "" {
		routes.Filters = "/dashboard/filters"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
