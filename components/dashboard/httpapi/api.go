package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-training/components/dashboard"
	"github.com/goliatone/go-training/components/dashboard/commands"
	"github.com/goliatone/go-training/components/dashboard/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Toggle     gocommand.Commander[commands.ToggleWidgetInput]
	Resize     gocommand.Commander[commands.ResizeWidgetInput]
	Reorder    gocommand.Commander[commands.ReorderWidgetsInput]
	Configure  gocommand.Commander[commands.ConfigureWidgetInput]
	ResetL     gocommand.Commander[commands.ResetLayoutInput]
	Favorite   gocommand.Commander[commands.ToggleFavoriteInput]
	ViewMode   gocommand.Commander[commands.SetViewModeInput]
	SortKey    gocommand.Commander[commands.SetSortKeyInput]
	Tour       gocommand.Commander[commands.TourInput]
	ResetState gocommand.Commander[commands.ResetStateInput]
	Layout     gocommand.Querier[queries.LayoutInput, dashboard.ResolvedLayout]
	Search     gocommand.Querier[queries.SearchInput, dashboard.DashboardData]
	Options    gocommand.Querier[queries.OptionsInput, dashboard.FilterOptions]
}

func statusFor(err error) int {
	if errors.Is(err, dashboard.ErrIndexOutOfRange) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func execute[T any](w http.ResponseWriter, r *http.Request, cmd gocommand.Commander[T], status int) {
	var payload T
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := cmd.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(status)
}

func (h *Handlers) HandleToggleWidget(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.Toggle, http.StatusOK)
}

func (h *Handlers) HandleResizeWidget(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.Resize, http.StatusOK)
}

func (h *Handlers) HandleReorderWidgets(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.Reorder, http.StatusOK)
}

func (h *Handlers) HandleConfigureWidget(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.Configure, http.StatusOK)
}

func (h *Handlers) HandleResetLayout(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.ResetL, http.StatusOK)
}

func (h *Handlers) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.Favorite, http.StatusOK)
}

func (h *Handlers) HandleSetViewMode(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.ViewMode, http.StatusOK)
}

func (h *Handlers) HandleSetSortKey(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.SortKey, http.StatusOK)
}

func (h *Handlers) HandleTour(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.Tour, http.StatusOK)
}

func (h *Handlers) HandleResetState(w http.ResponseWriter, r *http.Request) {
	execute(w, r, h.ResetState, http.StatusNoContent)
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request) {
	input := queries.LayoutInput{
		UserID: r.URL.Query().Get("user_id"),
		Locale: r.URL.Query().Get("locale"),
	}
	layout, err := h.Layout.Query(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, layout)
}

func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var input queries.SearchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := h.Search.Query(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, data)
}

func (h *Handlers) HandleFilterOptions(w http.ResponseWriter, r *http.Request) {
	input := queries.OptionsInput{UserID: r.URL.Query().Get("user_id")}
	options, err := h.Options.Query(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, options)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Mount registers every handler on mux under prefix. When hook is non-nil
// the live-update endpoints (WebSocket and SSE) are mounted as well.
func (h *Handlers) Mount(mux *http.ServeMux, prefix string, hook *dashboard.BroadcastHook) {
	mux.HandleFunc("POST "+prefix+"/widgets/toggle", h.HandleToggleWidget)
	mux.HandleFunc("POST "+prefix+"/widgets/resize", h.HandleResizeWidget)
	mux.HandleFunc("POST "+prefix+"/widgets/reorder", h.HandleReorderWidgets)
	mux.HandleFunc("POST "+prefix+"/widgets/configure", h.HandleConfigureWidget)
	mux.HandleFunc("POST "+prefix+"/widgets/reset", h.HandleResetLayout)
	mux.HandleFunc("POST "+prefix+"/favorites/toggle", h.HandleToggleFavorite)
	mux.HandleFunc("POST "+prefix+"/view-mode", h.HandleSetViewMode)
	mux.HandleFunc("POST "+prefix+"/sort", h.HandleSetSortKey)
	mux.HandleFunc("POST "+prefix+"/tour", h.HandleTour)
	mux.HandleFunc("POST "+prefix+"/state/reset", h.HandleResetState)
	mux.HandleFunc("GET "+prefix+"/layout", h.HandleLayout)
	mux.HandleFunc("POST "+prefix+"/search", h.HandleSearch)
	mux.HandleFunc("GET "+prefix+"/filters", h.HandleFilterOptions)
	if hook != nil {
		mux.HandleFunc("GET "+prefix+"/ws", hook.ServeWebSocket)
		mux.HandleFunc("GET "+prefix+"/events", hook.ServeSSE)
	}
}
