package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-training/components/auth"
	"github.com/goliatone/go-training/components/dashboard"
	"github.com/goliatone/go-training/pkg/backend"
	"github.com/goliatone/go-training/pkg/config"
	"github.com/goliatone/go-training/pkg/kvstore"
)

type cli struct {
	Store string `help:"Path to the sqlite state store (defaults to the configured path)." type:"path"`

	Layout   layoutCmd   `cmd:"" help:"Inspect and mutate a user's widget layout."`
	State    stateCmd    `cmd:"" help:"Inspect and reset a user's view state."`
	Session  sessionCmd  `cmd:"" help:"Sign in and out against the configured backend."`
	Seed     seedCmd     `cmd:"" help:"Write default layouts for users."`
	Manifest manifestCmd `cmd:"" help:"Validate widget manifest files."`
	Widget   widgetCmd   `cmd:"" help:"Widget development helpers."`
}

type layoutCmd struct {
	Show    layoutShowCmd    `cmd:"" help:"Print the stored layout as JSON."`
	Toggle  layoutToggleCmd  `cmd:"" help:"Flip a widget's visibility."`
	Reorder layoutReorderCmd `cmd:"" help:"Move a widget between slots."`
	Reset   layoutResetCmd   `cmd:"" help:"Restore the default layout."`
}

type stateCmd struct {
	Show  stateShowCmd  `cmd:"" help:"Print the stored view state as JSON."`
	Reset stateResetCmd `cmd:"" help:"Clear the stored view state."`
}

type sessionCmd struct {
	Login  sessionLoginCmd  `cmd:"" help:"Exchange credentials for a session."`
	Logout sessionLogoutCmd `cmd:"" help:"Terminate the stored session."`
}

type manifestCmd struct {
	Validate manifestValidateCmd `cmd:"" help:"Parse and validate a manifest file."`
}

type widgetCmd struct {
	Scaffold scaffoldCmd `cmd:"" help:"Append a widget definition to a manifest and generate a provider stub."`
}

func main() {
	root := &cli{}
	ctx := kong.Parse(root,
		kong.Description("Training dashboard state inspection and widget tooling."),
		kong.UsageOnError(),
		kong.Bind(root),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (c *cli) openService() (*dashboard.Service, error) {
	path := c.Store
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path = cfg.Store.Path
	}
	store, err := kvstore.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("trainctl: open store %s: %w", path, err)
	}
	return dashboard.NewService(dashboard.Options{Store: store}), nil
}

func (c *cli) openManager() (*auth.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path := c.Store
	if path == "" {
		path = cfg.Store.Path
	}
	store, err := kvstore.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("trainctl: open store %s: %w", path, err)
	}
	var client backend.Client
	if cfg.Backend.Mock {
		client = backend.NewMockClient(store)
	} else {
		client, err = backend.NewHTTPClient(backend.HTTPConfig{
			BaseURL:    cfg.Backend.BaseURL,
			APIKey:     cfg.Backend.APIKey,
			TokenCache: store,
		})
		if err != nil {
			return nil, err
		}
	}
	return auth.NewManager(auth.Options{
		Client:           client,
		Store:            store,
		MockMode:         cfg.Backend.Mock,
		BootstrapTimeout: cfg.Auth.BootstrapTimeout,
	}), nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

type layoutShowCmd struct {
	User string `required:"" help:"User id owning the layout."`
}

func (cmd *layoutShowCmd) Run(ctx context.Context, root *cli) error {
	svc, err := root.openService()
	if err != nil {
		return err
	}
	engine, err := svc.LayoutEngine(ctx, cmd.User)
	if err != nil {
		return err
	}
	return printJSON(engine.Layout())
}

type layoutToggleCmd struct {
	User   string `required:"" help:"User id owning the layout."`
	Widget string `required:"" help:"Widget code to toggle."`
}

func (cmd *layoutToggleCmd) Run(ctx context.Context, root *cli) error {
	svc, err := root.openService()
	if err != nil {
		return err
	}
	if err := svc.ToggleWidget(ctx, cmd.User, dashboard.WidgetType(cmd.Widget)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "toggled %s for %s\n", cmd.Widget, cmd.User)
	return nil
}

type layoutReorderCmd struct {
	User string `required:"" help:"User id owning the layout."`
	From int    `required:"" help:"Current slot index."`
	To   int    `required:"" help:"Destination slot index."`
}

func (cmd *layoutReorderCmd) Run(ctx context.Context, root *cli) error {
	svc, err := root.openService()
	if err != nil {
		return err
	}
	if err := svc.ReorderWidgets(ctx, cmd.User, cmd.From, cmd.To); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "moved slot %d to %d for %s\n", cmd.From, cmd.To, cmd.User)
	return nil
}

type layoutResetCmd struct {
	User string `required:"" help:"User id owning the layout."`
}

func (cmd *layoutResetCmd) Run(ctx context.Context, root *cli) error {
	svc, err := root.openService()
	if err != nil {
		return err
	}
	if err := svc.ResetLayout(ctx, cmd.User); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "layout reset for %s\n", cmd.User)
	return nil
}

type stateShowCmd struct {
	User string `required:"" help:"User id owning the state."`
}

func (cmd *stateShowCmd) Run(ctx context.Context, root *cli) error {
	svc, err := root.openService()
	if err != nil {
		return err
	}
	engine, err := svc.StateEngine(ctx, cmd.User)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"view_mode": engine.ViewMode(),
		"sort_key":  engine.SortKey(),
		"favorites": engine.Favorites(),
		"tour":      engine.Tour(),
	})
}

type stateResetCmd struct {
	User string `required:"" help:"User id owning the state."`
}

func (cmd *stateResetCmd) Run(ctx context.Context, root *cli) error {
	svc, err := root.openService()
	if err != nil {
		return err
	}
	if err := svc.ResetState(ctx, cmd.User); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "state reset for %s\n", cmd.User)
	return nil
}

type sessionLoginCmd struct {
	Identifier string `required:"" help:"Email or employee/control number."`
	Password   string `required:"" help:"Account password."`
}

func (cmd *sessionLoginCmd) Run(ctx context.Context, root *cli) error {
	manager, err := root.openManager()
	if err != nil {
		return err
	}
	if err := manager.Login(ctx, cmd.Identifier, cmd.Password); err != nil {
		return err
	}
	if state := manager.State(); state.User != nil {
		fmt.Fprintf(os.Stdout, "signed in as %s (%s)\n", state.User.Nombre, state.User.Email)
	}
	return nil
}

type sessionLogoutCmd struct{}

func (cmd *sessionLogoutCmd) Run(ctx context.Context, root *cli) error {
	manager, err := root.openManager()
	if err != nil {
		return err
	}
	manager.Bootstrap(ctx)
	manager.Logout(ctx)
	fmt.Fprintln(os.Stdout, "signed out")
	return nil
}

type seedCmd struct {
	User []string `required:"" help:"User ids to seed with the default layout (repeatable)."`
}

func (cmd *seedCmd) Run(ctx context.Context, root *cli) error {
	svc, err := root.openService()
	if err != nil {
		return err
	}
	for _, user := range cmd.User {
		if err := svc.ResetLayout(ctx, user); err != nil {
			return fmt.Errorf("trainctl: seed %s: %w", user, err)
		}
		fmt.Fprintf(os.Stdout, "seeded default layout for %s\n", user)
	}
	return nil
}

type manifestValidateCmd struct {
	Path string `arg:"" type:"path" help:"Manifest file to validate."`
}

func (cmd *manifestValidateCmd) Run(_ context.Context) error {
	doc, err := dashboard.ReadManifest(cmd.Path)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s: %d widget(s), version %s\n", cmd.Path, len(doc.Widgets), doc.Version)
	return nil
}

type scaffoldCmd struct {
	Code         string `required:"" help:"Widget code (e.g. acme.training.streak)."`
	Name         string `required:"" help:"Display name for the widget."`
	Description  string `help:"One-line description used in manifests."`
	Category     string `default:"custom" help:"Widget category."`
	ManifestPath string `required:"" type:"path" help:"Manifest YAML file to update."`
	SchemaPath   string `type:"path" help:"Optional JSON schema file for widget settings."`
	ProviderOut  string `help:"File path for the generated provider stub."`
	Overwrite    bool   `help:"Replace an existing manifest entry / provider stub."`
	SkipProvider bool   `name:"skip-provider" help:"Skip provider stub generation."`
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("trainctl: widget code %s must contain at least one '.' segment", cmd.Code)
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("trainctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	code := dashboard.WidgetType(cmd.Code)
	if !cmd.Overwrite {
		for _, def := range doc.Widgets {
			if def.Code == code {
				return fmt.Errorf("trainctl: manifest already defines widget %s (use --overwrite to replace)", cmd.Code)
			}
		}
	}

	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}
	def := dashboard.WidgetDefinition{
		Code:        code,
		Name:        cmd.Name,
		Description: cmd.Description,
		Category:    cmd.Category,
		Schema:      schema,
	}

	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Code == code {
			doc.Widgets[idx] = def
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, def)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Code < doc.Widgets[j].Code
	})

	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	if cmd.SkipProvider {
		fmt.Fprintf(os.Stdout, "✓ Added %s to %s\n", cmd.Code, manifestPath)
		return nil
	}

	providerPath := cmd.ProviderOut
	if providerPath == "" {
		providerPath = filepath.Join("components", "dashboard", "providers", fmt.Sprintf("%s_provider.go", sanitizeFileName(cmd.Code)))
	}
	providerType := deriveBaseName(cmd.Code) + "Provider"
	if err := writeProviderStub(providerPath, providerType, cmd.Code, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s and generated %s\n", cmd.Code, manifestPath, providerPath)
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("trainctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("trainctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.WidgetDefinition{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("trainctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("trainctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("trainctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("trainctl: write manifest: %w", err)
	}
	return nil
}

func writeProviderStub(path, providerType, code string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("trainctl: provider stub %s already exists (use --overwrite or --provider-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("trainctl: mkdir provider dir: %w", err)
	}
	content := fmt.Sprintf(`package dashboard

import (
	"context"
)

// %s fetches data for %s widgets.
type %s struct{}

// New%s wires the provider into the dashboard registry.
func New%s() Provider {
	return &%s{}
}

// Fetch retrieves the widget payload. Replace with your implementation.
func (p *%s) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	_ = meta
	return WidgetData{
		"message": "replace with real data",
	}, nil
}
`, providerType, code, providerType, providerType, providerType, providerType, providerType)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("trainctl: write provider stub: %w", err)
	}
	return nil
}

func deriveBaseName(code string) string {
	parts := strings.Split(code, ".")
	slug := strings.TrimSpace(parts[len(parts)-1])
	if slug == "" {
		slug = code
	}
	return strcase.ToCamel(slug)
}

func sanitizeFileName(code string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")
	return strings.ToLower(replacer.Replace(code))
}
