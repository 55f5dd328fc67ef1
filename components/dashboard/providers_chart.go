package dashboard

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "320px"

var sharedChartCache = NewTTLRenderCache(5 * time.Minute)

// ProgressChartProvider renders a server-side chart of per-course completion
// percentages.
type ProgressChartProvider struct {
	cache RenderCache
	theme string
}

// ProgressChartOption customizes the chart provider.
type ProgressChartOption func(*ProgressChartProvider)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ProgressChartOption {
	return func(p *ProgressChartProvider) { p.cache = cache }
}

// WithChartTheme sets the ECharts theme.
func WithChartTheme(theme string) ProgressChartOption {
	return func(p *ProgressChartProvider) { p.theme = theme }
}

// NewProgressChartProvider builds the chart provider with the shared cache.
func NewProgressChartProvider(options ...ProgressChartOption) *ProgressChartProvider {
	provider := &ProgressChartProvider{
		cache: sharedChartCache,
		theme: string(types.ThemeWalden),
	}
	for _, opt := range options {
		opt(provider)
	}
	return provider
}

// Fetch implements Provider. The payload carries the rendered HTML plus the
// raw values so JSON transports can re-render client-side.
func (p *ProgressChartProvider) Fetch(_ context.Context, meta WidgetContext) (WidgetData, error) {
	courses := append([]Course(nil), meta.Data.Courses...)
	SortCourses(courses, meta.SortKey)
	limit := settingsInt(meta.Widget.Settings, "limit", 8)
	if len(courses) > limit {
		courses = courses[:limit]
	}
	chartKind := "bar"
	if v, ok := meta.Widget.Settings["chart"].(string); ok && v != "" {
		chartKind = v
	}
	titles := make([]string, len(courses))
	values := make([]int, len(courses))
	for i, c := range courses {
		titles[i] = c.Title
		values[i] = c.Progress
	}
	render := func() (string, error) {
		return p.render(chartKind, titles, values)
	}
	html := ""
	var err error
	key := renderCacheKey(meta.UserID, chartKind, titles, values, p.theme)
	if p.cache != nil {
		html, err = p.cache.GetOrRender(key, render)
	} else {
		html, err = render()
	}
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"html":   html,
		"titles": titles,
		"values": values,
		"chart":  chartKind,
	}, nil
}

func (p *ProgressChartProvider) render(kind string, titles []string, values []int) (string, error) {
	if kind == "line" {
		line := charts.NewLine()
		line.SetGlobalOptions(p.globalOptions()...)
		line.SetXAxis(titles)
		line.AddSeries("Progress", toLineData(values))
		return renderChart(line)
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalOptions()...)
	bar.SetXAxis(titles)
	bar.AddSeries("Progress", toBarData(values))
	return renderChart(bar)
}

func (p *ProgressChartProvider) globalOptions() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: "Course progress"}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  p.theme,
			Width:  "100%",
			Height: defaultChartHeight,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toBarData(values []int) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, value := range values {
		data[i] = opts.BarData{Value: value}
	}
	return data
}

func toLineData(values []int) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, value := range values {
		data[i] = opts.LineData{Value: value}
	}
	return data
}
