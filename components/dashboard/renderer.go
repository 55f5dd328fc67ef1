package dashboard

import "io"

// Renderer is the template engine surface the dashboard controller draws
// training pages through. NewTemplateRenderer provides the embedded default.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
