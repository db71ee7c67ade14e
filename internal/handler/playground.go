// Package handler contains the plain HTTP handlers of the API: everything
// that is not the GraphQL endpoint itself.
//
// WHAT IS A HANDLER?
// In Go, an HTTP handler is anything that implements the http.Handler interface:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Or more commonly, we use http.HandlerFunc, a function with the right signature
// that automatically satisfies the Handler interface. Chi's router accepts these directly.
//
// Handlers should NOT contain business logic. They are the "glue" between
// HTTP and the service layer.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
)

// WelcomeMessage is the body of GET /.
const WelcomeMessage = "Welcome to the PhotoShare API"

// HandleWelcome answers GET / with a plain-text greeting. Useful as a
// liveness check.
func HandleWelcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(WelcomeMessage))
}

// graphiQLPage loads GraphiQL from a CDN and points it at the GraphQL
// endpoint. The endpoint is injected as a JS string literal; html/template
// escapes it for the <script> context.
const graphiQLPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>body { margin: 0; height: 100vh; } #graphiql { height: 100vh; }</style>
  <link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css">
</head>
<body>
  <div id="graphiql">Loading...</div>
  <script crossorigin src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
  <script>
    const fetcher = GraphiQL.createFetcher({ url: {{.Endpoint}} });
    ReactDOM.createRoot(document.getElementById('graphiql')).render(
      React.createElement(GraphiQL, { fetcher: fetcher, headerEditorEnabled: true })
    );
  </script>
</body>
</html>
`

// PlaygroundHandler serves the in-browser GraphQL IDE.
//
// WHY A STRUCT?
// The template is parsed once at startup (expensive) and reused on every
// request (cheap). The struct also carries the endpoint and logger without
// globals.
type PlaygroundHandler struct {
	template *template.Template
	endpoint string
	logger   *slog.Logger
}

// NewPlaygroundHandler parses the GraphiQL page for the given GraphQL
// endpoint path (normally "/graphql").
func NewPlaygroundHandler(endpoint string, logger *slog.Logger) (*PlaygroundHandler, error) {
	tmpl, err := template.New("graphiql").Parse(graphiQLPage)
	if err != nil {
		return nil, err
	}

	return &PlaygroundHandler{
		template: tmpl,
		endpoint: endpoint,
		logger:   logger,
	}, nil
}

// HandlePlayground serves the GraphiQL page.
//
// HTTP: GET /playground
//
// Send "Authorization: <token>" from the headers pane to query as a user.
func (h *PlaygroundHandler) HandlePlayground(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title":    "PhotoShare API Playground",
		"Endpoint": h.endpoint,
	}

	// Set content type header BEFORE writing the body
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := h.template.Execute(w, data); err != nil {
		h.logger.Error("failed to render playground",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
