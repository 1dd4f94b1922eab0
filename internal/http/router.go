package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Dashboard    *DashboardHandler
	Events       *EventHandler
	Categories   *CategoryHandler
	Participants *ParticipantHandler
	Responder    *Responder
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Dashboard != nil {
		mux.HandleFunc("GET /{$}", cfg.Dashboard.Show)
	}

	if cfg.Events != nil {
		mux.HandleFunc("GET /events/{$}", cfg.Events.List)
		mux.HandleFunc("GET /events/create/{$}", cfg.Events.New)
		mux.HandleFunc("POST /events/create/{$}", cfg.Events.Create)
		mux.HandleFunc("GET /events/{id}/{$}", cfg.Events.Detail)
		mux.HandleFunc("GET /events/{id}/edit/{$}", cfg.Events.Edit)
		mux.HandleFunc("POST /events/{id}/edit/{$}", cfg.Events.Update)
		mux.HandleFunc("POST /events/{id}/delete/{$}", cfg.Events.Delete)
	}

	if cfg.Categories != nil {
		mux.HandleFunc("GET /categories/{$}", cfg.Categories.List)
		mux.HandleFunc("GET /categories/create/{$}", cfg.Categories.New)
		mux.HandleFunc("POST /categories/create/{$}", cfg.Categories.Create)
		mux.HandleFunc("GET /categories/{id}/edit/{$}", cfg.Categories.Edit)
		mux.HandleFunc("POST /categories/{id}/edit/{$}", cfg.Categories.Update)
		mux.HandleFunc("POST /categories/{id}/delete/{$}", cfg.Categories.Delete)
	}

	if cfg.Participants != nil {
		mux.HandleFunc("GET /participants/{$}", cfg.Participants.List)
		mux.HandleFunc("GET /participants/create/{$}", cfg.Participants.New)
		mux.HandleFunc("POST /participants/create/{$}", cfg.Participants.Create)
		mux.HandleFunc("GET /participants/{id}/edit/{$}", cfg.Participants.Edit)
		mux.HandleFunc("POST /participants/{id}/edit/{$}", cfg.Participants.Update)
		mux.HandleFunc("POST /participants/{id}/delete/{$}", cfg.Participants.Delete)
	}

	mux.Handle("/", fallback(mux, cfg.Responder))

	return Chain(mux, cfg.Middleware...)
}

// fallback handles every request no route claimed. GET requests missing a
// trailing slash are redirected when the slashed path exists. Paths that exist
// under another method get a 405 and everything else a 404.
func fallback(mux *http.ServeMux, responder *Responder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodGet || r.Method == http.MethodHead) && !strings.HasSuffix(r.URL.Path, "/") {
			if routed(mux, r, http.MethodGet, r.URL.Path+"/") {
				target := r.URL.Path + "/"
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}
		}

		var allowed []string
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			if method != r.Method && routed(mux, r, method, r.URL.Path) {
				allowed = append(allowed, method)
			}
		}
		if responder == nil {
			if len(allowed) > 0 {
				methodNotAllowed(w, allowed...)
				return
			}
			http.NotFound(w, r)
			return
		}
		if len(allowed) > 0 {
			responder.MethodNotAllowed(w, r, allowed...)
			return
		}
		responder.NotFound(w, r)
	})
}

// routed reports whether a request for method and path reaches a route other
// than the fallback.
func routed(mux *http.ServeMux, r *http.Request, method, path string) bool {
	candidate := r.Clone(r.Context())
	candidate.Method = method
	candidate.URL.Path = path
	candidate.URL.RawPath = ""
	_, pattern := mux.Handler(candidate)
	return pattern != "" && pattern != "/"
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
