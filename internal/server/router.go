package server

import (
	"net/http"
	"sort"
	"strings"
)

// BasicRouter dispatches on path through an [http.ServeMux] and then on method through a per-path table,
// so one path can carry several methods.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	methods     map[string]map[string]http.Handler
	routes      []string
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:     http.NewServeMux(),
		methods: make(map[string]map[string]http.Handler),
	}
}

// Use appends middleware. The first added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method on path. Middleware registered so far is applied now.
// Requests with an unregistered method get 405 and an Allow header naming the registered ones.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)
	table, ok := r.methods[path]
	if !ok {
		table = make(map[string]http.Handler)
		r.methods[path] = table
		r.mux.Handle(path, r.dispatch(path))
	}
	table[method] = r.Apply(handler)
	r.routes = append(r.routes, method+" "+path)
}

// HandleFunc is [BasicRouter.Handle] for plain functions.
func (r *BasicRouter) HandleFunc(method, path string, fn http.HandlerFunc) {
	r.Handle(method, path, fn)
}

// Handler mounts a [Handler] on each of its routes. It does its own method checks.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
		r.routes = append(r.routes, "* "+route)
	}
}

// Routes lists the registered routes as "METHOD path", sorted by path.
func (r *BasicRouter) Routes() []string {
	out := append([]string(nil), r.routes...)
	sort.SliceStable(out, func(i, j int) bool {
		_, pi, _ := strings.Cut(out[i], " ")
		_, pj, _ := strings.Cut(out[j], " ")
		return pi < pj
	})
	return out
}

// ServeHTTP implements [http.Handler].
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler in the registered middleware.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

func (r *BasicRouter) dispatch(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		table := r.methods[path]
		if h, ok := table[req.Method]; ok {
			h.ServeHTTP(w, req)
			return
		}
		if h, ok := table[http.MethodGet]; ok && req.Method == http.MethodHead {
			h.ServeHTTP(w, req)
			return
		}

		allowed := make([]string, 0, len(table))
		for m := range table {
			allowed = append(allowed, m)
		}
		sort.Strings(allowed)
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}
