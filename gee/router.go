package gee

import (
	"net/http"
	"sort"
	"strings"
)

type HandlerFunc func(*Context)

// roots is keyed by method; handlers by "METHOD-pattern", e.g. "GET-/v/:code".
type router struct {
	roots    map[string]*node
	handlers map[string][]HandlerFunc
}

func newRouter() *router {
	return &router{
		handlers: make(map[string][]HandlerFunc),
		roots:    make(map[string]*node),
	}
}

// parsePattern splits on "/" and stops after a catch-all part.
func parsePattern(pattern string) []string {
	vs := strings.Split(pattern, "/")

	parts := make([]string, 0, len(vs))
	for _, item := range vs {
		if item == "" {
			continue
		}
		parts = append(parts, item)
		if item[0] == '*' {
			break
		}
	}
	return parts
}

func (r *router) addRoute(method string, pattern string, handlers ...HandlerFunc) {
	if len(handlers) == 0 {
		panic("gee: addRoute requires at least one handler")
	}
	parts := parsePattern(pattern)

	root, ok := r.roots[method]
	if !ok {
		root = &node{}
		r.roots[method] = root
	}
	root.insert(pattern, parts, 0)
	r.handlers[method+"-"+pattern] = append([]HandlerFunc(nil), handlers...)
}

func (r *router) getRoute(method string, path string) (*node, map[string]string) {
	root, ok := r.roots[method]
	if !ok {
		return nil, nil
	}

	searchParts := parsePattern(path)
	n := root.search(searchParts, 0)
	if n == nil {
		return nil, nil
	}

	params := make(map[string]string)
	for index, part := range parsePattern(n.pattern) {
		if part[0] == ':' {
			params[part[1:]] = searchParts[index]
		}
		if part[0] == '*' && len(part) > 1 {
			params[part[1:]] = strings.Join(searchParts[index:], "/")
			break
		}
	}
	return n, params
}

func (r *router) handle(c *Context) {
	method := c.Method
	n, params := r.getRoute(method, c.Path)
	if n == nil && method == http.MethodHead {
		method = http.MethodGet
		n, params = r.getRoute(method, c.Path)
	}

	if n != nil {
		c.Params = params
		c.RoutePattern = n.pattern
		c.handlers = append(c.handlers, r.handlers[method+"-"+n.pattern]...)
	} else if allow := r.AllowedMethods(c.Path); len(allow) == 0 {
		c.handlers = append(c.handlers, c.engine.noRoute...)
	} else {
		c.SetHeader("Allow", strings.Join(allow, ","))
		c.handlers = append(c.handlers, c.engine.noMethod...)
	}
	c.Next()
}

// AllowedMethods lists the methods that have a route for path, sorted.
func (r *router) AllowedMethods(path string) (allow []string) {
	for method := range r.roots {
		if n, _ := r.getRoute(method, path); n != nil {
			allow = append(allow, method)
		}
	}
	sort.Strings(allow)
	return allow
}
