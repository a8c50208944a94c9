package routes

import "net/http"

// Group organizes routes under a common prefix.
// Tag and Description document the group in the OpenAPI spec.
type Group struct {
	Prefix      string
	Tag         string
	Description string
	Routes      []Route
	Children    []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		walk("", group, func(path string, route Route) {
			mux.HandleFunc(route.Method+" "+path, route.Handler)
		})
	}
}

// Patterns returns the ServeMux patterns the groups register, in registration order.
func Patterns(groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		walk("", group, func(path string, route Route) {
			patterns = append(patterns, route.Method+" "+path)
		})
	}
	return patterns
}

func walk(parentPrefix string, group Group, fn func(path string, route Route)) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		fn(fullPrefix+route.Pattern, route)
	}
	for _, child := range group.Children {
		walk(fullPrefix, child, fn)
	}
}
