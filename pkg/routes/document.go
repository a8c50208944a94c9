package routes

import (
	"strings"

	"github.com/JaimeStill/glimpse/pkg/openapi"
)

// Document adds every route carrying an OpenAPI operation to spec,
// and registers the tag of every group that declares one.
// ServeMux wildcards such as {key...} are written as OpenAPI path templates.
func Document(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		addTags(spec, group)
		walk("", group, func(pattern string, route Route) {
			if route.OpenAPI == nil {
				return
			}
			path := specPath(pattern)
			item, ok := spec.Paths[path]
			if !ok {
				item = &openapi.PathItem{}
				spec.Paths[path] = item
			}
			item.Set(route.Method, route.OpenAPI)
		})
	}
}

func specPath(pattern string) string {
	if pattern == "" {
		return "/"
	}
	return strings.ReplaceAll(pattern, "...}", "}")
}

func addTags(spec *openapi.Spec, group Group) {
	if group.Tag != "" {
		spec.AddTag(group.Tag, group.Description)
	}
	for _, child := range group.Children {
		addTags(spec, child)
	}
}
