package openapi

import (
	"net/http"
	"slices"
	"strings"
)

// Spec is the root of an OpenAPI 3.1 document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Tags       []*Tag               `json:"tags,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// Tag groups operations in rendered documentation.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// NewSpec creates a Spec with the shared error components registered.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI:    "3.1.0",
		Info:       &Info{Title: title, Version: version},
		Paths:      make(map[string]*PathItem),
		Components: NewComponents(),
	}
}

// AddServer appends a server URL.
func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

// SetDescription sets info.description.
func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// AddTag registers a tag. A repeated name replaces the earlier description.
// Tags are kept sorted by name.
func (s *Spec) AddTag(name, description string) {
	i, found := slices.BinarySearchFunc(s.Tags, name, func(t *Tag, n string) int {
		return strings.Compare(t.Name, n)
	})
	if found {
		s.Tags[i].Description = description
		return
	}
	s.Tags = slices.Insert(s.Tags, i, &Tag{Name: name, Description: description})
}

// ServeSpec returns a handler that writes pre-serialized spec JSON.
func ServeSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(spec)
	}
}
