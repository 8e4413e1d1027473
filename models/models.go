// Package models resolves and validates model references against the
// server's provider catalog.
package models

import (
	"strings"

	"github.com/tbekken/ochat/errors"
	"github.com/tbekken/ochat/opencode"
)

// DefaultProvider backs bare model ids when no catalog is available to
// resolve them.
const DefaultProvider = "opencode"

// Selection is a provider/model pair. It always holds some value, even
// when the pair never passed validation.
type Selection struct {
	Provider string
	Model    string
}

func (s Selection) String() string {
	return s.Provider + "/" + s.Model
}

// Parse splits a model spec on its first slash. A bare model id yields an
// empty Provider, to be resolved against a catalog or defaulted.
func Parse(spec string) Selection {
	spec = strings.TrimSpace(spec)
	if i := strings.Index(spec, "/"); i >= 0 {
		return Selection{Provider: spec[:i], Model: spec[i+1:]}
	}
	return Selection{Model: spec}
}

// Registry answers model questions against a server catalog.
type Registry struct {
	catalog *opencode.Catalog
}

func New(catalog *opencode.Catalog) *Registry {
	return &Registry{catalog: catalog}
}

// Resolve turns a user-supplied spec into a full Selection. A compound
// spec resolves by splitting alone; a bare model id is searched across
// providers in catalog order and the first hit wins.
func (r *Registry) Resolve(spec string) (Selection, error) {
	sel := Parse(spec)
	if sel.Model == "" {
		return Selection{}, errors.New("empty model spec")
	}
	if sel.Provider != "" {
		return sel, nil
	}
	for _, p := range r.catalog.Providers {
		if _, ok := p.Models[sel.Model]; ok {
			return Selection{Provider: p.ID, Model: sel.Model}, nil
		}
	}
	return Selection{}, errors.New("model '%s' not found in any provider", sel.Model)
}

// Validate checks that the selection names a provider in the catalog and a
// model under that provider.
func (r *Registry) Validate(sel Selection) error {
	for _, p := range r.catalog.Providers {
		if p.ID != sel.Provider {
			continue
		}
		if _, ok := p.Models[sel.Model]; ok {
			return nil
		}
		return errors.New("model '%s' not found under provider '%s'", sel.Model, sel.Provider)
	}
	return errors.New("provider '%s' not found", sel.Provider)
}
