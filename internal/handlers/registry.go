// Package handlers provides the closed set of specialized response handlers.
package handlers

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/driveline/driveline-go/internal/models"
)

//go:embed profiles.yaml
var profilesYAML []byte

type profilesFile struct {
	Handlers []models.HandlerDescriptor `yaml:"handlers"`
}

// Registry is the fixed set of named handlers. Loaded once, read-only
// across requests.
type Registry struct {
	descriptors map[models.HandlerName]models.HandlerDescriptor
	order       []models.HandlerName
}

// NewRegistry loads the embedded handler profiles. The set is closed: new
// handlers are added by extending profiles.yaml and the HandlerName variants,
// not at runtime.
func NewRegistry() (*Registry, error) {
	var file profilesFile
	if err := yaml.Unmarshal(profilesYAML, &file); err != nil {
		return nil, fmt.Errorf("parse handler profiles: %w", err)
	}
	if len(file.Handlers) == 0 {
		return nil, fmt.Errorf("no handler profiles defined")
	}

	descriptors := make(map[models.HandlerName]models.HandlerDescriptor, len(file.Handlers))
	order := make([]models.HandlerName, 0, len(file.Handlers))
	for _, d := range file.Handlers {
		if d.Name == "" || d.Instructions == "" {
			return nil, fmt.Errorf("handler profile missing name or instructions: %+v", d.Name)
		}
		if _, dup := descriptors[d.Name]; dup {
			return nil, fmt.Errorf("duplicate handler profile: %s", d.Name)
		}
		descriptors[d.Name] = d
		order = append(order, d.Name)
	}

	for _, required := range models.AllHandlers {
		if _, ok := descriptors[required]; !ok {
			return nil, fmt.Errorf("missing handler profile: %s", required)
		}
	}

	return &Registry{descriptors: descriptors, order: order}, nil
}

// Get returns the descriptor for a handler name. Unknown names fall back
// to the general handler.
func (r *Registry) Get(name models.HandlerName) models.HandlerDescriptor {
	if d, ok := r.descriptors[name]; ok {
		return d
	}
	return r.descriptors[models.HandlerGeneral]
}

// Names returns all handler names in profile order.
func (r *Registry) Names() []models.HandlerName {
	return r.order
}

// Ready reports whether the registry loaded a usable profile set.
func (r *Registry) Ready() bool {
	return r != nil && len(r.descriptors) >= len(models.AllHandlers)
}

// Classify scores the message against each handler's keyword affinity and
// returns the best handler with a confidence. This is the registry's own
// classifier; the Orchestrator reconciles it against the Routing Analyzer.
func (r *Registry) Classify(message string) (models.HandlerName, float64) {
	lower := strings.ToLower(message)

	best := models.HandlerGeneral
	bestHits := 0
	for _, name := range r.order {
		d := r.descriptors[name]
		hits := 0
		for _, kw := range d.Keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = name
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return models.HandlerGeneral, 0.3
	}

	confidence := 0.5 + 0.1*float64(bestHits)
	if confidence > 0.9 {
		confidence = 0.9
	}
	return best, confidence
}
