package provider

import (
	"fmt"
	"sort"
)

// Provider defines the interface for a speech-to-text service provider
type Provider interface {
	Name() string
	RequiresAPIKey() bool
	ValidateAPIKey(key string) bool
	DefaultModel() string
	Models() []Model
}

var registry = make(map[string]Provider)

func init() {
	Register(&GeminiProvider{})
	Register(&OpenAIProvider{})
}

// Register adds a provider to the registry
func Register(p Provider) {
	registry[p.Name()] = p
}

// GetProvider returns a provider by name, or nil if not found
func GetProvider(name string) Provider {
	return registry[name]
}

// ListProviders returns all registered provider names, sorted
func ListProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindModelByID searches all providers for a model. Returns the model and the
// name of the provider that owns it.
func FindModelByID(id string) (Model, string, error) {
	for name, p := range registry {
		for _, m := range p.Models() {
			if m.ID == id {
				return m, name, nil
			}
		}
	}
	return Model{}, "", fmt.Errorf("unknown model: %s", id)
}
