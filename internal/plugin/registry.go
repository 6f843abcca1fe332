package plugin

import (
	"sort"
	"strings"
	"sync"

	"github.com/danielolaszy/rh-issue/internal/config"
)

// Registry maps command names to plugins. It accepts registrations until the
// first lookup, after which it is read-only.
type Registry struct {
	mu      sync.Mutex
	plugins map[string]Plugin
	sealed  bool
}

// Group is the plugins of one category, sorted by name.
type Group struct {
	Category Category
	Plugins  []Plugin
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds p under its name. Empty and duplicate names, and
// registrations after the registry was sealed, are configuration errors.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return config.Errorf("cannot register %q: registry is sealed", p.Name())
	}
	name := canonical(p.Name())
	if strings.TrimSpace(name) == "" {
		return config.Errorf("cannot register a plugin with an empty name")
	}
	if prev, exists := r.plugins[name]; exists {
		return config.Errorf("duplicate plugin name %q (already registered as %q)", p.Name(), prev.Name())
	}
	r.plugins[name] = p
	return nil
}

// Resolve returns the plugin for name. Underscores match dashes, so
// "set_priority" resolves "set-priority".
func (r *Registry) Resolve(name string) (Plugin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true

	p, ok := r.plugins[canonical(name)]
	return p, ok
}

// ByCategory returns the non-empty groups in display order.
func (r *Registry) ByCategory() []Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true

	byCat := make(map[Category][]Plugin)
	for _, p := range r.plugins {
		cat := p.Category()
		if !knownCategory(cat) {
			cat = CategoryOther
		}
		byCat[cat] = append(byCat[cat], p)
	}

	var groups []Group
	for _, cat := range categoryOrder {
		ps := byCat[cat]
		if len(ps) == 0 {
			continue
		}
		sort.Slice(ps, func(i, j int) bool { return ps[i].Name() < ps[j].Name() })
		groups = append(groups, Group{Category: cat, Plugins: ps})
	}
	return groups
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// canonical spells a command name with dashes.
func canonical(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func knownCategory(c Category) bool {
	for _, known := range categoryOrder {
		if c == known {
			return true
		}
	}
	return false
}
