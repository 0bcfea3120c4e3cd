package contract

import (
	"sort"
	"sync"
)

// Source tells where a declaration came from.
type Source string

const (
	SourceRoute    Source = "route"
	SourceRegistry Source = "registry"
)

// Entry is one cached declaration.
type Entry struct {
	HandlerID string    `json:"handler"`
	Source    Source    `json:"source"`
	Literal   string    `json:"contract"`
	Template  *Template `json:"-"`
}

// Registry caches parsed contracts by handler id. Declarations are parsed once,
// at registration, and shared read-only between requests. Registry entries
// take precedence over route documentation for the same handler.
type Registry struct {
	extractor *Extractor

	mu        sync.RWMutex
	routes    map[string]*Entry
	overrides map[string]*Entry
}

// NewRegistry creates an empty registry. A nil extractor uses DefaultTag.
func NewRegistry(extractor *Extractor) *Registry {
	if extractor == nil {
		extractor = NewExtractor(DefaultTag)
	}
	return &Registry{
		extractor: extractor,
		routes:    make(map[string]*Entry),
		overrides: make(map[string]*Entry),
	}
}

// Declare records the contract found in a handler's documentation. It reports
// whether a usable contract was found; handlers without one are remembered as
// having no contract.
func (r *Registry) Declare(handlerID, doc string) bool {
	literal, _ := r.extractor.Extract(doc)
	entry := newEntry(handlerID, SourceRoute, literal)

	r.mu.Lock()
	r.routes[handlerID] = entry
	r.mu.Unlock()

	return entry.Template != nil
}

// ReplaceOverrides swaps the full set of registry-sourced literals, keyed by
// handler id. Handlers missing from literals fall back to their route docs.
func (r *Registry) ReplaceOverrides(literals map[string]string) int {
	next := make(map[string]*Entry, len(literals))
	usable := 0
	for id, literal := range literals {
		entry := newEntry(id, SourceRegistry, literal)
		if entry.Template != nil {
			usable++
		}
		next[id] = entry
	}

	r.mu.Lock()
	r.overrides = next
	r.mu.Unlock()

	return usable
}

// Lookup returns the parsed contract for handlerID.
func (r *Registry) Lookup(handlerID string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.overrides[handlerID]; ok && e.Template != nil {
		return e.Template, true
	}
	if e, ok := r.routes[handlerID]; ok && e.Template != nil {
		return e.Template, true
	}
	return nil, false
}

// Entries lists the effective declaration of every handler carrying a usable
// contract, sorted by handler id.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	effective := make(map[string]*Entry, len(r.routes)+len(r.overrides))
	for id, e := range r.routes {
		if e.Template != nil {
			effective[id] = e
		}
	}
	for id, e := range r.overrides {
		if e.Template != nil {
			effective[id] = e
		}
	}

	out := make([]Entry, 0, len(effective))
	for _, e := range effective {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HandlerID < out[j].HandlerID })
	return out
}

// Len returns the number of handlers with a usable contract.
func (r *Registry) Len() int {
	return len(r.Entries())
}

// Extractor returns the extractor used for route documentation.
func (r *Registry) Extractor() *Extractor {
	return r.extractor
}

func newEntry(handlerID string, source Source, literal string) *Entry {
	tmpl, _ := Parse(literal)
	return &Entry{
		HandlerID: handlerID,
		Source:    source,
		Literal:   literal,
		Template:  tmpl,
	}
}
