package extension

import (
	"fmt"
	"log/slog"
)

// Catalog is the registry of active modules. Iteration order is
// registration order; tab cycling and default-mode choice depend on it.
// Catalog is not safe for concurrent mutation; registration happens at
// startup on one goroutine.
type Catalog struct {
	order   []string
	modules map[string]Module
	cleanup []func(id string)
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{modules: make(map[string]Module)}
}

// Register adds a module. Identifiers must be unique.
func (c *Catalog) Register(m Module) error {
	desc := m.Descriptor()
	if desc == nil || desc.ID == "" {
		return fmt.Errorf("module descriptor missing id")
	}
	if _, exists := c.modules[desc.ID]; exists {
		return fmt.Errorf("module %q already registered", desc.ID)
	}
	c.modules[desc.ID] = m
	c.order = append(c.order, desc.ID)
	slog.Debug("module registered", slog.String("id", desc.ID))
	return nil
}

// MustRegister is Register for startup wiring of built-in modules.
func (c *Catalog) MustRegister(m Module) {
	if err := c.Register(m); err != nil {
		panic(err)
	}
}

// Deregister removes a module and cascades to every contribution store
// attached to the catalog. Removing an unknown id is a no-op.
func (c *Catalog) Deregister(id string) {
	if _, exists := c.modules[id]; !exists {
		return
	}
	delete(c.modules, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	for _, fn := range c.cleanup {
		fn(id)
	}
	slog.Debug("module deregistered", slog.String("id", id))
}

// OnDeregister attaches a cleanup hook run for every deregistered id.
func (c *Catalog) OnDeregister(fn func(id string)) {
	c.cleanup = append(c.cleanup, fn)
}

// Module returns the module registered under id.
func (c *Catalog) Module(id string) (Module, bool) {
	m, ok := c.modules[id]
	return m, ok
}

// ModuleFor returns the module behind a mode.
func (c *Catalog) ModuleFor(mode Mode) (Module, bool) {
	return c.Module(mode.ID())
}

// Modes returns the registered modes in registration order.
func (c *Catalog) Modes() []Mode {
	modes := make([]Mode, len(c.order))
	for i, id := range c.order {
		modes[i] = ModeFor(id)
	}
	return modes
}

// Descriptors returns the registered descriptors in registration order.
func (c *Catalog) Descriptors() []*Descriptor {
	descs := make([]*Descriptor, 0, len(c.order))
	for _, id := range c.order {
		descs = append(descs, c.modules[id].Descriptor())
	}
	return descs
}

// Contains reports whether id is registered.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.modules[id]
	return ok
}

// Len returns the number of registered modules.
func (c *Catalog) Len() int { return len(c.order) }
