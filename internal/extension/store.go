package extension

// Store holds one kind of per-module contribution, keyed by module id.
// A store created with NewStore drops its entry automatically when the
// owning module is deregistered, so contributions never outlive their
// module.
type Store[T any] struct {
	entries map[string]T
}

// NewStore builds a store wired to the catalog's deregistration
// cascade.
func NewStore[T any](catalog *Catalog) *Store[T] {
	s := &Store[T]{entries: make(map[string]T)}
	catalog.OnDeregister(s.Remove)
	return s
}

// Register sets the contribution for a module, replacing any previous
// one.
func (s *Store[T]) Register(id string, value T) {
	s.entries[id] = value
}

// Resolve returns the contribution for a module.
func (s *Store[T]) Resolve(id string) (T, bool) {
	value, ok := s.entries[id]
	return value, ok
}

// Remove drops the contribution for a module.
func (s *Store[T]) Remove(id string) {
	delete(s.entries, id)
}

// Len returns the number of stored contributions.
func (s *Store[T]) Len() int { return len(s.entries) }
