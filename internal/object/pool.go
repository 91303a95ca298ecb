package object

import "iter"

// Pool owns the live entities of one kind.
//
// Removal is deferred: RemoveByID retires the entity immediately (it stops
// appearing in All) and Sweep compacts the backing slice afterwards, so
// removing while ranging over All is safe.
type Pool[T Entity] struct {
	items   []T
	index   map[ID]int // ID -> position in items, rebuilt on Sweep
	retired int        // Retired entities still in items
}

// NewPool creates an empty pool.
func NewPool[T Entity]() *Pool[T] {
	return &Pool[T]{
		index: make(map[ID]int),
	}
}

// Add inserts an entity. Returns false if an entity with the same ID is
// already owned by the pool.
func (p *Pool[T]) Add(e T) bool {
	id := e.ID()
	if _, ok := p.index[id]; ok {
		return false
	}
	p.index[id] = len(p.items)
	p.items = append(p.items, e)
	return true
}

// Get returns the live entity with the given ID.
func (p *Pool[T]) Get(id ID) (T, bool) {
	i, ok := p.index[id]
	if !ok || p.items[i].Transform().Retired() {
		var zero T
		return zero, false
	}
	return p.items[i], true
}

// RemoveByID retires the entity with the given ID. It returns the entity and
// true only on the first removal; later calls for the same ID return false.
func (p *Pool[T]) RemoveByID(id ID) (T, bool) {
	var zero T
	i, ok := p.index[id]
	if !ok {
		return zero, false
	}
	e := p.items[i]
	if !e.Transform().retire() {
		return zero, false
	}
	p.retired++
	return e, true
}

// All yields the live entities in insertion order.
// Entities added during iteration are not visited until the next pass.
func (p *Pool[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		items := p.items
		for _, e := range items {
			if e.Transform().Retired() {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of live entities.
func (p *Pool[T]) Len() int {
	return len(p.items) - p.retired
}

// Sweep purges retired entities and returns how many were dropped.
func (p *Pool[T]) Sweep() int {
	if p.retired == 0 {
		return 0
	}
	purged := p.retired

	kept := p.items[:0] // reuse backing array
	for _, e := range p.items {
		if e.Transform().Retired() {
			delete(p.index, e.ID())
			continue
		}
		p.index[e.ID()] = len(kept)
		kept = append(kept, e)
	}
	// Drop references held past the new length
	clear(p.items[len(kept):])
	p.items = kept
	p.retired = 0

	return purged
}

// Clear removes every entity, calling fn for each one that was still live.
func (p *Pool[T]) Clear(fn func(T)) {
	for _, e := range p.items {
		if e.Transform().retire() && fn != nil {
			fn(e)
		}
	}
	clear(p.items)
	p.items = p.items[:0]
	clear(p.index)
	p.retired = 0
}
