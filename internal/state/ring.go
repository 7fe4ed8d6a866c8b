package state

// ring is a fixed-capacity buffer that overwrites its oldest entry.
type ring[T any] struct {
	items   []T
	max     int
	writeAt int
}

func newRing[T any](max int) *ring[T] {
	return &ring[T]{items: make([]T, 0, max), max: max}
}

func (r *ring[T]) add(v T) {
	if len(r.items) < r.max {
		r.items = append(r.items, v)
		return
	}
	r.items[r.writeAt] = v
	r.writeAt = (r.writeAt + 1) % r.max
}

// ordered returns a copy of the entries from oldest to newest.
func (r *ring[T]) ordered() []T {
	if len(r.items) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(r.items) < r.max {
		result := make([]T, len(r.items))
		copy(result, r.items)
		return result
	}

	result := make([]T, r.max)
	for i := 0; i < r.max; i++ {
		result[i] = r.items[(r.writeAt+i)%r.max]
	}
	return result
}

// last returns up to n of the newest entries, oldest first.
func (r *ring[T]) last(n int) []T {
	all := r.ordered()
	if n < 0 {
		n = 0
	}
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}
