package render

// DrawList groups items by material in first-seen order so the renderer sees
// each material as one contiguous run. Grouping is a single O(n) pass; groups
// are not sorted.
type DrawList[T any] struct {
	index  map[Material]int
	groups []drawGroup[T]
	n      int
}

type drawGroup[T any] struct {
	material Material
	items    []T
}

func NewDrawList[T any]() *DrawList[T] {
	return &DrawList[T]{index: make(map[Material]int)}
}

// Push appends item to the group of m, opening a new group the first time m
// is seen this frame.
func (l *DrawList[T]) Push(m Material, item T) {
	i, ok := l.index[m]
	if !ok {
		i = len(l.groups)
		l.index[m] = i
		if i < cap(l.groups) {
			// Reuse the item slice left by Reset.
			l.groups = l.groups[:i+1]
			l.groups[i].material = m
		} else {
			l.groups = append(l.groups, drawGroup[T]{material: m})
		}
	}
	l.groups[i].items = append(l.groups[i].items, item)
	l.n++
}

// Each visits groups in first-seen order. It stops at the first error.
func (l *DrawList[T]) Each(fn func(m Material, items []T) error) error {
	for _, g := range l.groups {
		if err := fn(g.material, g.items); err != nil {
			return err
		}
	}
	return nil
}

// Groups returns the number of distinct materials.
func (l *DrawList[T]) Groups() int { return len(l.groups) }

// Len returns the number of pushed items.
func (l *DrawList[T]) Len() int { return l.n }

// Reset empties the list, keeping allocations for the next frame.
func (l *DrawList[T]) Reset() {
	for i := range l.groups {
		clear(l.groups[i].items)
		l.groups[i].items = l.groups[i].items[:0]
	}
	l.groups = l.groups[:0]
	clear(l.index)
	l.n = 0
}
