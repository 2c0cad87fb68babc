package ecs

import "iter"

// Query yields the entities present in every given store. The smallest store
// drives iteration in its dense order and the others are checked per entity;
// when several stores share the smallest size the earliest argument wins.
// Every participating store rejects structural mutation while the sequence
// is being consumed.
func (w *World) Query(stores ...Storage) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if len(stores) == 0 {
			return
		}
		driver := 0
		for i, s := range stores {
			if s.Len() < stores[driver].Len() {
				driver = i
			}
		}

		for _, s := range stores {
			s.acquire()
		}
		defer func() {
			for _, s := range stores {
				s.release()
			}
		}()

		lead := stores[driver]
	next:
		for i := 0; i < lead.Len(); i++ {
			e := lead.entityAt(i)
			if !w.pool.Alive(e) {
				continue
			}
			for j, s := range stores {
				if j != driver && !s.Has(e) {
					continue next
				}
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Query1 yields every live entity holding an A.
func Query1[A any](w *World) iter.Seq[Entity] {
	return w.Query(Register[A](w))
}

// Query2 yields entities holding both A and B.
func Query2[A, B any](w *World) iter.Seq[Entity] {
	return w.Query(Register[A](w), Register[B](w))
}

// Query3 yields entities holding A, B and C.
func Query3[A, B, C any](w *World) iter.Seq[Entity] {
	return w.Query(Register[A](w), Register[B](w), Register[C](w))
}

// Each2 iterates over entities that have both component A and B.
// It iterates over the smaller store and checks the larger one.
func Each2[A, B any](w *World, fn func(Entity, *A, *B)) {
	sa, sb := Register[A](w), Register[B](w)
	for e := range w.Query(sa, sb) {
		a, _ := sa.Get(e)
		b, _ := sb.Get(e)
		fn(e, a, b)
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](w *World, fn func(Entity, *A, *B, *C)) {
	sa, sb, sc := Register[A](w), Register[B](w), Register[C](w)
	for e := range w.Query(sa, sb, sc) {
		a, _ := sa.Get(e)
		b, _ := sb.Get(e)
		c, _ := sc.Get(e)
		fn(e, a, b, c)
	}
}
