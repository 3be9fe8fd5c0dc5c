package store

import (
	"sort"
	"sync"
)

// listeners fans a state value out to subscribers. Delivery happens outside
// the owning store's lock so a subscriber may read the store.
type listeners[S any] struct {
	mu   sync.Mutex
	next uint64
	fns  map[uint64]func(S)
}

func (l *listeners[S]) subscribe(fn func(S)) func() {
	l.mu.Lock()
	if l.fns == nil {
		l.fns = make(map[uint64]func(S))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners[S]) notify(state S) {
	l.mu.Lock()
	ids := make([]uint64, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(S), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
