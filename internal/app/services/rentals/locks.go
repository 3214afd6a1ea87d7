package rentals

import "sync"

// keyedLocks serializes critical sections per key. Create uses car keys so
// the availability-check-then-insert section admits one booking; SetStatus
// uses rental keys so two concurrent transitions cannot both load the same
// prior status. Entries are never evicted; the map holds one mutex per key
// ever locked in this process, bounded by fleet and booking cardinality.
type keyedLocks struct {
	mu    sync.Mutex
	byKey map[string]*sync.Mutex
}

func (l *keyedLocks) lock(key string) (unlock func()) {
	l.mu.Lock()
	if l.byKey == nil {
		l.byKey = make(map[string]*sync.Mutex)
	}
	m, ok := l.byKey[key]
	if !ok {
		m = &sync.Mutex{}
		l.byKey[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
