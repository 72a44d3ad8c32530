package session

import "sync"

// KeyedMutex serializes work per chat identity so that two messages from
// the same chat never interleave onboarding transitions or default-account
// reads/writes. Different chat identities proceed independently.
//
// Mutex entries are never released; the map is bounded by the number of
// distinct chat identities seen since startup.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[int64]*sync.Mutex),
	}
}

// Lock acquires the mutex for key, creating it on first use, and returns
// the corresponding unlock function.
func (k *KeyedMutex) Lock(key int64) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
