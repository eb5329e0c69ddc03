package credstore

import "sync"

var _ Store = (*MemStore)(nil)

// MemStore keeps credentials in process memory. Used by tests and by
// invocations that should leave nothing on disk.
type MemStore struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (ms *MemStore) Get(key string) (string, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	value, ok := ms.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (ms *MemStore) Set(key, value string) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	ms.values[key] = value
	return nil
}

func (ms *MemStore) Remove(key string) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	delete(ms.values, key)
	return nil
}
