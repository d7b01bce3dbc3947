package mock

import (
	"bytes"
	"sort"
	"sync"

	"bumpboard/app/repositories"
)

// Store is an in-memory repositories.Store. Scans visit keys in sorted order.
type Store struct {
	data  map[string][]byte
	mutex sync.RWMutex

	// PutErr, when set, is returned by every Put.
	PutErr error
	// GetErr, when set, is returned by every Get.
	GetErr error
	// Puts counts successful writes.
	Puts int
}

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (m *Store) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = make(map[string][]byte)
	m.Puts = 0
}

func (m *Store) Put(key, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}
	m.data[string(key)] = append([]byte(nil), value...)
	m.Puts++
	return nil
}

func (m *Store) Get(key []byte) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	value, exists := m.data[string(key)]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *Store) Scan(prefix []byte, fn func(key, value []byte) error) error {
	m.mutex.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = m.data[k]
	}
	m.mutex.RUnlock()

	for i, k := range keys {
		if err := fn([]byte(k), values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Store) Close() error {
	return nil
}

// Len is the number of stored records.
func (m *Store) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}
