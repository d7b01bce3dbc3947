package repositories

import "io"

// Store is the key-value contract the board is built on. Single-key Put and
// Get are atomic; Scan makes a fresh pass over every key with the prefix.
type Store interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	// Scan calls fn for each record under prefix. value is only valid for the
	// duration of the call. A non-nil error from fn stops the scan.
	Scan(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}

// FileStore holds attachment files outside the key-value store.
type FileStore interface {
	Create(name string) (io.WriteCloser, error)
	Remove(name string) error
	Dir() string
}
