// Package index implements the in-memory KeyDirectory: an ordered
// key to on-disk record-position map with a pluggable backend and a
// snapshot iterator.
package index

import (
	"errors"

	"github.com/jassi-singh/caskdb/internal/config"
	"github.com/jassi-singh/caskdb/internal/data"
)

// ErrIndexTypeNotSupported is returned by NewIndexer for any index
// type other than btree. A second backend is deliberately left
// unimplemented; only the interface surface is required.
var ErrIndexTypeNotSupported = errors.New("index: index type not supported")

// Indexer is the KeyDirectory contract. Implementations must be safe
// for concurrent use.
type Indexer interface {
	// Put inserts or overwrites key's position, returning the
	// previous position if one existed.
	Put(key []byte, pos *data.RecordPos) *data.RecordPos
	// Get returns key's position, or nil if key isn't present.
	Get(key []byte) *data.RecordPos
	// Delete removes key, returning its last position and whether it
	// was present.
	Delete(key []byte) (*data.RecordPos, bool)
	// Size returns the number of keys currently indexed.
	Size() int
	// Iterator returns a point-in-time iterator over the index. The
	// iterator is unaffected by concurrent Put/Delete calls made
	// after it is created.
	Iterator(opts IteratorOptions) Iterator
	// ListKeys returns every indexed key.
	ListKeys() [][]byte
	// Close releases any resources held by the index.
	Close() error
}

// IteratorOptions controls Indexer.Iterator.
type IteratorOptions struct {
	// Prefix restricts iteration to keys with this prefix. Nil or
	// empty means no filtering.
	Prefix []byte
	// Reverse iterates from the largest key to the smallest.
	Reverse bool
}

// Iterator walks a snapshot of the KeyDirectory in key order.
type Iterator interface {
	// Rewind seeks to the first key satisfying the iterator's options.
	Rewind()
	// Seek positions the iterator at the first key >= (or <=, when
	// reversed) the given key.
	Seek(key []byte)
	// Next advances to the next key.
	Next()
	// Valid reports whether the iterator is positioned at an entry.
	Valid() bool
	// Key returns the current entry's key.
	Key() []byte
	// Value returns the current entry's record position.
	Value() *data.RecordPos
	// Close releases the iterator's snapshot.
	Close()
}

// NewIndexer builds the Indexer for the given backend. Only
// config.IndexBTree is implemented.
func NewIndexer(indexType config.IndexType) (Indexer, error) {
	switch indexType {
	case config.IndexBTree:
		return NewBTree(), nil
	case config.IndexSkipList:
		return nil, ErrIndexTypeNotSupported
	default:
		return nil, ErrIndexTypeNotSupported
	}
}
