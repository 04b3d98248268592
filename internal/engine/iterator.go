package engine

import (
	"github.com/jassi-singh/caskdb/internal/index"
)

// Iterator walks a point-in-time snapshot of the engine's live keys
// in order, dereferencing each position into its value on demand.
type Iterator struct {
	indexIter index.Iterator
	engine    *Engine
}

// NewIterator returns an Iterator positioned at the first entry
// matching opts.
func (e *Engine) NewIterator(opts index.IteratorOptions) *Iterator {
	return &Iterator{
		indexIter: e.index.Iterator(opts),
		engine:    e,
	}
}

// Rewind repositions the iterator at its first entry.
func (it *Iterator) Rewind() {
	it.indexIter.Rewind()
}

// Seek positions the iterator at the first key matching its options
// at or past key (at or before, when reversed).
func (it *Iterator) Seek(key []byte) {
	it.indexIter.Seek(key)
}

// Next advances to the next entry.
func (it *Iterator) Next() {
	it.indexIter.Next()
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator) Valid() bool {
	return it.indexIter.Valid()
}

// Key returns the current entry's key.
func (it *Iterator) Key() []byte {
	return it.indexIter.Key()
}

// Value reads and returns the current entry's value from disk. A
// failed read is returned as an error rather than panicking.
func (it *Iterator) Value() ([]byte, error) {
	record, err := it.engine.readRecordAt(it.indexIter.Value())
	if err != nil {
		return nil, err
	}
	return record.Value, nil
}

// Close releases the iterator's underlying snapshot.
func (it *Iterator) Close() {
	it.indexIter.Close()
}
