package index

import (
	"bytes"
	"sort"
	"sync"

	"github.com/google/btree"
	"github.com/jassi-singh/caskdb/internal/data"
)

// btreeDegree is the branching factor for the underlying google/btree
// tree. 32 is the library's own suggested default for byte-slice keys.
const btreeDegree = 32

// btreeItem is the value type stored in the BTreeG: a key and the
// position its most recent write landed at.
type btreeItem struct {
	key []byte
	pos *data.RecordPos
}

func btreeItemLess(a, b btreeItem) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// BTree is the google/btree-backed KeyDirectory implementation. A
// single RWMutex guards the tree; reads take the shared lock,
// writes and iterator snapshots take the exclusive lock only long
// enough to clone the tree.
type BTree struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[btreeItem]
}

// NewBTree constructs an empty btree-backed index.
func NewBTree() *BTree {
	return &BTree{tree: btree.NewG(btreeDegree, btreeItemLess)}
}

func (bt *BTree) Put(key []byte, pos *data.RecordPos) *data.RecordPos {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	old, existed := bt.tree.ReplaceOrInsert(btreeItem{key: key, pos: pos})
	if !existed {
		return nil
	}
	return old.pos
}

func (bt *BTree) Get(key []byte) *data.RecordPos {
	bt.mu.RLock()
	defer bt.mu.RUnlock()

	item, ok := bt.tree.Get(btreeItem{key: key})
	if !ok {
		return nil
	}
	return item.pos
}

func (bt *BTree) Delete(key []byte) (*data.RecordPos, bool) {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	old, existed := bt.tree.Delete(btreeItem{key: key})
	if !existed {
		return nil, false
	}
	return old.pos, true
}

func (bt *BTree) Size() int {
	bt.mu.RLock()
	defer bt.mu.RUnlock()
	return bt.tree.Len()
}

func (bt *BTree) ListKeys() [][]byte {
	bt.mu.RLock()
	defer bt.mu.RUnlock()

	keys := make([][]byte, 0, bt.tree.Len())
	bt.tree.Ascend(func(item btreeItem) bool {
		keys = append(keys, item.key)
		return true
	})
	return keys
}

func (bt *BTree) Close() error {
	return nil
}

// Iterator clones the tree (an O(1), copy-on-write operation in
// google/btree) so the returned iterator is unaffected by writes that
// happen after it is created.
func (bt *BTree) Iterator(opts IteratorOptions) Iterator {
	bt.mu.Lock()
	snapshot := bt.tree.Clone()
	bt.mu.Unlock()

	it := &btreeIterator{tree: snapshot, opts: opts}
	it.Rewind()
	return it
}

// btreeIterator materializes the snapshot's matching keys into a
// slice once, up front, then walks it by index. google/btree's Ascend
// callback can't be paused and resumed across Seek/Next calls, so a
// slice-backed cursor is simpler than holding the callback open.
type btreeIterator struct {
	tree    *btree.BTreeG[btreeItem]
	opts    IteratorOptions
	items   []btreeItem
	cursor  int
	visited bool
}

func (it *btreeIterator) Rewind() {
	it.items = it.items[:0]
	iterate := func(item btreeItem) bool {
		if len(it.opts.Prefix) > 0 && !bytes.HasPrefix(item.key, it.opts.Prefix) {
			return true
		}
		it.items = append(it.items, item)
		return true
	}
	if it.opts.Reverse {
		it.tree.Descend(iterate)
	} else {
		it.tree.Ascend(iterate)
	}
	it.cursor = 0
	it.visited = true
}

func (it *btreeIterator) Seek(key []byte) {
	if !it.visited {
		it.Rewind()
	}
	if it.opts.Reverse {
		it.cursor = sort.Search(len(it.items), func(i int) bool {
			return bytes.Compare(it.items[i].key, key) <= 0
		})
	} else {
		it.cursor = sort.Search(len(it.items), func(i int) bool {
			return bytes.Compare(it.items[i].key, key) >= 0
		})
	}
}

func (it *btreeIterator) Next() {
	it.cursor++
}

func (it *btreeIterator) Valid() bool {
	return it.cursor >= 0 && it.cursor < len(it.items)
}

func (it *btreeIterator) Key() []byte {
	return it.items[it.cursor].key
}

func (it *btreeIterator) Value() *data.RecordPos {
	return it.items[it.cursor].pos
}

func (it *btreeIterator) Close() {
	it.items = nil
}
