package index

import (
	"testing"

	"github.com/jassi-singh/caskdb/internal/data"
	"github.com/stretchr/testify/assert"
)

func TestBTree_PutGetDelete(t *testing.T) {
	bt := NewBTree()

	assert.Nil(t, bt.Put([]byte("a"), &data.RecordPos{FileID: 1, Offset: 0}))
	assert.Equal(t, &data.RecordPos{FileID: 1, Offset: 0}, bt.Get([]byte("a")))

	old := bt.Put([]byte("a"), &data.RecordPos{FileID: 2, Offset: 10})
	assert.Equal(t, &data.RecordPos{FileID: 1, Offset: 0}, old)
	assert.Equal(t, &data.RecordPos{FileID: 2, Offset: 10}, bt.Get([]byte("a")))

	assert.Nil(t, bt.Get([]byte("missing")))

	pos, ok := bt.Delete([]byte("a"))
	assert.True(t, ok)
	assert.Equal(t, &data.RecordPos{FileID: 2, Offset: 10}, pos)
	assert.Nil(t, bt.Get([]byte("a")))

	_, ok = bt.Delete([]byte("a"))
	assert.False(t, ok)
}

func TestBTree_Size(t *testing.T) {
	bt := NewBTree()
	assert.Equal(t, 0, bt.Size())
	bt.Put([]byte("a"), &data.RecordPos{})
	bt.Put([]byte("b"), &data.RecordPos{})
	assert.Equal(t, 2, bt.Size())
}

func TestBTree_ListKeys(t *testing.T) {
	bt := NewBTree()
	bt.Put([]byte("b"), &data.RecordPos{})
	bt.Put([]byte("a"), &data.RecordPos{})
	bt.Put([]byte("c"), &data.RecordPos{})

	keys := bt.ListKeys()
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, keys)
}

func TestBTree_Iterator_Order(t *testing.T) {
	bt := NewBTree()
	for _, k := range []string{"c", "a", "b"} {
		bt.Put([]byte(k), &data.RecordPos{})
	}

	it := bt.Iterator(IteratorOptions{})
	var got []string
	for ; it.Valid(); it.Next() {
		got = append(got, string(it.Key()))
	}
	it.Close()
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestBTree_Iterator_Reverse(t *testing.T) {
	bt := NewBTree()
	for _, k := range []string{"c", "a", "b"} {
		bt.Put([]byte(k), &data.RecordPos{})
	}

	it := bt.Iterator(IteratorOptions{Reverse: true})
	var got []string
	for ; it.Valid(); it.Next() {
		got = append(got, string(it.Key()))
	}
	it.Close()
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestBTree_Iterator_Prefix(t *testing.T) {
	bt := NewBTree()
	for _, k := range []string{"foo-1", "foo-2", "bar-1"} {
		bt.Put([]byte(k), &data.RecordPos{})
	}

	it := bt.Iterator(IteratorOptions{Prefix: []byte("foo-")})
	var got []string
	for ; it.Valid(); it.Next() {
		got = append(got, string(it.Key()))
	}
	it.Close()
	assert.Equal(t, []string{"foo-1", "foo-2"}, got)
}

func TestBTree_Iterator_Seek(t *testing.T) {
	bt := NewBTree()
	for _, k := range []string{"a", "b", "c", "d"} {
		bt.Put([]byte(k), &data.RecordPos{})
	}

	it := bt.Iterator(IteratorOptions{})
	it.Seek([]byte("c"))
	var got []string
	for ; it.Valid(); it.Next() {
		got = append(got, string(it.Key()))
	}
	it.Close()
	assert.Equal(t, []string{"c", "d"}, got)
}

func TestBTree_Iterator_IsSnapshot(t *testing.T) {
	bt := NewBTree()
	bt.Put([]byte("a"), &data.RecordPos{})

	it := bt.Iterator(IteratorOptions{})
	bt.Put([]byte("b"), &data.RecordPos{})
	bt.Delete([]byte("a"))

	var got []string
	for ; it.Valid(); it.Next() {
		got = append(got, string(it.Key()))
	}
	it.Close()
	assert.Equal(t, []string{"a"}, got)
}
