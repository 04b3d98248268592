package engine

import (
	"testing"

	"github.com/jassi-singh/caskdb/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Iterator_Forward(t *testing.T) {
	e := openTestEngine(t, testOptions(t))
	require.NoError(t, e.Put([]byte("b"), []byte("2")))
	require.NoError(t, e.Put([]byte("a"), []byte("1")))
	require.NoError(t, e.Put([]byte("c"), []byte("3")))

	it := e.NewIterator(index.IteratorOptions{})
	defer it.Close()

	var got []string
	for ; it.Valid(); it.Next() {
		value, err := it.Value()
		require.NoError(t, err)
		got = append(got, string(it.Key())+"="+string(value))
	}
	assert.Equal(t, []string{"a=1", "b=2", "c=3"}, got)
}

func TestEngine_Iterator_Prefix(t *testing.T) {
	e := openTestEngine(t, testOptions(t))
	require.NoError(t, e.Put([]byte("foo-1"), []byte("1")))
	require.NoError(t, e.Put([]byte("foo-2"), []byte("2")))
	require.NoError(t, e.Put([]byte("bar-1"), []byte("3")))

	it := e.NewIterator(index.IteratorOptions{Prefix: []byte("foo-")})
	defer it.Close()

	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.Equal(t, []string{"foo-1", "foo-2"}, keys)
}

func TestEngine_Iterator_SnapshotIsolatesDeletes(t *testing.T) {
	e := openTestEngine(t, testOptions(t))
	require.NoError(t, e.Put([]byte("a"), []byte("1")))

	it := e.NewIterator(index.IteratorOptions{})
	require.NoError(t, e.Delete([]byte("a")))

	require.True(t, it.Valid())
	value, err := it.Value()
	require.NoError(t, err)
	assert.Equal(t, "1", string(value))
	it.Close()
}
