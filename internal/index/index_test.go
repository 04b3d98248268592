package index

import (
	"testing"

	"github.com/jassi-singh/caskdb/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewIndexer_BTree(t *testing.T) {
	idx, err := NewIndexer(config.IndexBTree)
	assert.Nil(t, err)
	assert.NotNil(t, idx)
}

func TestNewIndexer_Unsupported(t *testing.T) {
	idx, err := NewIndexer(config.IndexSkipList)
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, ErrIndexTypeNotSupported)

	idx, err = NewIndexer(config.IndexType("unknown"))
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, ErrIndexTypeNotSupported)
}
