package fio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func destFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "000000001.data")
}

func TestNewFileIO(t *testing.T) {
	fio, err := NewFileIO(destFile(t))
	assert.Nil(t, err)
	assert.NotNil(t, fio)
	assert.Nil(t, fio.Close())
}

func TestFileIO_Write(t *testing.T) {
	fio, err := NewFileIO(destFile(t))
	assert.Nil(t, err)
	defer fio.Close()

	n, err := fio.Write([]byte("key-a"))
	assert.Nil(t, err)
	assert.Equal(t, 5, n)

	n, err = fio.Write([]byte("key-b"))
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
}

func TestFileIO_Read(t *testing.T) {
	fio, err := NewFileIO(destFile(t))
	assert.Nil(t, err)
	defer fio.Close()

	_, err = fio.Write([]byte("key-a"))
	assert.Nil(t, err)
	_, err = fio.Write([]byte("key-b"))
	assert.Nil(t, err)

	buf := make([]byte, 5)
	n, err := fio.Read(buf, 0)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "key-a", string(buf))

	n, err = fio.Read(buf, 5)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "key-b", string(buf))
}

func TestFileIO_Sync(t *testing.T) {
	fio, err := NewFileIO(destFile(t))
	assert.Nil(t, err)
	defer fio.Close()
	assert.Nil(t, fio.Sync())
}

func TestFileIO_Size(t *testing.T) {
	fio, err := NewFileIO(destFile(t))
	assert.Nil(t, err)
	defer fio.Close()

	size, err := fio.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), size)

	_, err = fio.Write([]byte("hello"))
	assert.Nil(t, err)

	size, err = fio.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(5), size)
}

func TestFileIO_Close(t *testing.T) {
	fio, err := NewFileIO(destFile(t))
	assert.Nil(t, err)
	assert.Nil(t, fio.Close())
}
