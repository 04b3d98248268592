package data

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenDataFile(t *testing.T) {
	df, err := OpenDataFile(t.TempDir(), 0)
	assert.Nil(t, err)
	assert.NotNil(t, df)
	assert.Equal(t, uint32(0), df.FileID)
}

func TestDataFile_WriteAndReadLogRecord(t *testing.T) {
	df, err := OpenDataFile(t.TempDir(), 1)
	assert.Nil(t, err)
	defer df.Close()

	records := []*LogRecord{
		{Key: []byte("key-1"), Value: []byte("value-1"), Type: RecordNormal},
		{Key: []byte("key-2"), Value: []byte("value-2-longer-payload"), Type: RecordNormal},
		{Key: []byte("key-3"), Type: RecordDeleted},
	}

	offsets := make([]int64, len(records))
	for i, record := range records {
		offsets[i] = df.WriteOffset
		encoded, _ := EncodeLogRecord(record)
		assert.Nil(t, df.Write(encoded))
	}

	for i, record := range records {
		got, _, err := df.ReadLogRecord(offsets[i])
		assert.Nil(t, err)
		assert.Equal(t, record.Type, got.Type)
		assert.Equal(t, record.Key, got.Key)
		assert.Equal(t, record.Value, got.Value)
	}
}

func TestDataFile_ReadLogRecord_EOFAtEndOfFile(t *testing.T) {
	df, err := OpenDataFile(t.TempDir(), 2)
	assert.Nil(t, err)
	defer df.Close()

	record := &LogRecord{Key: []byte("k"), Value: []byte("v"), Type: RecordNormal}
	encoded, _ := EncodeLogRecord(record)
	assert.Nil(t, df.Write(encoded))

	_, _, err = df.ReadLogRecord(df.WriteOffset)
	assert.Equal(t, io.EOF, err)
}

func TestDataFile_ReadLogRecord_TornWrite(t *testing.T) {
	df, err := OpenDataFile(t.TempDir(), 3)
	assert.Nil(t, err)
	defer df.Close()

	record := &LogRecord{Key: []byte("k"), Value: []byte("value-that-is-longer"), Type: RecordNormal}
	encoded, size := EncodeLogRecord(record)
	truncated := encoded[:size-3]
	assert.Nil(t, df.Write(truncated))

	_, _, err = df.ReadLogRecord(0)
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestDataFile_ReadLogRecord_CorruptCRC(t *testing.T) {
	df, err := OpenDataFile(t.TempDir(), 4)
	assert.Nil(t, err)
	defer df.Close()

	record := &LogRecord{Key: []byte("k"), Value: []byte("v"), Type: RecordNormal}
	encoded, _ := EncodeLogRecord(record)
	encoded[len(encoded)-1] ^= 0xFF
	assert.Nil(t, df.Write(encoded))

	_, _, err = df.ReadLogRecord(0)
	assert.Equal(t, ErrInvalidCRC, err)
}

func TestDataFile_Sync(t *testing.T) {
	df, err := OpenDataFile(t.TempDir(), 5)
	assert.Nil(t, err)
	defer df.Close()
	assert.Nil(t, df.Sync())
}
