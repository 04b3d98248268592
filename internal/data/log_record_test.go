package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeLogRecord_Normal(t *testing.T) {
	record := &LogRecord{
		Key:   []byte("caskdb-key"),
		Value: []byte("caskdb-value"),
		Type:  RecordNormal,
	}

	encoded, size := EncodeLogRecord(record)
	assert.NotNil(t, encoded)
	assert.Greater(t, size, int64(5))

	header, headerSize := decodeHeader(encoded[:maxHeaderSize])
	assert.NotNil(t, header)
	assert.Equal(t, RecordNormal, header.recordType)
	assert.Equal(t, uint32(len(record.Key)), header.keySize)
	assert.Equal(t, uint32(len(record.Value)), header.valueSize)

	gotKey := encoded[headerSize : headerSize+int64(len(record.Key))]
	gotValue := encoded[headerSize+int64(len(record.Key)) : int64(size)-crcSize]
	assert.Equal(t, record.Key, gotKey)
	assert.Equal(t, record.Value, gotValue)
}

func TestEncodeLogRecord_EmptyValue(t *testing.T) {
	record := &LogRecord{
		Key:  []byte("caskdb-key"),
		Type: RecordDeleted,
	}

	encoded, size := EncodeLogRecord(record)
	assert.NotNil(t, encoded)
	assert.Greater(t, size, int64(0))
}

func TestRecordPosRoundTrip(t *testing.T) {
	pos := &RecordPos{FileID: 7, Offset: 1 << 20, Size: 128}
	encoded := EncodeRecordPos(pos)
	decoded := DecodeRecordPos(encoded)
	assert.Equal(t, pos, decoded)
}

func TestIsEmptyFrame(t *testing.T) {
	assert.True(t, isEmptyFrame(&recordHeader{}))
	assert.False(t, isEmptyFrame(&recordHeader{recordType: RecordNormal}))
	assert.False(t, isEmptyFrame(&recordHeader{keySize: 1}))
}
