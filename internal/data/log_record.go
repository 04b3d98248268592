package data

import (
	"encoding/binary"
	"hash/crc32"
)

// RecordType tags the kind of LogRecord a frame holds.
type RecordType = byte

const (
	// RecordNormal is an ordinary key/value write.
	RecordNormal RecordType = 1
	// RecordDeleted is a tombstone: the value bytes are empty.
	RecordDeleted RecordType = 2
	// RecordTxnFinished marks the end of an atomically-committed batch;
	// it carries no user key/value of its own.
	RecordTxnFinished RecordType = 3
)

// maxHeaderSize is 1 (type) + 5 (key_len varint) + 5 (value_len varint).
const maxHeaderSize = 1 + binary.MaxVarintLen32 + binary.MaxVarintLen32

// crcSize is the trailing CRC32 field width.
const crcSize = 4

// LogRecord is one logical entry appended to a data file.
type LogRecord struct {
	Key   []byte
	Value []byte
	Type  RecordType
}

// RecordPos is a KeyDirectory entry: where a record lives on disk.
type RecordPos struct {
	FileID uint32
	Offset uint64
	Size   uint32
}

// recordHeader is the decoded variable-shape prefix of an encoded
// record: type byte plus the two length varints. The CRC is trailing
// on the wire, not part of the header, so it is verified separately
// once the full frame is read.
type recordHeader struct {
	recordType RecordType
	keySize    uint32
	valueSize  uint32
}

// EncodeLogRecord frames a LogRecord as
// [type:1 | key_len:varint | value_len:varint | key | value | crc32:4]
// and returns the encoded bytes along with their length.
func EncodeLogRecord(record *LogRecord) ([]byte, int64) {
	header := make([]byte, maxHeaderSize)
	header[0] = record.Type
	index := 1
	index += binary.PutUvarint(header[index:], uint64(len(record.Key)))
	index += binary.PutUvarint(header[index:], uint64(len(record.Value)))

	size := index + len(record.Key) + len(record.Value) + crcSize
	encoded := make([]byte, size)
	copy(encoded[:index], header[:index])
	copy(encoded[index:], record.Key)
	copy(encoded[index+len(record.Key):], record.Value)

	crc := crc32.ChecksumIEEE(encoded[:index+len(record.Key)+len(record.Value)])
	binary.BigEndian.PutUint32(encoded[size-crcSize:], crc)

	return encoded, int64(size)
}

// EncodeRecordPos serializes a RecordPos for use as a hint-file or
// transaction-staging value.
func EncodeRecordPos(pos *RecordPos) []byte {
	buf := make([]byte, binary.MaxVarintLen32+binary.MaxVarintLen64+binary.MaxVarintLen32)
	index := 0
	index += binary.PutUvarint(buf[index:], uint64(pos.FileID))
	index += binary.PutUvarint(buf[index:], pos.Offset)
	index += binary.PutUvarint(buf[index:], uint64(pos.Size))
	return buf[:index]
}

// DecodeRecordPos is the inverse of EncodeRecordPos.
func DecodeRecordPos(buf []byte) *RecordPos {
	index := 0
	fileID, n := binary.Uvarint(buf[index:])
	index += n
	offset, n := binary.Uvarint(buf[index:])
	index += n
	size, _ := binary.Uvarint(buf[index:])

	return &RecordPos{
		FileID: uint32(fileID),
		Offset: offset,
		Size:   uint32(size),
	}
}

// decodeHeader parses the header out of a max-header-size-or-shorter
// buffer, returning the header and its actual encoded length. It
// returns (nil, 0) when buf is too short to even hold a type byte and
// the two length varints' minimum one byte each.
func decodeHeader(buf []byte) (*recordHeader, int64) {
	if len(buf) < 3 {
		return nil, 0
	}

	h := &recordHeader{recordType: buf[0]}
	index := 1

	keySize, n := binary.Uvarint(buf[index:])
	if n <= 0 {
		return nil, 0
	}
	h.keySize = uint32(keySize)
	index += n

	valueSize, n := binary.Uvarint(buf[index:])
	if n <= 0 {
		return nil, 0
	}
	h.valueSize = uint32(valueSize)
	index += n

	return h, int64(index)
}

// recordCRC recomputes the CRC32 a record should carry: IEEE checksum
// over type + key_len + value_len + key + value.
func recordCRC(record *LogRecord, headerWithoutCRC []byte) uint32 {
	crc := crc32.ChecksumIEEE(headerWithoutCRC)
	crc = crc32.Update(crc, crc32.IEEETable, record.Key)
	crc = crc32.Update(crc, crc32.IEEETable, record.Value)
	return crc
}

// isEmptyFrame reports the sentinel empty header that signals
// end-of-file during recovery: type byte 0 with both lengths 0. Real
// records never use type 0, so this pattern is unambiguous.
func isEmptyFrame(h *recordHeader) bool {
	return h.recordType == 0 && h.keySize == 0 && h.valueSize == 0
}
