package data

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jassi-singh/caskdb/internal/fio"
)

// ErrInvalidCRC reports that a record's checksum didn't match its
// decoded contents — the record is corrupt or was torn by a crash.
var ErrInvalidCRC = errors.New("data: invalid crc, log record is corrupted")

// ErrRecordTooShort reports that the bytes at a given offset couldn't
// even hold a minimal record header.
var ErrRecordTooShort = errors.New("data: record header is truncated")

// FileSuffix is the extension every data file uses on disk.
const FileSuffix = ".data"

// DataFile wraps one append-only file: its on-disk id, current write
// offset, and the IOManager performing the actual reads/writes.
type DataFile struct {
	FileID      uint32
	WriteOffset int64
	IOManager   fio.IOManager
}

// FileName returns the conventional on-disk name for a data file id:
// a zero-padded 9-digit number plus the ".data" suffix.
func FileName(dirPath string, fileID uint32) string {
	return filepath.Join(dirPath, fmt.Sprintf("%09d%s", fileID, FileSuffix))
}

// OpenDataFile opens (creating if absent) the data file for fileID
// under dirPath.
func OpenDataFile(dirPath string, fileID uint32) (*DataFile, error) {
	ioManager, err := fio.NewIOManager(FileName(dirPath, fileID))
	if err != nil {
		return nil, err
	}
	return &DataFile{FileID: fileID, IOManager: ioManager}, nil
}

// ReadLogRecord reads one framed record starting at offset, returning
// the decoded record and the number of bytes it consumed on disk. It
// returns io.EOF when offset points at the sentinel empty frame, and
// ErrInvalidCRC when the decoded bytes don't match the trailing CRC.
func (df *DataFile) ReadLogRecord(offset int64) (*LogRecord, int64, error) {
	fileSize, err := df.IOManager.Size()
	if err != nil {
		return nil, 0, err
	}
	if offset >= fileSize {
		return nil, 0, io.EOF
	}

	headerBytes := int64(maxHeaderSize)
	if offset+headerBytes > fileSize {
		headerBytes = fileSize - offset
	}

	headerBuf, err := df.readNBytes(headerBytes, offset)
	if err != nil {
		return nil, 0, err
	}

	header, headerSize := decodeHeader(headerBuf)
	if header == nil {
		return nil, 0, io.EOF
	}
	if isEmptyFrame(header) {
		return nil, 0, io.EOF
	}

	keySize, valueSize := int64(header.keySize), int64(header.valueSize)
	recordSize := headerSize + keySize + valueSize + crcSize
	if offset+recordSize > fileSize {
		return nil, 0, io.ErrUnexpectedEOF
	}

	record := &LogRecord{Type: header.recordType}

	bodyBuf, err := df.readNBytes(keySize+valueSize+crcSize, offset+headerSize)
	if err != nil {
		return nil, 0, err
	}
	record.Key = bodyBuf[:keySize]
	record.Value = bodyBuf[keySize : keySize+valueSize]
	storedCRC := binary.BigEndian.Uint32(bodyBuf[keySize+valueSize:])

	computedCRC := recordCRC(record, headerBuf[:headerSize])
	if computedCRC != storedCRC {
		return nil, 0, ErrInvalidCRC
	}

	return record, recordSize, nil
}

// Write appends buf to the file and advances WriteOffset by the
// number of bytes actually written.
func (df *DataFile) Write(buf []byte) error {
	n, err := df.IOManager.Write(buf)
	if err != nil {
		return err
	}
	df.WriteOffset += int64(n)
	return nil
}

// Sync flushes the file's contents to stable storage.
func (df *DataFile) Sync() error {
	return df.IOManager.Sync()
}

// Close releases the file's descriptor.
func (df *DataFile) Close() error {
	return df.IOManager.Close()
}

func (df *DataFile) readNBytes(n, offset int64) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := df.IOManager.Read(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}
