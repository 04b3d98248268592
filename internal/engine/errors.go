package engine

import "errors"

// Input validation errors.
var (
	ErrKeyIsEmpty           = errors.New("engine: key is empty")
	ErrDirPathIsEmpty       = errors.New("engine: database dir path can't be empty")
	ErrDataFileSizeTooSmall = errors.New("engine: data file size too small")
	ErrExceedMaxBatchNum    = errors.New("engine: exceed the max batch num")
)

// Lookup errors.
var (
	ErrKeyNotFound      = errors.New("engine: key not found")
	ErrDataFileNotFound = errors.New("engine: data file not found in the database")
)

// I/O errors.
var (
	ErrFailedToReadFromDataFile  = errors.New("engine: failed to read from data file")
	ErrFailedToWriteToDataFile   = errors.New("engine: failed to write to data file")
	ErrFailedToSyncDataFile      = errors.New("engine: failed to sync data file")
	ErrFailedToOpenDataFile      = errors.New("engine: failed to open data file")
	ErrFailedToCreateDatabaseDir = errors.New("engine: failed to create database directory")
	ErrFailedToReadDatabaseDir   = errors.New("engine: failed to read database directory")
)

// Integrity errors.
var (
	// errReadDataFileEOF is what readRecordAt reports when the record
	// at a position ends past the end of its data file. Recovery
	// handles end-of-file itself and does not use it; Get, Fold and
	// Iterator.Value return it when a record they read is cut short.
	errReadDataFileEOF        = errors.New("engine: read data file eof")
	ErrInvalidLogRecordCRC    = errors.New("engine: invalid crc value, log record may be corrupted")
	ErrDataDirectoryCorrupted = errors.New("engine: the database directory may be corrupted")
)

// State errors.
var (
	ErrIndexUpdateFailed = errors.New("engine: index update failed")
)

// Concurrency errors.
var (
	// ErrDatabaseDirInUse is returned by Open when another Engine
	// instance (in this or another process) already holds the
	// directory's file lock.
	ErrDatabaseDirInUse = errors.New("engine: database directory is already in use")
)
