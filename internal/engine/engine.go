// Package engine implements the core log-structured storage engine:
// append-only data files, an in-memory key directory, file rollover,
// crash recovery and atomic multi-key write batches.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/jassi-singh/caskdb/internal/config"
	"github.com/jassi-singh/caskdb/internal/data"
	"github.com/jassi-singh/caskdb/internal/index"
)

// fileLockName is the guard file gofrs/flock takes an exclusive lock
// on, detecting a second Engine (in this or another process) trying
// to open the same directory.
const fileLockName = "flock.lock"

// nonTransactionSeqNo frames the key of every write made outside a
// WriteBatch commit.
const nonTransactionSeqNo uint64 = 0

// txnFinishedKey is the user key carried by a batch's terminator
// record; it is never a real user key because it is always framed
// with the batch's own seq_no, never seq_no 0.
var txnFinishedKey = []byte("txn-fin")

// Engine is a single, embedded key-value store rooted at one
// directory. It is safe for concurrent use by multiple goroutines.
type Engine struct {
	options *config.Config

	// activeFileMu guards both the activeFile pointer and its write
	// offset. append_log_record and rollover hold it exclusively;
	// readers needing a stable pointer to the active file take it
	// for the duration of the lookup only.
	activeFileMu sync.RWMutex
	activeFile   *data.DataFile

	// olderFilesMu guards the olderFiles map; writers take it only
	// briefly during rollover, to insert the file being retired.
	olderFilesMu sync.RWMutex
	olderFiles   map[uint32]*data.DataFile

	index index.Indexer

	// seqNo is the monotonic batch sequence counter; fetch-added under
	// batchCommitMu so every commit observes a unique value.
	seqNo uint64

	// batchCommitMu serializes WriteBatch.Commit calls so two
	// batches' records never interleave on disk.
	batchCommitMu sync.Mutex

	fileLock *flock.Flock

	closed bool
}

// Open validates options, creates dirPath if needed, takes an
// exclusive directory lock, opens or creates the data files it finds,
// and replays them to rebuild the key directory before returning a
// ready Engine.
func Open(options *config.Config) (*Engine, error) {
	if err := validateOptions(options); err != nil {
		return nil, err
	}

	if _, err := os.Stat(options.DirPath); os.IsNotExist(err) {
		if err := os.MkdirAll(options.DirPath, 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToCreateDatabaseDir, err)
		}
	}

	fileLock := flock.New(filepath.Join(options.DirPath, fileLockName))
	held, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("engine: acquiring directory lock: %w", err)
	}
	if !held {
		return nil, ErrDatabaseDirInUse
	}

	idx, err := index.NewIndexer(options.IndexType)
	if err != nil {
		_ = fileLock.Unlock()
		return nil, err
	}

	engine := &Engine{
		options:    options,
		olderFiles: make(map[uint32]*data.DataFile),
		index:      idx,
		fileLock:   fileLock,
	}

	if err := engine.loadDataFiles(); err != nil {
		_ = fileLock.Unlock()
		return nil, err
	}

	if err := engine.loadIndexFromDataFiles(); err != nil {
		_ = fileLock.Unlock()
		return nil, err
	}

	slog.Info("engine: opened", "dir_path", options.DirPath, "keys", engine.index.Size())
	return engine, nil
}

func validateOptions(options *config.Config) error {
	if options == nil || options.DirPath == "" {
		return ErrDirPathIsEmpty
	}
	if options.DataFileSize <= 0 {
		return ErrDataFileSizeTooSmall
	}
	return nil
}

// loadDataFiles enumerates "*.data" files under the configured
// directory, opens each one, and assigns the highest-id file as
// active. If none exist, a fresh file id 0 becomes active.
func (e *Engine) loadDataFiles() error {
	entries, err := os.ReadDir(e.options.DirPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToReadDatabaseDir, err)
	}

	var fileIDs []uint32
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), data.FileSuffix) {
			continue
		}
		idPart := strings.TrimSuffix(entry.Name(), data.FileSuffix)
		id, err := strconv.ParseUint(idPart, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrDataDirectoryCorrupted, entry.Name())
		}
		fileIDs = append(fileIDs, uint32(id))
	}

	if len(fileIDs) == 0 {
		df, err := data.OpenDataFile(e.options.DirPath, 0)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToOpenDataFile, err)
		}
		e.activeFile = df
		return nil
	}

	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] > fileIDs[j] })

	for i, id := range fileIDs {
		df, err := data.OpenDataFile(e.options.DirPath, id)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToOpenDataFile, err)
		}
		if i == 0 {
			e.activeFile = df
		} else {
			e.olderFiles[id] = df
		}
	}
	return nil
}

// loadIndexFromDataFiles replays every data file in ascending file-id
// order, applying non-batch records directly and staging batch
// records until their TXN_FINISHED terminator is seen.
func (e *Engine) loadIndexFromDataFiles() error {
	fileIDs := make([]uint32, 0, len(e.olderFiles)+1)
	for id := range e.olderFiles {
		fileIDs = append(fileIDs, id)
	}
	fileIDs = append(fileIDs, e.activeFile.FileID)
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })

	type stagedRecord struct {
		record *data.LogRecord
		pos    *data.RecordPos
	}
	staging := make(map[uint64][]stagedRecord)
	var maxSeqNo uint64

	applyRecord := func(key []byte, record *data.LogRecord, pos *data.RecordPos) {
		switch record.Type {
		case data.RecordNormal:
			e.index.Put(key, pos)
		case data.RecordDeleted:
			e.index.Delete(key)
		}
	}

	var finalOffset int64
	for _, fileID := range fileIDs {
		df := e.dataFileByID(fileID)
		var offset int64
		for {
			record, size, err := df.ReadLogRecord(offset)
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				if fileID == e.activeFile.FileID {
					break
				}
				if err == io.EOF {
					fileSize, sizeErr := df.IOManager.Size()
					if sizeErr == nil && offset == fileSize {
						break
					}
				}
				return ErrInvalidLogRecordCRC
			}
			if err != nil {
				return e.mapReadError(err)
			}

			pos := &data.RecordPos{FileID: fileID, Offset: uint64(offset), Size: uint32(size)}
			userKey, seqNo := parseRecordKey(record.Key)
			if seqNo > maxSeqNo {
				maxSeqNo = seqNo
			}

			switch {
			case seqNo == nonTransactionSeqNo:
				applyRecord(userKey, record, pos)
			case record.Type == data.RecordTxnFinished:
				for _, staged := range staging[seqNo] {
					stagedUserKey, _ := parseRecordKey(staged.record.Key)
					applyRecord(stagedUserKey, staged.record, staged.pos)
				}
				delete(staging, seqNo)
			default:
				staging[seqNo] = append(staging[seqNo], stagedRecord{record: record, pos: pos})
			}

			offset += size
			if fileID == e.activeFile.FileID {
				finalOffset = offset
			}
		}
	}

	atomic.StoreUint64(&e.seqNo, maxSeqNo)
	e.activeFile.WriteOffset = finalOffset
	return nil
}

func (e *Engine) dataFileByID(fileID uint32) *data.DataFile {
	if e.activeFile != nil && fileID == e.activeFile.FileID {
		return e.activeFile
	}
	return e.olderFiles[fileID]
}

// Put writes key/value as a single non-batch record.
func (e *Engine) Put(key, value []byte) error {
	if len(key) == 0 {
		return ErrKeyIsEmpty
	}

	record := &data.LogRecord{
		Key:   encodeRecordKey(nonTransactionSeqNo, key),
		Value: value,
		Type:  data.RecordNormal,
	}

	pos, err := e.appendLogRecord(record)
	if err != nil {
		return err
	}

	e.index.Put(key, pos)
	slog.Debug("engine: put", "key", string(key), "file_id", pos.FileID, "offset", pos.Offset)
	return nil
}

// Get looks up key and returns its current value.
func (e *Engine) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrKeyIsEmpty
	}

	pos := e.index.Get(key)
	if pos == nil {
		return nil, ErrKeyNotFound
	}

	record, err := e.readRecordAt(pos)
	if err != nil {
		return nil, err
	}
	if record.Type == data.RecordDeleted {
		return nil, ErrKeyNotFound
	}
	return record.Value, nil
}

// Delete removes key, appending a tombstone only if key is currently
// present.
func (e *Engine) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrKeyIsEmpty
	}

	if e.index.Get(key) == nil {
		return nil
	}

	record := &data.LogRecord{
		Key:  encodeRecordKey(nonTransactionSeqNo, key),
		Type: data.RecordDeleted,
	}
	if _, err := e.appendLogRecord(record); err != nil {
		return err
	}

	e.index.Delete(key)
	slog.Debug("engine: delete", "key", string(key))
	return nil
}

// ListKeys returns every live key in lexicographic order.
func (e *Engine) ListKeys() [][]byte {
	return e.index.ListKeys()
}

// Fold calls f for every live key/value pair in lexicographic key
// order, stopping early if f returns false.
func (e *Engine) Fold(f func(key, value []byte) bool) error {
	it := e.index.Iterator(index.IteratorOptions{})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		record, err := e.readRecordAt(it.Value())
		if err != nil {
			return err
		}
		if !f(it.Key(), record.Value) {
			break
		}
	}
	return nil
}

// Sync flushes the active data file's contents to stable storage.
func (e *Engine) Sync() error {
	e.activeFileMu.RLock()
	defer e.activeFileMu.RUnlock()
	if e.activeFile == nil {
		return nil
	}
	if err := e.activeFile.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSyncDataFile, err)
	}
	return nil
}

// Close syncs and closes every open data file, releases the
// directory lock, and closes the index.
func (e *Engine) Close() error {
	e.activeFileMu.Lock()
	defer e.activeFileMu.Unlock()

	if e.closed {
		return nil
	}

	if e.activeFile != nil {
		if err := e.activeFile.Sync(); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToSyncDataFile, err)
		}
		if err := e.activeFile.Close(); err != nil {
			return err
		}
	}

	e.olderFilesMu.Lock()
	for _, df := range e.olderFiles {
		if err := df.Close(); err != nil {
			e.olderFilesMu.Unlock()
			return err
		}
	}
	e.olderFilesMu.Unlock()

	if err := e.index.Close(); err != nil {
		return err
	}

	if err := e.fileLock.Unlock(); err != nil {
		return fmt.Errorf("engine: releasing directory lock: %w", err)
	}

	e.closed = true
	slog.Info("engine: closed", "dir_path", e.options.DirPath)
	return nil
}

// appendLogRecord appends record to the active file, rolling over to
// a new active file first if record would overflow data_file_size.
func (e *Engine) appendLogRecord(record *data.LogRecord) (*data.RecordPos, error) {
	e.activeFileMu.Lock()
	defer e.activeFileMu.Unlock()

	encoded, size := data.EncodeLogRecord(record)

	if e.activeFile.WriteOffset+size > e.options.DataFileSize {
		if err := e.activeFile.Sync(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToSyncDataFile, err)
		}

		retiredID := e.activeFile.FileID
		e.olderFilesMu.Lock()
		e.olderFiles[retiredID] = e.activeFile
		e.olderFilesMu.Unlock()

		newFile, err := data.OpenDataFile(e.options.DirPath, retiredID+1)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToOpenDataFile, err)
		}
		e.activeFile = newFile
		slog.Info("engine: rolled over to new active file", "file_id", newFile.FileID)
	}

	writeOffset := e.activeFile.WriteOffset
	if err := e.activeFile.Write(encoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToWriteToDataFile, err)
	}

	if e.options.SyncWrites {
		if err := e.activeFile.Sync(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToSyncDataFile, err)
		}
	}

	return &data.RecordPos{
		FileID: e.activeFile.FileID,
		Offset: uint64(writeOffset),
		Size:   uint32(size),
	}, nil
}

// readRecordAt dereferences pos, choosing the active file or the
// appropriate older file.
func (e *Engine) readRecordAt(pos *data.RecordPos) (*data.LogRecord, error) {
	e.activeFileMu.RLock()
	var df *data.DataFile
	if e.activeFile != nil && pos.FileID == e.activeFile.FileID {
		df = e.activeFile
	}
	e.activeFileMu.RUnlock()

	if df == nil {
		e.olderFilesMu.RLock()
		df = e.olderFiles[pos.FileID]
		e.olderFilesMu.RUnlock()
	}
	if df == nil {
		return nil, ErrDataFileNotFound
	}

	record, _, err := df.ReadLogRecord(int64(pos.Offset))
	if err != nil {
		return nil, e.mapReadError(err)
	}
	return record, nil
}

func (e *Engine) mapReadError(err error) error {
	switch err {
	case data.ErrInvalidCRC:
		return ErrInvalidLogRecordCRC
	case io.EOF, io.ErrUnexpectedEOF:
		return errReadDataFileEOF
	default:
		return fmt.Errorf("%w: %v", ErrFailedToReadFromDataFile, err)
	}
}
