package engine

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/jassi-singh/caskdb/internal/config"
	"github.com/jassi-singh/caskdb/internal/data"
)

// WriteBatchOptions controls a WriteBatch's commit behavior.
type WriteBatchOptions struct {
	// MaxBatchNum bounds how many staged entries a single commit may
	// contain.
	MaxBatchNum uint
	// SyncWrites, if true, syncs the active file once at the end of
	// a successful commit.
	SyncWrites bool
}

// DefaultWriteBatchOptions mirrors the engine's own batch configuration.
func DefaultWriteBatchOptions(options *config.Config) WriteBatchOptions {
	return WriteBatchOptions{
		MaxBatchNum: options.MaxBatchNum,
		SyncWrites:  options.BatchSyncWrites,
	}
}

// WriteBatch stages puts and deletes under one mutex and commits them
// atomically against an Engine: either every staged record becomes
// visible, or (after a crash before the terminator record) none does.
type WriteBatch struct {
	options WriteBatchOptions
	mu      sync.Mutex
	engine  *Engine

	pendingWrites map[string]*data.LogRecord
}

// NewWriteBatch constructs a WriteBatch bound to e. The batch must not
// outlive the Engine it was created from.
func (e *Engine) NewWriteBatch(options WriteBatchOptions) *WriteBatch {
	return &WriteBatch{
		options:       options,
		engine:        e,
		pendingWrites: make(map[string]*data.LogRecord),
	}
}

// Put stages a NORMAL write for key, overwriting any prior staged
// entry for the same key.
func (wb *WriteBatch) Put(key, value []byte) error {
	if len(key) == 0 {
		return ErrKeyIsEmpty
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()

	wb.pendingWrites[string(key)] = &data.LogRecord{Key: key, Value: value, Type: data.RecordNormal}
	return nil
}

// Delete stages a tombstone for key. If key exists in neither the
// engine's index nor the staging map, Delete is a no-op. If key is
// only staged (never committed), the staged entry is dropped instead
// of staging a tombstone for a key that will never exist on disk.
func (wb *WriteBatch) Delete(key []byte) error {
	if len(key) == 0 {
		return ErrKeyIsEmpty
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()

	if wb.engine.index.Get(key) == nil {
		if _, staged := wb.pendingWrites[string(key)]; staged {
			delete(wb.pendingWrites, string(key))
		}
		return nil
	}

	wb.pendingWrites[string(key)] = &data.LogRecord{Key: key, Type: data.RecordDeleted}
	return nil
}

// Commit appends every staged record under a single sequence number,
// followed by a TXN_FINISHED terminator, then updates the engine's
// index only once every append has succeeded.
func (wb *WriteBatch) Commit() error {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	if len(wb.pendingWrites) == 0 {
		return nil
	}
	if uint(len(wb.pendingWrites)) > wb.options.MaxBatchNum {
		return ErrExceedMaxBatchNum
	}

	wb.engine.batchCommitMu.Lock()
	defer wb.engine.batchCommitMu.Unlock()

	seqNo := atomic.AddUint64(&wb.engine.seqNo, 1)

	positions := make(map[string]*data.RecordPos, len(wb.pendingWrites))
	for keyStr, staged := range wb.pendingWrites {
		pos, err := wb.engine.appendLogRecord(&data.LogRecord{
			Key:   encodeRecordKey(seqNo, staged.Key),
			Value: staged.Value,
			Type:  staged.Type,
		})
		if err != nil {
			return err
		}
		positions[keyStr] = pos
	}

	finished := &data.LogRecord{
		Key:  encodeRecordKey(seqNo, txnFinishedKey),
		Type: data.RecordTxnFinished,
	}
	if _, err := wb.engine.appendLogRecord(finished); err != nil {
		return err
	}

	if wb.options.SyncWrites {
		if err := wb.engine.Sync(); err != nil {
			return err
		}
	}

	for keyStr, staged := range wb.pendingWrites {
		pos := positions[keyStr]
		switch staged.Type {
		case data.RecordNormal:
			wb.engine.index.Put(staged.Key, pos)
		case data.RecordDeleted:
			wb.engine.index.Delete(staged.Key)
		}
	}

	wb.pendingWrites = make(map[string]*data.LogRecord)
	return nil
}

// encodeRecordKey frames a user key with the sequence number it was
// written under: varint(seqNo) || userKey. seqNo 0 marks a non-batch
// write.
func encodeRecordKey(seqNo uint64, userKey []byte) []byte {
	seqBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(seqBuf, seqNo)

	framed := make([]byte, n+len(userKey))
	copy(framed[:n], seqBuf[:n])
	copy(framed[n:], userKey)
	return framed
}

// parseRecordKey splits a framed on-disk key back into its user key
// and sequence number.
func parseRecordKey(framedKey []byte) ([]byte, uint64) {
	seqNo, n := binary.Uvarint(framedKey)
	return framedKey[n:], seqNo
}
