package fio

import (
	"os"
	"sync"
)

// DataFilePerm is the permission bits a newly created data file gets.
const DataFilePerm = 0644

// FileIO is the standard os.File-backed IOManager. Writes go straight to
// the descriptor; there is no internal write buffering, so a crash
// never loses bytes the caller believed were durable.
type FileIO struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileIO opens (creating if necessary) the file at fileName for
// reading and appending.
func NewFileIO(fileName string) (*FileIO, error) {
	file, err := os.OpenFile(
		fileName,
		os.O_CREATE|os.O_RDWR|os.O_APPEND,
		DataFilePerm,
	)
	if err != nil {
		return nil, err
	}
	return &FileIO{file: file}, nil
}

func (fio *FileIO) Read(buf []byte, offset int64) (int, error) {
	return fio.file.ReadAt(buf, offset)
}

func (fio *FileIO) Write(buf []byte) (int, error) {
	fio.mu.Lock()
	defer fio.mu.Unlock()
	return fio.file.Write(buf)
}

func (fio *FileIO) Sync() error {
	return fio.file.Sync()
}

func (fio *FileIO) Close() error {
	return fio.file.Close()
}

func (fio *FileIO) Size() (int64, error) {
	stat, err := fio.file.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}
