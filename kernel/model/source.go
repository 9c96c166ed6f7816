package model

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Source is a locally chosen file. Opened once per transfer.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type localFile struct {
	path string
}

// LocalFile references a file on disk by path.
func LocalFile(path string) Source {
	return &localFile{path: path}
}

func (f *localFile) Name() string {
	return filepath.Base(f.path)
}

func (f *localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

type memoryFile struct {
	name string
	data []byte
}

// MemoryFile wraps in-memory content, e.g. a file received over MCP.
func MemoryFile(name string, data []byte) Source {
	return &memoryFile{name: name, data: data}
}

func (f *memoryFile) Name() string {
	return f.name
}

func (f *memoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
