package transfer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a byte source the uploader can reopen for every attempt.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type pathFile struct {
	path string
	name string
	size int64
}

// FromPath stats path once; Open reopens it on each call.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &pathFile{path: path, name: filepath.Base(path), size: info.Size()}, nil
}

func (f *pathFile) Name() string { return f.name }
func (f *pathFile) Size() int64  { return f.size }

func (f *pathFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }

type bytesFile struct {
	name string
	data []byte
}

func FromBytes(name string, data []byte) File {
	return &bytesFile{name: name, data: data}
}

func (f *bytesFile) Name() string { return f.name }
func (f *bytesFile) Size() int64  { return int64(len(f.data)) }

func (f *bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
