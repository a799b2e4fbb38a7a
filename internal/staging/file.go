package staging

import (
	"bytes"
	"errors"
	"io"
)

// FileHandle is an opaque reference to one user-selected file. Implementations
// must allow Open to be called more than once: previews are derived at staging
// time and the raw bytes are read again during the upload phase.
type FileHandle interface {
	Name() string
	ContentType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// MemoryFile is a FileHandle backed by an in-memory byte slice. The API layer
// builds these from multipart uploads; tests build them directly.
type MemoryFile struct {
	name        string
	contentType string
	data        []byte
}

func NewMemoryFile(name, contentType string, data []byte) *MemoryFile {
	return &MemoryFile{name: name, contentType: contentType, data: data}
}

func (f *MemoryFile) Name() string        { return f.name }
func (f *MemoryFile) ContentType() string { return f.contentType }
func (f *MemoryFile) Size() int64         { return int64(len(f.data)) }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	if f == nil || f.data == nil {
		return nil, errors.New("file content unavailable")
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// ReadAll drains a handle into memory.
func ReadAll(file FileHandle) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}
