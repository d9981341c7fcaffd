package domain

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// FileHandle is a selected file. The content is opened anew for every read,
// so a retried upload streams the same bytes again.
type FileHandle interface {
	Name() string
	Size() int64
	MimeType() string
	Open() (io.ReadCloser, error)
}

// LocalFile is a file on disk.
type LocalFile struct {
	path     string
	size     int64
	mimeType string
}

// NewLocalFile stats path and guesses the MIME type from its extension.
func NewLocalFile(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("can't stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &LocalFile{
		path:     path,
		size:     info.Size(),
		mimeType: mimeByExtension(path),
	}, nil
}

func (f *LocalFile) Name() string {
	return filepath.Base(f.path)
}

func (f *LocalFile) Size() int64 {
	return f.size
}

func (f *LocalFile) MimeType() string {
	return f.mimeType
}

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// MemoryFile keeps its content in memory.
type MemoryFile struct {
	name     string
	mimeType string
	data     []byte
}

func NewMemoryFile(name, mimeType string, data []byte) *MemoryFile {
	return &MemoryFile{
		name:     name,
		mimeType: mimeType,
		data:     data,
	}
}

func (f *MemoryFile) Name() string {
	return f.name
}

func (f *MemoryFile) Size() int64 {
	return int64(len(f.data))
}

func (f *MemoryFile) MimeType() string {
	return f.mimeType
}

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// Browsers report these types for office files; mime.TypeByExtension
// depends on the host tables, so the common ones are pinned.
var knownTypes = map[string]string{
	".csv":  "text/csv",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func mimeByExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := knownTypes[ext]; ok {
		return t
	}

	t := mime.TypeByExtension(ext)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}

	return t
}
