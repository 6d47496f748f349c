package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// FileSystem is everything the inliner needs from storage. Paths are either
// local file paths or afs URLs (file://, mem://, ...).
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	IsDir(ctx context.Context, path string) bool
	// List returns the names of the entries of dir.
	List(ctx context.Context, dir string) ([]string, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	Join(elem ...string) string
	Dir(path string) string
	Abs(path string) (string, error)
}

type afsFileSystem struct {
	fs afs.Service
}

func NewFileSystem() FileSystem {
	return &afsFileSystem{fs: afs.New()}
}

func isURL(path string) bool {
	return strings.Contains(path, "://")
}

func (f *afsFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return f.fs.DownloadWithURL(ctx, path)
}

func (f *afsFileSystem) Exists(ctx context.Context, path string) bool {
	ok, err := f.fs.Exists(ctx, path)
	return err == nil && ok
}

func (f *afsFileSystem) IsDir(ctx context.Context, path string) bool {
	object, err := f.fs.Object(ctx, path)
	return err == nil && object.IsDir()
}

func (f *afsFileSystem) List(ctx context.Context, dir string) ([]string, error) {
	objects, err := f.fs.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(objects))
	self := strings.TrimSuffix(url.Path(dir), "/")
	for _, object := range objects {
		// afs lists the directory itself first
		if object.IsDir() && strings.TrimSuffix(url.Path(object.URL()), "/") == self {
			continue
		}
		names = append(names, object.Name())
	}
	return names, nil
}

func (f *afsFileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	return f.fs.Upload(ctx, path, 0644, bytes.NewReader(data))
}

func (f *afsFileSystem) Join(elem ...string) string {
	if len(elem) > 0 && isURL(elem[0]) {
		return url.Join(elem[0], elem[1:]...)
	}
	return filepath.Join(elem...)
}

func (f *afsFileSystem) Dir(path string) string {
	if isURL(path) {
		parent, _ := url.Split(path, "")
		return parent
	}
	return filepath.Dir(path)
}

func (f *afsFileSystem) Abs(path string) (string, error) {
	if isURL(path) {
		return path, nil
	}
	return filepath.Abs(path)
}
