package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

// memFileSystem keeps files in memory, keyed by clean slash separated paths.
type memFileSystem struct {
	files  map[string]string
	reads  map[string]int
	writes map[string]int
}

func newMemFileSystem(files map[string]string) *memFileSystem {
	fs := &memFileSystem{files: map[string]string{}, reads: map[string]int{}, writes: map[string]int{}}
	for name, content := range files {
		fs.files[path.Clean(name)] = content
	}
	return fs
}

func (m *memFileSystem) ReadFile(ctx context.Context, name string) ([]byte, error) {
	name = path.Clean(name)
	content, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, os.ErrNotExist)
	}
	m.reads[name]++
	return []byte(content), nil
}

func (m *memFileSystem) Exists(ctx context.Context, name string) bool {
	name = path.Clean(name)
	if _, ok := m.files[name]; ok {
		return true
	}
	return m.IsDir(ctx, name)
}

func (m *memFileSystem) IsDir(ctx context.Context, name string) bool {
	prefix := strings.TrimSuffix(path.Clean(name), "/") + "/"
	for file := range m.files {
		if strings.HasPrefix(file, prefix) {
			return true
		}
	}
	return false
}

func (m *memFileSystem) List(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.TrimSuffix(path.Clean(dir), "/") + "/"
	seen := map[string]bool{}
	names := []string{}
	for file := range m.files {
		if !strings.HasPrefix(file, prefix) {
			continue
		}
		name := strings.SplitN(strings.TrimPrefix(file, prefix), "/", 2)[0]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memFileSystem) WriteFile(ctx context.Context, name string, data []byte) error {
	name = path.Clean(name)
	m.files[name] = string(data)
	m.writes[name]++
	return nil
}

func (m *memFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

func (m *memFileSystem) Dir(name string) string {
	return path.Dir(name)
}

func (m *memFileSystem) Abs(name string) (string, error) {
	if path.IsAbs(name) {
		return path.Clean(name), nil
	}
	return path.Join("/", name), nil
}

func TestMemFileSystem(t *testing.T) {
	ctx := context.Background()
	fs := newMemFileSystem(map[string]string{
		"/p/main.py":          "import a\n",
		"/p/pkg/__init__.py":  "",
		"/p/pkg/sub/mod.py":   "x = 1\n",
		"/p/pkg/fast.cp.so":   "",
		"/other/unrelated.py": "",
	})

	assert.Assert(t, fs.Exists(ctx, "/p/main.py"))
	assert.Assert(t, fs.Exists(ctx, "/p/pkg"))
	assert.Assert(t, fs.IsDir(ctx, "/p/pkg"))
	assert.Assert(t, !fs.IsDir(ctx, "/p/main.py"))
	assert.Assert(t, !fs.Exists(ctx, "/p/missing.py"))

	names, err := fs.List(ctx, "/p/pkg")
	assert.NilError(t, err)
	assert.DeepEqual(t, names, []string{"__init__.py", "fast.cp.so", "sub"})

	_, err = fs.ReadFile(ctx, "/p/missing.py")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAfsFileSystem(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFileSystem()

	target := fs.Join(dir, "out", "bundle.py")
	assert.NilError(t, fs.WriteFile(ctx, target, []byte("x = 1\n")))

	assert.Assert(t, fs.Exists(ctx, target))
	assert.Assert(t, fs.IsDir(ctx, fs.Join(dir, "out")))
	assert.Assert(t, !fs.IsDir(ctx, target))
	assert.Assert(t, !fs.Exists(ctx, fs.Join(dir, "missing.py")))

	content, err := fs.ReadFile(ctx, target)
	assert.NilError(t, err)
	assert.Equal(t, string(content), "x = 1\n")

	assert.NilError(t, os.WriteFile(filepath.Join(dir, "out", "second.py"), []byte(""), 0644))
	names, err := fs.List(ctx, fs.Join(dir, "out"))
	assert.NilError(t, err)
	sort.Strings(names)
	assert.DeepEqual(t, names, []string{"bundle.py", "second.py"})

	assert.Equal(t, fs.Dir(target), filepath.Join(dir, "out"))
	abs, err := fs.Abs("relative.py")
	assert.NilError(t, err)
	assert.Assert(t, filepath.IsAbs(abs))
}
