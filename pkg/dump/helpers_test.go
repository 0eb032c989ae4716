package dump

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

const testRoot = "/project"

// newProject creates an in-memory project with the given files, keyed by
// path relative to testRoot.
func newProject(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	require.NoError(t, fsys.MkdirAll(testRoot, 0o755))
	for name, content := range files {
		require.NoError(t, util.WriteFile(fsys, filepath.Join(testRoot, name), []byte(content), 0o644))
	}
	return fsys
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Root = testRoot
	cfg.Output = filepath.Join(testRoot, "project-dump.txt")
	return cfg
}

func readOutput(t *testing.T, fsys billy.Filesystem, cfg Config) string {
	t.Helper()
	b, err := util.ReadFile(fsys, cfg.Output)
	require.NoError(t, err)
	return string(b)
}

func abs(rel string) string {
	return filepath.Join(testRoot, rel)
}

// failingFS fails Open for listed paths once the path has been opened
// `after` times, and fails every Remove when noRemove is set.
type failingFS struct {
	billy.Filesystem
	failOpen map[string]int
	opened   map[string]int
	noRemove bool
}

func newFailingFS(fsys billy.Filesystem) *failingFS {
	return &failingFS{Filesystem: fsys, failOpen: map[string]int{}, opened: map[string]int{}}
}

func (f *failingFS) Open(name string) (billy.File, error) {
	if after, ok := f.failOpen[name]; ok {
		f.opened[name]++
		if f.opened[name] > after {
			return nil, errors.New("permission denied")
		}
	}
	return f.Filesystem.Open(name)
}

func (f *failingFS) Remove(name string) error {
	if f.noRemove {
		return errors.New("operation not permitted")
	}
	return f.Filesystem.Remove(name)
}
