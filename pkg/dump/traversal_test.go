package dump

import (
	"sort"
	"testing"

	"codedump/pkg/ignore"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func candidatePaths(w *Walker) []string {
	var paths []string
	for c := range w.Candidates() {
		paths = append(paths, c.Path)
	}
	sort.Strings(paths)
	return paths
}

func TestCandidatesFiltersAndPrunes(t *testing.T) {
	fsys := newProject(t, map[string]string{
		"src/app.jsx":                 "a",
		"src/styles/main.SCSS":        "b",
		"src/node_modules/lib/x.js":   "c",
		"node_modules/react/index.js": "d",
		"dist/bundle.js":              "e",
		".DS_Store_meta/y.js":         "f",
		".env":                        "g",
		".env.local":                  "h",
		"logo.png":                    "i",
		"Makefile":                    "j",
		"package-lock.json":           "k",
	})
	cfg := testConfig()

	w := &Walker{FS: fsys, Config: &cfg, Logger: zap.NewNop()}

	assert.Equal(t, []string{
		abs(".env"),
		abs(".env.local"),
		abs("package-lock.json"),
		abs("src/app.jsx"),
		abs("src/styles/main.SCSS"),
	}, candidatePaths(w))
}

func TestCandidatesAttributes(t *testing.T) {
	fsys := newProject(t, map[string]string{"src/Index.TS": "12345"})
	cfg := testConfig()

	var got []Candidate
	for c := range (&Walker{FS: fsys, Config: &cfg}).Candidates() {
		got = append(got, c)
	}

	require.Len(t, got, 1)
	assert.Equal(t, Candidate{Path: abs("src/Index.TS"), Name: "Index.TS", Ext: ".ts", Size: 5}, got[0])
}

func TestCandidatesRootNotPruned(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "/work/build/main.js", []byte("x"), 0o644))
	require.NoError(t, util.WriteFile(fsys, "/work/build/build/skip.js", []byte("x"), 0o644))

	cfg := DefaultConfig()
	cfg.Root = "/work/build"

	w := &Walker{FS: fsys, Config: &cfg}
	assert.Equal(t, []string{"/work/build/main.js"}, candidatePaths(w))
}

func TestCandidatesRestartable(t *testing.T) {
	fsys := newProject(t, map[string]string{"a.js": "1", "b/c.ts": "2"})
	cfg := testConfig()
	w := &Walker{FS: fsys, Config: &cfg}

	first := candidatePaths(w)
	second := candidatePaths(w)

	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestCandidatesEarlyStop(t *testing.T) {
	fsys := newProject(t, map[string]string{"a.js": "1", "b.js": "2", "c.js": "3"})
	cfg := testConfig()
	w := &Walker{FS: fsys, Config: &cfg}

	n := 0
	for range w.Candidates() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestCandidatesWithMatcher(t *testing.T) {
	fsys := newProject(t, map[string]string{
		".dumpignore":        "generated/\n*.test.js\n",
		"src/app.js":         "1",
		"src/app.test.js":    "2",
		"generated/types.ts": "3",
	})
	cfg := testConfig()
	matcher, err := ignore.Load(fsys, testRoot, ignore.Options{File: ".dumpignore"}, zap.NewNop())
	require.NoError(t, err)

	var ignored []string
	w := &Walker{FS: fsys, Config: &cfg, Matcher: matcher, OnIgnored: func(p string) { ignored = append(ignored, p) }}

	assert.Equal(t, []string{abs("src/app.js")}, candidatePaths(w))
	assert.Equal(t, []string{abs("src/app.test.js")}, ignored)
}
