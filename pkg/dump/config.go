// File: pkg/dump/config.go
package dump

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codedump/pkg/ignore"

	"github.com/go-git/go-billy/v5"
)

// Set is a string set used for extension and name membership tests.
type Set map[string]struct{}

// NewSet builds a Set from the given items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Has reports whether item is in the set.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the set members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Default sets applied when the corresponding option is not given.
var (
	DefaultIncludeExts = []string{
		// Frontend code
		".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs",
		// Styles
		".css", ".scss", ".sass", ".less",
		// Markup
		".html",
		// Config / meta
		".json", ".yml", ".yaml", ".env", ".env.example",
		".md", ".toml",
		// Scripts
		".sh", ".ps1",
	}

	DefaultExcludeDirs = []string{
		"node_modules", "dist", "build", ".git", ".idea", ".vscode",
		".next", ".turbo", ".cache", ".parcel-cache", ".husky",
		".pnpm-store", ".yarn", ".changeset", "coverage", "out",
	}
)

// DeniedFileNames are always skipped, whatever the include set says.
var DeniedFileNames = NewSet(
	"package-lock.json",
	"pnpm-lock.yaml",
	"yarn.lock",
	".DS_Store",
)

// EnvFileNames qualify as candidates regardless of the include set.
var EnvFileNames = NewSet(
	".env",
	".env.local",
	".env.development",
	".env.production",
	".env.example",
)

// MetadataDirPrefix marks macOS metadata directories, which are always pruned.
const MetadataDirPrefix = ".DS"

// Config holds the options of one dump run. It is not modified after Run starts.
type Config struct {
	Root         string         // Absolute project root to scan.
	Output       string         // Absolute path of the output file; never read as input.
	IncludeExts  Set            // Lowercase, dot-prefixed extensions.
	ExcludeDirs  Set            // Directory names pruned at any depth.
	ExcludeFiles Set            // File names skipped in addition to DeniedFileNames.
	LineNumbers  bool           // Prefix each content line with its 1-based number.
	Ignore       ignore.Options // Optional gitignore-style pattern sources.
	MaxFileSize  int64          // Candidates larger than this many bytes are skipped; 0 disables.
	Tree         bool           // Write a tree block of the written files before the file blocks.
	OwnFiles     Set            // Other absolute paths the caller generates; skipped like the output.
}

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() Config {
	return Config{
		Root:         ".",
		Output:       "project-dump.txt",
		IncludeExts:  NormalizeExtensions(DefaultIncludeExts),
		ExcludeDirs:  ParseNames(DefaultExcludeDirs),
		ExcludeFiles: NewSet(),
	}
}

// SplitList splits a comma-separated option value.
func SplitList(value string) []string {
	return strings.Split(value, ",")
}

// NormalizeExtensions trims, dot-prefixes and lowercases each extension,
// dropping empty entries.
func NormalizeExtensions(exts []string) Set {
	s := NewSet()
	for _, raw := range exts {
		ext := strings.TrimSpace(raw)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s[strings.ToLower(ext)] = struct{}{}
	}
	return s
}

// ParseNames trims each name and drops empty entries. Case is preserved.
func ParseNames(names []string) Set {
	s := NewSet()
	for _, raw := range names {
		if name := strings.TrimSpace(raw); name != "" {
			s[name] = struct{}{}
		}
	}
	return s
}

// Validate checks that the root exists and is a directory.
func (c *Config) Validate(fsys billy.Filesystem) error {
	if c.Output == "" {
		return &ConfigError{Path: c.Output, Err: ErrEmptyOutput}
	}

	info, err := fsys.Stat(c.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ConfigError{Path: c.Root, Err: ErrRootNotFound}
		}
		return &ConfigError{Path: c.Root, Err: fmt.Errorf("failed to stat root: %w", err)}
	}
	if !info.IsDir() {
		return &ConfigError{Path: c.Root, Err: ErrRootNotDir}
	}
	return nil
}

// qualifies reports whether a file name is a candidate by extension or as an
// environment file.
func (c *Config) qualifies(name string) bool {
	return c.IncludeExts.Has(extension(name)) || EnvFileNames.Has(name)
}

// prunes reports whether a directory name is excluded from descent.
func (c *Config) prunes(name string) bool {
	return c.ExcludeDirs.Has(name) || strings.HasPrefix(name, MetadataDirPrefix)
}

// isDenied reports whether a file name is on a deny-list.
func (c *Config) isDenied(name string) bool {
	return DeniedFileNames.Has(name) || c.ExcludeFiles.Has(name)
}

// extension returns the lowercase final suffix of name. Names whose only dot
// is leading or trailing have no extension, so ".env" and "notes." yield "".
func extension(name string) string {
	name = filepath.Base(name)
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i:])
}
