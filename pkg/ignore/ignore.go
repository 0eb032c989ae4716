// Package ignore loads gitignore-style exclusion patterns for a project root.
package ignore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"
)

// Options selects the pattern sources loaded for a root.
type Options struct {
	File      string // Ignore file name relative to the root; empty disables it.
	Gitignore bool   // Honour .gitignore files and .git/info/exclude below the root.
}

// Enabled reports whether any pattern source is selected.
func (o Options) Enabled() bool {
	return o.File != "" || o.Gitignore
}

// Matcher matches root-relative paths against the loaded patterns.
// A nil Matcher matches nothing.
type Matcher struct {
	matcher  gitignore.Matcher
	patterns int
}

// Load reads the pattern sources selected by opts from fsys. Patterns from the
// ignore file take precedence over .gitignore patterns.
func Load(fsys billy.Filesystem, root string, opts Options, logger *zap.Logger) (*Matcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var patterns []gitignore.Pattern

	if opts.Gitignore {
		ps, err := gitignore.ReadPatterns(chroot.New(fsys, root), nil)
		if err != nil {
			logger.Error("Failed to read .gitignore patterns", zap.String("root", root), zap.Error(err))
			return nil, fmt.Errorf("failed to read .gitignore patterns: %w", err)
		}
		logger.Debug("Loaded .gitignore patterns", zap.String("root", root), zap.Int("patternCount", len(ps)))
		patterns = append(patterns, ps...)
	}

	if opts.File != "" {
		ps, err := readIgnoreFile(fsys, filepath.Join(root, opts.File), logger)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, ps...)
	}

	return &Matcher{
		matcher:  gitignore.NewMatcher(patterns),
		patterns: len(patterns),
	}, nil
}

// readIgnoreFile parses one ignore file. A missing file yields no patterns.
func readIgnoreFile(fsys billy.Filesystem, path string, logger *zap.Logger) ([]gitignore.Pattern, error) {
	content, err := util.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("Ignore file does not exist and will be skipped", zap.String("filePath", path))
			return nil, nil
		}
		logger.Error("Failed to read ignore file", zap.String("filePath", path), zap.Error(err))
		return nil, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}

	lines := ParseLines(string(content))
	patterns := make([]gitignore.Pattern, 0, len(lines))
	for _, line := range lines {
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	logger.Debug("Compiled ignore patterns from file", zap.String("filePath", path), zap.Int("patternCount", len(patterns)))
	return patterns, nil
}

// ParseLines returns the pattern lines of an ignore file, dropping blank lines
// and comments.
func ParseLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// MatchesPath reports whether the root-relative path is excluded.
func (m *Matcher) MatchesPath(relPath string, isDir bool) bool {
	if m == nil || m.patterns == 0 {
		return false
	}
	return m.matcher.Match(strings.Split(filepath.ToSlash(relPath), "/"), isDir)
}

// Len returns the number of loaded patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return m.patterns
}
