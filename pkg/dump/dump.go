package dump

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"codedump/pkg/ignore"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Run validates cfg, collects the candidate files below the root, and writes
// one block per readable text file to the output, in case-insensitive path
// order. Per-file problems are recorded in the result as skips; only
// configuration errors and output failures are returned as errors.
func Run(cfg Config, fsys billy.Filesystem, logger *zap.Logger) (result *Result, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	startTime := time.Now()

	cfg.Root = filepath.Clean(cfg.Root)
	cfg.Output = filepath.Clean(cfg.Output)
	if err := cfg.Validate(fsys); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return nil, err
	}
	root, err := evalSymlinks(fsys, cfg.Root)
	if err != nil {
		return nil, &ConfigError{Path: cfg.Root, Err: fmt.Errorf("failed to resolve root: %w", err)}
	}
	cfg.Root = root
	if cfg.Output, err = evalSymlinks(fsys, cfg.Output); err != nil {
		return nil, &ConfigError{Path: cfg.Output, Err: fmt.Errorf("failed to resolve output: %w", err)}
	}
	own := NewSet()
	for path := range cfg.OwnFiles {
		if resolved, err := evalSymlinks(fsys, path); err == nil {
			path = resolved
		}
		own[path] = struct{}{}
	}
	cfg.OwnFiles = own
	logger.Info("Starting dump", zap.String("root", cfg.Root), zap.String("output", cfg.Output))

	var matcher *ignore.Matcher
	if cfg.Ignore.Enabled() {
		matcher, err = ignore.Load(fsys, cfg.Root, cfg.Ignore, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load ignore patterns: %w", err)
		}
		logger.Debug("Loaded ignore patterns", zap.Int("totalPatterns", matcher.Len()))
	}

	removeExisting(fsys, cfg.Output, logger)

	d := &dumper{cfg: &cfg, fs: fsys, logger: logger, result: &Result{Output: cfg.Output}}
	candidates := d.collect(matcher)

	if err := ensureDirectory(fsys, filepath.Dir(cfg.Output), logger); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := fsys.OpenFile(cfg.Output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		logger.Error("Failed to create output file", zap.String("file", cfg.Output), zap.Error(err))
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			logger.Error("Failed to close output file", zap.String("file", cfg.Output), zap.Error(closeErr))
			err = multierr.Append(err, fmt.Errorf("failed to close output file: %w", closeErr))
		}
	}()

	bw := NewBlockWriter(out, cfg.LineNumbers)
	if cfg.Tree {
		err = d.writeWithTree(bw, candidates)
	} else {
		err = d.writeStreaming(bw, candidates)
	}
	if err != nil {
		logger.Error("Failed to write output file", zap.String("file", cfg.Output), zap.Error(err))
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		logger.Error("Failed to flush output file", zap.String("file", cfg.Output), zap.Error(err))
		return nil, fmt.Errorf("failed to flush output: %w", err)
	}

	logger.Info("Dump completed",
		zap.String("outputFile", cfg.Output),
		zap.Int("totalFiles", d.result.Written()),
		zap.Int("skippedFiles", len(d.result.Skipped)),
		zap.Duration("elapsed", time.Since(startTime)))
	return d.result, nil
}

type dumper struct {
	cfg    *Config
	fs     billy.Filesystem
	logger *zap.Logger
	result *Result
}

// record is a file ready to be written.
type record struct {
	path string
	size int64
	text string
}

// collect gathers the candidates, resolves symlinks to their targets, drops
// the output file and repeated targets, and sorts the rest.
func (d *dumper) collect(matcher *ignore.Matcher) []Candidate {
	walker := &Walker{
		FS:      d.fs,
		Config:  d.cfg,
		Matcher: matcher,
		Logger:  d.logger,
		OnIgnored: func(path string) {
			d.result.skip(path, SkipIgnored, "")
		},
	}

	var candidates []Candidate
	seen := make(map[string]string)
	for c := range walker.Candidates() {
		d.result.Candidates++
		link := c.Path
		if c.Symlink {
			target, err := evalSymlinks(d.fs, c.Path)
			if err != nil {
				d.skip(link, SkipUnreadable, err.Error())
				continue
			}
			d.logger.Debug("Resolved symlink", zap.String("link", link), zap.String("target", target))
			c.Path = target
		}
		if c.Path == d.cfg.Output || d.cfg.OwnFiles.Has(c.Path) {
			d.skip(link, SkipSelf, "")
			continue
		}
		if c.Symlink {
			size, err := statTarget(d.fs, c.Path)
			if err != nil {
				d.skip(link, SkipUnreadable, err.Error())
				continue
			}
			c.Size = size
			c.Symlink = false
		}
		if first, ok := seen[c.Path]; ok {
			d.skip(link, SkipDuplicate, first)
			continue
		}
		seen[c.Path] = link
		candidates = append(candidates, c)
	}

	SortCandidates(candidates)
	d.logger.Debug("Collected candidate files", zap.Int("candidates", len(candidates)))
	return candidates
}

func (d *dumper) writeStreaming(bw *BlockWriter, candidates []Candidate) error {
	for _, c := range candidates {
		rec, ok := d.prepare(c)
		if !ok {
			continue
		}
		if err := bw.WriteFile(rec.path, rec.size, rec.text); err != nil {
			return err
		}
		d.result.Files = append(d.result.Files, rec.path)
	}
	return nil
}

// writeWithTree reads every file first so the tree lists exactly the files
// that are written.
func (d *dumper) writeWithTree(bw *BlockWriter, candidates []Candidate) error {
	var records []record
	var paths []string
	for _, c := range candidates {
		if rec, ok := d.prepare(c); ok {
			records = append(records, rec)
			paths = append(paths, rec.path)
		}
	}

	if err := bw.WriteTree(d.cfg.Root, RenderTree(d.cfg.Root, paths)); err != nil {
		return err
	}
	for _, rec := range records {
		if err := bw.WriteFile(rec.path, rec.size, rec.text); err != nil {
			return err
		}
		d.result.Files = append(d.result.Files, rec.path)
	}
	return nil
}

// prepare classifies and reads one candidate. It returns false, after
// recording the reason, when the file must be skipped.
func (d *dumper) prepare(c Candidate) (record, bool) {
	if d.cfg.isDenied(c.Name) {
		d.skip(c.Path, SkipDenied, "")
		return record{}, false
	}

	if d.cfg.MaxFileSize > 0 && c.Size > d.cfg.MaxFileSize {
		d.skip(c.Path, SkipTooLarge, fmt.Sprintf("%d bytes", c.Size))
		return record{}, false
	}

	sample, err := readSample(d.fs, c.Path)
	if err != nil {
		d.skip(c.Path, SkipBinary, err.Error())
		return record{}, false
	}
	if isBinarySample(sample) {
		d.skip(c.Path, SkipBinary, detectMIME(sample))
		return record{}, false
	}

	raw, err := util.ReadFile(d.fs, c.Path)
	if err != nil {
		d.skip(c.Path, SkipUnreadable, err.Error())
		return record{}, false
	}
	info, err := d.fs.Stat(c.Path)
	if err != nil {
		d.skip(c.Path, SkipUnreadable, err.Error())
		return record{}, false
	}

	return record{path: c.Path, size: info.Size(), text: decodeText(raw)}, true
}

func (d *dumper) skip(path string, reason SkipReason, detail string) {
	d.logger.Debug("Skipping file",
		zap.String("filePath", path),
		zap.String("reason", string(reason)),
		zap.String("detail", detail))
	d.result.skip(path, reason, detail)
}

// SortCandidates orders candidates by case-insensitive path, breaking ties
// by the raw path.
func SortCandidates(candidates []Candidate) {
	slices.SortFunc(candidates, func(a, b Candidate) int {
		if c := strings.Compare(strings.ToLower(a.Path), strings.ToLower(b.Path)); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
}

// removeExisting deletes a regular file at the output path. Failure is only
// logged; opening the output later reports any real problem.
func removeExisting(fsys billy.Filesystem, path string, logger *zap.Logger) {
	info, err := fsys.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	if err := fsys.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("Failed to remove existing output file", zap.String("file", path), zap.Error(err))
		return
	}
	logger.Debug("Removed existing output file", zap.String("file", path))
}

// ensureDirectory ensures a directory exists, creating it if necessary.
func ensureDirectory(fsys billy.Filesystem, path string, logger *zap.Logger) error {
	if err := fsys.MkdirAll(path, 0o755); err != nil {
		logger.Error("Failed to create directory", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Debug("Ensured directory exists", zap.String("path", path))
	return nil
}
