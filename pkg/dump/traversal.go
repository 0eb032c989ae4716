// File: pkg/dump/traversal.go
package dump

import (
	"errors"
	"iter"
	"os"
	"path/filepath"

	"codedump/pkg/ignore"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

var errStopWalk = errors.New("walk stopped")

// Walker discovers candidate files below a root.
type Walker struct {
	FS      billy.Filesystem
	Config  *Config
	Matcher *ignore.Matcher // Optional.
	Logger  *zap.Logger

	// OnIgnored, when set, is called for every file excluded by Matcher.
	OnIgnored func(path string)
}

// Candidates returns the candidate files below the configured root. Excluded
// directories are pruned before descent. The sequence can be iterated more
// than once; each iteration walks the filesystem again. Candidates come in
// no particular order.
func (w *Walker) Candidates() iter.Seq[Candidate] {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	root := filepath.Clean(w.Config.Root)

	return func(yield func(Candidate) bool) {
		logger.Debug("Starting file traversal", zap.String("root", root))

		err := util.Walk(w.FS, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				logger.Debug("Error accessing path during traversal", zap.String("path", path), zap.Error(err))
				return nil
			}

			relPath, relErr := filepath.Rel(root, path)
			if relErr != nil {
				logger.Warn("Unable to determine relative path", zap.String("path", path), zap.Error(relErr))
				return nil
			}
			name := info.Name()

			if info.IsDir() {
				if path == root {
					return nil
				}
				if w.Config.prunes(name) {
					logger.Debug("Skipping excluded directory", zap.String("directory", path))
					return filepath.SkipDir
				}
				if w.Matcher.MatchesPath(relPath, true) {
					logger.Debug("Skipping ignored directory", zap.String("directory", path))
					return filepath.SkipDir
				}
				return nil
			}

			if !w.Config.qualifies(name) {
				return nil
			}
			if mode := info.Mode(); !mode.IsRegular() && mode&os.ModeSymlink == 0 {
				logger.Debug("Skipping non-regular file", zap.String("filePath", path), zap.Stringer("mode", mode))
				return nil
			}
			if w.Matcher.MatchesPath(relPath, false) {
				logger.Debug("Skipping ignored file", zap.String("filePath", path))
				if w.OnIgnored != nil {
					w.OnIgnored(path)
				}
				return nil
			}

			c := Candidate{
				Path:    path,
				Name:    name,
				Ext:     extension(name),
				Size:    info.Size(),
				Symlink: info.Mode()&os.ModeSymlink != 0,
			}
			if !yield(c) {
				return errStopWalk
			}
			return nil
		})

		if err != nil && !errors.Is(err, errStopWalk) {
			logger.Warn("Error during file traversal", zap.String("root", root), zap.Error(err))
		}
	}
}
