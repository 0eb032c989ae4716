package dump

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// maxLinkHops bounds symlink resolution so that link cycles terminate.
const maxLinkHops = 255

var errTooManyLinks = errors.New("too many levels of symbolic links")

// evalSymlinks returns the absolute path with every symlink resolved, reading
// links through fsys. Resolution is not strict: from the first component that
// does not exist, the rest of the path is appended as is, so a link to a file
// that is yet to be created still resolves to that file's path.
func evalSymlinks(fsys billy.Filesystem, path string) (string, error) {
	const sep = string(filepath.Separator)

	resolved := sep
	rest := strings.Split(filepath.Clean(path), sep)
	hops := 0

	for len(rest) > 0 {
		name := rest[0]
		rest = rest[1:]

		switch name {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, name)
		info, err := fsys.Lstat(next)
		if errors.Is(err, os.ErrNotExist) {
			return filepath.Join(append([]string{next}, rest...)...), nil
		}
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			resolved = next
			continue
		}

		hops++
		if hops > maxLinkHops {
			return "", &os.PathError{Op: "readlink", Path: path, Err: errTooManyLinks}
		}
		target, err := fsys.Readlink(next)
		if err != nil {
			return "", err
		}
		if filepath.IsAbs(target) {
			resolved = sep
		}
		rest = append(strings.Split(filepath.Clean(target), sep), rest...)
	}
	return resolved, nil
}

// statTarget checks that a resolved symlink target is a regular file and
// returns its size.
func statTarget(fsys billy.Filesystem, target string) (int64, error) {
	info, err := fsys.Stat(target)
	if err != nil {
		return 0, fmt.Errorf("failed to stat symlink target: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("symlink target %s is not a regular file", target)
	}
	return info.Size(), nil
}
