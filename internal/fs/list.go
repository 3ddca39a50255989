package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"golang.org/x/text/unicode/norm"
)

var errLimitReached = errors.New("fs: listing limit reached")

// ReadDirectory lists the direct children of path, sorted with SortEntries.
// Symlinks are reported with their target's metadata when the target can be
// stat'ed. A positive limit caps the number of entries read; the entries
// kept are whichever the walk produced first.
func ReadDirectory(path string, limit int) ([]DirectoryEntry, error) {
	root := filepath.Clean(path)

	var (
		mu      sync.Mutex
		entries []DirectoryEntry
	)

	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, root, func(fullPath string, d iofs.DirEntry, err error) error {
		if err != nil {
			if fullPath == root {
				return err
			}
			return nil
		}
		if fullPath == root {
			return nil
		}

		entry := entryFromDirEntry(fullPath, d)

		mu.Lock()
		if limit > 0 && len(entries) >= limit {
			mu.Unlock()
			return errLimitReached
		}
		entries = append(entries, entry)
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, fmt.Errorf("read directory %s: %w", root, err)
	}

	SortEntries(entries)
	return entries, nil
}

func entryFromDirEntry(fullPath string, d iofs.DirEntry) DirectoryEntry {
	name := norm.NFC.String(d.Name())
	isSymlink := d.Type()&os.ModeSymlink != 0

	info, err := fastwalk.StatDirEntry(fullPath, d)
	if err != nil && isSymlink {
		// Dangling link: describe the link itself.
		info, err = d.Info()
	}
	if err != nil {
		info = nil
	}
	return NewDirectoryEntry(fullPath, name, info, isSymlink)
}

// WalkDepth visits every entry below root down to maxDepth levels, calling
// visit for each one. Returning false from visit stops the walk early.
// Errors on individual entries are skipped.
func WalkDepth(root string, maxDepth int, visit func(entry DirectoryEntry) bool) error {
	root = filepath.Clean(root)
	var (
		mu   sync.Mutex
		stop bool
	)

	conf := &fastwalk.Config{Follow: false, MaxDepth: maxDepth}
	err := fastwalk.Walk(conf, root, func(fullPath string, d iofs.DirEntry, err error) error {
		if err != nil || fullPath == root {
			return nil
		}
		entry := entryFromDirEntry(fullPath, d)

		mu.Lock()
		defer mu.Unlock()
		if stop {
			return errLimitReached
		}
		if !visit(entry) {
			stop = true
			return errLimitReached
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	return nil
}

// Canonicalize returns the absolute, symlink-resolved form of path.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// ModTime returns the modification time of path, following symlinks.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
