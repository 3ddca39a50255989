package ops

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/charlievieth/fastwalk"
)

// ErrInterrupted is returned by copies stopped by the shutdown flag.
var ErrInterrupted = errors.New("operation interrupted")

// pathExists reports whether anything, even a dangling symlink, is at path.
func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// freeName returns dir/base, or dir/stem_copyN.ext for the first free N.
func freeName(dir, base string) string {
	dst := filepath.Join(dir, base)
	if !pathExists(dst) {
		return dst
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		dst = filepath.Join(dir, stem+"_copy"+strconv.Itoa(i)+ext)
		if !pathExists(dst) {
			return dst
		}
	}
}

// within reports whether path is root or below it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// copyPath copies src to dst. Directories are copied recursively and
// symlinks are recreated, not followed. shutdown is polled between files.
func copyPath(src, dst string, shutdown *atomic.Bool) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return copySymlink(src, dst)
	case info.IsDir():
		return copyDir(src, dst, info.Mode().Perm(), shutdown)
	default:
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	return os.Symlink(target, dst)
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

type copyItem struct {
	src, dst string
	mode     os.FileMode
}

func copyDir(src, dst string, perm os.FileMode, shutdown *atomic.Bool) error {
	src = filepath.Clean(src)
	var (
		mu    sync.Mutex
		items []copyItem
	)
	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == src {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mu.Lock()
		items = append(items, copyItem{src: path, dst: filepath.Join(dst, rel), mode: info.Mode()})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", src, err)
	}

	// Parents sort before their children.
	sort.Slice(items, func(i, j int) bool { return items[i].dst < items[j].dst })

	if err := os.Mkdir(dst, perm|0o700); err != nil {
		return err
	}
	for _, it := range items {
		if shutdown != nil && shutdown.Load() {
			return ErrInterrupted
		}
		var err error
		switch {
		case it.mode&os.ModeSymlink != 0:
			err = copySymlink(it.src, it.dst)
		case it.mode.IsDir():
			err = os.Mkdir(it.dst, it.mode.Perm()|0o700)
		case it.mode.IsRegular():
			err = copyFile(it.src, it.dst, it.mode.Perm())
		default:
			// Sockets, devices and pipes are skipped.
		}
		if err != nil {
			return err
		}
	}
	return os.Chmod(dst, perm)
}

// movePath renames src to dst, copying and removing when they are on
// different filesystems.
func movePath(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}
	if err := copyPath(src, dst, nil); err != nil {
		return err
	}
	return os.RemoveAll(src)
}
