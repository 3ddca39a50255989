package ops

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Trash follows the freedesktop.org layout:
//
//	$XDG_DATA_HOME/Trash/files/<name>
//	$XDG_DATA_HOME/Trash/info/<name>.trashinfo

// TrashDir returns the user's trash directory, or "" when there is no home.
func TrashDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "Trash")
}

// TrashFilesDir is where trashed entries live.
func TrashFilesDir() string {
	dir := TrashDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "files")
}

// MoveToTrash moves path into the trash and records where it came from.
func MoveToTrash(path string) error {
	root := TrashDir()
	if root == "" {
		return errors.New("no trash directory")
	}
	filesDir := filepath.Join(root, "files")
	infoDir := filepath.Join(root, "info")
	if err := os.MkdirAll(filesDir, 0o700); err != nil {
		return fmt.Errorf("create trash: %w", err)
	}
	if err := os.MkdirAll(infoDir, 0o700); err != nil {
		return fmt.Errorf("create trash info: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dest := uniqueTrashName(filesDir, infoDir, filepath.Base(abs))
	infoPath := filepath.Join(infoDir, filepath.Base(dest)+".trashinfo")
	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		url.PathEscape(abs), time.Now().Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(infoPath, []byte(info), 0o600); err != nil {
		return fmt.Errorf("write trash info: %w", err)
	}

	if err := movePath(abs, dest); err != nil {
		_ = os.Remove(infoPath)
		return fmt.Errorf("move %s to trash: %w", abs, err)
	}
	return nil
}

func uniqueTrashName(filesDir, infoDir, base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := base
	for i := 1; ; i++ {
		_, errFile := os.Lstat(filepath.Join(filesDir, name))
		_, errInfo := os.Lstat(filepath.Join(infoDir, name+".trashinfo"))
		if errors.Is(errFile, os.ErrNotExist) && errors.Is(errInfo, os.ErrNotExist) {
			return filepath.Join(filesDir, name)
		}
		name = fmt.Sprintf("%s.%d%s", stem, i, ext)
	}
}
