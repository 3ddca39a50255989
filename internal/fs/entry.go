package fs

import (
	"os"
	"sort"
	"strings"
	"time"
)

// DirectoryEntry represents a single file or directory inside a listing.
// Entries are never mutated after ReadDirectory builds them.
type DirectoryEntry struct {
	Name      string
	Path      string
	IsDir     bool
	IsHidden  bool
	IsSymlink bool
	Size      int64
	Modified  time.Time
	Mode      os.FileMode
}

// IsHiddenName reports whether a file name denotes a hidden entry.
func IsHiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// NewDirectoryEntry builds an entry from a path and its (followed) file info.
// info may be nil when the target cannot be stat'ed.
func NewDirectoryEntry(path, name string, info os.FileInfo, isSymlink bool) DirectoryEntry {
	entry := DirectoryEntry{
		Name:      name,
		Path:      path,
		IsHidden:  IsHiddenName(name),
		IsSymlink: isSymlink,
	}
	if info != nil {
		entry.IsDir = info.IsDir()
		entry.Size = info.Size()
		entry.Modified = info.ModTime()
		entry.Mode = info.Mode()
	}
	return entry
}

// Less orders directories before files and then by case-insensitive name.
// Names equal under case folding fall back to byte order.
func Less(a, b DirectoryEntry) bool {
	if a.IsDir != b.IsDir {
		return a.IsDir
	}
	la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if la != lb {
		return la < lb
	}
	return a.Name < b.Name
}

// SortEntries sorts entries in place using Less.
func SortEntries(entries []DirectoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}
