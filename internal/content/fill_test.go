package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kk-code-lab/rmill/internal/panel"
)

func fillTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		sub := filepath.Join(root, fmt.Sprintf("dir%d", i))
		if err := os.MkdirAll(filepath.Join(sub, "nested"), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		writeFile(t, filepath.Join(sub, "inner.txt"), []byte("inner\n"))
		writeFile(t, filepath.Join(root, fmt.Sprintf("file%d.txt", i)), []byte("top\n"))
	}
	return root
}

func TestFillCacheRespectsBudget(t *testing.T) {
	root := fillTree(t)
	caches := NewCaches(32, 32)
	p := &Prefill{
		Directories: caches.Directories,
		Previews:    caches.Previews,
		Loader:      NewLoader(DefaultPreviewOptions(), nil),
	}
	p.FillCache(root)

	if got := caches.Directories.Len(); got != 2 {
		t.Fatalf("cached %d directories, want 2", got)
	}
	var files int
	for i := 0; i < 5; i++ {
		path := filepath.Join(root, fmt.Sprintf("file%d.txt", i))
		if caches.Previews.Contains(path) {
			files++
		}
		if caches.Previews.Contains(filepath.Join(root, fmt.Sprintf("dir%d", i), "inner.txt")) {
			t.Fatalf("files below direct children must not be previewed")
		}
	}
	if files != 2 {
		t.Fatalf("previewed %d files, want 2", files)
	}
}

func TestFillCacheSkipsFreshEntries(t *testing.T) {
	root := fillTree(t)
	caches := NewCaches(16*10, 16*10)
	loader := NewLoader(DefaultPreviewOptions(), nil)

	fresh := filepath.Join(root, "file0.txt")
	marker := panel.TextPreview(fresh, []string{"marker"}, mustModTime(t, fresh))
	caches.Previews.Insert(fresh, marker)

	p := &Prefill{Directories: caches.Directories, Previews: caches.Previews, Loader: loader}
	p.FillCache(root)

	got, ok := caches.Previews.Get(fresh)
	if !ok || got.Hash() != marker.Hash() {
		t.Fatalf("fresh preview was reloaded")
	}
	if !caches.Previews.Contains(filepath.Join(root, "file1.txt")) {
		t.Fatalf("missing preview was not loaded")
	}
	if !caches.Directories.Contains(filepath.Join(root, "dir0", "nested")) {
		t.Fatalf("second-level directory was not listed")
	}
}

func TestFillCacheStopsOnShutdown(t *testing.T) {
	root := fillTree(t)
	caches := NewCaches(1024, 1024)
	var shutdown atomic.Bool
	shutdown.Store(true)

	p := &Prefill{
		Directories: caches.Directories,
		Previews:    caches.Previews,
		Loader:      NewLoader(DefaultPreviewOptions(), nil),
		Shutdown:    &shutdown,
	}
	p.FillCache(root)

	if caches.Directories.Len() != 0 || caches.Previews.Len() != 0 {
		t.Fatalf("nothing should be cached after shutdown, got %d/%d",
			caches.Directories.Len(), caches.Previews.Len())
	}
}

func mustModTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	return info.ModTime()
}

func TestDirectoryPreviewIsCappedWhenCachedFromListing(t *testing.T) {
	root := fillTree(t)
	opts := DefaultPreviewOptions()
	opts.DirLimit = 3
	loader := NewLoader(opts, nil)

	full := loader.Directory(root)
	if len(full.Elements()) != 10 {
		t.Fatalf("listing has %d entries, want 10", len(full.Elements()))
	}
	preview := loader.DirectoryPreview(full)
	dir, ok := preview.Directory()
	if !ok || len(dir.Elements()) != 3 {
		t.Fatalf("preview should hold 3 entries, got %d", len(dir.Elements()))
	}
	if len(full.Elements()) != 10 {
		t.Fatalf("capping must not change the listing")
	}

	caches := NewCaches(32, 32)
	p := &Prefill{Directories: caches.Directories, Previews: caches.Previews, Loader: loader}
	p.FillCache(root)
	for _, name := range []string{"dir0", "dir1"} {
		cached, ok := caches.Previews.Get(filepath.Join(root, name))
		if !ok {
			continue
		}
		if d, _ := cached.Directory(); len(d.Elements()) > 3 {
			t.Fatalf("prefilled preview of %s holds %d entries", name, len(d.Elements()))
		}
	}
}

func TestPrefillRequestWalksLatestPath(t *testing.T) {
	first, last := fillTree(t), fillTree(t)
	caches := NewCaches(160, 160)
	p := &Prefill{
		Directories: caches.Directories,
		Previews:    caches.Previews,
		Loader:      NewLoader(DefaultPreviewOptions(), nil),
	}
	p.Request(first)
	p.Request(first)
	p.Request(last)

	deadline := time.Now().Add(5 * time.Second)
	for {
		p.mu.Lock()
		idle := !p.busy
		p.mu.Unlock()
		if idle {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("prefill did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !caches.Directories.Contains(filepath.Join(last, "dir0")) {
		t.Fatalf("the latest request was not walked")
	}
}
