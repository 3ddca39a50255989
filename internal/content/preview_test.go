package content

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kk-code-lab/rmill/internal/panel"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func containsLine(lines []string, needle string) bool {
	for _, l := range lines {
		if strings.Contains(l, needle) {
			return true
		}
	}
	return false
}

func TestBuildPreviewTextCapsLinesAndExpandsTabs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, []byte("a\tb\nsecond\nthird\n"))

	p, err := BuildPreview(path, PreviewOptions{Lines: 2, ImageSize: 16})
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}
	if p.Kind() != panel.PreviewText {
		t.Fatalf("kind = %v, want text", p.Kind())
	}
	want := []string{"a   b", "second"}
	if !reflect.DeepEqual(p.Lines(), want) {
		t.Fatalf("lines = %q, want %q", p.Lines(), want)
	}
	if p.Path() != path {
		t.Fatalf("path = %q", p.Path())
	}
}

func TestBuildPreviewDirectoryIsCapped(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		writeFile(t, filepath.Join(dir, name), nil)
	}

	p, err := BuildPreview(dir, PreviewOptions{Lines: 10, DirLimit: 2, ImageSize: 16})
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}
	listing, ok := p.Directory()
	if !ok {
		t.Fatalf("kind = %v, want directory", p.Kind())
	}
	if got := len(listing.Elements()); got != 2 {
		t.Fatalf("listing has %d entries, want 2", got)
	}
}

func TestBuildPreviewScalesImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "red.png")
	writeFile(t, path, buf.Bytes())

	p, err := BuildPreview(path, PreviewOptions{Lines: 10, ImageSize: 10})
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}
	if p.Kind() != panel.PreviewImage {
		t.Fatalf("kind = %v, want image", p.Kind())
	}
	if size := p.Image().Bounds().Size(); size != (image.Point{X: 10, Y: 5}) {
		t.Fatalf("thumbnail size = %v, want 10x5", size)
	}
	if !strings.Contains(p.Info(), "PNG 40x20") {
		t.Fatalf("info = %q", p.Info())
	}
}

func TestBuildPreviewCorruptImageFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	writeFile(t, path, []byte("not a png"))
	if _, err := BuildPreview(path, DefaultPreviewOptions()); err == nil {
		t.Fatalf("expected decode error")
	}
	p := NewLoader(DefaultPreviewOptions(), nil).Preview(path)
	if p.Kind() != panel.PreviewEmpty || p.Path() != path {
		t.Fatalf("loader should fall back to an empty preview, got %v %q", p.Kind(), p.Path())
	}
}

func TestBuildPreviewListsZipMembers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.zip")
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"docs/readme.md", "main.go"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		_, _ = w.Write([]byte("package main\n"))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	writeFile(t, path, buf.Bytes())

	p, err := BuildPreview(path, PreviewOptions{Lines: 50, ImageSize: 16})
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}
	if !containsLine(p.Lines(), "docs/readme.md") || !containsLine(p.Lines(), "main.go") {
		t.Fatalf("zip members missing from %q", p.Lines())
	}
}

func TestBuildPreviewListsTarGzMembers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.tar.gz")
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	body := []byte("hello\n")
	if err := tw.WriteHeader(&tar.Header{Name: "release/hello.txt", Mode: 0o644, Size: int64(len(body))}); err != nil {
		t.Fatalf("header: %v", err)
	}
	_, _ = tw.Write(body)
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	writeFile(t, path, buf.Bytes())

	p, err := BuildPreview(path, PreviewOptions{Lines: 50, ImageSize: 16})
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}
	if !containsLine(p.Lines(), "release/hello.txt") {
		t.Fatalf("tar member missing from %q", p.Lines())
	}
}

func TestBuildPreviewDescribesBinaryFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.dat")
	writeFile(t, path, []byte{0x00, 0x01, 0x02, 0xff, 0x00, 0x10})

	p, err := BuildPreview(path, DefaultPreviewOptions())
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}
	lines := p.Lines()
	if len(lines) == 0 || lines[0] != "blob.dat" {
		t.Fatalf("description should start with the name, got %q", lines)
	}
	if !containsLine(lines, "6 bytes") {
		t.Fatalf("description should include the size, got %q", lines)
	}
	if !containsLine(lines, "application/octet-stream") {
		t.Fatalf("description should include the sniffed type, got %q", lines)
	}
}

func TestBuildPreviewMissingFile(t *testing.T) {
	if _, err := BuildPreview(filepath.Join(t.TempDir(), "nope"), DefaultPreviewOptions()); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestBuildPreviewRendersMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	writeFile(t, path, []byte("# Title\n\nbody text\n"))

	p, err := BuildPreview(path, DefaultPreviewOptions())
	if err != nil {
		t.Fatalf("BuildPreview: %v", err)
	}
	want := []string{"# Title", "", "body text"}
	if !reflect.DeepEqual(p.Lines(), want) {
		t.Fatalf("lines = %q, want %q", p.Lines(), want)
	}
}

func TestRenderMarkdown(t *testing.T) {
	src := "# Title\n\nHello *world*\n\n- a\n- b\n\n1. x\n2. y\n\n```\ncode\n```\n"
	want := []string{
		"# Title",
		"",
		"Hello world",
		"",
		"• a",
		"• b",
		"",
		"1. x",
		"2. y",
		"",
		"    code",
	}
	if got := RenderMarkdown([]byte(src), 0); !reflect.DeepEqual(got, want) {
		t.Fatalf("RenderMarkdown =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderMarkdownHonorsLimit(t *testing.T) {
	got := RenderMarkdown([]byte("one\n\ntwo\n\nthree\n"), 3)
	want := []string{"one", "", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMimeType(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "noext")
	writeFile(t, plain, []byte("just text\n"))
	if got := MimeType(plain); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("MimeType(text) = %q", got)
	}
	empty := filepath.Join(dir, "empty")
	writeFile(t, empty, nil)
	if got := MimeType(empty); got != "application/octet-stream" {
		t.Fatalf("MimeType(empty) = %q", got)
	}
}

func TestLoadDirectoryErrorYieldsEmptyListing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	dir, err := LoadDirectory(missing, 0)
	if err == nil {
		t.Fatalf("expected error")
	}
	if dir.Path() != missing || dir.Len() != 0 {
		t.Fatalf("want empty listing for %q, got %q with %d entries", missing, dir.Path(), dir.Len())
	}
}
