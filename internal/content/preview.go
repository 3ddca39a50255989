package content

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kk-code-lab/rmill/internal/fs"
	"github.com/kk-code-lab/rmill/internal/panel"
	"github.com/kk-code-lab/rmill/internal/textutil"
)

var imageExtensions = map[string]struct{}{
	".bmp":  {},
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// BuildPreview loads the preview for path: a capped listing for
// directories, a thumbnail for images, the first lines for text, the member
// list for zip and tar archives, and a short description for anything else.
func BuildPreview(path string, opts PreviewOptions) (panel.Preview, error) {
	info, err := os.Stat(path)
	if err != nil {
		return panel.Preview{}, err
	}
	if info.IsDir() {
		dir, err := LoadDirectory(path, opts.DirLimit)
		if err != nil {
			return panel.Preview{}, err
		}
		return panel.DirectoryPreview(dir), nil
	}
	if !info.Mode().IsRegular() {
		return panel.TextPreview(path, describe(path, info, ""), info.ModTime()), nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return imagePreview(path, info, opts.ImageSize)
	}
	switch {
	case ext == ".zip" || ext == ".jar":
		return archivePreview(path, info, opts.Lines, listZip)
	case ext == ".tar":
		return archivePreview(path, info, opts.Lines, listTar(false))
	case ext == ".tgz" || strings.HasSuffix(strings.ToLower(path), ".tar.gz"):
		return archivePreview(path, info, opts.Lines, listTar(true))
	}

	sample, err := fs.ReadTextSample(path)
	if err != nil {
		return panel.Preview{}, err
	}
	if !fs.IsTextFile(path, sample) {
		return panel.TextPreview(path, describe(path, info, http.DetectContentType(sample)), info.ModTime()), nil
	}
	if ext == ".md" || ext == ".markdown" {
		return markdownPreview(path, info, opts.Lines)
	}

	lines, err := fs.ReadTextLines(path, opts.Lines)
	if err != nil {
		return panel.Preview{}, err
	}
	for i, line := range lines {
		lines[i] = textutil.PreviewLine(line)
	}
	return panel.TextPreview(path, lines, info.ModTime()), nil
}

// MimeType classifies path by extension, falling back to content sniffing.
func MimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	sample, err := fs.ReadTextSample(path)
	if err != nil || len(sample) == 0 {
		return "application/octet-stream"
	}
	if fs.IsTextFile(path, sample) {
		return "text/plain; charset=utf-8"
	}
	return http.DetectContentType(sample)
}

func describe(path string, info os.FileInfo, mimeType string) []string {
	lines := []string{
		textutil.Sanitize(filepath.Base(path)),
		"",
		fmt.Sprintf("size      %s (%d bytes)", humanize.IBytes(uint64(max(info.Size(), 0))), info.Size()),
		fmt.Sprintf("mode      %s", info.Mode()),
		fmt.Sprintf("modified  %s (%s)", info.ModTime().Format("2006-01-02 15:04"), humanize.Time(info.ModTime())),
	}
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mimeType != "" {
		lines = append(lines, "type      "+mimeType)
	}
	return lines
}

func imagePreview(path string, info os.FileInfo, maxSide int) (panel.Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return panel.Preview{}, err
	}
	defer func() { _ = f.Close() }()

	src, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return panel.Preview{}, fmt.Errorf("decode %s: %w", path, err)
	}
	size := src.Bounds().Size()
	thumb := scaleImage(src, maxSide)
	infoLine := fmt.Sprintf("%s %dx%d, %s", strings.ToUpper(format), size.X, size.Y, humanize.IBytes(uint64(info.Size())))
	return panel.ImagePreview(path, thumb, infoLine, info.ModTime()), nil
}

// scaleImage fits src into a maxSide square, keeping its aspect ratio.
func scaleImage(src image.Image, maxSide int) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxSide || h > maxSide {
		if w >= h {
			h = max(h*maxSide/w, 1)
			w = maxSide
		} else {
			w = max(w*maxSide/h, 1)
			h = maxSide
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

type lister func(path string, limit int) ([]string, error)

func archivePreview(path string, info os.FileInfo, limit int, list lister) (panel.Preview, error) {
	members, err := list(path, limit)
	if err != nil {
		return panel.Preview{}, err
	}
	lines := append(describe(path, info, ""), "")
	for _, m := range members {
		if len(lines) >= limit {
			break
		}
		lines = append(lines, textutil.Sanitize(m))
	}
	return panel.TextPreview(path, lines, info.ModTime()), nil
}

func listZip(path string, limit int) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	out := make([]string, 0, min(len(r.File), limit))
	for _, f := range r.File {
		if len(out) >= limit {
			break
		}
		out = append(out, fmt.Sprintf("%10s  %s", humanize.IBytes(f.UncompressedSize64), f.Name))
	}
	return out, nil
}

func listTar(gzipped bool) lister {
	return func(path string, limit int) ([]string, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		var r io.Reader = bufio.NewReader(f)
		if gzipped {
			gz, err := gzip.NewReader(r)
			if err != nil {
				return nil, err
			}
			defer func() { _ = gz.Close() }()
			r = gz
		}

		tr := tar.NewReader(r)
		var out []string
		for len(out) < limit {
			hdr, err := tr.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				if len(out) > 0 {
					break
				}
				return nil, err
			}
			out = append(out, fmt.Sprintf("%10s  %s", humanize.IBytes(uint64(max(hdr.Size, 0))), hdr.Name))
		}
		return out, nil
	}
}
