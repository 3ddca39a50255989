package fs

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how much of a file IsTextFile looks at.
const sniffSize = 4096

// maxLineBytes caps a single preview line; longer lines come out in pieces.
const maxLineBytes = 64 << 10

// Files with these extensions are never treated as text.
var binaryExtensions = setOf(`
	.7z .apk .avi .bin .bmp .bz2 .class .dat .dll .doc .docx .dylib .exe
	.flac .gif .gz .ico .iso .jar .jpeg .jpg .mkv .mov .mp3 .mp4 .ogg .otf
	.pdf .png .ppt .pptx .psd .so .tar .tgz .tif .tiff .ttf .wav .wasm .webp
	.woff .woff2 .xls .xlsx .xz .zip`)

func setOf(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

var boms = [][]byte{
	{0xEF, 0xBB, 0xBF},
	{0xFF, 0xFE},
	{0xFE, 0xFF},
}

func hasBOM(b []byte) bool {
	for _, bom := range boms {
		if bytes.HasPrefix(b, bom) {
			return true
		}
	}
	return false
}

// IsTextFile reports whether content, the head of the file at path, looks
// like text. Known binary extensions are rejected without looking at the
// content; BOM-marked UTF-8 and UTF-16 count as text.
func IsTextFile(path string, content []byte) bool {
	if binaryExtensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	if len(content) > sniffSize {
		content = content[:sniffSize]
	}
	switch {
	case len(content) == 0, hasBOM(content):
		return true
	case bytes.IndexByte(content, 0) >= 0:
		return false
	case utf8.Valid(content):
		return true
	}

	// Legacy 8-bit text: accept while control bytes stay under 30%.
	control := 0
	for _, b := range content {
		if isControlByte(b) {
			control++
		}
	}
	return control*10 < len(content)*3
}

func isControlByte(b byte) bool {
	switch b {
	case '\t', '\n', '\r', 0x1B:
		return false
	case 0x7F:
		return true
	}
	return b < 0x20
}

// ReadFileHead returns up to limit bytes from the start of path.
func ReadFileHead(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return io.ReadAll(io.LimitReader(f, limit))
}

// ReadTextSample reads the head IsTextFile needs.
func ReadTextSample(path string) ([]byte, error) {
	return ReadFileHead(path, sniffSize)
}

// bomDecoder converts BOM-marked UTF-8 and UTF-16 to plain UTF-8 and passes
// everything else through unchanged.
func bomDecoder() transform.Transformer {
	return unicode.BOMOverride(transform.Nop)
}

// NormalizeTextContent decodes content according to its byte order mark.
func NormalizeTextContent(content []byte) string {
	out, _, err := transform.Bytes(bomDecoder(), content)
	if err != nil {
		return string(content)
	}
	return string(out)
}

// ReadTextLines returns at most maxLines lines from the start of a text
// file, decoded by its byte order mark. Line terminators are dropped.
func ReadTextLines(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	sc := bufio.NewScanner(transform.NewReader(f, bomDecoder()))
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	sc.Split(scanCappedLines)
	lines := make([]string, 0, maxLines)
	for len(lines) < maxLines && sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// scanCappedLines is bufio.ScanLines, except that a line filling the whole
// buffer is returned as it is instead of failing the scan.
func scanCappedLines(data []byte, atEOF bool) (int, []byte, error) {
	advance, token, err := bufio.ScanLines(data, atEOF)
	if advance == 0 && token == nil && err == nil && len(data) >= maxLineBytes {
		return maxLineBytes, data[:maxLineBytes], nil
	}
	return advance, token, err
}
