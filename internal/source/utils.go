package source

import (
	"bytes"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
	crlf    = []byte("\r\n")
)

// normalizeCRLF заменяет \r\n на \n; одиночные \r остаются.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, crlf) {
		return content, false
	}
	return bytes.ReplaceAll(content, crlf, []byte{'\n'}), true
}

func removeBOM(content []byte) ([]byte, bool) {
	rest, ok := bytes.CutPrefix(content, utf8BOM)
	return rest, ok
}

// buildLineIndex records the offset of every '\n'.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b != '\n' {
			continue
		}
		off, err := safecast.Conv[uint32](i)
		if err != nil {
			break
		}
		out = append(out, off)
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// число переводов строки строго до off
	n, _ := slices.BinarySearch(lineIdx, off)
	if n == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	line, err := safecast.Conv[uint32](n + 1)
	if err != nil {
		line = 0
	}
	return LineCol{Line: line, Col: off - lineIdx[n-1]}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
