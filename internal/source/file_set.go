package source

import (
	"bytes"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"golang.org/x/crypto/sha3"
)

// FileSet manages the source files a compilation was bound from.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> id
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// SetBaseDir sets the directory relative paths are rendered against.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// BaseDir returns the base directory, falling back to the working directory.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Len returns the number of files.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha3.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	next, err := safecast.Conv[uint32](len(fileSet.files) + 1)
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(next)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds a virtual file (fixture, test or stdin) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, _ = normalizeCRLF(content)
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID or nil when the ID is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	if id == NoFileID || int(id) > len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id-1]
}

// All yields every file in ID order.
func (fileSet *FileSet) All() iter.Seq2[FileID, *File] {
	return func(yield func(FileID, *File) bool) {
		for i := range fileSet.files {
			f := &fileSet.files[i]
			if !yield(f.ID, f) {
				return
			}
		}
	}
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Locate finds the nth (0-based) occurrence of needle in the file and returns
// its span. Fixtures and tests use it to anchor declarations to identifiers.
func (fileSet *FileSet) Locate(id FileID, needle string, nth int) (Span, bool) {
	f := fileSet.Get(id)
	if f == nil || needle == "" {
		return Span{}, false
	}
	offset := 0
	for i := 0; ; i++ {
		idx := bytes.Index(f.Content[offset:], []byte(needle))
		if idx < 0 {
			return Span{}, false
		}
		if i == nth {
			start, err := safecast.Conv[uint32](offset + idx)
			if err != nil {
				return Span{}, false
			}
			end, err := safecast.Conv[uint32](offset + idx + len(needle))
			if err != nil {
				return Span{}, false
			}
			return Span{File: id, Start: start, End: end}, true
		}
		offset += idx + len(needle)
	}
}

// LocateWord is Locate restricted to whole identifiers: "M" does not match
// inside "Main".
func (fileSet *FileSet) LocateWord(id FileID, word string, nth int) (Span, bool) {
	f := fileSet.Get(id)
	if f == nil {
		return Span{}, false
	}
	seen := 0
	for i := 0; ; i++ {
		sp, ok := fileSet.Locate(id, word, i)
		if !ok {
			return Span{}, false
		}
		if sp.Start > 0 && isIdentByte(f.Content[sp.Start-1]) {
			continue
		}
		if int(sp.End) < len(f.Content) && isIdentByte(f.Content[sp.End]) {
			continue
		}
		if seen == nth {
			return sp, true
		}
		seen++
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Text returns the source text covered by span.
func (fileSet *FileSet) Text(span Span) string {
	f := fileSet.Get(span.File)
	if f == nil || int(span.End) > len(f.Content) || span.Start > span.End {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// GetLine returns the 1-based line lineNum without its newline.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}

	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start, end uint32
	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}
	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	if start >= lenContent {
		return ""
	}
	return string(f.Content[start:min(end, lenContent)])
}

// FormatPath renders the file path. mode: "absolute", "relative", "basename", "auto".
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case "relative":
		if f.Flags&FileVirtual != 0 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		if rel, err := filepath.Rel(baseDir, f.Path); err == nil && !startsWithParent(rel) {
			return filepath.ToSlash(rel)
		}
		return f.Path
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)
	default:
		return f.Path
	}
}

func startsWithParent(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}
