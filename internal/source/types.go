package source

// FileID identifies a file in its FileSet. IDs start at 1 so that the zero
// Span points at no file.
type FileID uint32

// NoFileID marks spans that point at no file (metadata symbols, module-level
// diagnostics, declarations the binder gave no position).
const NoFileID FileID = 0

// FileFlags records how a file's content was obtained and normalised.
type FileFlags uint8

const (
	FileVirtual FileFlags = 1 << iota // in-memory: fixture sources, tests
	FileHadBOM
	FileNormalizedCRLF
)

// File is one source text. Content is normalised (no BOM, LF line ends)
// and Hash is the sha3-256 of the normalised content.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}
