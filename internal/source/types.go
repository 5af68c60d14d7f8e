package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes how the file content was obtained and normalized.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// File captures metadata and content for a single source file. Content is a
// string so every Span handed out by the file shares its memory.
type File struct {
	ID      FileID
	Path    string
	Content string
	Hash    [32]byte
	Flags   FileFlags
}

// Span returns a span over the whole file content.
func (f *File) Span() Span {
	return New(f.Content)
}

// LoadOptions control the normalization applied by FileSet.Load.
type LoadOptions struct {
	// NFC rewrites the content into Unicode normalization form C.
	NFC bool
}
