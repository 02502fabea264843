package types

// ModFile is one file discovered under the primary mod tree
type ModFile struct {
	// SourcePath is the absolute path of the file on disk
	SourcePath string
	// RawPath is the path relative to the mod root, as the mod author wrote it
	RawPath string
	// TranslatedPath is RawPath rewritten to the title's package convention
	TranslatedPath string
}

// PatchArchiveEntry is one entry of an external patch archive
type PatchArchiveEntry struct {
	// Archive is the file name of the archive the entry came from. Archives
	// are applied in lexicographic order of this name.
	Archive string
	// Path is the literal entry path, relative to the staging root
	Path string
	// Data is the entry content. Empty data marks a deletion.
	Data []byte
}

// IsDeletion reports whether the entry is a zero-length deletion marker
func (e PatchArchiveEntry) IsDeletion() bool {
	return len(e.Data) == 0
}
