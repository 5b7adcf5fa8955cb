// Package sum provides summaries of frozen modules and parsing, writing,
// and verification of frozen.sum files.
package sum

// File represents a parsed frozen.sum file.
type File struct {
	Entries []Entry
}

// Entry is the checksum of one exposed module's frozen artifact.
// Aliases of the same source carry the same artifact and hash.
type Entry struct {
	Module string // Exposed module name (e.g., "os.path")
	Frozen string // Artifact basename (e.g., "posixpath.h")
	Hash   string // Hex SHA-256 of the artifact
}

// NewFile creates a new empty frozen.sum file.
func NewFile() *File {
	return &File{
		Entries: make([]Entry, 0),
	}
}

// Add adds or updates the entry for module.
func (f *File) Add(module, frozen, hash string) {
	for i := range f.Entries {
		if f.Entries[i].Module == module {
			f.Entries[i].Frozen = frozen
			f.Entries[i].Hash = hash
			return
		}
	}

	f.Entries = append(f.Entries, Entry{
		Module: module,
		Frozen: frozen,
		Hash:   hash,
	})
}

// Get retrieves the entry for module.
func (f *File) Get(module string) *Entry {
	for i := range f.Entries {
		if f.Entries[i].Module == module {
			return &f.Entries[i]
		}
	}
	return nil
}

// Contains checks if the file has an entry for module.
func (f *File) Contains(module string) bool {
	return f.Get(module) != nil
}

// FromRecords builds a sum file from summary records.
func FromRecords(records []Record) *File {
	f := NewFile()
	for _, r := range records {
		f.Add(r.Module, r.Frozen, r.Checksum)
	}
	return f
}
