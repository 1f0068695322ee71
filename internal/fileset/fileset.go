package fileset

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// FileSet holds the named source files composing one submission or one
// reference solution. Exactly one file is the entry file; sibling files
// are bundled ahead of it.
type FileSet struct {
	entry string
	files map[string]string
	order []string
}

// New creates a FileSet with the given entry file and its source text.
func New(entry, source string) *FileSet {
	fs := &FileSet{
		entry: entry,
		files: make(map[string]string),
	}
	fs.Set(entry, source)
	return fs
}

// FromFiles creates a FileSet from a filename→source map.
// The entry file must be present in files.
func FromFiles(entry string, files map[string]string) (*FileSet, error) {
	if _, ok := files[entry]; !ok {
		return nil, fmt.Errorf("entry file %q not in file set", entry)
	}
	fs := &FileSet{
		entry: entry,
		files: make(map[string]string, len(files)),
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	// Entry first so insertion order stays stable across loads.
	fs.Set(entry, files[entry])
	for _, name := range names {
		if name != entry {
			fs.Set(name, files[name])
		}
	}
	return fs, nil
}

// Entry returns the entry filename.
func (fs *FileSet) Entry() string { return fs.entry }

// Set adds or replaces a file's source text.
func (fs *FileSet) Set(name, source string) {
	if _, ok := fs.files[name]; !ok {
		fs.order = append(fs.order, name)
	}
	fs.files[name] = source
}

// Get returns a file's source text.
func (fs *FileSet) Get(name string) (string, bool) {
	s, ok := fs.files[name]
	return s, ok
}

// Names returns all filenames in insertion order.
func (fs *FileSet) Names() []string {
	out := make([]string, len(fs.order))
	copy(out, fs.order)
	return out
}

// Siblings returns all non-entry filenames in insertion order.
func (fs *FileSet) Siblings() []string {
	var out []string
	for _, name := range fs.order {
		if name != fs.entry {
			out = append(out, name)
		}
	}
	return out
}

// Len returns the number of files.
func (fs *FileSet) Len() int { return len(fs.files) }

// IsEmpty reports whether every file is empty after whitespace trimming.
func (fs *FileSet) IsEmpty() bool {
	for _, src := range fs.files {
		if strings.TrimSpace(src) != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy. The user-editable copy of a
// question's starter code is always a clone; the reference set is never
// mutated.
func (fs *FileSet) Clone() *FileSet {
	out := &FileSet{
		entry: fs.entry,
		files: make(map[string]string, len(fs.files)),
		order: make([]string, len(fs.order)),
	}
	copy(out.order, fs.order)
	for name, src := range fs.files {
		out.files[name] = src
	}
	return out
}

// Basename returns the namespace key for a filename: the base name with
// its extension removed ("components/Button.jsx" → "Button").
func Basename(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}
