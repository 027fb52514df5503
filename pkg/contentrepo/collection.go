package contentrepo

import (
	"path"
	"strings"
)

// ListMethod selects which backend verb enumerates a collection's entries.
type ListMethod string

const (
	// ListEntriesByFolder enumerates every file of the collection's
	// extension under its folder.
	ListEntriesByFolder ListMethod = "entriesByFolder"

	// ListEntriesByFiles fetches the collection's explicitly configured
	// files.
	ListEntriesByFiles ListMethod = "entriesByFiles"
)

// DefaultExtension is used for folder collections that do not declare one.
const DefaultExtension = "md"

// CollectionFile is one configured file of a file-based collection.
type CollectionFile struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
	File  string `json:"file" yaml:"file"`
}

// Collection is the externally supplied, read-only configuration of a named
// group of entries. Exactly one of Folder or Files is set; that choice
// determines the listing strategy and the slug<->path rule.
type Collection struct {
	Name         string           `json:"name" yaml:"name"`
	Label        string           `json:"label" yaml:"label"`
	Folder       string           `json:"folder,omitempty" yaml:"folder"`
	Files        []CollectionFile `json:"files,omitempty" yaml:"files"`
	Create       bool             `json:"create" yaml:"create"`
	SlugTemplate string           `json:"slug,omitempty" yaml:"slug"`
	Extension    string           `json:"extension,omitempty" yaml:"extension"`
	Format       string           `json:"format,omitempty" yaml:"format"`
}

// ListMethod returns the backend listing verb for this collection.
func (c *Collection) ListMethod() ListMethod {
	if c.Folder != "" {
		return ListEntriesByFolder
	}
	return ListEntriesByFiles
}

// FileExtension returns the collection's entry extension, without a leading
// dot, defaulting to "md".
func (c *Collection) FileExtension() string {
	if c.Extension != "" {
		return strings.TrimPrefix(c.Extension, ".")
	}
	return DefaultExtension
}

// EntryPath maps a slug to its canonical storage path. It is the inverse of
// EntrySlug for every valid slug.
func (c *Collection) EntryPath(slug string) string {
	if c.Folder != "" {
		return path.Join(c.Folder, slug+"."+c.FileExtension())
	}
	for _, f := range c.Files {
		if f.Name == slug {
			return f.File
		}
	}
	return ""
}

// EntrySlug derives the slug back out of a storage path. For folder
// collections this is the file's base name without its extension; for file
// collections it is the configured name of the matching file.
func (c *Collection) EntrySlug(p string) string {
	if c.Folder != "" {
		base := path.Base(p)
		if i := strings.LastIndex(base, "."); i > 0 {
			base = base[:i]
		}
		return base
	}
	for _, f := range c.Files {
		if f.File == p {
			return f.Name
		}
	}
	return ""
}

// AllowNewEntries reports whether the collection permits creating entries.
// File collections are a fixed set and never allow creation.
func (c *Collection) AllowNewEntries() bool {
	return c.Folder != "" && c.Create
}
