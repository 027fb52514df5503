// Package format holds the text serialization engines entries move through:
// front-matter markdown, plain YAML, TOML and JSON. Each engine converts
// between raw stored text and a structured field map; recognized fields
// survive a round trip in both directions.
package format

import (
	"path"
	"strings"
)

// Format is one serialization engine.
type Format interface {
	// Name is the identifier collections use to declare this format.
	Name() string

	// FromFile parses raw stored text into structured entry data.
	FromFile(raw string) (map[string]any, error)

	// ToFile serializes structured entry data back into storable text.
	ToFile(data map[string]any) (string, error)
}

var formats = map[string]Format{
	"frontmatter": Frontmatter{},
	"yaml":        YAML{},
	"toml":        TOML{},
	"json":        JSON{},
}

var byExtension = map[string]string{
	"md":       "frontmatter",
	"markdown": "frontmatter",
	"html":     "frontmatter",
	"yml":      "yaml",
	"yaml":     "yaml",
	"toml":     "toml",
	"json":     "json",
}

// ByName returns the engine a collection declares.
func ByName(name string) (Format, bool) {
	f, ok := formats[name]
	return f, ok
}

// Resolve picks the engine for a collection/entry pair: the collection's
// declared format when set, else a heuristic on the entry path's extension.
func Resolve(declared, entryPath string) (Format, bool) {
	if declared != "" {
		return ByName(declared)
	}
	ext := strings.TrimPrefix(path.Ext(entryPath), ".")
	if name, ok := byExtension[strings.ToLower(ext)]; ok {
		return formats[name], true
	}
	return nil, false
}
