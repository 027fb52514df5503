package contentrepo

import "fmt"

// Entry is one content item: identity (collection, slug, path) plus a raw
// and/or parsed payload. Raw and Data are mutually derivable through the
// format engines; when both are set they describe the same content.
type Entry struct {
	Collection string         `json:"collection"`
	Slug       string         `json:"slug"`
	Path       string         `json:"path"`
	Raw        string         `json:"raw,omitempty"`
	Data       map[string]any `json:"data,omitempty"`

	// Label is an optional human-readable annotation supplied by the
	// backend (e.g. a configured file's display name).
	Label string `json:"label,omitempty"`

	// MetaData is the workflow status bag. Only the editorial-workflow
	// path populates it; the backend is the source of truth.
	MetaData map[string]any `json:"meta_data,omitempty"`

	// NewRecord marks a draft that has never been persisted. Identity
	// (slug, path) is deferred until the first persist.
	NewRecord bool `json:"new_record,omitempty"`
}

// NewEntry constructs an entry value. It performs no validation beyond
// structural shape; path/slug consistency is the collection's concern at
// call sites.
func NewEntry(collection, slug, path string) *Entry {
	return &Entry{
		Collection: collection,
		Slug:       slug,
		Path:       path,
		Data:       map[string]any{},
	}
}

// Field looks up a parsed data field as a string. The second return value
// reports whether the field exists and is non-empty.
func (e *Entry) Field(name string) (string, bool) {
	if e.Data == nil {
		return "", false
	}
	v, ok := e.Data[name]
	if !ok || v == nil {
		return "", false
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return "", false
	}
	return s, true
}

// FieldOr returns the named field or fallback when it is absent. Default
// application is explicit here rather than implicit stringification at the
// call sites.
func (e *Entry) FieldOr(name, fallback string) string {
	if v, ok := e.Field(name); ok {
		return v
	}
	return fallback
}

// WorkflowStatus reads the editorial status out of the metadata bag.
func (e *Entry) WorkflowStatus() (EditorialStatus, bool) {
	if e.MetaData == nil {
		return "", false
	}
	v, ok := e.MetaData["status"]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case EditorialStatus:
		return s, true
	case string:
		return EditorialStatus(s), true
	}
	return "", false
}
