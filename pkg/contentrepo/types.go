package contentrepo

// EditorialStatus is the domain type for editorial-workflow states.
type EditorialStatus string

// Editorial workflow status constants (typed).
const (
	StatusDraft          EditorialStatus = "draft"
	StatusPendingReview  EditorialStatus = "pending_review"
	StatusPendingPublish EditorialStatus = "pending_publish"
)

// Valid reports whether s is one of the known workflow states.
func (s EditorialStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusPendingPublish:
		return true
	}
	return false
}

// Credentials is the opaque credential bundle handed to a backend's
// authentication step. Backends interpret the fields they need.
type Credentials struct {
	Email    string            `json:"email,omitempty"`
	Password string            `json:"password,omitempty"`
	Token    string            `json:"token,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Session is the credential bundle a backend returns on successful
// authentication. It is opaque to the facade beyond being serializable;
// the session store persists it under a single fixed key.
type Session struct {
	Token    string         `json:"token"`
	Provider string         `json:"provider,omitempty"`
	Name     string         `json:"name,omitempty"`
	Email    string         `json:"email,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// MediaFile is an asset accompanying an entry persist. The facade passes it
// through to the backend verbatim and takes no ownership of the bytes.
type MediaFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// PersistOptions carries caller-supplied options for a persist call. They
// are forwarded to the backend inside the persist metadata bundle.
type PersistOptions struct {
	// Unpublished routes the write through the editorial workflow instead
	// of a direct publish, when the backend distinguishes the two.
	Unpublished bool

	// Status is the initial workflow status for unpublished writes.
	Status EditorialStatus

	// Extra is passed to the backend untouched.
	Extra map[string]any
}

// PersistMeta is the metadata bundle delivered to a backend's persist verb.
type PersistMeta struct {
	NewEntry       bool
	Title          string
	Description    string
	CommitMessage  string
	CollectionName string
	Mode           string
	Unpublished    bool
	Status         EditorialStatus
	Extra          map[string]any
}
