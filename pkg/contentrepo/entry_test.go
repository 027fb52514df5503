package contentrepo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
)

func TestNewEntry(t *testing.T) {
	e := contentrepo.NewEntry("posts", "hello", "posts/hello.md")

	assert.Equal(t, "posts", e.Collection)
	assert.Equal(t, "hello", e.Slug)
	assert.Equal(t, "posts/hello.md", e.Path)
	assert.NotNil(t, e.Data)
	assert.False(t, e.NewRecord)
}

func TestEntryFieldAccess(t *testing.T) {
	e := contentrepo.NewEntry("posts", "hello", "posts/hello.md")
	e.Data = map[string]any{"title": "Hello", "draft": true, "empty": ""}

	v, ok := e.Field("title")
	assert.True(t, ok)
	assert.Equal(t, "Hello", v)

	v, ok = e.Field("draft")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = e.Field("empty")
	assert.False(t, ok)

	_, ok = e.Field("missing")
	assert.False(t, ok)

	assert.Equal(t, "No Title", (&contentrepo.Entry{}).FieldOr("title", "No Title"))
}

func TestEntryWorkflowStatus(t *testing.T) {
	e := contentrepo.NewEntry("posts", "hello", "posts/hello.md")

	_, ok := e.WorkflowStatus()
	assert.False(t, ok)

	e.MetaData = map[string]any{"status": "pending_review"}
	status, ok := e.WorkflowStatus()
	assert.True(t, ok)
	assert.Equal(t, contentrepo.StatusPendingReview, status)
}

func TestEditorialStatusValid(t *testing.T) {
	assert.True(t, contentrepo.StatusDraft.Valid())
	assert.True(t, contentrepo.StatusPendingReview.Valid())
	assert.True(t, contentrepo.StatusPendingPublish.Valid())
	assert.False(t, contentrepo.EditorialStatus("published").Valid())
}
