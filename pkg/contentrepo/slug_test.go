package contentrepo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/contentdeck/content-repo/pkg/contentrepo"
)

func entryWithData(data map[string]any) *contentrepo.Entry {
	e := contentrepo.NewEntry("posts", "", "")
	e.Data = data
	return e
}

func TestFormatSlug(t *testing.T) {
	// Fixed date so the date placeholders are deterministic.
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		data     map[string]any
		want     string
	}{
		{
			name:     "empty template defaults to slug",
			template: "",
			data:     map[string]any{"title": "My First Post"},
			want:     "my-first-post",
		},
		{
			name:     "year and slug with trailing punctuation collapse",
			template: "{{year}}-{{slug}}",
			data:     map[string]any{"title": "Hello, World!"},
			want:     "2024-hello-world-",
		},
		{
			name:     "zero padded date placeholders",
			template: "{{year}}-{{month}}-{{day}}",
			data:     nil,
			want:     "2024-03-05",
		},
		{
			name:     "slug keeps dots underscores and hyphens",
			template: "{{slug}}",
			data:     map[string]any{"title": "release_notes.v2-final"},
			want:     "release_notes.v2-final",
		},
		{
			name:     "slug trims before sanitizing",
			template: "{{slug}}",
			data:     map[string]any{"title": "  Spaced Out  "},
			want:     "spaced-out",
		},
		{
			name:     "slug falls back to path field",
			template: "{{slug}}",
			data:     map[string]any{"path": "Some Path"},
			want:     "some-path",
		},
		{
			name:     "other fields resolve raw and unsanitized",
			template: "{{category}}-{{slug}}",
			data:     map[string]any{"category": "Tech Stuff", "title": "go"},
			want:     "Tech Stuff-go",
		},
		{
			name:     "unrecognized placeholder expands empty",
			template: "x-{{missing}}-y",
			data:     map[string]any{"title": "go"},
			want:     "x--y",
		},
		{
			name:     "non-string field values stringify",
			template: "{{version}}-{{slug}}",
			data:     map[string]any{"version": 2, "title": "go"},
			want:     "2-go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contentrepo.FormatSlug(tt.template, now, entryWithData(tt.data))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSlugDeterministic(t *testing.T) {
	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	e := entryWithData(map[string]any{"title": "Same Input"})

	first := contentrepo.FormatSlug("{{slug}}", now, e)
	second := contentrepo.FormatSlug("{{slug}}", now, e)
	assert.Equal(t, first, second)
}
