package format_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentdeck/content-repo/pkg/contentrepo/format"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		path     string
		want     string
		ok       bool
	}{
		{name: "declared format wins", declared: "json", path: "posts/a.md", want: "json", ok: true},
		{name: "markdown extension", path: "posts/a.md", want: "frontmatter", ok: true},
		{name: "html extension", path: "pages/about.html", want: "frontmatter", ok: true},
		{name: "yml extension", path: "data/authors.yml", want: "yaml", ok: true},
		{name: "toml extension", path: "config.toml", want: "toml", ok: true},
		{name: "json extension", path: "data.json", want: "json", ok: true},
		{name: "unknown declared format", declared: "csv", path: "a.md", ok: false},
		{name: "unknown extension", path: "image.png", ok: false},
		{name: "no extension", path: "LICENSE", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := format.Resolve(tt.declared, tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, f.Name())
			}
		})
	}
}

func TestFrontmatterFromFile(t *testing.T) {
	raw := "---\ntitle: Hello\ntags:\n  - go\n  - cms\n---\n# Body\n\ntext\n"

	f := format.Frontmatter{}
	data, err := f.FromFile(raw)
	require.NoError(t, err)

	assert.Equal(t, "Hello", data["title"])
	assert.Equal(t, []any{"go", "cms"}, data["tags"])
	assert.Equal(t, "# Body\n\ntext\n", data[format.BodyField])
}

func TestFrontmatterWithoutBlock(t *testing.T) {
	f := format.Frontmatter{}
	data, err := f.FromFile("just a body\n")
	require.NoError(t, err)
	assert.Equal(t, "just a body\n", data[format.BodyField])
}

func TestFrontmatterMalformed(t *testing.T) {
	f := format.Frontmatter{}
	_, err := f.FromFile("---\ntitle: ok\nbroken\n---\nbody")
	assert.Error(t, err)
}

func TestFrontmatterRoundTrip(t *testing.T) {
	f := format.Frontmatter{}
	data := map[string]any{
		"title": "Round Trip",
		"draft": true,
		"body":  "the body\n",
	}

	raw, err := f.ToFile(data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "---\n"))
	assert.True(t, strings.HasSuffix(raw, "the body\n"))

	back, err := f.FromFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "Round Trip", back["title"])
	assert.Equal(t, true, back["draft"])
	assert.Equal(t, "the body\n", back[format.BodyField])
}

func TestFrontmatterBodyOnlyToFile(t *testing.T) {
	f := format.Frontmatter{}
	raw, err := f.ToFile(map[string]any{"body": "plain\n"})
	require.NoError(t, err)
	assert.Equal(t, "plain\n", raw)
}

func TestYAMLRoundTrip(t *testing.T) {
	f := format.YAML{}
	data := map[string]any{"name": "general", "count": 3}

	raw, err := f.ToFile(data)
	require.NoError(t, err)

	back, err := f.FromFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "general", back["name"])
	assert.Equal(t, 3, back["count"])
}

func TestTOMLRoundTrip(t *testing.T) {
	f := format.TOML{}
	data := map[string]any{"title": "Config", "enabled": true}

	raw, err := f.ToFile(data)
	require.NoError(t, err)

	back, err := f.FromFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "Config", back["title"])
	assert.Equal(t, true, back["enabled"])
}

func TestJSONRoundTrip(t *testing.T) {
	f := format.JSON{}
	data := map[string]any{"title": "Data", "tags": []any{"a", "b"}}

	raw, err := f.ToFile(data)
	require.NoError(t, err)

	back, err := f.FromFile(raw)
	require.NoError(t, err)
	assert.Equal(t, "Data", back["title"])
	assert.Equal(t, []any{"a", "b"}, back["tags"])
}

func TestJSONMalformed(t *testing.T) {
	f := format.JSON{}
	_, err := f.FromFile("{not json")
	assert.Error(t, err)
}
