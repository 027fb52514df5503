package format

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BodyField is the data key the document body is parked under; every other
// field lives in the front-matter block.
const BodyField = "body"

const delimiter = "---"

// Frontmatter reads and writes markdown documents with a YAML front-matter
// block.
type Frontmatter struct{}

func (Frontmatter) Name() string { return "frontmatter" }

// FromFile splits raw into front matter and body. A document without a
// front-matter block parses to just a body.
func (Frontmatter) FromFile(raw string) (map[string]any, error) {
	head, body, ok := splitFrontmatter(raw)
	if !ok {
		return map[string]any{BodyField: raw}, nil
	}

	data := map[string]any{}
	if err := yaml.Unmarshal([]byte(head), &data); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	data[BodyField] = body
	return data, nil
}

// ToFile writes every field except the body into a front-matter block and
// appends the body after it.
func (Frontmatter) ToFile(data map[string]any) (string, error) {
	meta := make(map[string]any, len(data))
	body := ""
	for k, v := range data {
		if k == BodyField {
			body, _ = v.(string)
			continue
		}
		meta[k] = v
	}

	var sb strings.Builder
	if len(meta) > 0 {
		head, err := yaml.Marshal(meta)
		if err != nil {
			return "", fmt.Errorf("serialize front matter: %w", err)
		}
		sb.WriteString(delimiter)
		sb.WriteString("\n")
		sb.Write(head)
		sb.WriteString(delimiter)
		sb.WriteString("\n")
	}
	sb.WriteString(body)
	return sb.String(), nil
}

// splitFrontmatter returns the YAML block and the remaining body. The block
// must start at the first line of the document.
func splitFrontmatter(raw string) (head, body string, ok bool) {
	if !strings.HasPrefix(raw, delimiter+"\n") && raw != delimiter {
		return "", "", false
	}
	rest := strings.TrimPrefix(raw, delimiter+"\n")
	end := strings.Index(rest, "\n"+delimiter)
	if end < 0 {
		if strings.HasPrefix(rest, delimiter) {
			end = -1 // empty block, closed immediately
			rest = strings.TrimPrefix(rest, delimiter)
			return "", strings.TrimPrefix(strings.TrimPrefix(rest, "\n"), "\n"), true
		}
		return "", "", false
	}
	head = rest[:end]
	body = rest[end+1+len(delimiter):]
	body = strings.TrimPrefix(body, "\n")
	return head, body, true
}
