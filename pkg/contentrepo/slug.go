package contentrepo

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugPlaceholder = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	slugUnsafe      = regexp.MustCompile(`[^a-z0-9._-]+`)
)

// DefaultSlugTemplate is applied when a collection declares no slug rule.
const DefaultSlugTemplate = "{{slug}}"

// FormatSlug expands a slug template against the given date and the draft's
// field values.
//
// Recognized placeholders: {{year}} (4-digit), {{month}} and {{day}}
// (zero-padded, from now), and {{slug}}, which derives from the title field
// (falling back to path), trimmed, lower-cased, with every run of characters
// outside [a-z0-9._-] collapsed to a single hyphen. Any other placeholder
// resolves through the field set raw and unsanitized; a placeholder with no
// matching field expands to the empty string, keeping the surrounding
// literal text intact.
func FormatSlug(template string, now time.Time, fields *Entry) string {
	if template == "" {
		template = DefaultSlugTemplate
	}
	return slugPlaceholder.ReplaceAllStringFunc(template, func(m string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(m, "{{"), "}}")
		switch name {
		case "year":
			return fmt.Sprintf("%04d", now.Year())
		case "month":
			return fmt.Sprintf("%02d", int(now.Month()))
		case "day":
			return fmt.Sprintf("%02d", now.Day())
		case "slug":
			v := fields.FieldOr("title", fields.FieldOr("path", ""))
			return sanitizeSlug(v)
		default:
			return fields.FieldOr(name, "")
		}
	})
}

func sanitizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return slugUnsafe.ReplaceAllString(s, "-")
}
