package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Clean strips all HTML markup from user-supplied text and trims
// surrounding whitespace. bluemonday entity-escapes what it keeps, so the
// result is unescaped back to plain text.
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
