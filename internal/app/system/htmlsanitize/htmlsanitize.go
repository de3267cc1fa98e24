// Package htmlsanitize cleans announcement text before it is stored.
//
// The public page renders announcement messages as HTML, so staff can use
// basic formatting (bold, links, lists). Anything that can run script is
// removed.
package htmlsanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy = newPolicy()

	// An element, closing tag, comment or doctype opener.
	tagStart = regexp.MustCompile(`<[a-zA-Z/!]`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// IsPlainText reports whether s contains no markup. Bare "<", ">" and "&"
// characters are text, not markup.
func IsPlainText(s string) bool {
	return !tagStart.MatchString(s)
}

// Sanitize returns s with unsafe markup removed. Plain text is returned
// unchanged; bluemonday would entity-escape its "&", "<" and ">".
func Sanitize(s string) string {
	if IsPlainText(s) {
		return s
	}
	return strings.TrimSpace(policy.Sanitize(s))
}
