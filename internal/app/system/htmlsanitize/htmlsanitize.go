// Package htmlsanitize strips unsafe HTML from operator-supplied rich text
// (product descriptions) before it is stored.
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// Sanitize returns s with scripts, event handlers, and other unsafe markup
// removed. Safe formatting tags (p, strong, em, lists, links) survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
