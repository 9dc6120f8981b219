// Package htmlsanitize strips unsafe HTML from user-supplied text before it
// is persisted. Comment text and meeting descriptions pass through here.
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// policy allows basic formatting (bold, italics, paragraphs, links) and
// strips scripts, event handlers, and javascript: URLs.
var policy = bluemonday.UGCPolicy()

// Sanitize returns s with unsafe HTML removed. Plain text passes through
// unchanged.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
