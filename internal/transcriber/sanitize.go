package transcriber

import "regexp"

// API error bodies can echo request URLs or headers containing credentials,
// and local tooling errors can embed home directory paths. Scrub both before
// an error string is logged or surfaced.
var (
	keyLikeToken = regexp.MustCompile(`[A-Za-z0-9_\-]{32,}`)
	homePath     = regexp.MustCompile(`/(?:Users|home)/[^/\s"']+`)
)

func sanitizeErrorString(s string) string {
	s = keyLikeToken.ReplaceAllString(s, "[REDACTED]")
	s = homePath.ReplaceAllString(s, "/[USER]")
	return s
}
