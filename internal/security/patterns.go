package security

import (
	"regexp"
	"unicode/utf8"
)

// Pattern kinds reported by DetectPatterns.
const (
	PatternSQLInjection = "SQL_INJECTION"
	PatternXSS          = "XSS"
)

// ExcerptMaxLen caps the body excerpt stored with a detection, enough
// for forensics without copying whole payloads into the audit log.
const ExcerptMaxLen = 200

// Heuristics, not parsers: quote+comment sequences, OR-equality
// tautologies, DROP TABLE / UNION SELECT, URL-encoded quote and hash
// markers.
var sqlInjectionPattern = regexp.MustCompile(`(?i)('\s*(--|#|;)|--|\bor\b\s*\S+\s*=|;\s*drop\s+table|\bunion\b\s+\bselect\b|%27|%23|#)`)

var xssPattern = regexp.MustCompile(`(?i)(<script|javascript:|\bon\w+\s*=)`)

// Match is one suspicious pattern found in a request body.
type Match struct {
	Kind    string
	Excerpt string
}

// DetectPatterns scans a stringified request body for injection
// heuristics. It only reports; whether a match blocks the request is
// the caller's policy.
func DetectPatterns(body string) []Match {
	if body == "" {
		return nil
	}
	var matches []Match
	if sqlInjectionPattern.MatchString(body) {
		matches = append(matches, Match{Kind: PatternSQLInjection, Excerpt: Truncate(body, ExcerptMaxLen)})
	}
	if xssPattern.MatchString(body) {
		matches = append(matches, Match{Kind: PatternXSS, Excerpt: Truncate(body, ExcerptMaxLen)})
	}
	return matches
}

// SuspiciousUserAgent flags missing or implausibly short user agents.
func SuspiciousUserAgent(ua string) bool {
	return len(ua) < 5
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 rune:
// the cut backs up to the nearest rune boundary.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
