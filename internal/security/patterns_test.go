package security

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDetectSQLInjection(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		match bool
	}{
		{"or tautology", `{"q": "' OR 1=1"}`, true},
		{"comment after quote", `{"q": "admin'--"}`, true},
		{"drop table", `{"q": "x; DROP TABLE users"}`, true},
		{"union select", `{"q": "1 UNION SELECT password FROM users"}`, true},
		{"encoded quote", `{"q": "a%27b"}`, true},
		{"encoded hash", `{"q": "a%23b"}`, true},
		{"plain text", `{"q": "hello world"}`, false},
		{"ordinary update", `{"name": "New Name", "role": "admin"}`, false},
		{"empty", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := DetectPatterns(tt.body)
			found := false
			for _, m := range matches {
				if m.Kind == PatternSQLInjection {
					found = true
				}
			}
			if found != tt.match {
				t.Errorf("DetectPatterns(%q) sqli = %v, want %v", tt.body, found, tt.match)
			}
		})
	}
}

func TestDetectXSS(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		match bool
	}{
		{"script tag", `{"bio": "<script>alert(1)</script>"}`, true},
		{"javascript url", `{"link": "javascript:alert(1)"}`, true},
		{"event handler", `{"bio": "<img src=x onerror=alert(1)>"}`, true},
		{"plain html-ish", `{"bio": "I like <3 and math"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := DetectPatterns(tt.body)
			found := false
			for _, m := range matches {
				if m.Kind == PatternXSS {
					found = true
				}
			}
			if found != tt.match {
				t.Errorf("DetectPatterns(%q) xss = %v, want %v", tt.body, found, tt.match)
			}
		})
	}
}

func TestDetectExcerptTruncated(t *testing.T) {
	long := `{"q": "' OR 1=1 ` + strings.Repeat("A", 500) + `"}`
	matches := DetectPatterns(long)
	if len(matches) == 0 {
		t.Fatal("no match on long injection body")
	}
	m := matches[0]
	if len(m.Excerpt) != ExcerptMaxLen {
		t.Errorf("excerpt length = %d, want %d", len(m.Excerpt), ExcerptMaxLen)
	}
	if !strings.Contains(m.Excerpt, "' OR 1=1") {
		t.Error("excerpt lost the offending substring")
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"short string untouched", "abc", 10, "abc"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"cut lands mid rune", "abécd", 3, "ab"},
		{"cut lands on boundary", "abécd", 4, "abé"},
		{"multibyte only", strings.Repeat("世", 5), 4, "世"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.n)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Truncate(%q, %d) produced invalid UTF-8", tt.s, tt.n)
			}
		})
	}
}

func TestSuspiciousUserAgent(t *testing.T) {
	tests := []struct {
		ua       string
		expected bool
	}{
		{"", true},
		{"curl", true},
		{"Mozilla/5.0 (X11; Linux x86_64)", false},
		{"wget/1.21", false},
	}
	for _, tt := range tests {
		t.Run(tt.ua, func(t *testing.T) {
			if got := SuspiciousUserAgent(tt.ua); got != tt.expected {
				t.Errorf("SuspiciousUserAgent(%q) = %v, want %v", tt.ua, got, tt.expected)
			}
		})
	}
}
