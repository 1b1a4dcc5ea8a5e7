package logging

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rreusch2/fluxstreams/pkg/config"
)

// Built-in pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternEmail       = "email"
	PatternPhone       = "phone"
)

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Redactor masks PII and credentials in log values. Patterns are applied
// in order: built-ins first, then custom ones.
type Redactor struct {
	patterns []redactPattern
}

// NewRedactor compiles the built-in patterns plus custom ones. A custom
// pattern that does not compile is an error.
func NewRedactor(custom []config.RedactPattern) (*Redactor, error) {
	r := &Redactor{}

	defaults := []struct {
		name, regex, replacement string
	}{
		// Bearer before api_key so the token body is not half-masked.
		{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
		{PatternAPIKey, `(sk-[a-zA-Z0-9_-]{8,}|xai-[a-zA-Z0-9]{8,}|AIza[0-9A-Za-z_-]{20,})`, "***"},
		{PatternEmail, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "***@***"},
		{PatternPhone, `(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`, "***-***-****"},
	}
	for _, d := range defaults {
		r.patterns = append(r.patterns, redactPattern{
			name:        d.name,
			regex:       regexp.MustCompile(d.regex),
			replacement: d.replacement,
		})
	}

	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p.Name, err)
		}
		r.patterns = append(r.patterns, redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r, nil
}

// RedactString masks every pattern match in value.
func (r *Redactor) RedactString(value string) string {
	if r == nil || value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// IsSensitiveKey reports whether an attribute key names a secret or a
// contact field whose value is masked entirely.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{
		"password", "secret", "token", "api_key", "apikey", "authorization",
		"email", "phone",
	} {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// RedactAPIKey keeps only a short prefix of a key, for diagnostics.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}
