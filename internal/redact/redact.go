// Package redact scrubs sensitive material from strings before they are
// logged. Error values in this service can carry connection strings, JWTs,
// email addresses and credential hashes; none of those belong in log output.
package redact

import "regexp"

// Redaction placeholders.
const (
	credentialPlaceholder = "[REDACTED_CREDENTIAL]"
	jwtPlaceholder        = "[REDACTED_JWT]"
	emailPlaceholder      = "[REDACTED_EMAIL]"
	hashPlaceholder       = "[REDACTED_HASH]"
)

// Precompiled patterns, ordered so broader credential forms are caught before
// narrower ones rewrite parts of them.
var patterns = []struct {
	re          *regexp.Regexp
	placeholder string
}{
	// Connection strings with embedded credentials.
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@[^\s]+`), credentialPlaceholder},
	// password=..., passwd: '...'
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`), credentialPlaceholder},
	// Standard three-part base64url JWTs.
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), jwtPlaceholder},
	// bcrypt digests.
	{regexp.MustCompile(`\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}`), hashPlaceholder},
	// Email addresses.
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), emailPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range patterns {
		result = p.re.ReplaceAllString(result, p.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
