// Package logging provides zerolog helpers that keep secrets out of logs.
// Build-setting overrides and CI environments regularly carry tokens and
// passwords; everything written to the log file passes through a
// FilteringWriter, and command lines are scrubbed with SafeArgv before they
// are logged.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

// redactions are applied in order. Build settings keep their name so the log
// still shows which setting was passed.
var redactions = []redaction{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Build settings whose name mentions a secret (API_TOKEN=..., KEYCHAIN_PASSWORD=...)
	{
		regexp.MustCompile(`\b([A-Za-z0-9_]*(?i:token|password|passwd|secret|key)[A-Za-z0-9_]*)=([^\s"',\]]+)`),
		"${1}=" + RedactedValue,
	},

	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_)
	{regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`), RedactedValue},

	// Bearer tokens
	{regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-.]{20,}`), RedactedValue},

	// Private keys
	{regexp.MustCompile(`-----BEGIN[A-Z\s]+PRIVATE KEY-----`), RedactedValue},
}

// sensitiveFieldNames are substrings of build-setting or field names whose
// values are always redacted. Matching is case-insensitive.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"token",
	"password",
	"passwd",
	"secret",
	"key",
	"credential",
	"authorization",
}

// SensitiveDataHook is a zerolog hook that flags log entries whose message
// contains sensitive data. zerolog does not allow a hook to rewrite the
// message, so call sites scrub values with SafeValue or SafeArgv and the file
// writer is wrapped in a FilteringWriter.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, r := range redactions {
		if r.pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every sensitive match in value with [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value
	for _, r := range redactions {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// IsSensitiveFieldName reports whether a field or setting name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns [REDACTED] if fieldName indicates sensitive data,
// otherwise value with any sensitive patterns filtered.
//
// Usage:
//
//	log.Debug().Str("xcconfig", logging.SafeValue("xcconfig", path)).Msg("using overrides")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// SafeArgv returns a copy of argv with sensitive values redacted, for logging
// external command lines.
func SafeArgv(argv []string) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = FilterSensitiveValue(arg)
	}
	return out
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
// It wraps the log file writer so secrets never reach disk.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	// Report the original length so callers don't see a short write.
	return len(p), nil
}
