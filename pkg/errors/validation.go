package errors

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength bounds intent labels. Merged labels are concatenations, so
// the bound is generous.
const MaxLabelLength = 512

// ValidateLabel rejects labels that are blank, longer than MaxLabelLength
// runes, contain control characters, or start with the reserved "__" prefix
// (item names with that prefix are skipped on load).
func ValidateLabel(label string) error {
	switch {
	case strings.TrimSpace(label) == "":
		return New(ErrCodeInvalidInput, "label cannot be empty")
	case utf8.RuneCountInString(label) > MaxLabelLength:
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", MaxLabelLength)
	case strings.IndexFunc(label, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidInput, "label contains control characters")
	case strings.HasPrefix(label, "__"):
		return New(ErrCodeInvalidInput, "label cannot start with reserved prefix %q", "__")
	}
	return nil
}

// ValidateURL checks that rawURL is an absolute http or https URL with a
// host, as required for the extraction service endpoint.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", rawURL)
	}
	return nil
}
