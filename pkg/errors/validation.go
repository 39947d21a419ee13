package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxLabelLength bounds node labels; longer labels make unreadable records.
const maxLabelLength = 64

// ValidateLabel checks a node label taken from an expression document.
//
// Labels end up verbatim inside Graphviz record labels, so the rules reject
// characters that carry meaning in record syntax:
//   - No empty labels
//   - No control characters (newlines included)
//   - No record separators or braces: | { } < >
//   - Maximum length of 64 characters
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidLabel, "label cannot be empty")
	}

	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidLabel, "label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label %q contains control characters", label)
		}
	}

	if i := strings.IndexAny(label, "|{}<>"); i >= 0 {
		return New(ErrCodeInvalidLabel, "label %q contains reserved character %q", label, label[i])
	}

	return nil
}

// inputNameRegex matches names usable as gradcheck inputs and CLI overrides.
var inputNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_']*$`)

// ValidateInputName validates a leaf label that is also used as an input name
// (e.g. in "--set a=2.5"). It is stricter than ValidateLabel.
func ValidateInputName(name string) error {
	if err := ValidateLabel(name); err != nil {
		return err
	}

	if !inputNameRegex.MatchString(name) {
		return New(ErrCodeInvalidLabel, "invalid input name: %q", name)
	}

	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
func ValidateFormat(format string, allowed map[string]bool) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !allowed[format] {
		return New(ErrCodeInvalidFormat, "unsupported format: %q", format)
	}
	return nil
}
