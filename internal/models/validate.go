package models

import (
	"fmt"
	"strings"
)

const (
	maxNameLength    = 255
	maxContentBytes  = 10 * 1024 * 1024
	maxKeywords      = 20
	maxKeywordLength = 50
)

// ValidationError carries every constraint violation found in an input,
// not just the first one.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Validate checks a creation payload against the document field constraints.
// It returns a *ValidationError enumerating all violations, or nil.
func (in *DocumentInput) Validate() error {
	var violations []string

	if in.Name == "" {
		violations = append(violations, "name is required")
	} else if len(in.Name) > maxNameLength {
		violations = append(violations, fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}

	if in.Type == "" {
		violations = append(violations, "type is required")
	} else if !in.Type.Valid() {
		violations = append(violations, fmt.Sprintf("type must be one of: %s, %s", TypeImage, TypeText))
	}

	if len(in.Content) == 0 {
		violations = append(violations, "content is required")
	} else if len(in.Content) > maxContentBytes {
		violations = append(violations, fmt.Sprintf("content must be at most %d bytes", maxContentBytes))
	}

	violations = append(violations, validateKeywords(in.Keywords)...)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Validate checks an update payload. An update with no fields is rejected.
func (u *DocumentUpdate) Validate() error {
	var violations []string

	if u.Empty() {
		violations = append(violations, "at least one of name, keywords is required")
	}
	if u.Name != nil {
		if *u.Name == "" {
			violations = append(violations, "name must not be empty")
		} else if len(*u.Name) > maxNameLength {
			violations = append(violations, fmt.Sprintf("name must be at most %d characters", maxNameLength))
		}
	}
	if u.Keywords != nil {
		violations = append(violations, validateKeywords(*u.Keywords)...)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func validateKeywords(keywords []string) []string {
	var violations []string
	if len(keywords) > maxKeywords {
		violations = append(violations, fmt.Sprintf("keywords must have at most %d entries", maxKeywords))
	}
	for i, kw := range keywords {
		if kw == "" {
			violations = append(violations, fmt.Sprintf("keywords[%d] must not be empty", i))
		} else if len(kw) > maxKeywordLength {
			violations = append(violations, fmt.Sprintf("keywords[%d] must be at most %d characters", i, maxKeywordLength))
		}
	}
	return violations
}
