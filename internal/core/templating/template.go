// Package templating validates reply templates against their declared
// variables and renders them.
package templating

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxContentLength is measured in characters, not bytes.
const MaxContentLength = 1024

// Reasons reported by ValidationError. They are surfaced to callers as-is.
const (
	ReasonTooLong            = "exceeds length limit"
	ReasonDuplicateVariables = "duplicate variables"
	ReasonUndeclared         = "used but not declared"
	ReasonUnused             = "declared but not used"
	ReasonOrderMismatch      = "variable order mismatch"
)

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// ValidationError reports the first rule a template violates.
type ValidationError struct {
	Reason    string
	Variables []string
}

func (e *ValidationError) Error() string {
	if len(e.Variables) == 0 {
		return "template validation failed: " + e.Reason
	}
	return fmt.Sprintf("template validation failed: %s: %s", e.Reason, strings.Join(e.Variables, ", "))
}

// ExtractVariables returns every {{name}} occurrence in content, in order.
func ExtractVariables(content string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Validate checks content against the declared variable list. Rules are
// applied in a fixed order and the first failure wins.
func Validate(content string, declared []string) error {
	if utf8.RuneCountInString(content) > MaxContentLength {
		return &ValidationError{Reason: ReasonTooLong}
	}

	used := ExtractVariables(content)

	if dups := duplicates(used); len(dups) > 0 {
		return &ValidationError{Reason: ReasonDuplicateVariables, Variables: dups}
	}
	if dups := duplicates(declared); len(dups) > 0 {
		return &ValidationError{Reason: ReasonDuplicateVariables, Variables: dups}
	}

	if missing := difference(used, declared); len(missing) > 0 {
		return &ValidationError{Reason: ReasonUndeclared, Variables: missing}
	}
	if unused := difference(declared, used); len(unused) > 0 {
		return &ValidationError{Reason: ReasonUnused, Variables: unused}
	}

	if len(declared) == len(used) {
		for i := range declared {
			if declared[i] != used[i] {
				return &ValidationError{Reason: ReasonOrderMismatch, Variables: used}
			}
		}
	}

	return nil
}

// Render substitutes each declared variable with its value, or an empty
// string when no value is given. Placeholders that were never declared are
// left in place.
func Render(content string, declared []string, values map[string]string) string {
	if len(declared) == 0 {
		return content
	}

	pairs := make([]string, 0, len(declared)*2)
	for _, name := range declared {
		pairs = append(pairs, "{{"+name+"}}", values[name])
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

// OrderedValues lays values out in declared order, for providers that take
// positional template parameters.
func OrderedValues(declared []string, values map[string]string) []string {
	out := make([]string, len(declared))
	for i, name := range declared {
		out[i] = values[name]
	}
	return out
}

func duplicates(names []string) []string {
	seen := make(map[string]int, len(names))
	var dups []string
	for _, n := range names {
		seen[n]++
		if seen[n] == 2 {
			dups = append(dups, n)
		}
	}
	return dups
}

// difference returns the names of a missing from b, keeping a's order.
func difference(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, n := range b {
		set[n] = struct{}{}
	}
	var out []string
	for _, n := range a {
		if _, ok := set[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
