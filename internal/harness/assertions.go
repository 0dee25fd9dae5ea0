package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

func checkAssertion(records []any, a Assertion) error {
	switch a.Type {
	case AssertCount:
		return assertCount(records, a)
	case AssertOrder:
		return assertOrder(records, a)
	case AssertContains:
		return assertContains(records, a)
	case AssertExcludes:
		return assertExcludes(records, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertCount(records []any, a Assertion) error {
	if len(records) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d records", a.Count),
		Actual:   fmt.Sprintf("%d records", len(records)),
	}
}

// assertOrder checks that a field reads, record by record, exactly as
// listed.
func assertOrder(records []any, a Assertion) error {
	got := make([]any, len(records))
	for i, rec := range records {
		got[i], _ = lookup(rec, a.Field)
	}

	fail := func() error {
		return &AssertionError{
			Type:     AssertOrder,
			Expected: fmt.Sprintf("%s in order %s", a.Field, render(a.Values)),
			Actual:   render(got),
		}
	}

	if len(got) != len(a.Values) {
		return fail()
	}
	for i := range got {
		if !sameValue(got[i], a.Values[i]) {
			return fail()
		}
	}
	return nil
}

func assertContains(records []any, a Assertion) error {
	for _, rec := range records {
		if matchWhere(rec, a.Where) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("a record matching %s", render(a.Where)),
		Actual:   "none found",
	}
}

func assertExcludes(records []any, a Assertion) error {
	for i, rec := range records {
		if matchWhere(rec, a.Where) {
			return &AssertionError{
				Type:     AssertExcludes,
				Expected: fmt.Sprintf("no record matching %s", render(a.Where)),
				Actual:   fmt.Sprintf("record %d: %s", i, render(rec)),
			}
		}
	}
	return nil
}

// matchWhere reports whether rec holds every field in where (subset
// semantics). Keys may be dotted paths into nested records.
func matchWhere(rec any, where map[string]any) bool {
	for path, want := range where {
		got, ok := lookup(rec, path)
		if !ok || !sameValue(got, want) {
			return false
		}
	}
	return true
}

// lookup reads a dotted path from a decoded record.
func lookup(rec any, path string) (any, bool) {
	cur := rec
	for _, name := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[name]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// sameValue compares two decoded values by their canonical encoding, so
// int 36 from YAML equals int64 36 from the store.
func sameValue(a, b any) bool {
	ca, err := canonical(a)
	if err != nil {
		return false
	}
	cb, err := canonical(b)
	if err != nil {
		return false
	}
	return ca == cb
}

func render(v any) string {
	s, err := canonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}
