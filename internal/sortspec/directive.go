package sortspec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyField is returned by NewDirective for a token with no field name.
var ErrEmptyField = errors.New("sortspec: empty field name")

// Direction is the order a directive sorts in.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "Descending"
	}
	return "Ascending"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "ascending", "asc":
		*d = Ascending
	case "descending", "desc":
		*d = Descending
	default:
		return fmt.Errorf("sortspec: unknown direction %q", text)
	}
	return nil
}

// Directive orders by one field.
type Directive struct {
	Field     string    `json:"field" yaml:"field"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// NewDirective builds a directive from one sort token. Leading dashes are
// stripped and make the directive descending.
func NewDirective(token string) (Directive, error) {
	token = strings.TrimSpace(token)
	field := strings.TrimLeft(token, "-")
	dir := Ascending
	if len(field) != len(token) {
		dir = Descending
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return Directive{}, fmt.Errorf("%w: %q", ErrEmptyField, token)
	}
	return Directive{Field: field, Direction: dir}, nil
}

// Asc is shorthand for an ascending directive.
func Asc(field string) Directive { return Directive{Field: field, Direction: Ascending} }

// Desc is shorthand for a descending directive.
func Desc(field string) Directive { return Directive{Field: field, Direction: Descending} }

// String renders the directive back as a sort token.
func (d Directive) String() string {
	if d.Direction == Descending {
		return "-" + d.Field
	}
	return d.Field
}

// Format renders directives as a sort parameter value.
func Format(dirs []Directive) string {
	tokens := make([]string, len(dirs))
	for i, d := range dirs {
		tokens[i] = d.String()
	}
	return strings.Join(tokens, ",")
}
