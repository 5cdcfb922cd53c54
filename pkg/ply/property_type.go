package ply

import (
	"fmt"
	"strings"
)

// TypeKind distinguishes scalar from list property types.
type TypeKind uint8

const (
	KindScalar TypeKind = iota + 1
	KindList
)

// String returns "scalar" or "list".
func (k TypeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("TypeKind(%d)", uint8(k))
	}
}

// PropertyType describes one declared property: either a single scalar or
// a list of scalars. Two PropertyType values are equal iff all fields match,
// so == is structural equality and assignment is a clone.
type PropertyType struct {
	Kind TypeKind

	// Scalar is the value kind for scalars and the element kind for lists.
	Scalar ScalarType

	// Index is the kind of the on-wire length prefix of a list. It should
	// be an integer type; it never limits the in-memory length. Unused for
	// scalars.
	Index ScalarType
}

// ScalarOf returns the descriptor of a single value of kind s.
func ScalarOf(s ScalarType) PropertyType {
	return PropertyType{Kind: KindScalar, Scalar: s}
}

// ListOf returns the descriptor of a list of elem values whose length is
// encoded as index.
func ListOf(index, elem ScalarType) PropertyType {
	return PropertyType{Kind: KindList, Scalar: elem, Index: index}
}

// IsList reports whether t describes a list.
func (t PropertyType) IsList() bool {
	return t.Kind == KindList
}

// Validate checks that t is well formed. The list index rule is reported
// as ErrInvalidIndexType; construction does not enforce it.
func (t PropertyType) Validate() error {
	switch t.Kind {
	case KindScalar:
		if !t.Scalar.IsValid() {
			return fmt.Errorf("%w: %s", ErrUnknownScalarType, t.Scalar)
		}
		return nil
	case KindList:
		if !t.Scalar.IsValid() {
			return fmt.Errorf("%w: list element %s", ErrUnknownScalarType, t.Scalar)
		}
		if !t.Index.IsInteger() {
			return fmt.Errorf("%w: got %s", ErrInvalidIndexType, t.Index)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %s", ErrInvalidPropertyType, t.Kind)
	}
}

// String renders t the way a PLY header declares it, e.g. "float" or
// "list uchar int".
func (t PropertyType) String() string {
	if t.Kind == KindList {
		return "list " + t.Index.String() + " " + t.Scalar.String()
	}
	return t.Scalar.String()
}

// ParsePropertyType parses the forms produced by String.
func ParsePropertyType(s string) (PropertyType, error) {
	fields := strings.Fields(s)
	switch {
	case len(fields) == 1:
		st, err := ParseScalarType(fields[0])
		if err != nil {
			return PropertyType{}, err
		}
		return ScalarOf(st), nil
	case len(fields) == 3 && fields[0] == "list":
		index, err := ParseScalarType(fields[1])
		if err != nil {
			return PropertyType{}, err
		}
		elem, err := ParseScalarType(fields[2])
		if err != nil {
			return PropertyType{}, err
		}
		return ListOf(index, elem), nil
	default:
		return PropertyType{}, fmt.Errorf("%w: %q", ErrInvalidPropertyType, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t PropertyType) MarshalText() ([]byte, error) {
	if t.Kind != KindScalar && t.Kind != KindList {
		return nil, fmt.Errorf("%w: kind %s", ErrInvalidPropertyType, t.Kind)
	}
	if !t.Scalar.IsValid() || (t.IsList() && !t.Index.IsValid()) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScalarType, t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PropertyType) UnmarshalText(text []byte) error {
	parsed, err := ParsePropertyType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
