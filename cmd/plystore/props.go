// Parsing and printing of element properties on the command line.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/plycore/pkg/ply"
)

var errBadProp = errors.New("property must be name=type:value")

// parseProp parses one --prop argument. The type is a scalar keyword,
// "list <scalar>" or a full header type such as "list uchar int"; list
// values are comma-separated and may be empty.
func parseProp(arg string) (string, ply.Property, error) {
	name, rest, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("%w: %q", errBadProp, arg)
	}
	typ, value, ok := strings.Cut(rest, ":")
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", errBadProp, arg)
	}

	variant, err := variantOf(typ)
	if err != nil {
		return "", nil, fmt.Errorf("property %s: %w", name, err)
	}

	value = strings.TrimSpace(value)
	var raw string
	if strings.HasPrefix(variant, "list ") {
		raw = "[" + value + "]"
	} else {
		raw = value
	}
	if !json.Valid([]byte(raw)) {
		return "", nil, fmt.Errorf("property %s: %w: malformed value %q", name, ply.ErrInvalidValue, value)
	}

	p, err := ply.DecodeValue(variant, json.RawMessage(raw))
	if err != nil {
		return "", nil, fmt.Errorf("property %s: %w", name, err)
	}
	return name, p, nil
}

// variantOf normalizes a type argument to a variant name.
func variantOf(typ string) (string, error) {
	fields := strings.Fields(typ)
	if len(fields) == 3 {
		t, err := ply.ParsePropertyType(typ)
		if err != nil {
			return "", err
		}
		return "list " + t.Scalar.String(), nil
	}
	st, isList, err := ply.ParseVariant(typ)
	if err != nil {
		return "", err
	}
	if isList {
		return "list " + st.String(), nil
	}
	return st.String(), nil
}

// buildElement parses every --prop argument into a new element. A name
// given twice keeps its first position and takes the last value.
func buildElement(args []string) (*ply.DefaultElement, error) {
	e := ply.NewDefaultElement()
	for _, arg := range args {
		name, p, err := parseProp(arg)
		if err != nil {
			return nil, err
		}
		e.SetProperty(name, p)
	}
	return e, nil
}

// formatValue renders p's payload the way it is typed on the command line.
func formatValue(p ply.Property) (string, error) {
	raw, err := ply.EncodeValue(p)
	if err != nil {
		return "", err
	}
	if !p.IsList() {
		return string(raw), nil
	}
	var nums []json.Number
	if err := json.Unmarshal(raw, &nums); err != nil {
		return "", err
	}
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = n.String()
	}
	return strings.Join(parts, ","), nil
}

// writeElement prints one line per property: name, type and value.
func writeElement(w io.Writer, e *ply.DefaultElement) error {
	for name, p := range e.All() {
		value, err := formatValue(p)
		if err != nil {
			return fmt.Errorf("property %s: %w", name, err)
		}
		fmt.Fprintf(w, "  %s %s: %s\n", ply.VariantName(p), name, value)
	}
	return nil
}
