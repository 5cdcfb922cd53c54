package ply

import "fmt"

// ScalarType is one of the eight primitive numeric kinds a PLY property
// can hold. The zero value is not a valid scalar type.
type ScalarType uint8

const (
	Char   ScalarType = iota + 1 // int8
	UChar                        // uint8
	Short                        // int16
	UShort                       // uint16
	Int                          // int32
	UInt                         // uint32
	Float                        // float32
	Double                       // float64
)

// scalarNames holds the PLY keyword for each scalar type, indexed by tag.
var scalarNames = [...]string{
	Char:   "char",
	UChar:  "uchar",
	Short:  "short",
	UShort: "ushort",
	Int:    "int",
	UInt:   "uint",
	Float:  "float",
	Double: "double",
}

// scalarAliases maps every accepted spelling to its scalar type. Headers in
// the wild use both the original keywords and the sized names.
var scalarAliases = map[string]ScalarType{
	"char":    Char,
	"int8":    Char,
	"uchar":   UChar,
	"uint8":   UChar,
	"short":   Short,
	"int16":   Short,
	"ushort":  UShort,
	"uint16":  UShort,
	"int":     Int,
	"int32":   Int,
	"uint":    UInt,
	"uint32":  UInt,
	"float":   Float,
	"float32": Float,
	"double":  Double,
	"float64": Double,
}

// ScalarTypes lists all valid scalar types in tag order.
func ScalarTypes() []ScalarType {
	return []ScalarType{Char, UChar, Short, UShort, Int, UInt, Float, Double}
}

// ParseScalarType returns the scalar type named by s.
// Returns ErrUnknownScalarType if s is not a recognized name.
func ParseScalarType(s string) (ScalarType, error) {
	if t, ok := scalarAliases[s]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScalarType, s)
}

// String returns the PLY keyword for the scalar type.
func (t ScalarType) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("ScalarType(%d)", uint8(t))
	}
	return scalarNames[t]
}

// IsValid reports whether t is one of the eight scalar types.
func (t ScalarType) IsValid() bool {
	return t >= Char && t <= Double
}

// IsInteger reports whether t is one of the six integer types, the only
// types allowed as a list index.
func (t ScalarType) IsInteger() bool {
	return t >= Char && t <= UInt
}

// MarshalText implements encoding.TextMarshaler.
func (t ScalarType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScalarType, uint8(t))
	}
	return []byte(scalarNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ScalarType) UnmarshalText(text []byte) error {
	parsed, err := ParseScalarType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
