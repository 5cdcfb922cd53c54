package ply

import "slices"

// Property is one concrete property value: exactly one of the sixteen
// variants below, eight scalars and eight lists of scalars. Callers inspect
// a Property with a type switch; there is no coercion between variants, so
// a CharValue is never readable as an IntValue.
//
// The interface is sealed; only this package defines variants.
type Property interface {
	// Scalar returns the value kind, or the element kind for lists.
	Scalar() ScalarType
	// IsList reports whether the variant is a list.
	IsList() bool

	isProperty()
}

// Scalar variants. They carry a Value suffix because the bare names Char
// through Double are the ScalarType constants.
type (
	CharValue   int8
	UCharValue  uint8
	ShortValue  int16
	UShortValue uint16
	IntValue    int32
	UIntValue   uint32
	FloatValue  float32
	DoubleValue float64
)

// List variants. A nil slice and an empty slice are both the empty list.
type (
	ListChar   []int8
	ListUChar  []uint8
	ListShort  []int16
	ListUShort []uint16
	ListInt    []int32
	ListUInt   []uint32
	ListFloat  []float32
	ListDouble []float64
)

func (CharValue) Scalar() ScalarType   { return Char }
func (UCharValue) Scalar() ScalarType  { return UChar }
func (ShortValue) Scalar() ScalarType  { return Short }
func (UShortValue) Scalar() ScalarType { return UShort }
func (IntValue) Scalar() ScalarType    { return Int }
func (UIntValue) Scalar() ScalarType   { return UInt }
func (FloatValue) Scalar() ScalarType  { return Float }
func (DoubleValue) Scalar() ScalarType { return Double }
func (ListChar) Scalar() ScalarType    { return Char }
func (ListUChar) Scalar() ScalarType   { return UChar }
func (ListShort) Scalar() ScalarType   { return Short }
func (ListUShort) Scalar() ScalarType  { return UShort }
func (ListInt) Scalar() ScalarType     { return Int }
func (ListUInt) Scalar() ScalarType    { return UInt }
func (ListFloat) Scalar() ScalarType   { return Float }
func (ListDouble) Scalar() ScalarType  { return Double }

func (CharValue) IsList() bool   { return false }
func (UCharValue) IsList() bool  { return false }
func (ShortValue) IsList() bool  { return false }
func (UShortValue) IsList() bool { return false }
func (IntValue) IsList() bool    { return false }
func (UIntValue) IsList() bool   { return false }
func (FloatValue) IsList() bool  { return false }
func (DoubleValue) IsList() bool { return false }
func (ListChar) IsList() bool    { return true }
func (ListUChar) IsList() bool   { return true }
func (ListShort) IsList() bool   { return true }
func (ListUShort) IsList() bool  { return true }
func (ListInt) IsList() bool     { return true }
func (ListUInt) IsList() bool    { return true }
func (ListFloat) IsList() bool   { return true }
func (ListDouble) IsList() bool  { return true }

func (CharValue) isProperty()   {}
func (UCharValue) isProperty()  {}
func (ShortValue) isProperty()  {}
func (UShortValue) isProperty() {}
func (IntValue) isProperty()    {}
func (UIntValue) isProperty()   {}
func (FloatValue) isProperty()  {}
func (DoubleValue) isProperty() {}
func (ListChar) isProperty()    {}
func (ListUChar) isProperty()   {}
func (ListShort) isProperty()   {}
func (ListUShort) isProperty()  {}
func (ListInt) isProperty()     {}
func (ListUInt) isProperty()    {}
func (ListFloat) isProperty()   {}
func (ListDouble) isProperty()  {}

// Matches reports whether p is a legal value for a property declared as t.
// The list index type is a wire concern and is not compared.
func Matches(p Property, t PropertyType) bool {
	if p == nil {
		return false
	}
	if p.IsList() != t.IsList() {
		return false
	}
	return p.Scalar() == t.Scalar
}

// Len returns the number of values p holds: the list length, or 1 for a
// scalar.
func Len(p Property) int {
	switch v := p.(type) {
	case ListChar:
		return len(v)
	case ListUChar:
		return len(v)
	case ListShort:
		return len(v)
	case ListUShort:
		return len(v)
	case ListInt:
		return len(v)
	case ListUInt:
		return len(v)
	case ListFloat:
		return len(v)
	case ListDouble:
		return len(v)
	case nil:
		return 0
	default:
		return 1
	}
}

// Clone returns a copy of p that shares no memory with it.
func Clone(p Property) Property {
	switch v := p.(type) {
	case ListChar:
		return ListChar(slices.Clone(v))
	case ListUChar:
		return ListUChar(slices.Clone(v))
	case ListShort:
		return ListShort(slices.Clone(v))
	case ListUShort:
		return ListUShort(slices.Clone(v))
	case ListInt:
		return ListInt(slices.Clone(v))
	case ListUInt:
		return ListUInt(slices.Clone(v))
	case ListFloat:
		return ListFloat(slices.Clone(v))
	case ListDouble:
		return ListDouble(slices.Clone(v))
	default:
		return p
	}
}

// Equal reports whether a and b hold the same variant and payload.
// Floating point values compare with ==, so NaN is never equal to itself.
func Equal(a, b Property) bool {
	switch x := a.(type) {
	case ListChar:
		y, ok := b.(ListChar)
		return ok && slices.Equal(x, y)
	case ListUChar:
		y, ok := b.(ListUChar)
		return ok && slices.Equal(x, y)
	case ListShort:
		y, ok := b.(ListShort)
		return ok && slices.Equal(x, y)
	case ListUShort:
		y, ok := b.(ListUShort)
		return ok && slices.Equal(x, y)
	case ListInt:
		y, ok := b.(ListInt)
		return ok && slices.Equal(x, y)
	case ListUInt:
		y, ok := b.(ListUInt)
		return ok && slices.Equal(x, y)
	case ListFloat:
		y, ok := b.(ListFloat)
		return ok && slices.Equal(x, y)
	case ListDouble:
		y, ok := b.(ListDouble)
		return ok && slices.Equal(x, y)
	default:
		// Scalar variants are comparable; differing dynamic types compare unequal.
		return a == b
	}
}
