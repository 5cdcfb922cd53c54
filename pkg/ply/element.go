package ply

// An element is one record of a PLY element class, such as one vertex or
// one face. Rather than one interface with sixteen getters, element access
// is split into narrow capabilities: an element type implements only the
// getters for the kinds it stores, and code that needs a capability names
// exactly that interface. DefaultElement implements all of them.
//
// Every getter reports ok == false both when the name was never set and
// when it holds a different variant. Callers that need to tell those apart
// must consult the schema; see Check.

// Constructible is implemented by element types that produce a fresh, empty
// instance of themselves. NewElement must not depend on the receiver's
// state, so it can be called on a zero value or a nil pointer.
type Constructible[E any] interface {
	NewElement() E
}

// New returns a fresh, empty element of type E.
func New[E Constructible[E]]() E {
	var zero E
	return zero.NewElement()
}

// Settable is the single ingestion point a payload decoder uses to populate
// an element. Setting an existing name replaces its value. Storing a variant
// that disagrees with the declared type is a caller error and is not detected.
type Settable interface {
	SetProperty(name string, p Property)
}

// CharGetter reads char (int8) properties.
type CharGetter interface {
	GetChar(name string) (int8, bool)
}

// UCharGetter reads uchar (uint8) properties.
type UCharGetter interface {
	GetUChar(name string) (uint8, bool)
}

// ShortGetter reads short (int16) properties.
type ShortGetter interface {
	GetShort(name string) (int16, bool)
}

// UShortGetter reads ushort (uint16) properties.
type UShortGetter interface {
	GetUShort(name string) (uint16, bool)
}

// IntGetter reads int (int32) properties.
type IntGetter interface {
	GetInt(name string) (int32, bool)
}

// UIntGetter reads uint (uint32) properties.
type UIntGetter interface {
	GetUInt(name string) (uint32, bool)
}

// FloatGetter reads float (float32) properties.
type FloatGetter interface {
	GetFloat(name string) (float32, bool)
}

// DoubleGetter reads double (float64) properties.
type DoubleGetter interface {
	GetDouble(name string) (float64, bool)
}

// List getters return the element's own slice. The caller borrows it: it
// must not be modified, and it is only valid until the element is next set.

// ListCharGetter reads lists of char.
type ListCharGetter interface {
	GetListChar(name string) ([]int8, bool)
}

// ListUCharGetter reads lists of uchar.
type ListUCharGetter interface {
	GetListUChar(name string) ([]uint8, bool)
}

// ListShortGetter reads lists of short.
type ListShortGetter interface {
	GetListShort(name string) ([]int16, bool)
}

// ListUShortGetter reads lists of ushort.
type ListUShortGetter interface {
	GetListUShort(name string) ([]uint16, bool)
}

// ListIntGetter reads lists of int.
type ListIntGetter interface {
	GetListInt(name string) ([]int32, bool)
}

// ListUIntGetter reads lists of uint.
type ListUIntGetter interface {
	GetListUInt(name string) ([]uint32, bool)
}

// ListFloatGetter reads lists of float.
type ListFloatGetter interface {
	GetListFloat(name string) ([]float32, bool)
}

// ListDoubleGetter reads lists of double.
type ListDoubleGetter interface {
	GetListDouble(name string) ([]float64, bool)
}

// ScalarReader can read every scalar kind.
type ScalarReader interface {
	CharGetter
	UCharGetter
	ShortGetter
	UShortGetter
	IntGetter
	UIntGetter
	FloatGetter
	DoubleGetter
}

// ListReader can read every list kind.
type ListReader interface {
	ListCharGetter
	ListUCharGetter
	ListShortGetter
	ListUShortGetter
	ListIntGetter
	ListUIntGetter
	ListFloatGetter
	ListDoubleGetter
}

// FullReader is satisfied by any type that implements all sixteen getters.
type FullReader interface {
	ScalarReader
	ListReader
}
