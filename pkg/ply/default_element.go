package ply

import (
	"iter"
	"slices"
)

// DefaultElement is a ready-to-use element for any element class. It maps
// property names to Property values and remembers insertion order, which
// writers use to emit properties in declaration order.
//
// The zero value is an empty element ready for use. Define a dedicated
// struct implementing only the getters it needs when a more compact
// representation or faster access matters.
type DefaultElement struct {
	props map[string]Property
	order []string
}

// NewDefaultElement returns an empty element.
func NewDefaultElement() *DefaultElement {
	return &DefaultElement{props: make(map[string]Property)}
}

// NewElement implements Constructible.
func (*DefaultElement) NewElement() *DefaultElement {
	return NewDefaultElement()
}

// SetProperty implements Settable. Replacing a name keeps its original
// position in the insertion order.
func (e *DefaultElement) SetProperty(name string, p Property) {
	if e.props == nil {
		e.props = make(map[string]Property)
	}
	if _, exists := e.props[name]; !exists {
		e.order = append(e.order, name)
	}
	e.props[name] = p
}

// Get returns the stored value for name, whatever its variant.
func (e *DefaultElement) Get(name string) (Property, bool) {
	p, ok := e.props[name]
	return p, ok
}

// Delete removes name. Deleting a missing name is a no-op.
func (e *DefaultElement) Delete(name string) {
	if _, ok := e.props[name]; !ok {
		return
	}
	delete(e.props, name)
	if i := slices.Index(e.order, name); i >= 0 {
		e.order = slices.Delete(e.order, i, i+1)
	}
}

// Len returns the number of stored properties.
func (e *DefaultElement) Len() int {
	return len(e.order)
}

// Names returns the property names in insertion order.
func (e *DefaultElement) Names() []string {
	return slices.Clone(e.order)
}

// All iterates over the properties in insertion order.
func (e *DefaultElement) All() iter.Seq2[string, Property] {
	return func(yield func(string, Property) bool) {
		for _, name := range e.order {
			if !yield(name, e.props[name]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of e.
func (e *DefaultElement) Clone() *DefaultElement {
	out := &DefaultElement{
		props: make(map[string]Property, len(e.props)),
		order: slices.Clone(e.order),
	}
	for name, p := range e.props {
		out.props[name] = Clone(p)
	}
	return out
}

// Equal reports whether e and other hold the same names with equal values.
// Insertion order is not compared. A nil element equals only nil.
func (e *DefaultElement) Equal(other *DefaultElement) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Len() != other.Len() {
		return false
	}
	for name, p := range e.props {
		q, ok := other.props[name]
		if !ok || !Equal(p, q) {
			return false
		}
	}
	return true
}

// lookup returns the value stored under name if it is of variant T.
func lookup[T Property](e *DefaultElement, name string) (T, bool) {
	v, ok := e.props[name].(T)
	return v, ok
}

func (e *DefaultElement) GetChar(name string) (int8, bool) {
	v, ok := lookup[CharValue](e, name)
	return int8(v), ok
}

func (e *DefaultElement) GetUChar(name string) (uint8, bool) {
	v, ok := lookup[UCharValue](e, name)
	return uint8(v), ok
}

func (e *DefaultElement) GetShort(name string) (int16, bool) {
	v, ok := lookup[ShortValue](e, name)
	return int16(v), ok
}

func (e *DefaultElement) GetUShort(name string) (uint16, bool) {
	v, ok := lookup[UShortValue](e, name)
	return uint16(v), ok
}

func (e *DefaultElement) GetInt(name string) (int32, bool) {
	v, ok := lookup[IntValue](e, name)
	return int32(v), ok
}

func (e *DefaultElement) GetUInt(name string) (uint32, bool) {
	v, ok := lookup[UIntValue](e, name)
	return uint32(v), ok
}

func (e *DefaultElement) GetFloat(name string) (float32, bool) {
	v, ok := lookup[FloatValue](e, name)
	return float32(v), ok
}

func (e *DefaultElement) GetDouble(name string) (float64, bool) {
	v, ok := lookup[DoubleValue](e, name)
	return float64(v), ok
}

func (e *DefaultElement) GetListChar(name string) ([]int8, bool) {
	v, ok := lookup[ListChar](e, name)
	return v, ok
}

func (e *DefaultElement) GetListUChar(name string) ([]uint8, bool) {
	v, ok := lookup[ListUChar](e, name)
	return v, ok
}

func (e *DefaultElement) GetListShort(name string) ([]int16, bool) {
	v, ok := lookup[ListShort](e, name)
	return v, ok
}

func (e *DefaultElement) GetListUShort(name string) ([]uint16, bool) {
	v, ok := lookup[ListUShort](e, name)
	return v, ok
}

func (e *DefaultElement) GetListInt(name string) ([]int32, bool) {
	v, ok := lookup[ListInt](e, name)
	return v, ok
}

func (e *DefaultElement) GetListUInt(name string) ([]uint32, bool) {
	v, ok := lookup[ListUInt](e, name)
	return v, ok
}

func (e *DefaultElement) GetListFloat(name string) ([]float32, bool) {
	v, ok := lookup[ListFloat](e, name)
	return v, ok
}

func (e *DefaultElement) GetListDouble(name string) ([]float64, bool) {
	v, ok := lookup[ListDouble](e, name)
	return v, ok
}

var (
	_ Constructible[*DefaultElement] = (*DefaultElement)(nil)
	_ Settable                       = (*DefaultElement)(nil)
	_ FullReader                     = (*DefaultElement)(nil)
)
