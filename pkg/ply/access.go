package ply

import "fmt"

// Read fetches name from r through the getter matching t and returns it as
// a Property. A writer uses Read to pull each declared property out of an
// element of any representation. The list index type of t is ignored.
func Read(r FullReader, name string, t PropertyType) (Property, bool) {
	if t.IsList() {
		return readList(r, name, t.Scalar)
	}
	switch t.Scalar {
	case Char:
		v, ok := r.GetChar(name)
		return wrap(CharValue(v), ok)
	case UChar:
		v, ok := r.GetUChar(name)
		return wrap(UCharValue(v), ok)
	case Short:
		v, ok := r.GetShort(name)
		return wrap(ShortValue(v), ok)
	case UShort:
		v, ok := r.GetUShort(name)
		return wrap(UShortValue(v), ok)
	case Int:
		v, ok := r.GetInt(name)
		return wrap(IntValue(v), ok)
	case UInt:
		v, ok := r.GetUInt(name)
		return wrap(UIntValue(v), ok)
	case Float:
		v, ok := r.GetFloat(name)
		return wrap(FloatValue(v), ok)
	case Double:
		v, ok := r.GetDouble(name)
		return wrap(DoubleValue(v), ok)
	}
	return nil, false
}

func readList(r ListReader, name string, elem ScalarType) (Property, bool) {
	switch elem {
	case Char:
		v, ok := r.GetListChar(name)
		return wrap(ListChar(v), ok)
	case UChar:
		v, ok := r.GetListUChar(name)
		return wrap(ListUChar(v), ok)
	case Short:
		v, ok := r.GetListShort(name)
		return wrap(ListShort(v), ok)
	case UShort:
		v, ok := r.GetListUShort(name)
		return wrap(ListUShort(v), ok)
	case Int:
		v, ok := r.GetListInt(name)
		return wrap(ListInt(v), ok)
	case UInt:
		v, ok := r.GetListUInt(name)
		return wrap(ListUInt(v), ok)
	case Float:
		v, ok := r.GetListFloat(name)
		return wrap(ListFloat(v), ok)
	case Double:
		v, ok := r.GetListDouble(name)
		return wrap(ListDouble(v), ok)
	}
	return nil, false
}

// Copy reads every property declared by def from src and sets it on dst.
// List values are cloned so dst never aliases src. Returns ErrPropertyAbsent
// for the first declared property src cannot supply; properties copied
// before that point stay set.
func Copy(dst Settable, src FullReader, def ElementDef) error {
	for _, pd := range def.Properties {
		p, ok := Read(src, pd.Name, pd.Type)
		if !ok {
			return fmt.Errorf("%s.%s (%s): %w", def.Name, pd.Name, pd.Type, ErrPropertyAbsent)
		}
		dst.SetProperty(pd.Name, Clone(p))
	}
	return nil
}

func wrap[T Property](v T, ok bool) (Property, bool) {
	if !ok {
		return nil, false
	}
	return v, true
}
