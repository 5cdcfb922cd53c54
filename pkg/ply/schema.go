package ply

import "fmt"

// PropertyDef is one declared property of an element class.
type PropertyDef struct {
	Name string       `json:"name" yaml:"name" toml:"name"`
	Type PropertyType `json:"type" yaml:"type" toml:"type"`
}

// ElementDef is one declared element class: its name, the number of records
// in the payload, and its properties in declaration order.
type ElementDef struct {
	Name       string        `json:"name" yaml:"name" toml:"name"`
	Count      int           `json:"count" yaml:"count" toml:"count"`
	Properties []PropertyDef `json:"properties" yaml:"properties" toml:"properties"`
}

// Schema is the full list of element classes a file declares, in order.
type Schema struct {
	Elements []ElementDef `json:"elements" yaml:"elements" toml:"elements"`
}

// Property returns the definition of the named property.
func (d ElementDef) Property(name string) (PropertyDef, bool) {
	for _, pd := range d.Properties {
		if pd.Name == name {
			return pd, true
		}
	}
	return PropertyDef{}, false
}

// Validate checks that d has a name, a non-negative count, and uniquely
// named properties of well-formed types.
func (d ElementDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("element: %w", ErrInvalidName)
	}
	if d.Count < 0 {
		return fmt.Errorf("element %s: negative count %d", d.Name, d.Count)
	}
	seen := make(map[string]bool, len(d.Properties))
	for i, pd := range d.Properties {
		if pd.Name == "" {
			return fmt.Errorf("element %s: property %d: %w", d.Name, i, ErrInvalidName)
		}
		if seen[pd.Name] {
			return fmt.Errorf("element %s: property %s: %w", d.Name, pd.Name, ErrDuplicateName)
		}
		seen[pd.Name] = true
		if err := pd.Type.Validate(); err != nil {
			return fmt.Errorf("element %s: property %s: %w", d.Name, pd.Name, err)
		}
	}
	return nil
}

// Element returns the definition of the named element class.
func (s Schema) Element(name string) (ElementDef, bool) {
	for _, d := range s.Elements {
		if d.Name == name {
			return d, true
		}
	}
	return ElementDef{}, false
}

// Validate checks every element definition and that element names are
// unique.
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s.Elements))
	for _, d := range s.Elements {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return fmt.Errorf("element %s: %w", d.Name, ErrDuplicateName)
		}
		seen[d.Name] = true
	}
	return nil
}

// Check verifies that e holds a value of the declared type for every
// property in def. Unlike the getters, it tells a missing property
// (ErrPropertyAbsent) apart from one holding the wrong variant
// (ErrTypeMismatch). Properties e holds beyond def are ignored.
func Check(def ElementDef, e *DefaultElement) error {
	for _, pd := range def.Properties {
		p, ok := e.Get(pd.Name)
		if !ok {
			return fmt.Errorf("%s.%s: %w", def.Name, pd.Name, ErrPropertyAbsent)
		}
		if !Matches(p, pd.Type) {
			return fmt.Errorf("%s.%s: declared %s, holds %s: %w",
				def.Name, pd.Name, pd.Type, describe(p), ErrTypeMismatch)
		}
	}
	return nil
}

// describe names the variant of p in header form, without an index type.
func describe(p Property) string {
	switch {
	case p == nil:
		return "nothing"
	case p.IsList():
		return "list " + p.Scalar().String()
	default:
		return p.Scalar().String()
	}
}
