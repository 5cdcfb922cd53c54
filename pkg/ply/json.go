package ply

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// JSON form of a Property: {"type":"float","value":3.5} or
// {"type":"list uint","value":[1,2,3]}. The type names the variant only;
// list index types belong to the schema, not the value. Numbers are written
// in their shortest form for the variant's width, so float values survive a
// round trip exactly. NaN and infinities have no JSON form.
type propertyJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// elementPropertyJSON is one entry of a DefaultElement's JSON array.
type elementPropertyJSON struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// VariantName returns the JSON type name of p's variant, e.g. "float" or
// "list uint".
func VariantName(p Property) string {
	return describe(p)
}

// ParseVariant parses a variant name produced by VariantName.
func ParseVariant(s string) (ScalarType, bool, error) {
	fields := strings.Fields(s)
	switch {
	case len(fields) == 1:
		st, err := ParseScalarType(fields[0])
		return st, false, err
	case len(fields) == 2 && fields[0] == "list":
		st, err := ParseScalarType(fields[1])
		return st, true, err
	default:
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidPropertyType, s)
	}
}

// MarshalProperty encodes p as JSON.
func MarshalProperty(p Property) ([]byte, error) {
	value, err := marshalValue(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(propertyJSON{Type: VariantName(p), Value: value})
}

// UnmarshalProperty decodes a Property produced by MarshalProperty.
// Integer values outside the variant's range fail with ErrValueOutOfRange.
func UnmarshalProperty(data []byte) (Property, error) {
	var pj propertyJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return nil, fmt.Errorf("decoding property: %w", err)
	}
	return DecodeValue(pj.Type, pj.Value)
}

// EncodeValue encodes only the payload of p: a JSON number or array.
func EncodeValue(p Property) (json.RawMessage, error) {
	return marshalValue(p)
}

// DecodeValue builds a Property of the named variant from a JSON payload.
func DecodeValue(variant string, value json.RawMessage) (Property, error) {
	st, isList, err := ParseVariant(variant)
	if err != nil {
		return nil, err
	}
	if isList {
		return decodeList(st, value)
	}
	return decodeScalar(st, value)
}

// MarshalJSON encodes e as an array of {name, type, value} objects in
// insertion order.
func (e *DefaultElement) MarshalJSON() ([]byte, error) {
	out := make([]elementPropertyJSON, 0, e.Len())
	for name, p := range e.All() {
		value, err := marshalValue(p)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		out = append(out, elementPropertyJSON{Name: name, Type: VariantName(p), Value: value})
	}
	return json.Marshal(out)
}

// UnmarshalJSON replaces e's contents with the decoded properties.
func (e *DefaultElement) UnmarshalJSON(data []byte) error {
	var in []elementPropertyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decoding element: %w", err)
	}
	fresh := NewDefaultElement()
	for _, ep := range in {
		if ep.Name == "" {
			return fmt.Errorf("decoding element: %w", ErrInvalidName)
		}
		p, err := DecodeValue(ep.Type, ep.Value)
		if err != nil {
			return fmt.Errorf("property %s: %w", ep.Name, err)
		}
		fresh.SetProperty(ep.Name, p)
	}
	*e = *fresh
	return nil
}

func marshalValue(p Property) (json.RawMessage, error) {
	var v any
	switch x := p.(type) {
	case CharValue:
		v = json.Number(strconv.FormatInt(int64(x), 10))
	case UCharValue:
		v = json.Number(strconv.FormatUint(uint64(x), 10))
	case ShortValue:
		v = json.Number(strconv.FormatInt(int64(x), 10))
	case UShortValue:
		v = json.Number(strconv.FormatUint(uint64(x), 10))
	case IntValue:
		v = json.Number(strconv.FormatInt(int64(x), 10))
	case UIntValue:
		v = json.Number(strconv.FormatUint(uint64(x), 10))
	case FloatValue:
		v = json.Number(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case DoubleValue:
		v = json.Number(strconv.FormatFloat(float64(x), 'g', -1, 64))
	case ListChar:
		v = intNumbers(x)
	case ListUChar:
		v = uintNumbers(x)
	case ListShort:
		v = intNumbers(x)
	case ListUShort:
		v = uintNumbers(x)
	case ListInt:
		v = intNumbers(x)
	case ListUInt:
		v = uintNumbers(x)
	case ListFloat:
		v = floatNumbers(x, 32)
	case ListDouble:
		v = floatNumbers(x, 64)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidPropertyType, p)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func intNumbers[T ~int8 | ~int16 | ~int32](s []T) []json.Number {
	out := make([]json.Number, len(s))
	for i, v := range s {
		out[i] = json.Number(strconv.FormatInt(int64(v), 10))
	}
	return out
}

func uintNumbers[T ~uint8 | ~uint16 | ~uint32](s []T) []json.Number {
	out := make([]json.Number, len(s))
	for i, v := range s {
		out[i] = json.Number(strconv.FormatUint(uint64(v), 10))
	}
	return out
}

func floatNumbers[T ~float32 | ~float64](s []T, bits int) []json.Number {
	out := make([]json.Number, len(s))
	for i, v := range s {
		out[i] = json.Number(strconv.FormatFloat(float64(v), 'g', -1, bits))
	}
	return out
}

// decodeNumbers decodes a JSON array of number literals. A missing value,
// null, or an element that is not a bare number fails with ErrInvalidValue.
func decodeNumbers(value json.RawMessage) ([]json.Number, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: list value must be an array, got %q", ErrInvalidValue, trimmed)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	nums := make([]json.Number, len(raws))
	for i, raw := range raws {
		n, err := numberLiteral(raw)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		nums[i] = n
	}
	return nums, nil
}

// numberLiteral accepts exactly one unquoted JSON number.
func numberLiteral(value json.RawMessage) (json.Number, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: missing value", ErrInvalidValue)
	}
	if c := trimmed[0]; c != '-' && (c < '0' || c > '9') {
		return "", fmt.Errorf("%w: %s is not a number", ErrInvalidValue, trimmed)
	}
	if !json.Valid(trimmed) {
		return "", fmt.Errorf("%w: malformed number %s", ErrInvalidValue, trimmed)
	}
	return json.Number(trimmed), nil
}

func decodeScalar(st ScalarType, value json.RawMessage) (Property, error) {
	n, err := numberLiteral(value)
	if err != nil {
		return nil, fmt.Errorf("decoding %s value: %w", st, err)
	}
	switch st {
	case Char:
		v, err := parseInt[int8](n, 8)
		return CharValue(v), err
	case UChar:
		v, err := parseUint[uint8](n, 8)
		return UCharValue(v), err
	case Short:
		v, err := parseInt[int16](n, 16)
		return ShortValue(v), err
	case UShort:
		v, err := parseUint[uint16](n, 16)
		return UShortValue(v), err
	case Int:
		v, err := parseInt[int32](n, 32)
		return IntValue(v), err
	case UInt:
		v, err := parseUint[uint32](n, 32)
		return UIntValue(v), err
	case Float:
		v, err := parseFloat[float32](n, 32)
		return FloatValue(v), err
	case Double:
		v, err := parseFloat[float64](n, 64)
		return DoubleValue(v), err
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownScalarType, st)
}

func decodeList(st ScalarType, value json.RawMessage) (Property, error) {
	nums, err := decodeNumbers(value)
	if err != nil {
		return nil, err
	}
	switch st {
	case Char:
		v, err := parseAll(nums, func(n json.Number) (int8, error) { return parseInt[int8](n, 8) })
		return ListChar(v), err
	case UChar:
		v, err := parseAll(nums, func(n json.Number) (uint8, error) { return parseUint[uint8](n, 8) })
		return ListUChar(v), err
	case Short:
		v, err := parseAll(nums, func(n json.Number) (int16, error) { return parseInt[int16](n, 16) })
		return ListShort(v), err
	case UShort:
		v, err := parseAll(nums, func(n json.Number) (uint16, error) { return parseUint[uint16](n, 16) })
		return ListUShort(v), err
	case Int:
		v, err := parseAll(nums, func(n json.Number) (int32, error) { return parseInt[int32](n, 32) })
		return ListInt(v), err
	case UInt:
		v, err := parseAll(nums, func(n json.Number) (uint32, error) { return parseUint[uint32](n, 32) })
		return ListUInt(v), err
	case Float:
		v, err := parseAll(nums, func(n json.Number) (float32, error) { return parseFloat[float32](n, 32) })
		return ListFloat(v), err
	case Double:
		v, err := parseAll(nums, func(n json.Number) (float64, error) { return parseFloat[float64](n, 64) })
		return ListDouble(v), err
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownScalarType, st)
}

func parseAll[T any](nums []json.Number, parse func(json.Number) (T, error)) ([]T, error) {
	out := make([]T, len(nums))
	for i, n := range nums {
		v, err := parse(n)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseInt[T ~int8 | ~int16 | ~int32](n json.Number, bits int) (T, error) {
	v, err := strconv.ParseInt(n.String(), 10, bits)
	if err != nil {
		return 0, numberError(n, err)
	}
	return T(v), nil
}

func parseUint[T ~uint8 | ~uint16 | ~uint32](n json.Number, bits int) (T, error) {
	v, err := strconv.ParseUint(n.String(), 10, bits)
	if err != nil {
		if neg, perr := strconv.ParseInt(n.String(), 10, 64); perr == nil && neg < 0 {
			return 0, fmt.Errorf("%w: %s", ErrValueOutOfRange, n)
		}
		return 0, numberError(n, err)
	}
	return T(v), nil
}

func parseFloat[T ~float32 | ~float64](n json.Number, bits int) (T, error) {
	v, err := strconv.ParseFloat(n.String(), bits)
	if err != nil {
		return 0, numberError(n, err)
	}
	return T(v), nil
}

func numberError(n json.Number, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("%w: %s", ErrValueOutOfRange, n)
	}
	return fmt.Errorf("invalid number %q: %w", n.String(), err)
}
