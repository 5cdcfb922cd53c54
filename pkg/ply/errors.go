package ply

import "errors"

// Descriptor errors.
var (
	ErrUnknownScalarType   = errors.New("unknown scalar type")
	ErrInvalidIndexType    = errors.New("list index type must be an integer type")
	ErrInvalidPropertyType = errors.New("invalid property type")
	ErrValueOutOfRange     = errors.New("value out of range for scalar type")
	ErrInvalidValue        = errors.New("invalid property value")
)

// Schema and element errors.
var (
	ErrInvalidName    = errors.New("invalid name")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrPropertyAbsent = errors.New("property absent")
	ErrTypeMismatch   = errors.New("property type mismatch")
)
