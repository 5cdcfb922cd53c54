// Package ply defines the dynamic-schema data model for PLY geometry files:
// scalar and property type descriptors, the Property tagged value, the
// per-kind capability interfaces an element type may implement, and
// DefaultElement, a ready-made element backed by a name-keyed map.
//
// A PLY header declares its element classes and their properties at file
// open time. Decoders turn each declared property into a Property value
// and hand it to an element through Settable; writers read values back
// out through the typed getters. Header grammar, payload encoding and file
// I/O live outside this package.
package ply
