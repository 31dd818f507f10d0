// Package settings normalizes and validates transport-calculation settings.
//
// It supplies the default schema, overlays user-provided values on top of it,
// parses the compact doping/temperature/deformation-potential string grammars,
// casts dielectric and elastic tensors into canonical matrix form, and rejects
// keys the schema does not recognise. Settings documents are read and written
// as YAML or TOML, selected by file extension.
//
// Always obtain settings through Validate (or LoadFile) so downstream code
// receives numeric doping/temperature arrays, canonical 3x3 and rank-4
// tensors, and clear errors for malformed input.
package settings
