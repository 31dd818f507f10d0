package mesh

import (
	"fmt"

	"boltz/internal/crystal"
)

// entryKind tags a container entry's payload type.
type entryKind uint8

const (
	kindFloatArray entryKind = iota + 1
	kindIntArray
	kindText
	kindFloat
	kindInt
	kindBool
	kindString
	kindAbsent
	kindStructure

	// kindBySpin never appears on disk; spin-resolved values are flattened
	// into per-channel entries carrying a spin tag.
	kindBySpin entryKind = 0xff
)

func (k entryKind) String() string {
	switch k {
	case kindFloatArray:
		return "float array"
	case kindIntArray:
		return "int array"
	case kindText:
		return "text"
	case kindFloat:
		return "float"
	case kindInt:
		return "int"
	case kindBool:
		return "bool"
	case kindString:
		return "string"
	case kindAbsent:
		return "absent"
	case kindStructure:
		return "structure"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one mesh datum: a tagged variant over the types the container can
// hold. BySpin is a Value as well so Data can map a key to per-channel
// values, but it cannot nest.
type Value interface {
	kind() entryKind
}

// Array is a dense float64 array with row-major layout.
type Array struct {
	Dims []int
	Data []float64
}

// IntArray is a dense int64 array with row-major layout.
type IntArray struct {
	Dims []int
	Data []int64
}

// Text is an ordered list of short ASCII identifiers, stored as fixed-width
// byte-string slots.
type Text []string

// Float, Int, Bool, and String are scalar entries.
type (
	Float  float64
	Int    int64
	Bool   bool
	String string
)

// Absent marks a value that is intentionally not set, for example an unknown
// valence-band index.
type Absent struct{}

// StructureValue wraps the crystal-structure record stored under the
// reserved "structure" key.
type StructureValue struct {
	Structure *crystal.Structure
}

// BySpin maps spin channels to per-channel values.
type BySpin map[Spin]Value

func (*Array) kind() entryKind         { return kindFloatArray }
func (*IntArray) kind() entryKind      { return kindIntArray }
func (Text) kind() entryKind           { return kindText }
func (Float) kind() entryKind          { return kindFloat }
func (Int) kind() entryKind            { return kindInt }
func (Bool) kind() entryKind           { return kindBool }
func (String) kind() entryKind         { return kindString }
func (Absent) kind() entryKind         { return kindAbsent }
func (StructureValue) kind() entryKind { return kindStructure }
func (BySpin) kind() entryKind         { return kindBySpin }

// Data maps quantity names to values. Spin-resolved quantities hold a BySpin
// value; everything else holds a plain entry.
type Data map[string]Value

// NewArray builds an Array and checks that the dims describe the data.
func NewArray(dims []int, data []float64) (*Array, error) {
	if n := dimsLen(dims); n != len(data) {
		return nil, fmt.Errorf("array dims %v describe %d elements, data has %d", dims, n, len(data))
	}
	return &Array{Dims: dims, Data: data}, nil
}

func dimsLen(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
