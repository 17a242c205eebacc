package cim

import "fmt"

// Type identifies a CIM scalar type. Arrays are an orthogonal dimension
// carried on Value, Property and Parameter, not part of the type tag.
type Type uint8

// CIM scalar types.
const (
	TypeInvalid Type = iota
	TypeBoolean
	TypeString
	TypeChar16
	TypeDatetime
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeSint8
	TypeSint16
	TypeSint32
	TypeSint64
	TypeReal32
	TypeReal64
	TypeReference
)

var typeNames = map[Type]string{
	TypeBoolean:   "boolean",
	TypeString:    "string",
	TypeChar16:    "char16",
	TypeDatetime:  "datetime",
	TypeUint8:     "uint8",
	TypeUint16:    "uint16",
	TypeUint32:    "uint32",
	TypeUint64:    "uint64",
	TypeSint8:     "sint8",
	TypeSint16:    "sint16",
	TypeSint32:    "sint32",
	TypeSint64:    "sint64",
	TypeReal32:    "real32",
	TypeReal64:    "real64",
	TypeReference: "reference",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, n := range typeNames {
		m[n] = t
	}
	return m
}()

// String returns the MOF spelling of the type.
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// ParseType resolves a MOF type name ("uint32", "string", ...).
func ParseType(name string) (Type, error) {
	if t, ok := typesByName[Fold(name)]; ok {
		return t, nil
	}
	return TypeInvalid, fmt.Errorf("unknown CIM type %q", name)
}

// IsNumeric reports whether the type is an integer or real type.
func (t Type) IsNumeric() bool {
	return t >= TypeUint8 && t <= TypeReal64
}
