package cim

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is a typed CIM value. Data holds the Go representation: nil for
// NULL, a scalar for scalar values, []any (homogeneous) for arrays, and
// *InstanceName for references.
//
// Scalar representations: boolean=bool, string/datetime=string,
// char16=rune, uintN=uintN, sintN=intN, real32=float32, real64=float64.
type Value struct {
	Type  Type
	Array bool
	Data  any
}

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool {
	return v.Data == nil
}

// Validate checks that Data agrees with the declared type, including
// array homogeneity.
func (v Value) Validate() error {
	if v.Data == nil {
		return nil
	}
	if v.Array {
		items, ok := v.Data.([]any)
		if !ok {
			return fmt.Errorf("array %s value holds %T, want []any", v.Type, v.Data)
		}
		for i, item := range items {
			if item == nil {
				continue
			}
			if err := checkScalar(v.Type, item); err != nil {
				return fmt.Errorf("array element %d: %w", i, err)
			}
		}
		return nil
	}
	return checkScalar(v.Type, v.Data)
}

func checkScalar(t Type, data any) error {
	ok := false
	switch t {
	case TypeBoolean:
		_, ok = data.(bool)
	case TypeString, TypeDatetime:
		_, ok = data.(string)
	case TypeChar16:
		_, ok = data.(rune)
	case TypeUint8:
		_, ok = data.(uint8)
	case TypeUint16:
		_, ok = data.(uint16)
	case TypeUint32:
		_, ok = data.(uint32)
	case TypeUint64:
		_, ok = data.(uint64)
	case TypeSint8:
		_, ok = data.(int8)
	case TypeSint16:
		_, ok = data.(int16)
	case TypeSint32:
		// rune aliases int32, so this also admits char16 data; the
		// Coerce path never produces that mix.
		_, ok = data.(int32)
	case TypeSint64:
		_, ok = data.(int64)
	case TypeReal32:
		_, ok = data.(float32)
	case TypeReal64:
		_, ok = data.(float64)
	case TypeReference:
		_, ok = data.(*InstanceName)
	default:
		return fmt.Errorf("invalid CIM type %s", t)
	}
	if !ok {
		return fmt.Errorf("%s value holds %T", t, data)
	}
	return nil
}

// Copy returns a deep copy of the value.
func (v Value) Copy() Value {
	out := Value{Type: v.Type, Array: v.Array}
	switch data := v.Data.(type) {
	case nil:
	case []any:
		items := make([]any, len(data))
		for i, item := range data {
			if ref, ok := item.(*InstanceName); ok {
				items[i] = ref.Copy()
			} else {
				items[i] = item
			}
		}
		out.Data = items
	case *InstanceName:
		out.Data = data.Copy()
	default:
		out.Data = data
	}
	return out
}

// Equal reports deep value equality. String comparison is case-sensitive;
// reference values compare by model path (host-insensitive).
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type || v.Array != o.Array {
		return false
	}
	if v.Data == nil || o.Data == nil {
		return v.Data == nil && o.Data == nil
	}
	if v.Array {
		a, aok := v.Data.([]any)
		b, bok := o.Data.([]any)
		if !aok || !bok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !scalarEqual(v.Type, a[i], b[i]) {
				return false
			}
		}
		return true
	}
	return scalarEqual(v.Type, v.Data, o.Data)
}

func scalarEqual(t Type, a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if t == TypeReference {
		ra, aok := a.(*InstanceName)
		rb, bok := b.(*InstanceName)
		return aok && bok && ra.ModelEqual(rb)
	}
	return a == b
}

// Coerce converts a loosely-typed value, as produced by JSON or YAML
// decoding, into the representation declared by t. Numeric inputs are
// range-checked; mismatched kinds are rejected.
func Coerce(t Type, array bool, raw any) (Value, error) {
	v := Value{Type: t, Array: array}
	if raw == nil {
		return v, nil
	}
	if array {
		items, ok := raw.([]any)
		if !ok {
			return v, fmt.Errorf("%s array value is %T, want a list", t, raw)
		}
		out := make([]any, len(items))
		for i, item := range items {
			if item == nil {
				continue
			}
			s, err := coerceScalar(t, item)
			if err != nil {
				return v, fmt.Errorf("array element %d: %w", i, err)
			}
			out[i] = s
		}
		v.Data = out
		return v, nil
	}
	s, err := coerceScalar(t, raw)
	if err != nil {
		return v, err
	}
	v.Data = s
	return v, nil
}

func coerceScalar(t Type, raw any) (any, error) {
	switch t {
	case TypeBoolean:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case TypeString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case TypeDatetime:
		if s, ok := raw.(string); ok {
			if !validDatetime(s) {
				return nil, fmt.Errorf("invalid datetime %q", s)
			}
			return s, nil
		}
	case TypeChar16:
		switch c := raw.(type) {
		case string:
			runes := []rune(c)
			if len(runes) != 1 {
				return nil, fmt.Errorf("char16 value %q is not a single character", c)
			}
			return runes[0], nil
		case rune:
			return c, nil
		}
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		u, err := toUint64(raw)
		if err != nil {
			return nil, err
		}
		return sizeUint(t, u)
	case TypeSint8, TypeSint16, TypeSint32, TypeSint64:
		i, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		return sizeInt(t, i)
	case TypeReal32:
		f, err := toFloat64(raw)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case TypeReal64:
		return toFloat64(raw)
	case TypeReference:
		switch r := raw.(type) {
		case *InstanceName:
			return r, nil
		case InstanceName:
			return &r, nil
		case map[string]any:
			return instanceNameFromRaw(r)
		case string:
			return ParseInstanceName(r)
		}
	default:
		return nil, fmt.Errorf("invalid CIM type %s", t)
	}
	return nil, fmt.Errorf("%s value is %T", t, raw)
}

func toUint64(raw any) (uint64, error) {
	switch n := raw.(type) {
	case int:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned type", n)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned type", n)
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	case uint:
		return uint64(n), nil
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return 0, fmt.Errorf("value %v is not an unsigned integer", n)
		}
		return uint64(n), nil
	case json.Number:
		return strconv.ParseUint(n.String(), 10, 64)
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	}
	return 0, fmt.Errorf("value is %T, want an unsigned integer", raw)
}

func toInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows signed integer", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("value %v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		return strconv.ParseInt(n.String(), 10, 64)
	}
	return 0, fmt.Errorf("value is %T, want an integer", raw)
}

func toFloat64(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("value is %T, want a real number", raw)
}

func sizeUint(t Type, u uint64) (any, error) {
	switch t {
	case TypeUint8:
		if u > math.MaxUint8 {
			return nil, fmt.Errorf("value %d overflows uint8", u)
		}
		return uint8(u), nil
	case TypeUint16:
		if u > math.MaxUint16 {
			return nil, fmt.Errorf("value %d overflows uint16", u)
		}
		return uint16(u), nil
	case TypeUint32:
		if u > math.MaxUint32 {
			return nil, fmt.Errorf("value %d overflows uint32", u)
		}
		return uint32(u), nil
	default:
		return u, nil
	}
}

func sizeInt(t Type, i int64) (any, error) {
	switch t {
	case TypeSint8:
		if i < math.MinInt8 || i > math.MaxInt8 {
			return nil, fmt.Errorf("value %d overflows sint8", i)
		}
		return int8(i), nil
	case TypeSint16:
		if i < math.MinInt16 || i > math.MaxInt16 {
			return nil, fmt.Errorf("value %d overflows sint16", i)
		}
		return int16(i), nil
	case TypeSint32:
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, fmt.Errorf("value %d overflows sint32", i)
		}
		return int32(i), nil
	default:
		return i, nil
	}
}

// validDatetime accepts the CIM datetime format (25 characters,
// timestamp or interval) or RFC 3339.
func validDatetime(s string) bool {
	if len(s) == 25 && (s[21] == '+' || s[21] == '-' || s[21] == ':') {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// keyString renders a key-binding value in canonical form for use in
// path identity comparison. String values fold case; reference values
// nest the canonical model path.
func keyString(v Value) string {
	switch data := v.Data.(type) {
	case nil:
		return "NULL"
	case string:
		if v.Type == TypeString {
			return strconv.Quote(Fold(data))
		}
		return strconv.Quote(data)
	case bool:
		if data {
			return "TRUE"
		}
		return "FALSE"
	case rune:
		return strconv.QuoteRune(data)
	case *InstanceName:
		return "{" + data.canonical(false) + "}"
	default:
		return fmt.Sprint(data)
	}
}

type valueJSON struct {
	Type  string          `json:"type"`
	Array bool            `json:"array,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON renders the value as {"type","array","value"}.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Type: v.Type.String(), Array: v.Array}
	if v.Data != nil {
		data := v.Data
		if r, ok := data.(rune); ok {
			data = string(r)
		}
		if items, ok := data.([]any); ok && v.Type == TypeChar16 {
			strs := make([]any, len(items))
			for i, item := range items {
				if r, ok := item.(rune); ok {
					strs[i] = string(r)
				}
			}
			data = strs
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the {"type","array","value"} form, coercing the
// payload to the declared type.
func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t, err := ParseType(in.Type)
	if err != nil {
		return err
	}
	var raw any
	if len(in.Value) > 0 {
		dec := json.NewDecoder(strings.NewReader(string(in.Value)))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		raw = normalizeJSON(raw)
	}
	out, err := Coerce(t, in.Array, raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// normalizeJSON rewrites nested json decodings so Coerce sees the shapes
// it documents (map[string]any for references, []any for arrays).
func normalizeJSON(raw any) any {
	switch val := raw.(type) {
	case []any:
		for i, item := range val {
			val[i] = normalizeJSON(item)
		}
		return val
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeJSON(item)
		}
		return val
	default:
		return raw
	}
}
