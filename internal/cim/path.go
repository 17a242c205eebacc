package cim

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// InstanceName is a CIM object path: class name plus key bindings,
// optionally scoped by namespace and host. Key bindings compare as a
// set; names and string values compare case-insensitively.
type InstanceName struct {
	ClassName   string
	KeyBindings *NameMap[Value]
	Namespace   string
	Host        string
}

// NewInstanceName creates a path with an empty key-binding set.
func NewInstanceName(className string) *InstanceName {
	return &InstanceName{ClassName: className, KeyBindings: NewNameMap[Value]()}
}

// SetKey adds or replaces a key binding.
func (p *InstanceName) SetKey(name string, v Value) *InstanceName {
	if p.KeyBindings == nil {
		p.KeyBindings = NewNameMap[Value]()
	}
	p.KeyBindings.Set(name, v)
	return p
}

// Key looks up a key binding value.
func (p *InstanceName) Key(name string) (Value, bool) {
	return p.KeyBindings.Get(name)
}

// Copy returns a deep copy of the path.
func (p *InstanceName) Copy() *InstanceName {
	if p == nil {
		return nil
	}
	return &InstanceName{
		ClassName:   p.ClassName,
		KeyBindings: p.KeyBindings.Copy(func(v Value) Value { return v.Copy() }),
		Namespace:   p.Namespace,
		Host:        p.Host,
	}
}

// canonical renders the identity string used for comparison and store
// keys. The scoped form includes namespace and host.
func (p *InstanceName) canonical(scoped bool) string {
	var b strings.Builder
	if scoped {
		b.WriteString("//")
		b.WriteString(Fold(p.Host))
		b.WriteString("/")
		b.WriteString(Fold(p.Namespace))
		b.WriteString(":")
	}
	b.WriteString(Fold(p.ClassName))
	names := p.KeyBindings.Names()
	folded := make([]string, len(names))
	for i, n := range names {
		folded[i] = Fold(n)
	}
	sort.Strings(folded)
	for i, n := range folded {
		if i == 0 {
			b.WriteString(".")
		} else {
			b.WriteString(",")
		}
		v, _ := p.KeyBindings.Get(n)
		b.WriteString(n)
		b.WriteString("=")
		b.WriteString(keyString(v))
	}
	return b.String()
}

// ModelKey returns the host- and namespace-agnostic identity string
// (the model path) used as the instance-store key.
func (p *InstanceName) ModelKey() string {
	return p.canonical(false)
}

// ModelEqual reports model-path equality: class name and key-binding
// set, ignoring namespace and host.
func (p *InstanceName) ModelEqual(o *InstanceName) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.canonical(false) == o.canonical(false)
}

// Equal reports full path equality including namespace and host.
func (p *InstanceName) Equal(o *InstanceName) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.canonical(true) == o.canonical(true)
}

// String renders the path in WBEM URI style, e.g.
// root/cimv2:CIM_Foo.InstanceID="X".
func (p *InstanceName) String() string {
	var b strings.Builder
	if p.Host != "" {
		b.WriteString("//")
		b.WriteString(p.Host)
		b.WriteString("/")
	}
	if p.Namespace != "" {
		b.WriteString(p.Namespace)
		b.WriteString(":")
	}
	b.WriteString(p.ClassName)
	for i, name := range p.KeyBindings.Names() {
		if i == 0 {
			b.WriteString(".")
		} else {
			b.WriteString(",")
		}
		v, _ := p.KeyBindings.Get(name)
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(keyLiteral(v))
	}
	return b.String()
}

func keyLiteral(v Value) string {
	switch data := v.Data.(type) {
	case nil:
		return "NULL"
	case string:
		return strconv.Quote(data)
	case bool:
		if data {
			return "TRUE"
		}
		return "FALSE"
	case rune:
		return strconv.Quote(string(data))
	case *InstanceName:
		return strconv.Quote(data.String())
	default:
		return fmt.Sprint(data)
	}
}

// ParseInstanceName parses a WBEM URI style path as produced by String:
// [//host/][namespace:]Class[.Key=value,...]. Unquoted key values are
// typed as boolean, sint64, uint64 or real64; quoted values as string.
func ParseInstanceName(s string) (*InstanceName, error) {
	p := NewInstanceName("")
	rest := s
	if strings.HasPrefix(rest, "//") {
		idx := strings.Index(rest[2:], "/")
		if idx < 0 {
			return nil, fmt.Errorf("invalid object path %q: unterminated host", s)
		}
		p.Host = rest[2 : 2+idx]
		rest = rest[2+idx+1:]
	}
	if idx := strings.Index(rest, ":"); idx >= 0 {
		p.Namespace = rest[:idx]
		rest = rest[idx+1:]
	}
	dot := strings.Index(rest, ".")
	if dot < 0 {
		if rest == "" {
			return nil, fmt.Errorf("invalid object path %q: missing class name", s)
		}
		p.ClassName = rest
		return p, nil
	}
	p.ClassName = rest[:dot]
	if p.ClassName == "" {
		return nil, fmt.Errorf("invalid object path %q: missing class name", s)
	}
	rest = rest[dot+1:]
	for rest != "" {
		eq := strings.Index(rest, "=")
		if eq <= 0 {
			return nil, fmt.Errorf("invalid object path %q: malformed key binding", s)
		}
		name := rest[:eq]
		rest = rest[eq+1:]
		var lit string
		if strings.HasPrefix(rest, `"`) {
			end := -1
			for i := 1; i < len(rest); i++ {
				if rest[i] == '\\' {
					i++
					continue
				}
				if rest[i] == '"' {
					end = i
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("invalid object path %q: unterminated string", s)
			}
			lit = rest[:end+1]
			rest = rest[end+1:]
			if strings.HasPrefix(rest, ",") {
				rest = rest[1:]
			} else if rest != "" {
				return nil, fmt.Errorf("invalid object path %q: trailing data after key %s", s, name)
			}
		} else {
			end := strings.Index(rest, ",")
			if end < 0 {
				lit = rest
				rest = ""
			} else {
				lit = rest[:end]
				rest = rest[end+1:]
			}
		}
		v, err := parseKeyLiteral(lit)
		if err != nil {
			return nil, fmt.Errorf("invalid object path %q: key %s: %w", s, name, err)
		}
		p.SetKey(name, v)
	}
	return p, nil
}

func parseKeyLiteral(lit string) (Value, error) {
	switch {
	case strings.HasPrefix(lit, `"`):
		str, err := strconv.Unquote(lit)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: TypeString, Data: str}, nil
	case Fold(lit) == "true":
		return Value{Type: TypeBoolean, Data: true}, nil
	case Fold(lit) == "false":
		return Value{Type: TypeBoolean, Data: false}, nil
	case strings.ContainsAny(lit, ".eE"):
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: TypeReal64, Data: f}, nil
	case strings.HasPrefix(lit, "-"):
		i, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: TypeSint64, Data: i}, nil
	default:
		u, err := strconv.ParseUint(lit, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: TypeUint64, Data: u}, nil
	}
}

type instanceNameJSON struct {
	ClassName   string           `json:"classname"`
	Namespace   string           `json:"namespace,omitempty"`
	Host        string           `json:"host,omitempty"`
	KeyBindings map[string]Value `json:"keybindings,omitempty"`
}

// MarshalJSON renders the path with its key bindings as an object.
func (p *InstanceName) MarshalJSON() ([]byte, error) {
	out := instanceNameJSON{
		ClassName: p.ClassName,
		Namespace: p.Namespace,
		Host:      p.Host,
	}
	if p.KeyBindings.Len() > 0 {
		out.KeyBindings = make(map[string]Value, p.KeyBindings.Len())
		p.KeyBindings.Range(func(name string, v Value) bool {
			out.KeyBindings[name] = v
			return true
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the object form produced by MarshalJSON.
func (p *InstanceName) UnmarshalJSON(data []byte) error {
	var in instanceNameJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.ClassName == "" {
		return fmt.Errorf("object path is missing classname")
	}
	out := NewInstanceName(in.ClassName)
	out.Namespace = in.Namespace
	out.Host = in.Host
	names := make([]string, 0, len(in.KeyBindings))
	for name := range in.KeyBindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out.SetKey(name, in.KeyBindings[name])
	}
	*p = *out
	return nil
}

// instanceNameFromRaw builds a path from a loosely-typed decoding, as
// found inside reference values. Key-binding values may be in the typed
// {"type","array","value"} form or plain scalars.
func instanceNameFromRaw(raw map[string]any) (*InstanceName, error) {
	className, _ := raw["classname"].(string)
	if className == "" {
		return nil, fmt.Errorf("reference value is missing classname")
	}
	p := NewInstanceName(className)
	p.Namespace, _ = raw["namespace"].(string)
	p.Host, _ = raw["host"].(string)
	kbs, _ := raw["keybindings"].(map[string]any)
	names := make([]string, 0, len(kbs))
	for name := range kbs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := rawKeyValue(kbs[name])
		if err != nil {
			return nil, fmt.Errorf("key binding %s: %w", name, err)
		}
		p.SetKey(name, v)
	}
	return p, nil
}

func rawKeyValue(raw any) (Value, error) {
	if typed, ok := raw.(map[string]any); ok {
		if tn, ok := typed["type"].(string); ok {
			t, err := ParseType(tn)
			if err != nil {
				return Value{}, err
			}
			array, _ := typed["array"].(bool)
			return Coerce(t, array, typed["value"])
		}
	}
	switch v := raw.(type) {
	case string:
		return Value{Type: TypeString, Data: v}, nil
	case bool:
		return Value{Type: TypeBoolean, Data: v}, nil
	case float64:
		return Coerce(TypeReal64, false, v)
	case json.Number:
		if u, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return Value{Type: TypeUint64, Data: u}, nil
		}
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return Value{Type: TypeSint64, Data: i}, nil
		}
		f, err := v.Float64()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: TypeReal64, Data: f}, nil
	case int:
		if v >= 0 {
			return Value{Type: TypeUint64, Data: uint64(v)}, nil
		}
		return Value{Type: TypeSint64, Data: int64(v)}, nil
	}
	return Value{}, fmt.Errorf("unsupported key binding value %T", raw)
}
