package cim

import "encoding/json"

// Property is a class or instance property.
type Property struct {
	Name           string
	Value          Value
	Qualifiers     *NameMap[*Qualifier]
	ClassOrigin    string
	Propagated     bool
	ReferenceClass string
}

// NewProperty creates a property with an empty qualifier set.
func NewProperty(name string, v Value) *Property {
	return &Property{Name: name, Value: v, Qualifiers: NewNameMap[*Qualifier]()}
}

// Copy returns a deep copy of the property.
func (p *Property) Copy() *Property {
	out := *p
	out.Value = p.Value.Copy()
	out.Qualifiers = p.Qualifiers.Copy(func(q *Qualifier) *Qualifier { return q.Copy() })
	return &out
}

// Qualifier looks up a qualifier by name.
func (p *Property) Qualifier(name string) (*Qualifier, bool) {
	return p.Qualifiers.Get(name)
}

// IsKey reports whether the property carries a true Key qualifier.
func (p *Property) IsKey() bool {
	q, ok := p.Qualifiers.Get("Key")
	return ok && q.IsTrue()
}

type propertyJSON struct {
	Name           string       `json:"name"`
	Value          Value        `json:"value"`
	Qualifiers     []*Qualifier `json:"qualifiers,omitempty"`
	ClassOrigin    string       `json:"class_origin,omitempty"`
	Propagated     bool         `json:"propagated,omitempty"`
	ReferenceClass string       `json:"reference_class,omitempty"`
}

// MarshalJSON renders the property with qualifiers as an array.
func (p *Property) MarshalJSON() ([]byte, error) {
	return json.Marshal(propertyJSON{
		Name:           p.Name,
		Value:          p.Value,
		Qualifiers:     p.Qualifiers.Values(),
		ClassOrigin:    p.ClassOrigin,
		Propagated:     p.Propagated,
		ReferenceClass: p.ReferenceClass,
	})
}

// UnmarshalJSON parses the form produced by MarshalJSON.
func (p *Property) UnmarshalJSON(data []byte) error {
	var in propertyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := NewProperty(in.Name, in.Value)
	out.ClassOrigin = in.ClassOrigin
	out.Propagated = in.Propagated
	out.ReferenceClass = in.ReferenceClass
	for _, q := range in.Qualifiers {
		out.Qualifiers.Set(q.Name, q)
	}
	*p = *out
	return nil
}

// Parameter is a CIM method parameter.
type Parameter struct {
	Name           string
	Type           Type
	Array          bool
	ReferenceClass string
	Qualifiers     *NameMap[*Qualifier]
}

// NewParameter creates a parameter with an empty qualifier set.
func NewParameter(name string, t Type) *Parameter {
	return &Parameter{Name: name, Type: t, Qualifiers: NewNameMap[*Qualifier]()}
}

// Copy returns a deep copy of the parameter.
func (p *Parameter) Copy() *Parameter {
	out := *p
	out.Qualifiers = p.Qualifiers.Copy(func(q *Qualifier) *Qualifier { return q.Copy() })
	return &out
}

type parameterJSON struct {
	Name           string       `json:"name"`
	Type           string       `json:"type"`
	Array          bool         `json:"array,omitempty"`
	ReferenceClass string       `json:"reference_class,omitempty"`
	Qualifiers     []*Qualifier `json:"qualifiers,omitempty"`
}

// MarshalJSON renders the parameter with its MOF type name.
func (p *Parameter) MarshalJSON() ([]byte, error) {
	return json.Marshal(parameterJSON{
		Name:           p.Name,
		Type:           p.Type.String(),
		Array:          p.Array,
		ReferenceClass: p.ReferenceClass,
		Qualifiers:     p.Qualifiers.Values(),
	})
}

// UnmarshalJSON parses the form produced by MarshalJSON.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	var in parameterJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t, err := ParseType(in.Type)
	if err != nil {
		return err
	}
	out := NewParameter(in.Name, t)
	out.Array = in.Array
	out.ReferenceClass = in.ReferenceClass
	for _, q := range in.Qualifiers {
		out.Qualifiers.Set(q.Name, q)
	}
	*p = *out
	return nil
}
