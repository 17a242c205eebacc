package cim

import "encoding/json"

// Class is a CIM class declaration. Properties and methods are keyed
// case-insensitively and keep declaration order.
type Class struct {
	Name       string
	SuperClass string
	Qualifiers *NameMap[*Qualifier]
	Properties *NameMap[*Property]
	Methods    *NameMap[*Method]
}

// NewClass creates an empty class.
func NewClass(name, superClass string) *Class {
	return &Class{
		Name:       name,
		SuperClass: superClass,
		Qualifiers: NewNameMap[*Qualifier](),
		Properties: NewNameMap[*Property](),
		Methods:    NewNameMap[*Method](),
	}
}

// Copy returns a deep copy of the class.
func (c *Class) Copy() *Class {
	return &Class{
		Name:       c.Name,
		SuperClass: c.SuperClass,
		Qualifiers: c.Qualifiers.Copy(func(q *Qualifier) *Qualifier { return q.Copy() }),
		Properties: c.Properties.Copy(func(p *Property) *Property { return p.Copy() }),
		Methods:    c.Methods.Copy(func(m *Method) *Method { return m.Copy() }),
	}
}

// Property looks up a property by name.
func (c *Class) Property(name string) (*Property, bool) {
	return c.Properties.Get(name)
}

// IsAssociation reports whether the class carries a true Association
// qualifier.
func (c *Class) IsAssociation() bool {
	q, ok := c.Qualifiers.Get("Association")
	return ok && q.IsTrue()
}

// KeyProperties returns the properties qualified as Key, in declaration
// order.
func (c *Class) KeyProperties() []*Property {
	var keys []*Property
	c.Properties.Range(func(_ string, p *Property) bool {
		if p.IsKey() {
			keys = append(keys, p)
		}
		return true
	})
	return keys
}

// ReferenceProperties returns the reference-typed properties, in
// declaration order.
func (c *Class) ReferenceProperties() []*Property {
	var refs []*Property
	c.Properties.Range(func(_ string, p *Property) bool {
		if p.Value.Type == TypeReference {
			refs = append(refs, p)
		}
		return true
	})
	return refs
}

type classJSON struct {
	Name       string       `json:"name"`
	SuperClass string       `json:"superclass,omitempty"`
	Qualifiers []*Qualifier `json:"qualifiers,omitempty"`
	Properties []*Property  `json:"properties,omitempty"`
	Methods    []*Method    `json:"methods,omitempty"`
}

// MarshalJSON renders the class with ordered member arrays.
func (c *Class) MarshalJSON() ([]byte, error) {
	return json.Marshal(classJSON{
		Name:       c.Name,
		SuperClass: c.SuperClass,
		Qualifiers: c.Qualifiers.Values(),
		Properties: c.Properties.Values(),
		Methods:    c.Methods.Values(),
	})
}

// UnmarshalJSON parses the form produced by MarshalJSON.
func (c *Class) UnmarshalJSON(data []byte) error {
	var in classJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := NewClass(in.Name, in.SuperClass)
	for _, q := range in.Qualifiers {
		out.Qualifiers.Set(q.Name, q)
	}
	for _, p := range in.Properties {
		out.Properties.Set(p.Name, p)
	}
	for _, m := range in.Methods {
		out.Methods.Set(m.Name, m)
	}
	*c = *out
	return nil
}
