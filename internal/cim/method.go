package cim

import "encoding/json"

// Method is a CIM method declaration.
type Method struct {
	Name        string
	ReturnType  Type
	Parameters  *NameMap[*Parameter]
	Qualifiers  *NameMap[*Qualifier]
	ClassOrigin string
	Propagated  bool
}

// NewMethod creates a method with empty parameter and qualifier sets.
func NewMethod(name string, returnType Type) *Method {
	return &Method{
		Name:       name,
		ReturnType: returnType,
		Parameters: NewNameMap[*Parameter](),
		Qualifiers: NewNameMap[*Qualifier](),
	}
}

// Copy returns a deep copy of the method.
func (m *Method) Copy() *Method {
	out := *m
	out.Parameters = m.Parameters.Copy(func(p *Parameter) *Parameter { return p.Copy() })
	out.Qualifiers = m.Qualifiers.Copy(func(q *Qualifier) *Qualifier { return q.Copy() })
	return &out
}

type methodJSON struct {
	Name        string       `json:"name"`
	ReturnType  string       `json:"return_type"`
	Parameters  []*Parameter `json:"parameters,omitempty"`
	Qualifiers  []*Qualifier `json:"qualifiers,omitempty"`
	ClassOrigin string       `json:"class_origin,omitempty"`
	Propagated  bool         `json:"propagated,omitempty"`
}

// MarshalJSON renders the method with ordered parameters.
func (m *Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(methodJSON{
		Name:        m.Name,
		ReturnType:  m.ReturnType.String(),
		Parameters:  m.Parameters.Values(),
		Qualifiers:  m.Qualifiers.Values(),
		ClassOrigin: m.ClassOrigin,
		Propagated:  m.Propagated,
	})
}

// UnmarshalJSON parses the form produced by MarshalJSON.
func (m *Method) UnmarshalJSON(data []byte) error {
	var in methodJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t, err := ParseType(in.ReturnType)
	if err != nil {
		return err
	}
	out := NewMethod(in.Name, t)
	out.ClassOrigin = in.ClassOrigin
	out.Propagated = in.Propagated
	for _, p := range in.Parameters {
		out.Parameters.Set(p.Name, p)
	}
	for _, q := range in.Qualifiers {
		out.Qualifiers.Set(q.Name, q)
	}
	*m = *out
	return nil
}
