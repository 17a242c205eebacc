package cim

import "encoding/json"

// Instance is a CIM instance. A stored instance always carries a Path
// whose key bindings are drawn from its Key-qualified properties.
type Instance struct {
	ClassName  string
	Properties *NameMap[*Property]
	Qualifiers *NameMap[*Qualifier]
	Path       *InstanceName
}

// NewInstance creates an empty instance of the given class.
func NewInstance(className string) *Instance {
	return &Instance{
		ClassName:  className,
		Properties: NewNameMap[*Property](),
		Qualifiers: NewNameMap[*Qualifier](),
	}
}

// SetProperty adds or replaces a property value.
func (i *Instance) SetProperty(name string, v Value) *Instance {
	i.Properties.Set(name, NewProperty(name, v))
	return i
}

// Property looks up a property by name.
func (i *Instance) Property(name string) (*Property, bool) {
	return i.Properties.Get(name)
}

// Copy returns a deep copy of the instance.
func (i *Instance) Copy() *Instance {
	return &Instance{
		ClassName:  i.ClassName,
		Properties: i.Properties.Copy(func(p *Property) *Property { return p.Copy() }),
		Qualifiers: i.Qualifiers.Copy(func(q *Qualifier) *Qualifier { return q.Copy() }),
		Path:       i.Path.Copy(),
	}
}

type instanceJSON struct {
	ClassName  string        `json:"classname"`
	Path       *InstanceName `json:"path,omitempty"`
	Properties []*Property   `json:"properties,omitempty"`
	Qualifiers []*Qualifier  `json:"qualifiers,omitempty"`
}

// MarshalJSON renders the instance with its typed properties.
func (i *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(instanceJSON{
		ClassName:  i.ClassName,
		Path:       i.Path,
		Properties: i.Properties.Values(),
		Qualifiers: i.Qualifiers.Values(),
	})
}

// UnmarshalJSON parses the form produced by MarshalJSON.
func (i *Instance) UnmarshalJSON(data []byte) error {
	var in instanceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := NewInstance(in.ClassName)
	out.Path = in.Path
	for _, p := range in.Properties {
		out.Properties.Set(p.Name, p)
	}
	for _, q := range in.Qualifiers {
		out.Qualifiers.Set(q.Name, q)
	}
	*i = *out
	return nil
}
