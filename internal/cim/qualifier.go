package cim

// Scope names an element kind a qualifier declaration may apply to.
type Scope string

// Qualifier declaration scopes.
const (
	ScopeAny         Scope = "any"
	ScopeClass       Scope = "class"
	ScopeProperty    Scope = "property"
	ScopeReference   Scope = "reference"
	ScopeMethod      Scope = "method"
	ScopeParameter   Scope = "parameter"
	ScopeAssociation Scope = "association"
	ScopeIndication  Scope = "indication"
)

// ParseScope resolves a scope name.
func ParseScope(name string) (Scope, bool) {
	s := Scope(Fold(name))
	switch s {
	case ScopeAny, ScopeClass, ScopeProperty, ScopeReference, ScopeMethod,
		ScopeParameter, ScopeAssociation, ScopeIndication:
		return s, true
	}
	return "", false
}

// Qualifier is a qualifier attached to a class, property, method or
// parameter.
type Qualifier struct {
	Name         string `json:"name"`
	Value        Value  `json:"value"`
	Propagated   bool   `json:"propagated,omitempty"`
	Overridable  bool   `json:"overridable,omitempty"`
	ToSubclass   bool   `json:"tosubclass,omitempty"`
	ToInstance   bool   `json:"toinstance,omitempty"`
	Translatable bool   `json:"translatable,omitempty"`
}

// Copy returns a deep copy of the qualifier.
func (q *Qualifier) Copy() *Qualifier {
	out := *q
	out.Value = q.Value.Copy()
	return &out
}

// BoolQualifier builds a boolean qualifier such as Key or Association.
func BoolQualifier(name string, val bool) *Qualifier {
	return &Qualifier{
		Name:        name,
		Value:       Value{Type: TypeBoolean, Data: val},
		Overridable: true,
		ToSubclass:  true,
	}
}

// IsTrue reports whether the qualifier carries a boolean true value.
func (q *Qualifier) IsTrue() bool {
	b, ok := q.Value.Data.(bool)
	return ok && b
}

// QualifierDecl is a namespace-scoped qualifier declaration. Every
// qualifier attachment is validated against the declaration of the same
// name in its namespace.
type QualifierDecl struct {
	Name         string  `json:"name"`
	Value        Value   `json:"value"`
	Scopes       []Scope `json:"scopes,omitempty"`
	Overridable  bool    `json:"overridable,omitempty"`
	ToSubclass   bool    `json:"tosubclass,omitempty"`
	ToInstance   bool    `json:"toinstance,omitempty"`
	Translatable bool    `json:"translatable,omitempty"`
}

// Copy returns a deep copy of the declaration.
func (d *QualifierDecl) Copy() *QualifierDecl {
	out := *d
	out.Value = d.Value.Copy()
	out.Scopes = append([]Scope(nil), d.Scopes...)
	return &out
}

// HasScope reports whether the declaration admits the given scope.
// Association and indication elements also satisfy the class scope.
func (d *QualifierDecl) HasScope(s Scope) bool {
	for _, have := range d.Scopes {
		if have == ScopeAny || have == s {
			return true
		}
		if s == ScopeClass && (have == ScopeAssociation || have == ScopeIndication) {
			return true
		}
	}
	return len(d.Scopes) == 0
}
