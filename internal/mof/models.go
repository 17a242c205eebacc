// Package mof loads YAML schema definition files and compiles them into
// the repository: qualifier declarations, classes and instances. It is
// the bulk-load front end a MOF compiler would otherwise feed.
package mof

// SchemaFile is a complete schema definition document.
type SchemaFile struct {
	Version    string          `yaml:"version"`
	Namespace  string          `yaml:"namespace"`
	Qualifiers []QualifierDecl `yaml:"qualifiers,omitempty"`
	Classes    []ClassDecl     `yaml:"classes,omitempty"`
	Instances  []InstanceDecl  `yaml:"instances,omitempty"`
}

// QualifierDecl declares a qualifier type for the namespace.
type QualifierDecl struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	Array        bool     `yaml:"array,omitempty"`
	Value        any      `yaml:"value,omitempty"`
	Scopes       []string `yaml:"scopes,omitempty"`
	Overridable  *bool    `yaml:"overridable,omitempty"`
	ToSubclass   *bool    `yaml:"tosubclass,omitempty"`
	ToInstance   *bool    `yaml:"toinstance,omitempty"`
	Translatable *bool    `yaml:"translatable,omitempty"`
}

// ClassDecl declares a class.
type ClassDecl struct {
	Name       string         `yaml:"name"`
	SuperClass string         `yaml:"superclass,omitempty"`
	Qualifiers []QualifierRef `yaml:"qualifiers,omitempty"`
	Properties []PropertyDecl `yaml:"properties,omitempty"`
	Methods    []MethodDecl   `yaml:"methods,omitempty"`
}

// QualifierRef attaches a declared qualifier with a value.
type QualifierRef struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value,omitempty"`
}

// PropertyDecl declares a class property.
type PropertyDecl struct {
	Name           string         `yaml:"name"`
	Type           string         `yaml:"type"`
	Array          bool           `yaml:"array,omitempty"`
	ReferenceClass string         `yaml:"reference_class,omitempty"`
	Value          any            `yaml:"value,omitempty"`
	Qualifiers     []QualifierRef `yaml:"qualifiers,omitempty"`
}

// MethodDecl declares a class method.
type MethodDecl struct {
	Name       string          `yaml:"name"`
	ReturnType string          `yaml:"return_type"`
	Parameters []ParameterDecl `yaml:"parameters,omitempty"`
	Qualifiers []QualifierRef  `yaml:"qualifiers,omitempty"`
}

// ParameterDecl declares a method parameter.
type ParameterDecl struct {
	Name           string         `yaml:"name"`
	Type           string         `yaml:"type"`
	Array          bool           `yaml:"array,omitempty"`
	ReferenceClass string         `yaml:"reference_class,omitempty"`
	Qualifiers     []QualifierRef `yaml:"qualifiers,omitempty"`
}

// InstanceDecl declares an instance to seed into the store.
type InstanceDecl struct {
	Class      string         `yaml:"class"`
	Properties map[string]any `yaml:"properties"`
}
