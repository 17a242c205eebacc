package mof

import (
	"fmt"
	"regexp"

	"mywbem/internal/cim"
)

// Validator checks a parsed schema definition before compilation.
type Validator struct {
	schema *SchemaFile
}

// NewValidator creates a validator for a parsed schema.
func NewValidator(schema *SchemaFile) *Validator {
	return &Validator{schema: schema}
}

var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate runs syntax and semantic checks.
func (v *Validator) Validate() error {
	if err := v.validateSyntax(); err != nil {
		return err
	}
	return v.validateSemantics()
}

// validateSyntax checks names, types and duplicates.
func (v *Validator) validateSyntax() error {
	if v.schema.Version == "" {
		return fmt.Errorf("version is required")
	}
	if v.schema.Namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	qualNames := make(map[string]bool)
	for i, q := range v.schema.Qualifiers {
		if q.Name == "" {
			return fmt.Errorf("qualifiers[%d]: name is required", i)
		}
		if !nameRe.MatchString(q.Name) {
			return fmt.Errorf("qualifiers[%d]: invalid name format %q", i, q.Name)
		}
		key := cim.Fold(q.Name)
		if qualNames[key] {
			return fmt.Errorf("duplicate qualifier name: %s", q.Name)
		}
		qualNames[key] = true
		if _, err := cim.ParseType(q.Type); err != nil {
			return fmt.Errorf("qualifiers[%s]: %v", q.Name, err)
		}
		for _, s := range q.Scopes {
			if _, ok := cim.ParseScope(s); !ok {
				return fmt.Errorf("qualifiers[%s]: invalid scope %q", q.Name, s)
			}
		}
	}

	classNames := make(map[string]bool)
	for i, c := range v.schema.Classes {
		if c.Name == "" {
			return fmt.Errorf("classes[%d]: name is required", i)
		}
		if !nameRe.MatchString(c.Name) {
			return fmt.Errorf("classes[%d]: invalid name format %q", i, c.Name)
		}
		key := cim.Fold(c.Name)
		if classNames[key] {
			return fmt.Errorf("duplicate class name: %s", c.Name)
		}
		classNames[key] = true

		propNames := make(map[string]bool)
		for j, p := range c.Properties {
			if p.Name == "" {
				return fmt.Errorf("classes[%s].properties[%d]: name is required", c.Name, j)
			}
			if !nameRe.MatchString(p.Name) {
				return fmt.Errorf("classes[%s].properties[%d]: invalid name format %q", c.Name, j, p.Name)
			}
			pk := cim.Fold(p.Name)
			if propNames[pk] {
				return fmt.Errorf("duplicate property name %q in class %s", p.Name, c.Name)
			}
			propNames[pk] = true
			t, err := cim.ParseType(p.Type)
			if err != nil {
				return fmt.Errorf("classes[%s].properties[%s]: %v", c.Name, p.Name, err)
			}
			if t == cim.TypeReference && p.ReferenceClass == "" {
				return fmt.Errorf("classes[%s].properties[%s]: reference property requires reference_class", c.Name, p.Name)
			}
		}

		methodNames := make(map[string]bool)
		for j, m := range c.Methods {
			if m.Name == "" {
				return fmt.Errorf("classes[%s].methods[%d]: name is required", c.Name, j)
			}
			mk := cim.Fold(m.Name)
			if methodNames[mk] {
				return fmt.Errorf("duplicate method name %q in class %s", m.Name, c.Name)
			}
			methodNames[mk] = true
			if _, err := cim.ParseType(m.ReturnType); err != nil {
				return fmt.Errorf("classes[%s].methods[%s]: %v", c.Name, m.Name, err)
			}
			paramNames := make(map[string]bool)
			for _, prm := range m.Parameters {
				pk := cim.Fold(prm.Name)
				if paramNames[pk] {
					return fmt.Errorf("duplicate parameter name %q in method %s.%s", prm.Name, c.Name, m.Name)
				}
				paramNames[pk] = true
				if _, err := cim.ParseType(prm.Type); err != nil {
					return fmt.Errorf("classes[%s].methods[%s].parameters[%s]: %v", c.Name, m.Name, prm.Name, err)
				}
			}
		}
	}
	return nil
}

// validateSemantics checks cross references within the document.
func (v *Validator) validateSemantics() error {
	classNames := make(map[string]bool)
	for _, c := range v.schema.Classes {
		classNames[cim.Fold(c.Name)] = true
	}
	qualNames := make(map[string]bool)
	for _, q := range v.schema.Qualifiers {
		qualNames[cim.Fold(q.Name)] = true
	}

	for _, c := range v.schema.Classes {
		if c.SuperClass != "" && !classNames[cim.Fold(c.SuperClass)] {
			return fmt.Errorf("class %s: superclass %s is not declared", c.Name, c.SuperClass)
		}
		for _, p := range c.Properties {
			if p.ReferenceClass != "" && !classNames[cim.Fold(p.ReferenceClass)] {
				return fmt.Errorf("class %s: property %s references undeclared class %s", c.Name, p.Name, p.ReferenceClass)
			}
			for _, q := range p.Qualifiers {
				if !qualNames[cim.Fold(q.Name)] {
					return fmt.Errorf("class %s: property %s uses undeclared qualifier %s", c.Name, p.Name, q.Name)
				}
			}
		}
		for _, q := range c.Qualifiers {
			if !qualNames[cim.Fold(q.Name)] {
				return fmt.Errorf("class %s uses undeclared qualifier %s", c.Name, q.Name)
			}
		}
	}

	for i, inst := range v.schema.Instances {
		if inst.Class == "" {
			return fmt.Errorf("instances[%d]: class is required", i)
		}
		if !classNames[cim.Fold(inst.Class)] {
			return fmt.Errorf("instances[%d]: class %s is not declared", i, inst.Class)
		}
	}
	return nil
}
