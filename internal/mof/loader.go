package mof

import (
	"fmt"
	"sync"

	"mywbem/internal/cim"
	"mywbem/internal/engine"
	"mywbem/internal/repo"
)

// Loader parses, validates and compiles a schema file into a namespace.
type Loader struct {
	parser *Parser
	schema *SchemaFile
	mu     sync.RWMutex
}

// NewLoader creates a loader for the given schema file.
func NewLoader(filePath string) *Loader {
	return &Loader{parser: NewParser(filePath)}
}

// Load parses and validates the schema file.
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	schema, err := l.parser.Parse()
	if err != nil {
		return fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := NewValidator(schema).Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	l.schema = schema
	return nil
}

// Reload re-reads the schema file.
func (l *Loader) Reload() error {
	return l.Load()
}

// Schema returns the last loaded schema.
func (l *Loader) Schema() *SchemaFile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.schema
}

// Compile loads the schema into the engine's repository: the target
// namespace, qualifier declarations, classes in dependency order, then
// instances. Load must have succeeded first.
func (l *Loader) Compile(eng *engine.Engine) error {
	schema := l.Schema()
	if schema == nil {
		return fmt.Errorf("schema not loaded")
	}
	return Compile(schema, eng)
}

// Compile loads a validated schema into the engine's repository.
func Compile(schema *SchemaFile, eng *engine.Engine) error {
	r := eng.Repository()
	ns := repo.NormalizeNamespace(schema.Namespace)
	if !r.HasNamespace(ns) {
		if err := r.AddNamespace(ns); err != nil {
			return err
		}
	}

	for i := range schema.Qualifiers {
		decl, err := compileQualifierDecl(&schema.Qualifiers[i])
		if err != nil {
			return err
		}
		if err := eng.SetQualifier(ns, decl); err != nil {
			return err
		}
	}

	qs, err := r.QualifierStore(ns)
	if err != nil {
		return err
	}

	// Classes must be created after their superclass. The validator
	// guarantees every superclass is declared, so each pass creates at
	// least one class until all are done.
	done := make(map[string]bool)
	remaining := len(schema.Classes)
	for remaining > 0 {
		progress := false
		for i := range schema.Classes {
			decl := &schema.Classes[i]
			key := cim.Fold(decl.Name)
			if done[key] {
				continue
			}
			if decl.SuperClass != "" && !done[cim.Fold(decl.SuperClass)] {
				continue
			}
			cls, err := compileClass(decl, qs)
			if err != nil {
				return err
			}
			if err := eng.CreateClass(ns, cls); err != nil {
				return err
			}
			done[key] = true
			remaining--
			progress = true
		}
		if !progress {
			return fmt.Errorf("superclass cycle in schema classes")
		}
	}

	for i, decl := range schema.Instances {
		inst, err := eng.BuildInstance(ns, decl.Class, decl.Properties)
		if err != nil {
			return fmt.Errorf("instances[%d]: %w", i, err)
		}
		if _, err := eng.CreateInstance(ns, inst); err != nil {
			return fmt.Errorf("instances[%d]: %w", i, err)
		}
	}
	return nil
}

func compileQualifierDecl(d *QualifierDecl) (*cim.QualifierDecl, error) {
	t, err := cim.ParseType(d.Type)
	if err != nil {
		return nil, fmt.Errorf("qualifier %s: %w", d.Name, err)
	}
	v, err := cim.Coerce(t, d.Array, d.Value)
	if err != nil {
		return nil, fmt.Errorf("qualifier %s: %w", d.Name, err)
	}
	out := &cim.QualifierDecl{
		Name:         d.Name,
		Value:        v,
		Overridable:  boolOr(d.Overridable, true),
		ToSubclass:   boolOr(d.ToSubclass, true),
		ToInstance:   boolOr(d.ToInstance, false),
		Translatable: boolOr(d.Translatable, false),
	}
	for _, s := range d.Scopes {
		scope, _ := cim.ParseScope(s)
		out.Scopes = append(out.Scopes, scope)
	}
	return out, nil
}

func compileClass(decl *ClassDecl, qs *repo.QualifierStore) (*cim.Class, error) {
	cls := cim.NewClass(decl.Name, decl.SuperClass)
	for _, ref := range decl.Qualifiers {
		q, err := compileQualifierRef(&ref, qs)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", decl.Name, err)
		}
		cls.Qualifiers.Set(q.Name, q)
	}

	for i := range decl.Properties {
		pd := &decl.Properties[i]
		t, err := cim.ParseType(pd.Type)
		if err != nil {
			return nil, fmt.Errorf("class %s property %s: %w", decl.Name, pd.Name, err)
		}
		v, err := cim.Coerce(t, pd.Array, pd.Value)
		if err != nil {
			return nil, fmt.Errorf("class %s property %s: %w", decl.Name, pd.Name, err)
		}
		p := cim.NewProperty(pd.Name, v)
		p.ReferenceClass = pd.ReferenceClass
		for _, ref := range pd.Qualifiers {
			q, err := compileQualifierRef(&ref, qs)
			if err != nil {
				return nil, fmt.Errorf("class %s property %s: %w", decl.Name, pd.Name, err)
			}
			p.Qualifiers.Set(q.Name, q)
		}
		cls.Properties.Set(p.Name, p)
	}

	for i := range decl.Methods {
		md := &decl.Methods[i]
		rt, err := cim.ParseType(md.ReturnType)
		if err != nil {
			return nil, fmt.Errorf("class %s method %s: %w", decl.Name, md.Name, err)
		}
		m := cim.NewMethod(md.Name, rt)
		for _, ref := range md.Qualifiers {
			q, err := compileQualifierRef(&ref, qs)
			if err != nil {
				return nil, fmt.Errorf("class %s method %s: %w", decl.Name, md.Name, err)
			}
			m.Qualifiers.Set(q.Name, q)
		}
		for j := range md.Parameters {
			pd := &md.Parameters[j]
			pt, err := cim.ParseType(pd.Type)
			if err != nil {
				return nil, fmt.Errorf("class %s method %s parameter %s: %w", decl.Name, md.Name, pd.Name, err)
			}
			prm := cim.NewParameter(pd.Name, pt)
			prm.Array = pd.Array
			prm.ReferenceClass = pd.ReferenceClass
			for _, ref := range pd.Qualifiers {
				q, err := compileQualifierRef(&ref, qs)
				if err != nil {
					return nil, fmt.Errorf("class %s method %s parameter %s: %w", decl.Name, md.Name, pd.Name, err)
				}
				prm.Qualifiers.Set(q.Name, q)
			}
			m.Parameters.Set(prm.Name, prm)
		}
		cls.Methods.Set(m.Name, m)
	}
	return cls, nil
}

// compileQualifierRef resolves a qualifier attachment against its
// declaration: the declared type coerces the value, the declared flavors
// carry over, and a missing value means boolean true.
func compileQualifierRef(ref *QualifierRef, qs *repo.QualifierStore) (*cim.Qualifier, error) {
	decl, ok := qs.Get(ref.Name)
	if !ok {
		return nil, fmt.Errorf("qualifier %s has no declaration", ref.Name)
	}
	raw := ref.Value
	if raw == nil && decl.Value.Type == cim.TypeBoolean && !decl.Value.Array {
		raw = true
	}
	v, err := cim.Coerce(decl.Value.Type, decl.Value.Array, raw)
	if err != nil {
		return nil, fmt.Errorf("qualifier %s: %w", ref.Name, err)
	}
	return &cim.Qualifier{
		Name:         decl.Name,
		Value:        v,
		Overridable:  decl.Overridable,
		ToSubclass:   decl.ToSubclass,
		ToInstance:   decl.ToInstance,
		Translatable: decl.Translatable,
	}, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
