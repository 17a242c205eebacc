package repo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"mywbem/internal/cim"
)

// NamespaceExport is the serialized form of one namespace's stores.
type NamespaceExport struct {
	Name       string               `json:"name"`
	Qualifiers []*cim.QualifierDecl `json:"qualifiers,omitempty"`
	Classes    []*cim.Class         `json:"classes,omitempty"`
	Instances  []*cim.Instance      `json:"instances,omitempty"`
}

// Export captures every namespace's qualifiers, classes and instances
// as deep copies.
func (r *Repository) Export() []NamespaceExport {
	var out []NamespaceExport
	for _, name := range r.Namespaces() {
		ns, err := r.Namespace(name)
		if err != nil {
			continue
		}
		exp := NamespaceExport{Name: ns.Name}
		for _, d := range ns.Qualifiers.List() {
			exp.Qualifiers = append(exp.Qualifiers, d.Copy())
		}
		for _, cls := range ns.Classes.Names() {
			c, _ := ns.Classes.Get(cls)
			exp.Classes = append(exp.Classes, c.Copy())
		}
		for _, inst := range ns.Instances.List() {
			exp.Instances = append(exp.Instances, inst.Copy())
		}
		out = append(out, exp)
	}
	return out
}

// Import loads exported namespaces into the repository. Existing
// namespaces with the same name are rejected; the export is assumed to
// come from a valid repository, so no schema validation is re-run.
func (r *Repository) Import(exports []NamespaceExport) error {
	for _, exp := range exports {
		if err := r.AddNamespace(exp.Name); err != nil {
			return fmt.Errorf("import namespace %s: %w", exp.Name, err)
		}
		ns, err := r.Namespace(exp.Name)
		if err != nil {
			return err
		}
		for _, d := range exp.Qualifiers {
			ns.Qualifiers.Set(d)
		}
		for _, c := range exp.Classes {
			ns.Classes.Set(c)
		}
		for _, inst := range exp.Instances {
			if inst.Path == nil {
				return fmt.Errorf("import namespace %s: instance of %s has no path", exp.Name, inst.ClassName)
			}
			if !ns.Instances.Add(inst) {
				return fmt.Errorf("import namespace %s: duplicate instance %s", exp.Name, inst.Path)
			}
		}
	}
	return nil
}

// Save writes the repository export as indented JSON.
func (r *Repository) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Export())
}

// Load reads a repository export produced by Save.
func (r *Repository) Load(rd io.Reader) error {
	var exports []NamespaceExport
	if err := json.NewDecoder(rd).Decode(&exports); err != nil {
		return fmt.Errorf("failed to parse repository snapshot: %w", err)
	}
	return r.Import(exports)
}

// SaveFile writes the repository export to a file.
func (r *Repository) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()
	return r.Save(f)
}

// LoadFile reads a repository export from a file.
func (r *Repository) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()
	return r.Load(f)
}
