// Package schemafile loads a JSON schema document into a schema.Dataset.
// It is the in-repo stand-in for the external schema producer: it performs
// only the name-to-node reference resolution needed to populate the graph,
// and leaves every semantic decision to the builder.
package schemafile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/monocle-ai/dapmeta/schema"
)

type document struct {
	Name string   `json:"name"`
	Root groupDoc `json:"root"`
}

type groupDoc struct {
	Name       string     `json:"name"`
	Groups     []groupDoc `json:"groups,omitempty"`
	Dimensions []dimDoc   `json:"dimensions,omitempty"`
	Types      []typeDoc  `json:"types,omitempty"`
	Variables  []varDoc   `json:"variables,omitempty"`
	Attributes []attrDoc  `json:"attributes,omitempty"`
}

type dimDoc struct {
	Name      string `json:"name"`
	Size      uint64 `json:"size,omitempty"`
	Unlimited bool   `json:"unlimited,omitempty"`
}

type typeDoc struct {
	Name        string     `json:"name"`
	Kind        string     `json:"kind"` // enum, opaque, struct, sequence
	Base        string     `json:"base,omitempty"`
	Consts      []constDoc `json:"consts,omitempty"`
	Size        uint64     `json:"size,omitempty"`
	Fields      []varDoc   `json:"fields,omitempty"`
	SingleField bool       `json:"single_field,omitempty"`
	AltName     string     `json:"alt_name,omitempty"`
	AltGroup    string     `json:"alt_group,omitempty"`
}

type constDoc struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type varDoc struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Dims       []string  `json:"dims,omitempty"`
	Attributes []attrDoc `json:"attributes,omitempty"`
	Maps       []string  `json:"maps,omitempty"`
}

type attrDoc struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// Load reads and parses a schema document from a file.
func Load(path string) (*schema.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema document: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse builds a dataset from a JSON schema document. Named types may
// reference each other in either declaration order; references are resolved
// after the full shape of the document is registered.
func Parse(r io.Reader) (*schema.Dataset, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema document: %w", err)
	}

	ds := schema.NewDataset(doc.Name)

	// Pass 1: groups, dimensions, and named-type shells, so that any
	// reference target exists before references are resolved.
	if err := registerGroup(ds, ds.Root, &doc.Root); err != nil {
		return nil, err
	}
	// Pass 2: type internals, variables, attributes.
	if err := populateGroup(ds, ds.Root, &doc.Root); err != nil {
		return nil, err
	}
	// Pass 3: map references, which point at variables created in pass 2.
	if err := wireMaps(ds, ds.Root, &doc.Root); err != nil {
		return nil, err
	}
	return ds, nil
}

func registerGroup(ds *schema.Dataset, node *schema.Node, doc *groupDoc) error {
	for i := range doc.Dimensions {
		d := &doc.Dimensions[i]
		if d.Size == 0 && !d.Unlimited {
			return fmt.Errorf("dimension %q has no size and is not unlimited", d.Name)
		}
		ds.NewDimension(node, d.Name, d.Size, d.Unlimited)
	}
	for i := range doc.Types {
		td := &doc.Types[i]
		var kind schema.TypeKind
		switch td.Kind {
		case "enum":
			kind = schema.KindEnum
		case "opaque":
			kind = schema.KindOpaque
		case "struct":
			kind = schema.KindStruct
		case "sequence":
			kind = schema.KindSequence
		default:
			return fmt.Errorf("type %q has unknown kind %q", td.Name, td.Kind)
		}
		t := ds.NewType(node, td.Name, kind)
		t.OpaqueSize = td.Size
		t.SingleField = td.SingleField
		t.AltName = td.AltName
		for _, c := range td.Consts {
			ds.NewEnumConst(t, c.Name, c.Value)
		}
	}
	for i := range doc.Groups {
		sub := ds.NewGroup(node, doc.Groups[i].Name)
		if err := registerGroup(ds, sub, &doc.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

func populateGroup(ds *schema.Dataset, node *schema.Node, doc *groupDoc) error {
	for i := range doc.Types {
		td := &doc.Types[i]
		t := node.Types[i]
		if td.Base != "" {
			base, err := resolveType(ds, node, td.Base)
			if err != nil {
				return fmt.Errorf("type %q: %w", td.Name, err)
			}
			t.Base = base
		} else if t.Kind == schema.KindEnum {
			return fmt.Errorf("enum type %q has no base type", td.Name)
		}
		if td.AltGroup != "" {
			alt, err := resolveGroup(ds, td.AltGroup)
			if err != nil {
				return fmt.Errorf("type %q: %w", td.Name, err)
			}
			t.AltGroup = alt
		}
		for j := range td.Fields {
			fd := &td.Fields[j]
			base, err := resolveType(ds, node, fd.Type)
			if err != nil {
				return fmt.Errorf("field %q of %q: %w", fd.Name, td.Name, err)
			}
			f := ds.NewField(t, fd.Name, base)
			if err := resolveDims(ds, node, f, fd.Dims); err != nil {
				return err
			}
		}
	}
	for i := range doc.Variables {
		vd := &doc.Variables[i]
		base, err := resolveType(ds, node, vd.Type)
		if err != nil {
			return fmt.Errorf("variable %q: %w", vd.Name, err)
		}
		v := ds.NewVariable(node, vd.Name, base)
		if err := resolveDims(ds, node, v, vd.Dims); err != nil {
			return err
		}
		if err := addAttributes(ds, node, v, vd.Attributes); err != nil {
			return err
		}
	}
	if err := addAttributes(ds, node, node, doc.Attributes); err != nil {
		return err
	}
	for i := range doc.Groups {
		if err := populateGroup(ds, node.Groups[i], &doc.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

func wireMaps(ds *schema.Dataset, node *schema.Node, doc *groupDoc) error {
	for i := range doc.Variables {
		vd := &doc.Variables[i]
		v := node.Vars[i]
		for _, ref := range vd.Maps {
			target, err := resolveVariable(ds, node, ref)
			if err != nil {
				return fmt.Errorf("map reference of %q: %w", vd.Name, err)
			}
			v.Maps = append(v.Maps, target)
		}
	}
	for i := range doc.Groups {
		if err := wireMaps(ds, node.Groups[i], &doc.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

func addAttributes(ds *schema.Dataset, group, owner *schema.Node, docs []attrDoc) error {
	for i := range docs {
		ad := &docs[i]
		base, err := resolveType(ds, group, ad.Type)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", ad.Name, err)
		}
		ds.NewAttribute(owner, ad.Name, base, ad.Values)
	}
	return nil
}

func resolveDims(ds *schema.Dataset, group, v *schema.Node, refs []string) error {
	for _, ref := range refs {
		dim, err := resolveDimension(ds, group, ref)
		if err != nil {
			return fmt.Errorf("variable %q: %w", v.Name, err)
		}
		v.DimRefs = append(v.DimRefs, dim)
	}
	return nil
}

// resolveType resolves a type reference: an atomic kind name, an absolute
// path like /g/T, or a bare name searched from the enclosing group upward.
func resolveType(ds *schema.Dataset, from *schema.Node, ref string) (*schema.Node, error) {
	if k, ok := schema.KindByName(ref); ok {
		return ds.Atomic(k), nil
	}
	return resolveNamed(ds, from, ref, "type", func(g *schema.Node) []*schema.Node { return g.Types })
}

func resolveDimension(ds *schema.Dataset, from *schema.Node, ref string) (*schema.Node, error) {
	return resolveNamed(ds, from, ref, "dimension", func(g *schema.Node) []*schema.Node { return g.Dims })
}

func resolveVariable(ds *schema.Dataset, from *schema.Node, ref string) (*schema.Node, error) {
	return resolveNamed(ds, from, ref, "variable", func(g *schema.Node) []*schema.Node { return g.Vars })
}

func resolveNamed(ds *schema.Dataset, from *schema.Node, ref, what string, list func(*schema.Node) []*schema.Node) (*schema.Node, error) {
	if strings.HasPrefix(ref, "/") {
		group, name, err := splitPath(ds, ref)
		if err != nil {
			return nil, err
		}
		for _, n := range list(group) {
			if n.Name == name {
				return n, nil
			}
		}
		return nil, fmt.Errorf("no %s %q", what, ref)
	}
	for g := from; g != nil; g = parentGroup(g) {
		for _, n := range list(g) {
			if n.Name == ref {
				return n, nil
			}
		}
	}
	return nil, fmt.Errorf("no %s %q in scope", what, ref)
}

// resolveGroup resolves an absolute group path like /g/sub; "/" is the root.
func resolveGroup(ds *schema.Dataset, ref string) (*schema.Node, error) {
	if !strings.HasPrefix(ref, "/") {
		return nil, fmt.Errorf("group reference %q is not absolute", ref)
	}
	g := ds.Root
	for _, seg := range strings.Split(strings.Trim(ref, "/"), "/") {
		if seg == "" {
			continue
		}
		var next *schema.Node
		for _, sub := range g.Groups {
			if sub.Name == seg {
				next = sub
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("no group %q", ref)
		}
		g = next
	}
	return g, nil
}

// splitPath splits an absolute reference into its enclosing group and leaf
// name.
func splitPath(ds *schema.Dataset, ref string) (*schema.Node, string, error) {
	idx := strings.LastIndex(ref, "/")
	name := ref[idx+1:]
	if name == "" {
		return nil, "", fmt.Errorf("reference %q has no leaf name", ref)
	}
	group, err := resolveGroup(ds, ref[:idx+1])
	if err != nil {
		return nil, "", err
	}
	return group, name, nil
}

func parentGroup(g *schema.Node) *schema.Node {
	if g.Container == nil {
		return nil
	}
	return schema.GroupFor(g.Container)
}
