// Package memstore is an in-memory implementation of the store interface.
// It keeps every definition introspectable, which makes it the backend of
// choice for builder tests and dry-run builds.
package memstore

import (
	"fmt"

	"github.com/monocle-ai/dapmeta/store"
)

// Group is one defined group.
type Group struct {
	ID     store.GroupID
	Parent store.GroupID // root's parent is its own id
	Name   string
}

// Dim is one defined dimension.
type Dim struct {
	ID    store.DimID
	Group store.GroupID
	Name  string
	Size  uint64
}

// EnumConst is one inserted enumeration constant.
type EnumConst struct {
	Name  string
	Value int64
}

// Field is one inserted compound field. Extents is nil for scalar fields.
type Field struct {
	Name    string
	Offset  uint64
	Type    store.TypeID
	Extents []uint64
}

// TypeClass distinguishes the constructed type shapes a store can define.
type TypeClass int

const (
	ClassEnum TypeClass = iota
	ClassOpaque
	ClassVLen
	ClassCompound
)

// Type is one defined constructed type.
type Type struct {
	ID     store.TypeID
	Group  store.GroupID
	Name   string
	Class  TypeClass
	Size   uint64       // opaque and compound
	Base   store.TypeID // enum underlying type
	Elem   store.TypeID // vlen element type
	Consts []EnumConst
	Fields []Field
}

// Var is one defined variable.
type Var struct {
	ID    store.VarID
	Group store.GroupID
	Name  string
	Type  store.TypeID
	Dims  []store.DimID
}

// Attr is one committed attribute.
type Attr struct {
	Group store.GroupID
	Var   store.VarID
	Name  string
	Type  store.TypeID
	Count int
	Data  store.AttrData
}

// Store records definitions in insertion order. Duplicate names within a
// namespace (group per sort) are rejected, mirroring the duplicate-definition
// failure mode of a real typed store.
type Store struct {
	Groups []*Group
	Dims   []*Dim
	Types  []*Type
	Vars   []*Var
	Attrs  []*Attr

	root      store.GroupID
	nextGroup store.GroupID
	nextDim   store.DimID
	nextType  store.TypeID
	nextVar   store.VarID
}

// New creates a store containing only the root group.
func New() *Store {
	s := &Store{
		nextGroup: 1,
		nextDim:   1,
		nextType:  store.MaxAtomic + 1,
		nextVar:   1,
	}
	root := &Group{ID: s.nextGroup, Parent: s.nextGroup, Name: "/"}
	s.nextGroup++
	s.Groups = append(s.Groups, root)
	s.root = root.ID
	return s
}

// Root returns the top-level group handle.
func (s *Store) Root() store.GroupID { return s.root }

func (s *Store) group(id store.GroupID) (*Group, error) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, fmt.Errorf("memstore: invalid group handle %d", id)
}

func (s *Store) typeByID(id store.TypeID) (*Type, error) {
	for _, t := range s.Types {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("memstore: invalid type id %d", id)
}

// CreateGroup implements store.Store.
func (s *Store) CreateGroup(parent store.GroupID, name string) (store.GroupID, error) {
	if _, err := s.group(parent); err != nil {
		return 0, err
	}
	for _, g := range s.Groups {
		if g.Parent == parent && g.Name == name && g.ID != g.Parent {
			return 0, fmt.Errorf("memstore: group %q already defined", name)
		}
	}
	g := &Group{ID: s.nextGroup, Parent: parent, Name: name}
	s.nextGroup++
	s.Groups = append(s.Groups, g)
	return g.ID, nil
}

// DefineDimension implements store.Store.
func (s *Store) DefineDimension(g store.GroupID, name string, size uint64) (store.DimID, error) {
	if _, err := s.group(g); err != nil {
		return 0, err
	}
	for _, d := range s.Dims {
		if d.Group == g && d.Name == name {
			return 0, fmt.Errorf("memstore: dimension %q already defined", name)
		}
	}
	d := &Dim{ID: s.nextDim, Group: g, Name: name, Size: size}
	s.nextDim++
	s.Dims = append(s.Dims, d)
	return d.ID, nil
}

func (s *Store) defineType(g store.GroupID, name string, t *Type) (store.TypeID, error) {
	if _, err := s.group(g); err != nil {
		return 0, err
	}
	if _, ok := s.LookupType(g, name); ok {
		return 0, fmt.Errorf("memstore: type %q already defined", name)
	}
	t.ID = s.nextType
	t.Group = g
	t.Name = name
	s.nextType++
	s.Types = append(s.Types, t)
	return t.ID, nil
}

// DefineEnum implements store.Store.
func (s *Store) DefineEnum(g store.GroupID, name string, base store.TypeID) (store.TypeID, error) {
	return s.defineType(g, name, &Type{Class: ClassEnum, Base: base})
}

// InsertEnumConst implements store.Store.
func (s *Store) InsertEnumConst(g store.GroupID, enum store.TypeID, name string, value int64) error {
	t, err := s.typeByID(enum)
	if err != nil {
		return err
	}
	if t.Class != ClassEnum {
		return fmt.Errorf("memstore: type %q is not an enum", t.Name)
	}
	t.Consts = append(t.Consts, EnumConst{Name: name, Value: value})
	return nil
}

// DefineOpaque implements store.Store.
func (s *Store) DefineOpaque(g store.GroupID, name string, size uint64) (store.TypeID, error) {
	return s.defineType(g, name, &Type{Class: ClassOpaque, Size: size})
}

// DefineVLen implements store.Store.
func (s *Store) DefineVLen(g store.GroupID, name string, elem store.TypeID) (store.TypeID, error) {
	return s.defineType(g, name, &Type{Class: ClassVLen, Elem: elem})
}

// DefineCompound implements store.Store.
func (s *Store) DefineCompound(g store.GroupID, name string, size uint64) (store.TypeID, error) {
	return s.defineType(g, name, &Type{Class: ClassCompound, Size: size})
}

// InsertField implements store.Store.
func (s *Store) InsertField(g store.GroupID, compound store.TypeID, name string, offset uint64, field store.TypeID) error {
	return s.insertField(compound, Field{Name: name, Offset: offset, Type: field})
}

// InsertArrayField implements store.Store.
func (s *Store) InsertArrayField(g store.GroupID, compound store.TypeID, name string, offset uint64, field store.TypeID, extents []uint64) error {
	if len(extents) == 0 {
		return fmt.Errorf("memstore: array field %q has rank 0", name)
	}
	return s.insertField(compound, Field{Name: name, Offset: offset, Type: field, Extents: extents})
}

func (s *Store) insertField(compound store.TypeID, f Field) error {
	t, err := s.typeByID(compound)
	if err != nil {
		return err
	}
	if t.Class != ClassCompound {
		return fmt.Errorf("memstore: type %q is not a compound", t.Name)
	}
	t.Fields = append(t.Fields, f)
	return nil
}

// DefineVariable implements store.Store.
func (s *Store) DefineVariable(g store.GroupID, name string, typ store.TypeID, dims []store.DimID) (store.VarID, error) {
	if _, err := s.group(g); err != nil {
		return 0, err
	}
	for _, v := range s.Vars {
		if v.Group == g && v.Name == name {
			return 0, fmt.Errorf("memstore: variable %q already defined", name)
		}
	}
	v := &Var{ID: s.nextVar, Group: g, Name: name, Type: typ, Dims: dims}
	s.nextVar++
	s.Vars = append(s.Vars, v)
	return v.ID, nil
}

// PutAttribute implements store.Store.
func (s *Store) PutAttribute(g store.GroupID, v store.VarID, name string, typ store.TypeID, count int, data store.AttrData) error {
	if _, err := s.group(g); err != nil {
		return err
	}
	if len(data.Strings) > 0 && count != len(data.Strings) {
		return fmt.Errorf("memstore: attribute %q count %d does not match %d values", name, count, len(data.Strings))
	}
	s.Attrs = append(s.Attrs, &Attr{Group: g, Var: v, Name: name, Type: typ, Count: count, Data: data})
	return nil
}

// LookupType implements store.Store.
func (s *Store) LookupType(g store.GroupID, name string) (store.TypeID, bool) {
	for _, t := range s.Types {
		if t.Group == g && t.Name == name {
			return t.ID, true
		}
	}
	return 0, false
}

// TypeNamed returns a defined type by group and name, for test introspection.
func (s *Store) TypeNamed(g store.GroupID, name string) *Type {
	for _, t := range s.Types {
		if t.Group == g && t.Name == name {
			return t
		}
	}
	return nil
}

// VarNamed returns a defined variable by group and name.
func (s *Store) VarNamed(g store.GroupID, name string) *Var {
	for _, v := range s.Vars {
		if v.Group == g && v.Name == name {
			return v
		}
	}
	return nil
}

// AttrsOf returns the attributes committed against one variable (or the
// group, with GlobalAttributes) in commit order.
func (s *Store) AttrsOf(g store.GroupID, v store.VarID) []*Attr {
	var out []*Attr
	for _, a := range s.Attrs {
		if a.Group == g && a.Var == v {
			out = append(out, a)
		}
	}
	return out
}
