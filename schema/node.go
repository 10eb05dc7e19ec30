// Package schema defines the in-memory node graph a dataset schema is
// delivered as: groups, dimensions, types, variables, attributes, and the
// references between them. The graph is produced by an external schema
// producer (see internal/schemafile for the document loader) and consumed
// read-only by the builder package; build results are never written back
// onto nodes.
package schema

// Sort identifies what a Node is.
type Sort int

const (
	SortGroup Sort = iota
	SortDimension
	SortType
	SortVariable
	SortAttribute
	SortEnumConst
)

// String returns the string representation of the sort.
func (s Sort) String() string {
	switch s {
	case SortGroup:
		return "group"
	case SortDimension:
		return "dimension"
	case SortType:
		return "type"
	case SortVariable:
		return "variable"
	case SortAttribute:
		return "attribute"
	case SortEnumConst:
		return "enumconst"
	default:
		return "unknown"
	}
}

// Node is the single schema entity, polymorphic over Sort. Only the field
// groups relevant to a node's sort are populated; everything else stays at
// its zero value. Children never own their container: Container is an
// upward-only link used to find the enclosing group.
type Node struct {
	Sort Sort
	Kind TypeKind // type kind; for variables, derived from Base.Kind
	Name string

	// Container is the enclosing group, structure, or variable. It is nil
	// only on the dataset root.
	Container *Node

	// Group fields.
	Root       bool // marks the dataset root group
	Groups     []*Node
	Dims       []*Node
	Types      []*Node
	Vars       []*Node
	Attributes []*Node // also used by variables

	// Dimension fields. Size is ignored when Unlimited is set.
	Size      uint64
	Unlimited bool

	// Type fields. Base is the enum underlying type for enum types, and the
	// declared base type for variables and attributes (non-owning).
	Base        *Node
	Consts      []*Node // enum constants, declared order
	Value       int64   // enum constant value
	OpaqueSize  uint64  // 0 means variable length
	Fields      []*Node // struct members / sequence row fields
	SingleField bool    // sequence: element type is the single field's base type

	// Variable fields.
	DimRefs []*Node
	Maps    []*Node // order-significant references to other variables

	// Attribute fields.
	Values []string // ordered textual literal values

	// Alternate identity: when set, the type's real definition is
	// materialized under this name in this group instead of its own,
	// collapsing logically-identical anonymous types.
	AltName  string
	AltGroup *Node
}

// GroupFor walks container links upward until it reaches a group node.
func GroupFor(n *Node) *Node {
	for n.Sort != SortGroup {
		n = n.Container
	}
	return n
}

// TopLevel reports whether a variable sits directly in a group, as opposed
// to being a member of a composite type.
func (n *Node) TopLevel() bool {
	return n.Container != nil && n.Container.Sort == SortGroup
}

// Dataset holds the complete node set for one schema. Nodes preserves
// insertion order; it is the tie-breaking anchor that keeps the build
// order deterministic.
type Dataset struct {
	Root  *Node
	Nodes []*Node

	atomics map[TypeKind]*Node
}

// NewDataset creates a dataset with an empty root group.
func NewDataset(name string) *Dataset {
	d := &Dataset{atomics: make(map[TypeKind]*Node)}
	d.Root = d.add(&Node{Sort: SortGroup, Name: name, Root: true})
	return d
}

func (d *Dataset) add(n *Node) *Node {
	d.Nodes = append(d.Nodes, n)
	return n
}

// Atomic returns the shared type node for an atomic kind, creating it on
// first use. Atomic nodes live in the root group and are never defined
// against the store; the builder resolves them to well-known ids.
func (d *Dataset) Atomic(k TypeKind) *Node {
	if !k.IsAtomic() {
		panic("schema: Atomic called with non-atomic kind " + k.String())
	}
	if n, ok := d.atomics[k]; ok {
		return n
	}
	n := d.add(&Node{Sort: SortType, Kind: k, Name: k.String(), Container: d.Root})
	d.atomics[k] = n
	return n
}

// NewGroup creates a subgroup under parent.
func (d *Dataset) NewGroup(parent *Node, name string) *Node {
	g := d.add(&Node{Sort: SortGroup, Name: name, Container: parent})
	parent.Groups = append(parent.Groups, g)
	return g
}

// NewDimension creates a dimension in a group. Size 0 with unlimited=false
// is invalid input; the loader rejects it before the graph is built.
func (d *Dataset) NewDimension(group *Node, name string, size uint64, unlimited bool) *Node {
	dim := d.add(&Node{Sort: SortDimension, Name: name, Container: group, Size: size, Unlimited: unlimited})
	group.Dims = append(group.Dims, dim)
	return dim
}

// NewType creates a named type node of the given kind in a group.
func (d *Dataset) NewType(group *Node, name string, kind TypeKind) *Node {
	t := d.add(&Node{Sort: SortType, Kind: kind, Name: name, Container: group})
	group.Types = append(group.Types, t)
	return t
}

// NewEnumConst appends a named constant to an enum type.
func (d *Dataset) NewEnumConst(enum *Node, name string, value int64) *Node {
	c := d.add(&Node{Sort: SortEnumConst, Name: name, Container: enum, Value: value})
	enum.Consts = append(enum.Consts, c)
	return c
}

// NewVariable creates a variable in a group.
func (d *Dataset) NewVariable(group *Node, name string, base *Node) *Node {
	v := d.add(&Node{Sort: SortVariable, Kind: base.Kind, Name: name, Container: group, Base: base})
	group.Vars = append(group.Vars, v)
	return v
}

// NewField appends a member variable to a composite type.
func (d *Dataset) NewField(composite *Node, name string, base *Node) *Node {
	f := d.add(&Node{Sort: SortVariable, Kind: base.Kind, Name: name, Container: composite, Base: base})
	composite.Fields = append(composite.Fields, f)
	return f
}

// NewAttribute appends an attribute to a group or variable.
func (d *Dataset) NewAttribute(owner *Node, name string, base *Node, values []string) *Node {
	a := d.add(&Node{Sort: SortAttribute, Name: name, Container: owner, Base: base, Values: values})
	owner.Attributes = append(owner.Attributes, a)
	return a
}
