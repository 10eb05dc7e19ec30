// Package builder lowers a schema node graph into a forward-reference-free
// sequence of definition calls against a typed metadata store. It defines
// the group tree first, then walks types and dimensions in dependency order,
// then defines top-level variables with their attributes and map references.
// The pass is single-threaded and synchronous: every store call completes
// before the next begins, and the first failure aborts the pass with no
// rollback of already-committed definitions.
package builder

import (
	"go.uber.org/zap"

	"github.com/monocle-ai/dapmeta/schema"
	"github.com/monocle-ai/dapmeta/store"
)

// results is the id-indexed build-result table, keyed by node. It is
// populated monotonically during a single pass and never mutated afterward;
// nodes themselves stay read-only.
type results struct {
	groups  map[*schema.Node]store.GroupID
	dims    map[*schema.Node]store.DimID
	types   map[*schema.Node]store.TypeID
	inner   map[*schema.Node]store.TypeID // a sequence's implicit inner compound
	vars    map[*schema.Node]store.VarID
	offsets map[*schema.Node]uint64 // per-field byte offsets
	sizes   map[*schema.Node]uint64 // per-composite total sizes
}

func newResults() *results {
	return &results{
		groups:  make(map[*schema.Node]store.GroupID),
		dims:    make(map[*schema.Node]store.DimID),
		types:   make(map[*schema.Node]store.TypeID),
		inner:   make(map[*schema.Node]store.TypeID),
		vars:    make(map[*schema.Node]store.VarID),
		offsets: make(map[*schema.Node]uint64),
		sizes:   make(map[*schema.Node]uint64),
	}
}

// Builder drives one build pass over a dataset. A Builder is not reusable:
// create a fresh one per pass.
type Builder struct {
	ds  *schema.Dataset
	st  store.Store
	log *zap.Logger

	res *results

	// bytestring is the lazily-defined canonical variable-length byte
	// type every zero-size opaque node aliases.
	bytestring store.TypeID
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger attaches a logger for per-definition debug output.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// New creates a builder over a fully-populated dataset. The dataset's
// type-usage graph must be acyclic; this is a precondition, not a guarded
// check.
func New(ds *schema.Dataset, st store.Store, opts ...Option) *Builder {
	b := &Builder{ds: ds, st: st, log: zap.NewNop(), res: newResults()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the pass. The dataset root group adopts the caller-supplied
// top-level store handle rather than requesting a new group.
func (b *Builder) Build(root store.GroupID) error {
	b.res.groups[b.ds.Root] = root

	// Group tree first; defining a group never depends on type content.
	if err := b.buildGroups(b.ds.Root); err != nil {
		return err
	}

	order := dependencyOrder(b.ds)
	for _, n := range order {
		var err error
		switch n.Sort {
		case schema.SortDimension:
			err = b.buildDimension(n)
		case schema.SortType:
			switch n.Kind {
			case schema.KindEnum:
				err = b.buildEnumeration(n)
			case schema.KindOpaque:
				err = b.buildOpaque(n)
			case schema.KindStruct:
				err = b.buildStructType(n)
			case schema.KindSequence:
				err = b.buildSequenceType(n)
			default:
				// Atomic types resolve to well-known ids; nothing to define.
			}
		}
		if err != nil {
			return err
		}
	}

	// Group-level attributes.
	for _, n := range b.ds.Nodes {
		if n.Sort == schema.SortGroup {
			if err := b.buildAttributes(n); err != nil {
				return err
			}
		}
	}

	// Finally, the top-level variables. Composite members were already
	// covered as compound fields.
	for _, n := range b.ds.Nodes {
		if n.Sort == schema.SortVariable && n.TopLevel() {
			if err := b.buildVariable(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// groupID returns the store handle of the group enclosing n.
func (b *Builder) groupID(n *schema.Node) store.GroupID {
	return b.res.groups[schema.GroupFor(n)]
}

// typeID resolves a type node to its store id: well-known ids for atomics,
// the results table for constructed types. A constructed type missing from
// the table means the dependency order was violated upstream.
func (b *Builder) typeID(t *schema.Node) (store.TypeID, error) {
	if id, ok := store.AtomicID(t.Kind); ok {
		return id, nil
	}
	if id, ok := b.res.types[t]; ok {
		return id, nil
	}
	return 0, badType(t.Name, "type %s has no definition yet", t.Kind)
}
