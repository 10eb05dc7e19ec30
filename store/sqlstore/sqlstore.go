// Package sqlstore implements the store interface on a relational database
// via database/sql: one table per definition kind. It is driver-agnostic;
// the CLI wires sqlite3 and postgres drivers. Ids are allocated in-process,
// so a store instance owns its database exclusively for the duration of a
// build, matching the single-writer build pass.
package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/monocle-ai/dapmeta/store"
)

const initSchema = `
CREATE TABLE IF NOT EXISTS datasets (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
	id INTEGER PRIMARY KEY,
	dataset_id TEXT NOT NULL,
	parent_id INTEGER NOT NULL,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dimensions (
	id INTEGER PRIMARY KEY,
	group_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	size INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS types (
	id INTEGER PRIMARY KEY,
	group_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	class TEXT NOT NULL,
	size INTEGER NOT NULL DEFAULT 0,
	base_id INTEGER NOT NULL DEFAULT 0,
	elem_id INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS enum_consts (
	type_id INTEGER NOT NULL,
	ord INTEGER NOT NULL,
	name TEXT NOT NULL,
	value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS type_fields (
	type_id INTEGER NOT NULL,
	ord INTEGER NOT NULL,
	name TEXT NOT NULL,
	byte_offset INTEGER NOT NULL,
	field_type_id INTEGER NOT NULL,
	extents TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS variables (
	id INTEGER PRIMARY KEY,
	group_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	type_id INTEGER NOT NULL,
	dims TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS attributes (
	group_id INTEGER NOT NULL,
	var_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	type_id INTEGER NOT NULL,
	count INTEGER NOT NULL,
	bytes BLOB,
	strings TEXT
);
`

// Store implements store.Store on a SQL database.
type Store struct {
	db        *sql.DB
	rebind    func(string) string
	datasetID string
	root      store.GroupID

	nextGroup store.GroupID
	nextDim   store.DimID
	nextType  store.TypeID
	nextVar   store.VarID

	// insertion counters per composite, preserving declared member order
	ords map[store.TypeID]int
}

// New wraps an open database handle. Queries use ? placeholders; see
// NewPostgres for drivers that want $N numbering. Call Initialize before
// first use.
func New(db *sql.DB) *Store {
	return &Store{
		db:        db,
		rebind:    func(q string) string { return q },
		datasetID: uuid.NewString(),
		nextGroup: 1,
		nextDim:   1,
		nextType:  store.MaxAtomic + 1,
		nextVar:   1,
		ords:      make(map[store.TypeID]int),
	}
}

// NewPostgres wraps an open database handle, renumbering ? placeholders to
// the $N form postgres drivers require.
func NewPostgres(db *sql.DB) *Store {
	s := New(db)
	s.rebind = rebindDollar
	return s
}

// Open opens a database by driver name and DSN and initializes the store
// schema. The caller is responsible for Close.
func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	s := New(db)
	if driver == "postgres" {
		s.rebind = rebindDollar
	}
	if err := s.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// rebindDollar replaces each ? placeholder with $1, $2, ... in order.
func rebindDollar(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// Initialize ensures the definition tables exist, stamps the dataset row,
// and creates the root group.
func (s *Store) Initialize() error {
	if _, err := s.db.Exec(initSchema); err != nil {
		return fmt.Errorf("failed to initialize store schema: %w", err)
	}
	if _, err := s.exec(`INSERT INTO datasets (id, created_at) VALUES (?, ?)`,
		s.datasetID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record dataset: %w", err)
	}
	root := s.nextGroup
	s.nextGroup++
	if _, err := s.exec(`INSERT INTO groups (id, dataset_id, parent_id, name) VALUES (?, ?, ?, ?)`,
		root, s.datasetID, root, "/"); err != nil {
		return fmt.Errorf("failed to create root group: %w", err)
	}
	s.root = root
	return nil
}

func (s *Store) exec(query string, args ...interface{}) (sql.Result, error) {
	return s.db.Exec(s.rebind(query), args...)
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Root returns the top-level group handle.
func (s *Store) Root() store.GroupID { return s.root }

// DatasetID returns the uuid stamped on this store's dataset row.
func (s *Store) DatasetID() string { return s.datasetID }

// CreateGroup implements store.Store.
func (s *Store) CreateGroup(parent store.GroupID, name string) (store.GroupID, error) {
	id := s.nextGroup
	s.nextGroup++
	_, err := s.exec(`INSERT INTO groups (id, dataset_id, parent_id, name) VALUES (?, ?, ?, ?)`,
		id, s.datasetID, parent, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create group %q: %w", name, err)
	}
	return id, nil
}

// DefineDimension implements store.Store.
func (s *Store) DefineDimension(g store.GroupID, name string, size uint64) (store.DimID, error) {
	id := s.nextDim
	s.nextDim++
	_, err := s.exec(`INSERT INTO dimensions (id, group_id, name, size) VALUES (?, ?, ?, ?)`,
		id, g, name, int64(size))
	if err != nil {
		return 0, fmt.Errorf("failed to define dimension %q: %w", name, err)
	}
	return id, nil
}

func (s *Store) defineType(g store.GroupID, name, class string, size uint64, base, elem store.TypeID) (store.TypeID, error) {
	if _, ok := s.LookupType(g, name); ok {
		return 0, fmt.Errorf("type %q already defined in group %d", name, g)
	}
	id := s.nextType
	s.nextType++
	_, err := s.exec(`INSERT INTO types (id, group_id, name, class, size, base_id, elem_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, g, name, class, int64(size), base, elem)
	if err != nil {
		return 0, fmt.Errorf("failed to define %s type %q: %w", class, name, err)
	}
	return id, nil
}

// DefineEnum implements store.Store.
func (s *Store) DefineEnum(g store.GroupID, name string, base store.TypeID) (store.TypeID, error) {
	return s.defineType(g, name, "enum", 0, base, 0)
}

// InsertEnumConst implements store.Store.
func (s *Store) InsertEnumConst(g store.GroupID, enum store.TypeID, name string, value int64) error {
	ord := s.ords[enum]
	s.ords[enum] = ord + 1
	_, err := s.exec(`INSERT INTO enum_consts (type_id, ord, name, value) VALUES (?, ?, ?, ?)`,
		enum, ord, name, value)
	if err != nil {
		return fmt.Errorf("failed to insert enum constant %q: %w", name, err)
	}
	return nil
}

// DefineOpaque implements store.Store.
func (s *Store) DefineOpaque(g store.GroupID, name string, size uint64) (store.TypeID, error) {
	return s.defineType(g, name, "opaque", size, 0, 0)
}

// DefineVLen implements store.Store.
func (s *Store) DefineVLen(g store.GroupID, name string, elem store.TypeID) (store.TypeID, error) {
	return s.defineType(g, name, "vlen", 0, 0, elem)
}

// DefineCompound implements store.Store.
func (s *Store) DefineCompound(g store.GroupID, name string, size uint64) (store.TypeID, error) {
	return s.defineType(g, name, "compound", size, 0, 0)
}

// InsertField implements store.Store.
func (s *Store) InsertField(g store.GroupID, compound store.TypeID, name string, offset uint64, field store.TypeID) error {
	return s.insertField(compound, name, offset, field, nil)
}

// InsertArrayField implements store.Store.
func (s *Store) InsertArrayField(g store.GroupID, compound store.TypeID, name string, offset uint64, field store.TypeID, extents []uint64) error {
	if len(extents) == 0 {
		return fmt.Errorf("array field %q has rank 0", name)
	}
	return s.insertField(compound, name, offset, field, extents)
}

func (s *Store) insertField(compound store.TypeID, name string, offset uint64, field store.TypeID, extents []uint64) error {
	ord := s.ords[compound]
	s.ords[compound] = ord + 1
	ext, err := marshalList(extents)
	if err != nil {
		return err
	}
	_, err = s.exec(`INSERT INTO type_fields (type_id, ord, name, byte_offset, field_type_id, extents) VALUES (?, ?, ?, ?, ?, ?)`,
		compound, ord, name, int64(offset), field, ext)
	if err != nil {
		return fmt.Errorf("failed to insert field %q: %w", name, err)
	}
	return nil
}

// DefineVariable implements store.Store.
func (s *Store) DefineVariable(g store.GroupID, name string, typ store.TypeID, dims []store.DimID) (store.VarID, error) {
	id := s.nextVar
	s.nextVar++
	dimList, err := marshalList(dims)
	if err != nil {
		return 0, err
	}
	_, err = s.exec(`INSERT INTO variables (id, group_id, name, type_id, dims) VALUES (?, ?, ?, ?, ?)`,
		id, g, name, typ, dimList)
	if err != nil {
		return 0, fmt.Errorf("failed to define variable %q: %w", name, err)
	}
	return id, nil
}

// PutAttribute implements store.Store.
func (s *Store) PutAttribute(g store.GroupID, v store.VarID, name string, typ store.TypeID, count int, data store.AttrData) error {
	strs, err := marshalList(data.Strings)
	if err != nil {
		return err
	}
	_, err = s.exec(`INSERT INTO attributes (group_id, var_id, name, type_id, count, bytes, strings) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g, v, name, typ, count, data.Bytes, strs)
	if err != nil {
		return fmt.Errorf("failed to put attribute %q: %w", name, err)
	}
	return nil
}

// LookupType implements store.Store.
func (s *Store) LookupType(g store.GroupID, name string) (store.TypeID, bool) {
	var id store.TypeID
	err := s.db.QueryRow(s.rebind(`SELECT id FROM types WHERE group_id = ? AND name = ?`), g, name).Scan(&id)
	if err != nil {
		return 0, false
	}
	return id, true
}

// marshalList serializes an ordered list column as JSON; empty lists store
// as the empty string.
func marshalList(v interface{}) (string, error) {
	switch list := v.(type) {
	case nil:
		return "", nil
	case []uint64:
		if len(list) == 0 {
			return "", nil
		}
	case []store.DimID:
		if len(list) == 0 {
			return "", nil
		}
	case []string:
		if len(list) == 0 {
			return "", nil
		}
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal list column: %w", err)
	}
	return string(out), nil
}
