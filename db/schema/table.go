package schema

import (
	"context"
	"fmt"
	"strings"

	"go.hackfix.me/dbadmin/db/migrator"
	"go.hackfix.me/dbadmin/db/types"
)

// Table is the definition of a database table and its indexes.
type Table struct {
	name        string
	columns     []string
	constraints []string
	indexes     []Index
}

// Index is the definition of a table index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

var _ migrator.Object = (*Table)(nil)

// NewTable returns a new table definition. Columns are raw SQL column
// definitions, e.g. "name VARCHAR(255) NOT NULL".
func NewTable(name string, columns ...string) *Table {
	return &Table{name: name, columns: columns}
}

// WithConstraints adds raw SQL table constraints, e.g. "UNIQUE (a, b)".
func (t *Table) WithConstraints(constraints ...string) *Table {
	t.constraints = append(t.constraints, constraints...)
	return t
}

// WithIndex adds an index on the given columns.
func (t *Table) WithIndex(name string, unique bool, columns ...string) *Table {
	t.indexes = append(t.indexes, Index{Name: name, Columns: columns, Unique: unique})
	return t
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// CreateSQL returns the statements that create the table and its indexes.
func (t *Table) CreateSQL(ifNotExists bool) []string {
	cond := ""
	if ifNotExists {
		cond = "IF NOT EXISTS "
	}

	defs := append(append([]string{}, t.columns...), t.constraints...)
	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s%s (\n\t%s\n)", cond, t.name, strings.Join(defs, ",\n\t")),
	}
	for _, idx := range t.indexes {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX %s%s ON %s (%s)",
			unique, cond, idx.Name, t.name, strings.Join(idx.Columns, ", ")))
	}

	return stmts
}

// Create creates the table and its indexes.
func (t *Table) Create(ctx context.Context, q types.Querier, ifNotExists bool) error {
	for _, stmt := range t.CreateSQL(ifNotExists) {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed creating table %s: %w", t.name, types.Err("table", t.name, err))
		}
	}

	return nil
}

// Drop drops the table. Its indexes are dropped with it.
func (t *Table) Drop(ctx context.Context, q types.Querier, ifExists bool) error {
	cond := ""
	if ifExists {
		cond = "IF EXISTS "
	}
	if _, err := q.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s%s", cond, t.name)); err != nil {
		return fmt.Errorf("failed dropping table %s: %w", t.name, types.Err("table", t.name, err))
	}

	return nil
}

// Catalog is a set of table definitions, indexed by name.
type Catalog map[string]*Table

var _ migrator.Catalog = Catalog(nil)

// NewCatalog returns a catalog of the given tables.
func NewCatalog(tables ...*Table) Catalog {
	c := make(Catalog, len(tables))
	for _, t := range tables {
		c[t.name] = t
	}
	return c
}

// Object implements the migrator.Catalog interface.
//
//nolint:ireturn // Required by the interface.
func (c Catalog) Object(name string) (migrator.Object, bool) {
	t, ok := c[name]
	if !ok {
		return nil, false
	}
	return t, true
}
