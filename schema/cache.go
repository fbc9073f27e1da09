package schema

import (
	"context"
	"fmt"
	"sync"

	"github.com/rowkit/rowkit/logger"
)

// Describer is the slice of the store collaborator the schema cache needs.
type Describer interface {
	IntrospectColumns(table string) ([]ColumnInfo, error)
}

// Schema is the parsed column set of one table, in declaration order.
type Schema struct {
	Table         string
	Columns       []*Column
	ColumnsByName map[string]*Column
}

// LookUpColumn returns the named column, or nil.
func (s *Schema) LookUpColumn(name string) *Column {
	return s.ColumnsByName[name]
}

// cacheStore maps table name to *Schema for the lifetime of the process.
// Entries are filled lazily and never invalidated; the schema is assumed
// static while the process runs.
var cacheStore sync.Map

// Resolve returns the table's schema, introspecting through d on first use.
// Concurrent first resolutions may both introspect; introspection is
// deterministic per table, so LoadOrStore keeps whichever landed first.
func Resolve(table string, d Describer, log logger.Interface) (*Schema, error) {
	if v, ok := cacheStore.Load(table); ok {
		return v.(*Schema), nil
	}

	infos, err := d.IntrospectColumns(table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("describe %s: table has no columns", table)
	}

	s := &Schema{
		Table:         table,
		Columns:       make([]*Column, 0, len(infos)),
		ColumnsByName: make(map[string]*Column, len(infos)),
	}
	for _, info := range infos {
		column := ParseColumn(info)
		if column.substitutedDefault && log != nil {
			log.Warn(context.Background(), "table %s column %s: enum default not in domain, using %q", table, column.Name, column.Default)
		}
		s.Columns = append(s.Columns, column)
		s.ColumnsByName[column.Name] = column
	}

	if v, loaded := cacheStore.LoadOrStore(table, s); loaded {
		return v.(*Schema), nil
	}
	return s, nil
}
