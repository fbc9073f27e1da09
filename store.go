package rowkit

import "github.com/rowkit/rowkit/schema"

// StatementKind selects the write statement Save issues through the store.
type StatementKind int

const (
	StatementInsert StatementKind = iota + 1
	StatementUpdate
)

func (k StatementKind) String() string {
	switch k {
	case StatementInsert:
		return "INSERT"
	case StatementUpdate:
		return "UPDATE"
	}
	return "UNKNOWN"
}

// ExecResult reports the outcome of a write statement.
type ExecResult struct {
	// LastInsertID is the identifier the store generated for an insert,
	// 0 when none was generated.
	LastInsertID int64
}

// Store is the relational collaborator. Implementations own connections,
// query execution, escaping and insert-id retrieval; records never build
// or run SQL themselves beyond handing literal maps to Execute.
//
// Calls are synchronous. Cancellation and timeouts belong to the store.
type Store interface {
	schema.Describer

	// FetchOne returns the row with the given identifier, or a nil map
	// when no such row exists.
	FetchOne(table string, id int64) (map[string]interface{}, error)

	// CountRows reports how many rows carry the given identifier.
	CountRows(table string, id int64) (int64, error)

	// Execute runs an insert or update built from the column -> SQL-literal
	// map. For updates, id selects the row.
	Execute(kind StatementKind, table string, values map[string]string, id int64) (ExecResult, error)

	// ExecuteDelete removes the row with the given identifier.
	ExecuteDelete(table string, id int64) error

	// EscapeLiteral escapes a string for embedding in a quoted SQL literal.
	EscapeLiteral(s string) string
}
