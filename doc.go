// Package rowkit maps relational rows to typed records without per-table
// mapping code. Each entity type corresponds to one table and each Record
// to one row: column descriptors are introspected lazily from the store
// and cached for the process lifetime, every field write is coerced and
// validated against its column, and Save decides insert versus update from
// the record's existence and dirty state.
//
// The relational store itself stays behind the Store interface; rowkit
// never opens connections or builds queries beyond single-row statements.
package rowkit
