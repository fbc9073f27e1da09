package rowkit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rowkit/rowkit/schema"
	"github.com/rowkit/rowkit/utils"
)

// SaveOutcome is the result code handed to the after-save hook.
type SaveOutcome int

const (
	SaveError SaveOutcome = iota
	SaveInserted
	SaveUpdated
)

func (o SaveOutcome) String() string {
	switch o {
	case SaveInserted:
		return "inserted"
	case SaveUpdated:
		return "updated"
	}
	return "error"
}

// Hooks are the two fixed extension points of the persistence engine.
// BeforeSave returning false aborts the save with no store interaction.
// AfterSave may override the success value Save returns by reporting
// override == true.
type Hooks interface {
	BeforeSave(r *Record) bool
	AfterSave(r *Record, outcome SaveOutcome) (result bool, override bool)
}

// NoopHooks is the default hook set; it never aborts and never overrides.
type NoopHooks struct{}

func (NoopHooks) BeforeSave(*Record) bool                     { return true }
func (NoopHooks) AfterSave(*Record, SaveOutcome) (bool, bool) { return false, false }

// Save persists the record: an insert when no row with its identifier
// exists, an update when one does and the record is dirty, and no store
// interaction at all otherwise. On a successful insert the record adopts
// the identifier the store generated. Store failures surface as a false
// return, not as an error; hooks can inspect the outcome code.
func (r *Record) Save() bool {
	if !r.hooks.BeforeSave(r) {
		return false
	}

	doInsert := !r.Exists()

	outcome := SaveUpdated
	if doInsert {
		outcome = SaveInserted
	}

	ok := true
	if doInsert || r.dirty {
		kind := StatementUpdate
		if doInsert {
			kind = StatementInsert
		}
		values := r.literalValues()

		begin := time.Now()
		res, err := r.store.Execute(kind, r.table, values, r.ID())
		r.logger.Trace(context.Background(), begin, func() (string, int64) {
			return r.renderStatement(kind, values), 1
		}, err)

		if err != nil {
			outcome = SaveError
			ok = false
		} else {
			r.SetCached(existsCacheKey, true)
			if doInsert && res.LastInsertID != 0 {
				// adopt the generated key directly; Set would re-dirty
				r.values[IdentifierColumn] = res.LastInsertID
			}
			r.dirty = false
		}
	}

	if result, override := r.hooks.AfterSave(r, outcome); override {
		return result
	}
	return ok
}

// Delete removes the record's row. No cascading: callers owning referential
// integrity clean up dependents themselves.
func (r *Record) Delete() bool {
	begin := time.Now()
	err := r.store.ExecuteDelete(r.table, r.ID())
	r.logger.Trace(context.Background(), begin, func() (string, int64) {
		return fmt.Sprintf("DELETE FROM %s WHERE %s = %d", r.table, IdentifierColumn, r.ID()), 1
	}, err)
	return err == nil
}

// literalValues converts every field to its escaped SQL literal, keyed by
// column name.
func (r *Record) literalValues() map[string]string {
	values := make(map[string]string, len(r.schema.Columns))
	for _, col := range r.schema.Columns {
		values[col.Name] = r.sqlLiteral(col, r.values[col.Name])
	}
	return values
}

func (r *Record) sqlLiteral(col *schema.Column, value interface{}) string {
	if value == nil {
		return "NULL"
	}
	if col.AutoIncrement {
		if n, ok := value.(int64); ok && n == 0 {
			return "NULL"
		}
	}

	switch col.Type {
	case schema.Int:
		if n, ok := value.(int64); ok {
			return strconv.FormatInt(n, 10)
		}
		return utils.ToString(value)
	case schema.Float:
		if f, ok := value.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return utils.ToString(value)
	case schema.Bool:
		if b, ok := value.(bool); ok && b {
			return "'1'"
		}
		return "'0'"
	case schema.Time:
		t, ok := value.(time.Time)
		if !ok {
			return "NULL"
		}
		if col.DateOnly {
			return "'" + t.Format("2006-01-02") + "'"
		}
		return "'" + t.Format("2006-01-02 15:04:05") + "'"
	default: // String, Enum, Text
		s := utils.ToString(value)
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return "'" + r.store.EscapeLiteral(s) + "'"
	}
}

// renderStatement builds the human-readable statement used for tracing.
// The store executes from the literal map, not from this string.
func (r *Record) renderStatement(kind StatementKind, values map[string]string) string {
	var b strings.Builder
	switch kind {
	case StatementInsert:
		b.WriteString("INSERT INTO ")
		b.WriteString(r.table)
		b.WriteString(" (")
		for i, col := range r.schema.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(col.Name)
		}
		b.WriteString(") VALUES (")
		for i, col := range r.schema.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(values[col.Name])
		}
		b.WriteString(")")
	case StatementUpdate:
		b.WriteString("UPDATE ")
		b.WriteString(r.table)
		b.WriteString(" SET ")
		for i, col := range r.schema.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(col.Name)
			b.WriteString(" = ")
			b.WriteString(values[col.Name])
		}
		fmt.Fprintf(&b, " WHERE %s = %d", IdentifierColumn, r.ID())
	}
	return b.String()
}
