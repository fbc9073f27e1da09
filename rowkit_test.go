package rowkit

import (
	"errors"
	"strings"
	"testing"

	"github.com/rowkit/rowkit/logger"
	"github.com/rowkit/rowkit/schema"
)

// fakeStore is an in-memory Store serving one table's worth of rows.
type fakeStore struct {
	columns     []schema.ColumnInfo
	rows        map[int64]map[string]interface{}
	nextID      int64
	introspects int
	fetches     int
	counts      int
	executes    int
	deletes     int
	failExec    bool
	lastKind    StatementKind
	lastValues  map[string]string
}

func newFakeStore(columns []schema.ColumnInfo) *fakeStore {
	return &fakeStore{columns: columns, rows: map[int64]map[string]interface{}{}}
}

func (s *fakeStore) IntrospectColumns(table string) ([]schema.ColumnInfo, error) {
	s.introspects++
	return s.columns, nil
}

func (s *fakeStore) FetchOne(table string, id int64) (map[string]interface{}, error) {
	s.fetches++
	row, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (s *fakeStore) CountRows(table string, id int64) (int64, error) {
	s.counts++
	if _, ok := s.rows[id]; ok {
		return 1, nil
	}
	return 0, nil
}

func (s *fakeStore) Execute(kind StatementKind, table string, values map[string]string, id int64) (ExecResult, error) {
	s.executes++
	s.lastKind = kind
	s.lastValues = values
	if s.failExec {
		return ExecResult{}, errors.New("exec failed")
	}
	if kind == StatementInsert {
		s.nextID++
		s.rows[s.nextID] = map[string]interface{}{"id": s.nextID}
		return ExecResult{LastInsertID: s.nextID}, nil
	}
	return ExecResult{}, nil
}

func (s *fakeStore) ExecuteDelete(table string, id int64) error {
	s.deletes++
	delete(s.rows, id)
	return nil
}

func (s *fakeStore) EscapeLiteral(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

func strptr(s string) *string { return &s }

// accountColumns is the fixture schema shared by the "Account" entity tests.
// The table resolves once into the process-wide cache, so every test must
// use the same column set for it.
func accountColumns() []schema.ColumnInfo {
	return []schema.ColumnInfo{
		{Name: "id", RawType: "int(11)", Extra: "auto_increment"},
		{Name: "name", RawType: "varchar(10)"},
		{Name: "active", RawType: "tinyint(1)", Default: strptr("0")},
		{Name: "balance", RawType: "decimal(10,2) unsigned", Default: strptr("0")},
		{Name: "visits", RawType: "int(10) unsigned"},
		{Name: "flags_mask", RawType: "int(11)", Default: strptr("0")},
		{Name: "state", RawType: "enum('new','open','closed')", Default: strptr("new")},
		{Name: "note", RawType: "text", Nullable: true},
		{Name: "birthday", RawType: "date", Nullable: true},
		{Name: "created_at", RawType: "datetime", Nullable: true},
	}
}

func newAccount(t *testing.T, store *fakeStore, opts ...Option) *Record {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Discard)}, opts...)
	r, err := New(store, "Account", opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}
