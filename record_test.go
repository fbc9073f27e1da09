package rowkit

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewInitializesDefaults(t *testing.T) {
	r := newAccount(t, newFakeStore(accountColumns()))

	if r.Table() != "account" {
		t.Errorf("table should derive from the entity name, got %q", r.Table())
	}
	if r.Entity() != "Account" {
		t.Errorf("entity should be Account, got %q", r.Entity())
	}
	if r.IsDirty() {
		t.Error("a fresh record should be clean")
	}
	if r.Len() != 10 {
		t.Errorf("record should carry all 10 columns, got %d", r.Len())
	}

	if v, _ := r.Get("state"); v != "new" {
		t.Errorf("enum default should be coerced, got %v", v)
	}
	if v, _ := r.Get("active"); v != false {
		t.Errorf("bool default '0' should be false, got %v", v)
	}
	if v, _ := r.Get("flags_mask"); v != int64(0) {
		t.Errorf("int default '0' should be 0, got %v", v)
	}
	if v, _ := r.Get("visits"); v != nil {
		t.Errorf("column without default should be nil, got %v", v)
	}
	if r.ID() != 0 {
		t.Errorf("unsaved record should have id 0, got %d", r.ID())
	}
}

func TestGetSetDirtyTracking(t *testing.T) {
	r := newAccount(t, newFakeStore(accountColumns()))

	// writing the value a field already holds keeps the record clean
	if err := r.Set("flags_mask", 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if r.IsDirty() {
		t.Error("setting an identical value should not dirty the record")
	}

	if err := r.Set("name", "alice"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !r.IsDirty() {
		t.Error("a changed value should dirty the record")
	}

	// get returns the coerced form, not the raw input
	if err := r.Set("state", 1); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if v, _ := r.Get("state"); v != "open" {
		t.Errorf("enum set by index should read back the domain string, got %v", v)
	}
	if err := r.Set("visits", "3"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if v, _ := r.Get("visits"); v != int64(3) {
		t.Errorf("numeric string should read back as int64, got %v", v)
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	r := newAccount(t, newFakeStore(accountColumns()))

	if err := r.Set("visits", -1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("unsigned column should reject -1, got %v", err)
	}
	if err := r.Set("state", 9); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("out-of-range enum index should fail, got %v", err)
	}
	if r.IsDirty() {
		t.Error("rejected writes should leave the record clean")
	}
}

func TestUnknownField(t *testing.T) {
	r := newAccount(t, newFakeStore(accountColumns()))

	if _, err := r.Get("bogus"); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("get of unknown field should fail, got %v", err)
	}
	if err := r.Set("bogus", 1); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("set of unknown field should fail, got %v", err)
	}
	if r.Has("bogus") {
		t.Error("Has should be false for unknown fields")
	}
	if !r.Has("note") {
		t.Error("Has should be true for schema fields, even when nil")
	}
}

func TestFieldsIterationOrder(t *testing.T) {
	r := newAccount(t, newFakeStore(accountColumns()))

	want := []string{"id", "name", "active", "balance", "visits", "flags_mask", "state", "note", "birthday", "created_at"}

	var got []string
	for name := range r.Fields() {
		got = append(got, name)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("iteration should follow declaration order, got %v", got)
	}

	// the sequence restarts cleanly
	var again []string
	for name := range r.Fields() {
		again = append(again, name)
	}
	if !reflect.DeepEqual(again, want) {
		t.Errorf("second iteration should match, got %v", again)
	}

	// early break does not poison later iterations
	for range r.Fields() {
		break
	}
	var count int
	for range r.Fields() {
		count++
	}
	if count != r.Len() {
		t.Errorf("restarted iteration should yield all fields, got %d", count)
	}
}

func TestLoad(t *testing.T) {
	store := newFakeStore(accountColumns())
	store.rows[7] = map[string]interface{}{
		"id":     7,
		"name":   "bob",
		"active": 1,
		"visits": "12",
		"state":  "open",
	}

	r := newAccount(t, store)
	if err := r.Load(7); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if r.IsDirty() {
		t.Error("record should be clean immediately after load")
	}
	if r.ID() != 7 {
		t.Errorf("id should be 7, got %d", r.ID())
	}
	if v, _ := r.Get("active"); v != true {
		t.Errorf("raw 1 should coerce to true, got %v", v)
	}
	if v, _ := r.Get("visits"); v != int64(12) {
		t.Errorf("raw string should coerce to int64, got %v", v)
	}

	if err := r.Set("name", "carol"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !r.IsDirty() {
		t.Error("a post-load change should dirty the record")
	}
}

func TestLoadNotFound(t *testing.T) {
	r := newAccount(t, newFakeStore(accountColumns()))
	if err := r.Load(99); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("missing row should fail with ErrRecordNotFound, got %v", err)
	}
}

func TestLoadZeroIdentifier(t *testing.T) {
	store := newFakeStore(accountColumns())
	r := newAccount(t, store)
	if err := r.Load(0); err != nil {
		t.Errorf("load of id 0 should be a no-op, got %v", err)
	}
	if store.fetches != 0 {
		t.Error("load of id 0 should not query the store")
	}
}

func TestLoadInputForcesDirty(t *testing.T) {
	store := newFakeStore(accountColumns())
	store.rows[3] = map[string]interface{}{"id": 3, "name": "dora"}

	r := newAccount(t, store)
	if err := r.Load(3); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// identical values still mark the record user-edited
	if err := r.LoadInput(map[string]interface{}{"name": "dora"}); err != nil {
		t.Fatalf("load input failed: %v", err)
	}
	if !r.IsDirty() {
		t.Error("LoadInput should force the dirty flag even with identical values")
	}
}

func TestLoadMapUnknownKey(t *testing.T) {
	r := newAccount(t, newFakeStore(accountColumns()))
	err := r.LoadMap(map[string]interface{}{"bogus": 1})
	if !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("unknown key should fail like Set, got %v", err)
	}
}

func TestLoadFrom(t *testing.T) {
	store := newFakeStore(accountColumns())

	src := newAccount(t, store)
	if err := src.Set("name", "erin"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := src.Set("state", "closed"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	dst := newAccount(t, store)
	if err := dst.LoadFrom(src); err != nil {
		t.Fatalf("peer copy failed: %v", err)
	}
	if v, _ := dst.Get("name"); v != "erin" {
		t.Errorf("peer copy should carry fields over, got %v", v)
	}
	if !dst.IsDirty() {
		t.Error("peer copy changing values should dirty the record per the normal set policy")
	}
}

func TestLoadFromIncorrectType(t *testing.T) {
	store := newFakeStore(accountColumns())
	r := newAccount(t, store)

	peerStore := newFakeStore(accountColumns())
	peer, err := New(peerStore, "AccountArchive", WithTable("account_archive"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := peer.Set("name", "mallory"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	before, _ := r.Get("name")
	if err := r.LoadFrom(peer); !errors.Is(err, ErrIncorrectType) {
		t.Errorf("peer of a different entity should fail with ErrIncorrectType, got %v", err)
	}
	if after, _ := r.Get("name"); after != before {
		t.Error("a failed peer copy should not mutate any field")
	}
	if r.IsDirty() {
		t.Error("a failed peer copy should leave the record clean")
	}
}

func TestExistsCaching(t *testing.T) {
	store := newFakeStore(accountColumns())
	store.rows[5] = map[string]interface{}{"id": 5}

	r := newAccount(t, store)
	if r.Exists() {
		t.Error("a record with id 0 can never exist")
	}
	if store.counts != 0 {
		t.Error("id 0 should short-circuit without querying the store")
	}

	if err := r.Set("id", 5); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !r.Exists() {
		t.Error("row 5 should exist")
	}
	if !r.Exists() {
		t.Error("cached answer should hold")
	}
	if store.counts != 1 {
		t.Errorf("existence should be queried once per instance, got %d", store.counts)
	}
}

func TestTransientCache(t *testing.T) {
	r := newAccount(t, newFakeStore(accountColumns()))

	if _, err := r.Cached("missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("unset key should fail with ErrCacheMiss, got %v", err)
	}

	r.SetCached("expensive", 42)
	v, err := r.Cached("expensive")
	if err != nil || v != 42 {
		t.Errorf("cached value should round-trip, got %v, %v", v, err)
	}
}

func TestSchemaResolvedOncePerTable(t *testing.T) {
	columns := accountColumns()
	store := newFakeStore(columns)

	if _, err := New(store, "IntrospectOnce", WithTable("introspect_once")); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := New(store, "IntrospectOnce", WithTable("introspect_once")); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if store.introspects != 1 {
		t.Errorf("the table should be introspected once per process, got %d", store.introspects)
	}
}

func TestCoercedTimeRoundTrip(t *testing.T) {
	r := newAccount(t, newFakeStore(accountColumns()))

	if err := r.Set("created_at", "2024-05-06 07:08:09"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	v, _ := r.Get("created_at")
	tm, ok := v.(time.Time)
	if !ok {
		t.Fatalf("temporal field should hold a time.Time, got %T", v)
	}
	if tm.Hour() != 7 || tm.Minute() != 8 {
		t.Errorf("parsed time is wrong: %v", tm)
	}
}
