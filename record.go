package rowkit

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/rowkit/rowkit/logger"
	"github.com/rowkit/rowkit/schema"
	"github.com/rowkit/rowkit/utils"
)

// IdentifierColumn is the reserved auto-generated key column. A zero value
// means the record has not been persisted yet.
const IdentifierColumn = "id"

const existsCacheKey = "exists"

// Record represents exactly one row of one table. Fields are kept as an
// ordered name -> coerced value mapping; every schema column is always
// present, with explicit nil standing for "no value".
//
// Records are not safe for concurrent mutation; share them only with
// external synchronization.
type Record struct {
	store   Store
	entity  string
	table   string
	schema  *schema.Schema
	values  map[string]interface{}
	dirty   bool
	cache   map[string]interface{}
	coercer schema.Coercer
	logger  logger.Interface
	hooks   Hooks

	projector func(*Record) Projection
}

// New builds an empty record for the entity, resolving the table's schema
// through the process-wide cache on first use and initializing every field
// to its column default (nil when the column has none).
func New(store Store, entity string, opts ...Option) (*Record, error) {
	cfg := settings{
		namer:   schema.DefaultNamer,
		logger:  logger.Default,
		hooks:   NoopHooks{},
		coercer: schema.DefaultCoercer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	table := cfg.table
	if table == "" {
		table = cfg.namer.TableName(entity)
	}

	sch, err := schema.Resolve(table, store, cfg.logger)
	if err != nil {
		return nil, err
	}

	r := &Record{
		store:     store,
		entity:    entity,
		table:     table,
		schema:    sch,
		values:    make(map[string]interface{}, len(sch.Columns)),
		cache:     map[string]interface{}{},
		coercer:   cfg.coercer,
		logger:    cfg.logger,
		hooks:     cfg.hooks,
		projector: cfg.projector,
	}

	for _, col := range sch.Columns {
		var value interface{}
		if col.HasDefault {
			// defaults are best effort; unusable ones (CURRENT_TIMESTAMP
			// and friends) leave the field nil
			if v, err := r.coercer.Coerce(col, col.Default); err == nil {
				value = v
			}
		}
		r.values[col.Name] = value
	}

	return r, nil
}

// Entity returns the entity type name the record was constructed for.
func (r *Record) Entity() string { return r.entity }

// Table returns the table name, fixed at construction.
func (r *Record) Table() string { return r.table }

// IsDirty reports whether any field differs from its last loaded or saved
// state, or a user-input load occurred.
func (r *Record) IsDirty() bool { return r.dirty }

// ID returns the identifier field, 0 when not yet persisted.
func (r *Record) ID() int64 {
	n, _ := r.values[IdentifierColumn].(int64)
	return n
}

// Has reports whether the table has a column with the given name,
// independent of the field's nullness.
func (r *Record) Has(name string) bool {
	return r.schema.LookUpColumn(name) != nil
}

// Len returns the number of columns.
func (r *Record) Len() int { return len(r.schema.Columns) }

// Get returns the coerced value currently stored for the field.
func (r *Record) Get(name string) (interface{}, error) {
	if !r.Has(name) {
		return nil, fmt.Errorf("%s.%s: %w", r.table, name, ErrFieldNotFound)
	}
	return r.values[name], nil
}

// Set coerces value against the field's column and stores it, marking the
// record dirty when the normalized value differs from the stored one.
func (r *Record) Set(name string, value interface{}) error {
	col := r.schema.LookUpColumn(name)
	if col == nil {
		return fmt.Errorf("%s.%s: %w", r.table, name, ErrFieldNotFound)
	}

	normalized, err := r.coercer.Coerce(col, value)
	if err != nil {
		return err
	}

	if !utils.AssertEqual(normalized, r.values[name]) {
		r.dirty = true
	}
	r.values[name] = normalized
	return nil
}

// Fields yields (name, value) pairs for every column in declaration order.
// The sequence is restartable.
func (r *Record) Fields() iter.Seq2[string, interface{}] {
	return func(yield func(string, interface{}) bool) {
		for _, col := range r.schema.Columns {
			if !yield(col.Name, r.values[col.Name]) {
				return
			}
		}
	}
}

// Load overlays the row with the given identifier onto the record. A zero
// identifier leaves the record untouched. The record is clean afterwards.
func (r *Record) Load(id int64) error {
	if id == 0 {
		return nil
	}

	begin := time.Now()
	row, err := r.store.FetchOne(r.table, id)
	if err == nil && row == nil {
		err = fmt.Errorf("%s id=%d: %w", r.table, id, ErrRecordNotFound)
	}
	r.logger.Trace(context.Background(), begin, func() (string, int64) {
		return fmt.Sprintf("SELECT * FROM %s WHERE %s = %d", r.table, IdentifierColumn, id), rowCount(row)
	}, err)
	if err != nil {
		return err
	}

	if err := r.LoadMap(row); err != nil {
		return err
	}
	r.dirty = false
	return nil
}

func rowCount(row map[string]interface{}) int64 {
	if row == nil {
		return 0
	}
	return 1
}

// LoadMap sets every key of the map through Set. Unknown keys fail with
// ErrFieldNotFound; the record stays dirty per the normal Set policy.
func (r *Record) LoadMap(values map[string]interface{}) error {
	for name, value := range values {
		if err := r.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// LoadInput is LoadMap for user-edited form data: the record is marked dirty
// even when every incoming value equals the stored one.
func (r *Record) LoadInput(values map[string]interface{}) error {
	err := r.LoadMap(values)
	r.dirty = true
	return err
}

// LoadFrom copies every field of a peer record of the same entity type
// through Set, re-coercing each value. A peer of a different entity type
// fails with ErrIncorrectType before any field is touched.
func (r *Record) LoadFrom(other *Record) error {
	if other == nil || other.entity != r.entity {
		return fmt.Errorf("want %s: %w", r.entity, ErrIncorrectType)
	}

	for _, col := range r.schema.Columns {
		if err := r.Set(col.Name, other.values[col.Name]); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether a row with the record's identifier is present in
// the store. The answer is cached in the record's transient cache, so
// repeated calls within one instance lifetime hit the store once.
func (r *Record) Exists() bool {
	if r.ID() == 0 {
		return false
	}
	if v, err := r.Cached(existsCacheKey); err == nil {
		return v.(bool)
	}

	begin := time.Now()
	count, err := r.store.CountRows(r.table, r.ID())
	r.logger.Trace(context.Background(), begin, func() (string, int64) {
		return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = %d", r.table, IdentifierColumn, r.ID()), count
	}, err)
	if err != nil {
		// store failures are not cached; the next call asks again
		return false
	}

	exists := count > 0
	r.SetCached(existsCacheKey, exists)
	return exists
}

// Cached reads a value from the record's transient cache, failing with
// ErrCacheMiss when the key was never set. The cache is instance-scoped,
// never persisted and never shared.
func (r *Record) Cached(key string) (interface{}, error) {
	if v, ok := r.cache[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%s: %w", key, ErrCacheMiss)
}

// SetCached stores a derived value in the record's transient cache.
func (r *Record) SetCached(key string, value interface{}) {
	r.cache[key] = value
}
