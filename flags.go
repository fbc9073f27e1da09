package rowkit

import (
	"fmt"

	"github.com/rowkit/rowkit/schema"
)

// Bitmask helpers treat an integer column as a set of boolean flags. Every
// write goes through Set, so coercion and dirty tracking apply as usual.
// Multiple flag values are OR-combined into a single mask before use.

// AddFlag sets the given flag bits on the field.
func (r *Record) AddFlag(field string, flags ...int64) error {
	current, err := r.flagField(field)
	if err != nil {
		return err
	}
	return r.Set(field, current|combineFlags(flags))
}

// RemoveFlag clears the given flag bits on the field.
func (r *Record) RemoveFlag(field string, flags ...int64) error {
	current, err := r.flagField(field)
	if err != nil {
		return err
	}
	return r.Set(field, current&^combineFlags(flags))
}

// ToggleFlag inverts the given flag bits on the field.
func (r *Record) ToggleFlag(field string, flags ...int64) error {
	current, err := r.flagField(field)
	if err != nil {
		return err
	}
	return r.Set(field, current^combineFlags(flags))
}

// HasFlag reports whether every given flag bit is set on the field.
func (r *Record) HasFlag(field string, flags ...int64) (bool, error) {
	current, err := r.flagField(field)
	if err != nil {
		return false, err
	}
	mask := combineFlags(flags)
	return current&mask == mask, nil
}

// HasAnyFlag reports whether at least one given flag bit is set on the field.
func (r *Record) HasAnyFlag(field string, flags ...int64) (bool, error) {
	current, err := r.flagField(field)
	if err != nil {
		return false, err
	}
	return current&combineFlags(flags) != 0, nil
}

func combineFlags(flags []int64) (mask int64) {
	for _, flag := range flags {
		mask |= flag
	}
	return
}

func (r *Record) flagField(field string) (int64, error) {
	col := r.schema.LookUpColumn(field)
	if col == nil {
		return 0, fmt.Errorf("%s.%s: %w", r.table, field, ErrFieldNotFound)
	}
	if col.Type != schema.Int {
		return 0, fmt.Errorf("%s.%s is not an integer column: %w", r.table, field, ErrInvalidValue)
	}
	n, _ := r.values[field].(int64)
	return n, nil
}
