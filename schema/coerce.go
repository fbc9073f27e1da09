package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/rowkit/rowkit/utils"
)

// ErrInvalidValue value rejected by column coercion
var ErrInvalidValue = errors.New("invalid value")

// Coercer normalizes raw values against a Column. The zero value is the
// strictest policy; DefaultCoercer reproduces the legacy lenient behavior.
//
// Integers are normalized to int64. Inputs outside the int64 range fail with
// ErrInvalidValue instead of overflowing silently.
type Coercer struct {
	// TruncateLongStrings silently cuts String values down to Column.Size
	// instead of rejecting them. Legacy behavior, on in DefaultCoercer.
	TruncateLongStrings bool
	// StrictNulls rejects null on a NOT NULL column. When off (legacy), the
	// null falls through the cast rules and lands as "", 0, false or a zero
	// time, matching the not-actually-null-safe behavior of the source system.
	StrictNulls bool
}

// DefaultCoercer is the compatibility policy: truncate oversized strings,
// cast null through on NOT NULL columns.
var DefaultCoercer = Coercer{TruncateLongStrings: true}

// Coerce is shorthand for DefaultCoercer.Coerce.
func (c *Column) Coerce(value interface{}) (interface{}, error) {
	return DefaultCoercer.Coerce(c, value)
}

// Coerce normalizes value per the column's type class, or fails with
// ErrInvalidValue.
func (co Coercer) Coerce(col *Column, value interface{}) (interface{}, error) {
	if value == nil {
		if col.Nullable {
			return nil, nil
		}
		if co.StrictNulls {
			return nil, fmt.Errorf("column %s is not nullable: %w", col.Name, ErrInvalidValue)
		}
	}

	switch col.Type {
	case String:
		s := utils.ToString(value)
		if col.Size > 0 {
			if runes := []rune(s); len(runes) > col.Size {
				if !co.TruncateLongStrings {
					return nil, fmt.Errorf("column %s: %d chars exceeds size %d: %w", col.Name, len(runes), col.Size, ErrInvalidValue)
				}
				s = string(runes[:col.Size])
			}
		}
		return s, nil

	case Bool:
		return toBool(value), nil

	case Int:
		n, err := toInt64(value)
		if err != nil {
			return nil, fmt.Errorf("column %s: %v: %w", col.Name, err, ErrInvalidValue)
		}
		if col.Unsigned && n < 0 {
			return nil, fmt.Errorf("column %s is unsigned, got %d: %w", col.Name, n, ErrInvalidValue)
		}
		return n, nil

	case Float:
		f, err := toFloat64(value)
		if err != nil {
			return nil, fmt.Errorf("column %s: %v: %w", col.Name, err, ErrInvalidValue)
		}
		if col.Unsigned && f < 0 {
			return nil, fmt.Errorf("column %s is unsigned, got %v: %w", col.Name, f, ErrInvalidValue)
		}
		return f, nil

	case Time:
		return co.coerceTime(col, value)

	case Enum:
		return co.coerceEnum(col, value)

	default: // Text
		return utils.ToString(value), nil
	}
}

func (co Coercer) coerceTime(col *Column, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, _ := toInt64(v)
		return time.Unix(n, 0), nil
	case string:
		t, err := now.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: unparsable time %q: %w", col.Name, v, ErrInvalidValue)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("column %s: cannot coerce %T to time: %w", col.Name, value, ErrInvalidValue)
	}
}

func (co Coercer) coerceEnum(col *Column, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		value = ""
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		// integers are zero-based indexes into the domain
		i, _ := toInt64(v)
		if i < 0 || i >= int64(len(col.Enum)) {
			return nil, fmt.Errorf("column %s: enum index %d out of range: %w", col.Name, i, ErrInvalidValue)
		}
		return col.Enum[i], nil
	}

	s := utils.ToString(value)
	if !utils.Contains(col.Enum, s) {
		return nil, fmt.Errorf("column %s: %q not in enum domain: %w", col.Name, s, ErrInvalidValue)
	}
	return s, nil
}

func toBool(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f != 0
		}
		switch strings.ToLower(v) {
		case "", "no", "false", "off":
			return false
		}
		return true
	default:
		if n, err := toInt64(value); err == nil {
			return n != 0
		}
		if f, err := toFloat64(value); err == nil {
			return f != 0
		}
		return true
	}
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return int64(v), nil
	case float64:
		if v > math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("%v overflows int64", v)
		}
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		if v == "" {
			return 0, nil
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int64(f), nil
		}
		return 0, fmt.Errorf("cannot parse %q as integer", v)
	default:
		return 0, fmt.Errorf("cannot coerce %T to integer", value)
	}
}

func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		if v == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as float", v)
		}
		return f, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		n, err := toInt64(value)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %T to float", value)
		}
		return float64(n), nil
	}
}
