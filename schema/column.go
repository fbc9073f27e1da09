package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rowkit/rowkit/utils"
)

// TypeClass groups raw SQL column types into coercion classes.
type TypeClass int

const (
	String TypeClass = iota + 1
	Bool
	Int
	Float
	Time
	Enum
	Text
)

func (t TypeClass) String() string {
	switch t {
	case String:
		return "string"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Time:
		return "time"
	case Enum:
		return "enum"
	case Text:
		return "text"
	}
	return "unknown"
}

// ColumnInfo is one row of a table description as reported by the store.
type ColumnInfo struct {
	Name     string
	RawType  string // e.g. "varchar(32)", "int(10) unsigned", "enum('a','b')"
	Extra    string // e.g. "auto_increment"
	Default  *string
	Comment  string
	Nullable bool
}

// Column describes the coercion and validation rules for one table column.
// Immutable after ParseColumn.
type Column struct {
	Name          string
	Type          TypeClass
	Size          int  // max length for String columns, 0 = unbounded
	Unsigned      bool // Int/Float columns only
	Nullable      bool
	HasDefault    bool
	Default       string // raw schema default, verbatim
	Enum          []string
	DateOnly      bool // Time columns declared as plain "date"
	AutoIncrement bool

	// set when an absent or invalid enum default was replaced by Enum[0]
	substitutedDefault bool
}

var columnTypeRegexp = regexp.MustCompile(`^(\w+)(?:\((.+)\))?(?:\s+(\w+))?`)

// ParseColumn classifies a raw "TYPE(size) [qualifier]" spec into a Column.
func ParseColumn(info ColumnInfo) *Column {
	column := &Column{
		Name:     info.Name,
		Nullable: info.Nullable,
	}

	if info.Default != nil {
		column.HasDefault = true
		column.Default = *info.Default
	}

	if strings.Contains(strings.ToLower(info.Extra), "auto_increment") {
		column.AutoIncrement = true
	}

	var base, inner, qualifier string
	if matches := columnTypeRegexp.FindStringSubmatch(strings.TrimSpace(info.RawType)); matches != nil {
		// enum literals keep their case; only the type name and qualifier fold
		base, inner, qualifier = strings.ToLower(matches[1]), matches[2], strings.ToLower(matches[3])
	}
	unsigned := qualifier == "unsigned"

	switch base {
	case "varchar", "char":
		column.Type = String
		column.Size, _ = strconv.Atoi(inner)
	case "tinyint":
		if inner == "1" {
			column.Type = Bool
		} else {
			column.Type = Int
			column.Unsigned = unsigned
		}
	case "int", "bit", "smallint", "mediumint", "integer", "bigint":
		column.Type = Int
		column.Unsigned = unsigned
	case "real", "float", "decimal", "double", "numeric":
		column.Type = Float
		column.Unsigned = unsigned
	case "date":
		column.Type = Time
		column.DateOnly = true
	case "datetime", "timestamp":
		column.Type = Time
	case "enum":
		column.Type = Enum
		column.Enum = parseEnumDomain(inner)
		if len(column.Enum) > 0 && (!column.HasDefault || !utils.Contains(column.Enum, column.Default)) {
			column.Default = column.Enum[0]
			column.HasDefault = true
			column.substitutedDefault = true
		}
	default:
		// text, time, blob and anything unrecognized: unconstrained string
		column.Type = Text
	}

	return column
}

func parseEnumDomain(inner string) (domain []string) {
	for _, literal := range strings.Split(inner, ",") {
		literal = strings.TrimSpace(literal)
		literal = strings.Trim(literal, `'"`)
		if literal != "" {
			domain = append(domain, literal)
		}
	}
	return
}
