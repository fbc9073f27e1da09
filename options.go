package rowkit

import (
	"github.com/rowkit/rowkit/logger"
	"github.com/rowkit/rowkit/schema"
)

type settings struct {
	table     string
	namer     schema.Namer
	logger    logger.Interface
	hooks     Hooks
	coercer   schema.Coercer
	projector func(*Record) Projection
}

// Option configures a record at construction time.
type Option func(*settings)

// WithTable overrides the table name derived from the entity name. Must be
// applied at construction; the table is fixed afterwards.
func WithTable(table string) Option {
	return func(s *settings) { s.table = table }
}

// WithNamer replaces the naming strategy used to derive the table name.
func WithNamer(namer schema.Namer) Option {
	return func(s *settings) { s.namer = namer }
}

// WithLogger replaces the logger the record traces store round-trips with.
func WithLogger(l logger.Interface) Option {
	return func(s *settings) { s.logger = l }
}

// WithHooks installs save hooks. The default hooks are no-ops.
func WithHooks(h Hooks) Option {
	return func(s *settings) { s.hooks = h }
}

// WithCoercer replaces the coercion policy. The default preserves the legacy
// lenient behavior (silent truncation, null cast through on NOT NULL).
func WithCoercer(c schema.Coercer) Option {
	return func(s *settings) { s.coercer = c }
}

// WithProjector replaces the default all-fields projection used for JSON
// serialization.
func WithProjector(p func(*Record) Projection) Option {
	return func(s *settings) { s.projector = p }
}
