package rowkit

import (
	"errors"

	"github.com/rowkit/rowkit/logger"
	"github.com/rowkit/rowkit/schema"
)

var (
	// ErrRecordNotFound record not found error
	ErrRecordNotFound = logger.ErrRecordNotFound
	// ErrFieldNotFound the field is not part of the record's table schema
	ErrFieldNotFound = errors.New("field not found")
	// ErrInvalidValue value rejected by column coercion
	ErrInvalidValue = schema.ErrInvalidValue
	// ErrIncorrectType peer record has a different entity type
	ErrIncorrectType = errors.New("incorrect entity type")
	// ErrCacheMiss transient cache has no value for the key
	ErrCacheMiss = errors.New("cache miss")
)
