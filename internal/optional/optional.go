// Package optional models a JSON field that can be absent, explicitly null, or
// carry a value. Partial updates use it for columns that may be cleared.
package optional

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	set   bool
	valid bool
	value T
}

// Of returns a field set to v.
func Of[T any](v T) Field[T] {
	return Field[T]{set: true, valid: true, value: v}
}

// Null returns a field explicitly set to null.
func Null[T any]() Field[T] {
	return Field[T]{set: true}
}

// IsSet reports whether the field was present, null included.
func (f Field[T]) IsSet() bool { return f.set }

// IsNull reports whether the field was present and null.
func (f Field[T]) IsNull() bool { return f.set && !f.valid }

// Get returns the value and whether one is present.
func (f Field[T]) Get() (T, bool) { return f.value, f.valid }

// Ptr returns a pointer to the value, nil when absent or null.
func (f Field[T]) Ptr() *T {
	if !f.valid {
		return nil
	}
	v := f.value
	return &v
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.valid = false
		var zero T
		f.value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.value); err != nil {
		return err
	}
	f.valid = true
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
