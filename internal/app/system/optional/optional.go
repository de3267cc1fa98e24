// Package optional provides a JSON field type that distinguishes a key that
// was left out of a request body from a key that was sent as null.
//
// Partial updates use it so "don't touch this field" and "clear this field"
// are different requests:
//
//	{}                     -> Unset
//	{"start_date": null}   -> Null
//	{"start_date": "2026"} -> Present
package optional

import (
	"bytes"
	"encoding/json"
)

// State is the tri-state of a Field.
type State uint8

const (
	// Unset means the key was absent.
	Unset State = iota
	// Null means the key was present with a JSON null.
	Null
	// Present means the key carried a value.
	Present
)

func (s State) String() string {
	switch s {
	case Null:
		return "null"
	case Present:
		return "present"
	default:
		return "unset"
	}
}

// Field holds an optional value of type T. The zero value is Unset.
type Field[T any] struct {
	state State
	value T
}

// State returns the field's state.
func (f Field[T]) State() State { return f.state }

// Value returns the value and whether it is Present.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == Present
}

// UnmarshalJSON is only called when the key exists, which is what lets
// Unset survive decoding.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.state = Null
		f.value = zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.state = Present
	f.value = v
	return nil
}

