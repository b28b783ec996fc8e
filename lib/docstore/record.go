// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package docstore

import (
	"fmt"
	"reflect"

	"github.com/inkstand/inkstand/lib/codec"
)

// Record is one stored document: field name to value. Values are the
// generic forms produced by CBOR decoding (string, bool, uint64/int64,
// float64, []any, map[string]any). Timestamps are RFC 3339 strings.
type Record map[string]any

// Decode copies the record into a typed value, typically a struct
// with json tags.
func (r Record) Decode(target any) error {
	if err := codec.Convert(r, target); err != nil {
		return fmt.Errorf("decoding record into %T: %w", target, err)
	}
	return nil
}

// String returns the string value of field, or "" when the field is
// missing or not a string.
func (r Record) String(field string) string {
	value, _ := r[field].(string)
	return value
}

// Filter selects records by top-level field equality. All entries must
// match. An empty or nil filter matches every record.
type Filter map[string]any

// Matches reports whether record satisfies every entry of the filter.
//
// Values are compared by their deterministic CBOR encoding, so an int
// filter value matches a stored uint64 of the same value. A scalar
// filter value matches an array field that contains an equal element.
// A nil filter value matches a missing field.
func (f Filter) Matches(record Record) bool {
	for field, want := range f {
		got, present := record[field]
		if !present {
			if want == nil {
				continue
			}
			return false
		}
		if !valueMatches(got, want) {
			return false
		}
	}
	return true
}

func valueMatches(got, want any) bool {
	if codec.Equal(got, want) {
		return true
	}
	elements, isArray := got.([]any)
	if !isArray || isSlice(want) {
		return false
	}
	for _, element := range elements {
		if codec.Equal(element, want) {
			return true
		}
	}
	return false
}

func isSlice(value any) bool {
	if value == nil {
		return false
	}
	kind := reflect.TypeOf(value).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

// indexedString returns the string value of field for an indexed
// column, or nil (SQL NULL) when the field is absent or not a string.
func indexedString(record Record, field string) any {
	if value, ok := record[field].(string); ok {
		return value
	}
	return nil
}
