// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package docstore

import "testing"

func TestFilterMatches(t *testing.T) {
	record := Record{
		"key":       "abc123",
		"published": false,
		"count":     uint64(3),
		"tags":      []any{"go", "rust"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"nil filter", nil, true},
		{"string equality", Filter{"key": "abc123"}, true},
		{"string mismatch", Filter{"key": "abc124"}, false},
		{"bool false", Filter{"published": false}, true},
		{"int against uint64", Filter{"count": 3}, true},
		{"array contains", Filter{"tags": "rust"}, true},
		{"array lacks", Filter{"tags": "zig"}, false},
		{"array equal", Filter{"tags": []string{"go", "rust"}}, true},
		{"array subset is not equal", Filter{"tags": []string{"go"}}, false},
		{"missing field nil", Filter{"absent": nil}, true},
		{"missing field value", Filter{"absent": "x"}, false},
		{"all must match", Filter{"key": "abc123", "published": true}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.filter.Matches(record); got != test.want {
				t.Errorf("%v.Matches = %v, want %v", test.filter, got, test.want)
			}
		})
	}
}

func TestIndexedString(t *testing.T) {
	record := Record{"key": "abc123", "type": 7}
	if got := indexedString(record, "key"); got != "abc123" {
		t.Errorf("indexedString(key) = %v", got)
	}
	if got := indexedString(record, "type"); got != nil {
		t.Errorf("indexedString(non-string) = %v, want nil", got)
	}
	if got := indexedString(record, "missing"); got != nil {
		t.Errorf("indexedString(missing) = %v, want nil", got)
	}
}
