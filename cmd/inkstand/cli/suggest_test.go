// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"ab", "abc", 1},
		{"abc", "bac", 2},
		{"kitten", "sitting", 3},
		{"publish", "pubilsh", 2},
		{"restore", "restor", 1},
		{"archive", "arhcive", 2},
	}

	for _, test := range tests {
		t.Run(test.a+"→"+test.b, func(t *testing.T) {
			if got := levenshtein(test.a, test.b); got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if reverse := levenshtein(test.b, test.a); reverse != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d (symmetry)", test.b, test.a, reverse, test.want)
			}
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "create"},
		{Name: "delete"},
		{Name: "export"},
		{Name: "import"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"craete", "create"},
		{"delte", "delete"},
		{"exprot", "export"},
		{"zzzzzzz", ""},
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.Bool("published", false, "")
	flagSet.StringP("compression", "c", "", "")
	flagSet.String("passphrase-file", "", "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"typo", []string{"--publishd"}, "--published"},
		{"with value", []string{"--compresion=zstd"}, "--compression"},
		{"defined flags skipped", []string{"--published", "--passphrase-fil", "x"}, "--passphrase-file"},
		{"shorthand defined", []string{"-c", "lz4", "--publised"}, "--published"},
		{"too distant", []string{"--zzzzzzzz"}, ""},
		{"after terminator", []string{"--", "--publishd"}, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, flagSet); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
