// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package articleui

import (
	"slices"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of matching one string against a filter
// pattern.
type FuzzyResult struct {
	Matched bool

	// Score ranks matches; higher is better. Contiguous runs and
	// matches at word boundaries score highest.
	Score int

	// Positions are the rune indexes of matched characters, ascending.
	Positions []int
}

// newSlab allocates the scratch space fzf's matcher reuses between
// calls. A slab must not be shared between goroutines.
func newSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// fuzzyMatch runs fzf's optimal matching algorithm. The pattern must be
// lowercase: matching is case-insensitive only for lowercase pattern
// runes. An empty pattern matches everything with score zero.
func fuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, pattern, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}

	match := FuzzyResult{Matched: true, Score: int(result.Score)}
	if positions != nil {
		match.Positions = slices.Clone(*positions)
		slices.Sort(match.Positions)
	}
	return match
}
