// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package article

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
)

const (
	// KeyLength is the number of characters in an article key.
	KeyLength = 6

	// KeyAlphabet is the set of characters keys are drawn from.
	KeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultKeyAttempts bounds how many candidate keys Generate draws
	// before giving up. With 36^6 possible keys this is only reached
	// when the collection is nearly full or the existence check is
	// broken.
	DefaultKeyAttempts = 1 << 16
)

// ExistsFunc reports whether a key is already taken.
type ExistsFunc func(ctx context.Context, key string) (bool, error)

// KeyOptions configures key generation.
type KeyOptions struct {
	// MaxAttempts caps the number of candidates drawn per key. Zero
	// means DefaultKeyAttempts.
	MaxAttempts int

	// Source, when set, replaces the runtime's random generator. Tests
	// use a seeded source for reproducible keys.
	Source rand.Source
}

// KeyGenerator draws random article keys and rejects ones already in
// use.
type KeyGenerator struct {
	exists      ExistsFunc
	maxAttempts int

	mu     sync.Mutex
	random *rand.Rand // nil uses the top-level math/rand/v2 functions
}

// NewKeyGenerator returns a generator that checks candidates against
// exists.
func NewKeyGenerator(exists ExistsFunc, options KeyOptions) *KeyGenerator {
	generator := &KeyGenerator{
		exists:      exists,
		maxAttempts: options.MaxAttempts,
	}
	if generator.maxAttempts <= 0 {
		generator.maxAttempts = DefaultKeyAttempts
	}
	if options.Source != nil {
		generator.random = rand.New(options.Source)
	}
	return generator
}

// MaxAttempts returns the configured cap on candidates per key.
func (g *KeyGenerator) MaxAttempts() int {
	return g.maxAttempts
}

// Generate returns a key not currently in use. It fails with
// ErrKeySpaceExhausted after MaxAttempts collisions, and with the
// existence check's error if that fails.
func (g *KeyGenerator) Generate(ctx context.Context) (string, error) {
	for range g.maxAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		key := g.Draw()
		taken, err := g.exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("checking key %q: %w", key, err)
		}
		if !taken {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrKeySpaceExhausted, g.maxAttempts)
}

// Draw returns a random candidate key without checking whether it is
// taken.
func (g *KeyGenerator) Draw() string {
	var key [KeyLength]byte
	if g.random == nil {
		for i := range key {
			key[i] = KeyAlphabet[rand.IntN(len(KeyAlphabet))]
		}
		return string(key[:])
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range key {
		key[i] = KeyAlphabet[g.random.IntN(len(KeyAlphabet))]
	}
	return string(key[:])
}

// ValidKey reports whether key has the shape of a generated key.
func ValidKey(key string) bool {
	if len(key) != KeyLength {
		return false
	}
	for i := range len(key) {
		c := key[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
