// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package article

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
)

func never(context.Context, string) (bool, error) { return false, nil }

func TestDrawShape(t *testing.T) {
	generator := NewKeyGenerator(never, KeyOptions{})
	for range 1000 {
		key := generator.Draw()
		if !ValidKey(key) {
			t.Fatalf("Draw() = %q, not a valid key", key)
		}
	}
}

func TestSeededSourceIsReproducible(t *testing.T) {
	first := NewKeyGenerator(never, KeyOptions{Source: rand.NewPCG(1, 2)})
	second := NewKeyGenerator(never, KeyOptions{Source: rand.NewPCG(1, 2)})
	for range 10 {
		a, b := first.Draw(), second.Draw()
		if a != b {
			t.Fatalf("seeded generators diverged: %q vs %q", a, b)
		}
	}
}

func TestGenerateSkipsTakenKeys(t *testing.T) {
	var checked []string
	exists := func(_ context.Context, key string) (bool, error) {
		checked = append(checked, key)
		return len(checked) <= 3, nil
	}
	generator := NewKeyGenerator(exists, KeyOptions{Source: rand.NewPCG(7, 7)})

	key, err := generator.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(checked) != 4 {
		t.Errorf("checked %d candidates, want 4", len(checked))
	}
	if key != checked[3] {
		t.Errorf("Generate = %q, want the first free candidate %q", key, checked[3])
	}
}

func TestGenerateExhausted(t *testing.T) {
	calls := 0
	always := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}
	generator := NewKeyGenerator(always, KeyOptions{MaxAttempts: 5})

	_, err := generator.Generate(context.Background())
	if !errors.Is(err, ErrKeySpaceExhausted) {
		t.Fatalf("Generate error = %v, want ErrKeySpaceExhausted", err)
	}
	if calls != 5 {
		t.Errorf("existence checked %d times, want 5", calls)
	}
}

func TestGenerateExistenceError(t *testing.T) {
	broken := errors.New("disk on fire")
	generator := NewKeyGenerator(func(context.Context, string) (bool, error) {
		return false, broken
	}, KeyOptions{})

	if _, err := generator.Generate(context.Background()); !errors.Is(err, broken) {
		t.Fatalf("Generate error = %v, want %v", err, broken)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	generator := NewKeyGenerator(never, KeyOptions{})
	if _, err := generator.Generate(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Generate error = %v, want context.Canceled", err)
	}
}

func TestValidKey(t *testing.T) {
	tests := map[string]bool{
		"abc123":  true,
		"zzzzzz":  true,
		"000000":  true,
		"ABC123":  false,
		"abc12":   false,
		"abc1234": false,
		"abc-12":  false,
		"":        false,
	}
	for key, want := range tests {
		if got := ValidKey(key); got != want {
			t.Errorf("ValidKey(%q) = %v, want %v", key, got, want)
		}
	}
}
