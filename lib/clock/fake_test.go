// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("second Now() = %v, want %v (time should stand still)", got, epoch)
	}
	clock.Advance(5 * time.Second)
	want := epoch.Add(5 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockSet(t *testing.T) {
	clock := Fake(epoch)
	target := epoch.Add(-48 * time.Hour)
	clock.Set(target)
	if got := clock.Now(); !got.Equal(target) {
		t.Fatalf("Now() after Set = %v, want %v", got, target)
	}
}

func TestFakeClockStep(t *testing.T) {
	clock := Fake(epoch)
	clock.SetStep(time.Second)

	for i := range 3 {
		want := epoch.Add(time.Duration(i) * time.Second)
		if got := clock.Now(); !got.Equal(want) {
			t.Fatalf("Now() call %d = %v, want %v", i, got, want)
		}
	}
}

func TestFakeClockConcurrentNow(t *testing.T) {
	clock := Fake(epoch)
	clock.SetStep(time.Millisecond)

	const goroutineCount = 16
	var waitGroup sync.WaitGroup
	seen := make(chan time.Time, goroutineCount)
	for range goroutineCount {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			seen <- clock.Now()
		}()
	}
	waitGroup.Wait()
	close(seen)

	unique := make(map[time.Time]bool)
	for value := range seen {
		if unique[value] {
			t.Fatalf("duplicate timestamp %v from concurrent Now calls", value)
		}
		unique[value] = true
	}
}

func TestRealClockMovesForward(t *testing.T) {
	clock := Real()
	first := clock.Now()
	second := clock.Now()
	if second.Before(first) {
		t.Fatalf("real clock went backwards: %v then %v", first, second)
	}
}
