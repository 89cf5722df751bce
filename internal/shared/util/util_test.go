package util

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	got := SortedStringKeys(m)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestUniquePaths(t *testing.T) {
	got := UniquePaths([]string{"src", "", "src", "lib"})
	want := []string{"src", "lib"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	// drain the single burst token; the refill rate makes the next Wait
	// outlast the deadline
	if err := l.Wait(context.Background(), 1); err != nil {
		t.Fatalf("burst token should be immediately available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, 1); err == nil {
		t.Error("expected context deadline error")
	}
}
