package generator

import "testing"

func TestFirstPrimes(t *testing.T) {
	want := []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}
	got := First(len(want))
	if len(got) != len(want) {
		t.Fatalf("expected %d primes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %d at index %d, got %d", want[i], i, got[i])
		}
	}
}

func TestSieveContinues(t *testing.T) {
	s := New()
	head := s.Take(3)
	tail := s.Take(3)
	if head[2] != 5 || tail[0] != 7 || tail[2] != 13 {
		t.Fatalf("unexpected sequence: %v then %v", head, tail)
	}
}

func TestSieveLargeIndex(t *testing.T) {
	primes := First(1000)
	if primes[999] != 7919 {
		t.Fatalf("expected 1000th prime 7919, got %d", primes[999])
	}
	for i := 1; i < len(primes); i++ {
		if primes[i] <= primes[i-1] {
			t.Fatalf("sequence not ascending at %d: %d <= %d", i, primes[i], primes[i-1])
		}
	}
}

func TestTakeNonPositive(t *testing.T) {
	if got := New().Take(0); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
