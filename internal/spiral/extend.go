// Package spiral detects spiral arms in a polar prime plot and extrapolates them.
package spiral

import "fmt"

// Extend returns a new slice of the given length that starts with known and
// continues with the next primes found by trial division. known must be an
// ascending prime prefix; it is not modified.
func Extend(known []int, length int) ([]int, error) {
	if length < len(known) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInvalidExtensionLength, length, len(known))
	}
	out := make([]int, len(known), length)
	copy(out, known)
	candidate := 2
	if len(out) > 0 {
		candidate = out[len(out)-1] + 1
	}
	for len(out) < length {
		if isPrimeAgainst(candidate, out) {
			out = append(out, candidate)
		}
		candidate++
	}
	return out, nil
}

func isPrimeAgainst(candidate int, primes []int) bool {
	if candidate < 2 {
		return false
	}
	for _, p := range primes {
		if p*p > candidate {
			break
		}
		if candidate%p == 0 {
			return false
		}
	}
	return true
}
