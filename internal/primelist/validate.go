// Package primelist provides prime list validation helpers.
package primelist

import (
	"fmt"

	"github.com/verte-zerg/primespiral/internal/generator"
)

// Validate checks that primes is the run of consecutive primes starting at
// 2. Ground truth for scoring extends the list by trial division against its
// own entries, so a window of primes or a composite would corrupt it.
func Validate(primes []int) error {
	sieve := generator.New()
	for i, p := range primes {
		want := sieve.Next()
		if p == want {
			continue
		}
		if i == 0 {
			return fmt.Errorf("entry 0: list must start at %d, got %d", want, p)
		}
		return fmt.Errorf("entry %d: expected %d after %d, got %d", i, want, primes[i-1], p)
	}
	return nil
}
