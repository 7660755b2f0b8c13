// Package generator produces prime sequences.
package generator

// Sieve is a lazy incremental sieve of Eratosthenes. Each pending composite
// maps to the primes that will step past it, so memory grows with the number
// of primes emitted rather than with their magnitude.
type Sieve struct {
	next       int
	composites map[int][]int
}

// New returns a Sieve positioned before 2.
func New() *Sieve {
	return &Sieve{next: 2, composites: map[int][]int{}}
}

// Next returns the next prime.
func (s *Sieve) Next() int {
	for {
		n := s.next
		s.next++
		factors, ok := s.composites[n]
		if !ok {
			s.composites[n*n] = []int{n}
			return n
		}
		for _, p := range factors {
			s.composites[n+p] = append(s.composites[n+p], p)
		}
		delete(s.composites, n)
	}
}

// Take returns the next count primes.
func (s *Sieve) Take(count int) []int {
	if count <= 0 {
		return nil
	}
	out := make([]int, 0, count)
	for len(out) < count {
		out = append(out, s.Next())
	}
	return out
}

// First returns the first count primes.
func First(count int) []int {
	return New().Take(count)
}
