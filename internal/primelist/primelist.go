// Package primelist loads prime sequences from files.
package primelist

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Load reads one integer per line from the provided file path. Blank lines
// and lines starting with # are skipped. The result is validated.
func Load(path string) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only prime list.
			_ = cerr
		}
	}()

	var primes []int
	lineNo := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid integer %q", lineNo, line)
		}
		primes = append(primes, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(primes) == 0 {
		return nil, fmt.Errorf("prime list is empty")
	}
	if err := Validate(primes); err != nil {
		return nil, err
	}
	return primes, nil
}
