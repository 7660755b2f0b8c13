package primelist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "primes.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeList(t, "# first primes\n2\n 3 \n\n5\n7\n")
	primes, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []int{2, 3, 5, 7}
	if len(primes) != len(want) {
		t.Fatalf("expected %d primes, got %d", len(want), len(primes))
	}
	for i := range want {
		if primes[i] != want[i] {
			t.Fatalf("expected %d at %d, got %d", want[i], i, primes[i])
		}
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"empty":      "# nothing\n\n",
		"not number": "2\nthree\n",
		"descending": "5\n3\n",
		"window":     "101\n103\n107\n",
		"composites": "4\n6\n8\n",
	}
	for name, content := range cases {
		if _, err := Load(writeList(t, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadReportsLine(t *testing.T) {
	_, err := Load(writeList(t, "2\n3\nx5\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line number in error, got %v", err)
	}
}
