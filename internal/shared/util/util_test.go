package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./src/main.c  ", expected: "src/main.c"},
		{name: "Relative", input: "src/../include/a.h", expected: "include/a.h"},
		{name: "Backslashes", input: `vendor\lib\x.c`, expected: "vendor/lib/x.c"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizePatternPath(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestContainsPathSeparator(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		value    string
		expected bool
	}{
		{name: "Unix", value: "build/*.c", expected: true},
		{name: "Windows", value: `build\*.c`, expected: true},
		{name: "Flat", value: "*.gen.c", expected: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ContainsPathSeparator(tc.value); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestSortedStringKeys(t *testing.T) {
	t.Parallel()

	m := map[string]int{"b": 2, "a": 1, "c": 3}
	keys := SortedStringKeys(m)
	expected := []string{"a", "b", "c"}
	if len(keys) != len(expected) {
		t.Fatalf("expected %d keys, got %d", len(expected), len(keys))
	}
	for i, key := range expected {
		if keys[i] != key {
			t.Fatalf("expected %q at %d, got %q", key, i, keys[i])
		}
	}
}

func TestPtr(t *testing.T) {
	t.Parallel()

	v := 3
	p := Ptr(v)
	v = 4
	if *p != 3 {
		t.Fatalf("expected a copy holding 3, got %d", *p)
	}
}

func TestURIToPath(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	cases := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "File", uri: "file:///home/dev/main.c", expected: "/home/dev/main.c"},
		{name: "Escaped", uri: "file:///home/dev/my%20file.c", expected: "/home/dev/my file.c"},
		{name: "Untitled", uri: "untitled:Untitled-1", expected: "untitled:Untitled-1"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := URIToPath(tc.uri); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestEnsureParentDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "index.db")

	if err := EnsureParentDir(path); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected a directory")
	}
	if err := EnsureParentDir("index.db"); err != nil {
		t.Fatalf("bare file name should be a no-op: %v", err)
	}
}
