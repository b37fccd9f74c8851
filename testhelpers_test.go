package main

import (
	"io"
	"os"
	"testing"
)

// captureStdout swaps os.Stdout for a pipe while fn runs and returns what
// fn printed. run() writes straight to os.Stdout, so this is the only way
// to observe it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe(): %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	return string(out)
}
