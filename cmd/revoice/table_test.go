package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Title", "Status"},
		[][]string{{"1", "Interview"}},
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	)
	if !strings.Contains(out, "Interview") {
		t.Fatalf("output missing row cell:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected bordered table, got:\n%s", out)
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil, nil); out != "" {
		t.Fatalf("output = %q, want empty", out)
	}
}
