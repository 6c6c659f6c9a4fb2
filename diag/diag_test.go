package diag

import (
	"strings"
	"testing"

	"github.com/skx/cc/source"
)

func TestErrorfRecordsAndRenders(t *testing.T) {
	fi := &source.FileInfo{Filename: "test.c", Text: "int a = ;\n", LineStarts: []int{0}}
	bag := NewBag(fi)
	bag.NoColor = true

	if bag.HadError() {
		t.Fatalf("expected no error before Errorf")
	}

	bag.Errorf(1, 9, 1, "expected an expression")

	if !bag.HadError() {
		t.Fatalf("expected HadError after Errorf")
	}

	out := bag.Render()
	if !strings.Contains(out, "test.c:1:9: error: expected an expression") {
		t.Errorf("unexpected render:\n%s", out)
	}
	if !strings.Contains(out, "int a = ;") {
		t.Errorf("expected source excerpt in render:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("expected caret in render:\n%s", out)
	}
}

func TestDuplicateDiagnosticsAreCollapsed(t *testing.T) {
	fi := &source.FileInfo{Filename: "test.c", Text: "x\n", LineStarts: []int{0}}
	bag := NewBag(fi)
	bag.Errorf(1, 1, 1, "same message")
	bag.Errorf(1, 1, 1, "same message")
	bag.Errorf(1, 1, 1, "different message")

	if got := len(bag.Diagnostics()); got != 2 {
		t.Errorf("expected 2 unique diagnostics, got %d", got)
	}
}

func TestColorAppliedUnlessNoColor(t *testing.T) {
	fi := &source.FileInfo{Filename: "t.c", Text: "x\n", LineStarts: []int{0}}
	bag := NewBag(fi)
	bag.Errorf(1, 1, 1, "boom")
	out := bag.Render()
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected ANSI escapes by default:\n%q", out)
	}
}
