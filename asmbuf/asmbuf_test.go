package asmbuf

import (
	"strings"
	"testing"
)

func TestRenderProducesSections(t *testing.T) {
	b := New()
	b.Inst("mov rax, %d", 60)
	b.Inst("syscall")
	b.DataLine("%s: dq %s", ".L0", "3.14")

	out := b.Render()

	if !strings.Contains(out, "section .text") {
		t.Errorf("missing .text section:\n%s", out)
	}
	if !strings.Contains(out, "section .data") {
		t.Errorf("missing .data section:\n%s", out)
	}
	if !strings.Contains(out, "mov rax, 60") {
		t.Errorf("missing instruction:\n%s", out)
	}
	if !strings.Contains(out, ".L0: dq 3.14") {
		t.Errorf("missing data line:\n%s", out)
	}
	if strings.Index(out, "section .text") > strings.Index(out, "section .data") {
		t.Errorf(".text section must precede .data section")
	}
}

func TestLabelEmitsColon(t *testing.T) {
	b := New()
	b.Label(".L3")
	out := b.Render()
	if !strings.Contains(out, ".L3:\n") {
		t.Errorf("expected label definition, got:\n%s", out)
	}
}
