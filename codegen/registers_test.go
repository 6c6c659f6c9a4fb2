package codegen

import "testing"

func TestGpRegisterNameBySize(t *testing.T) {
	if got := regRAX.name(4); got != "eax" {
		t.Errorf("regRAX.name(4) = %q, want eax", got)
	}
	if got := regR12.name(8); got != "r12" {
		t.Errorf("regR12.name(8) = %q, want r12", got)
	}
}
