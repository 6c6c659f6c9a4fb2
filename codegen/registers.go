package codegen

// gpRegister names the 16 general-purpose registers, in the order the
// original implementation enumerates them.
type gpRegister int

const (
	regRAX gpRegister = iota
	regRBX
	regRCX
	regRDX
	regRSI
	regRDI
	regRBP
	regRSP
	regR8
	regR9
	regR10
	regR11
	regR12
	regR13
	regR14
	regR15
)

// gpNames maps a register and an operand size (in bytes) to its NASM
// name, e.g. regRAX+4 -> "eax". Grounded directly on the original
// implementation's RegisterGpToString per-size string tables.
var gpNames = map[gpRegister][4]string{
	regRAX: {"al", "ax", "eax", "rax"},
	regRBX: {"bl", "bx", "ebx", "rbx"},
	regRCX: {"cl", "cx", "ecx", "rcx"},
	regRDX: {"dl", "dx", "edx", "rdx"},
	regRSI: {"sil", "si", "esi", "rsi"},
	regRDI: {"dil", "di", "edi", "rdi"},
	regRBP: {"bpl", "bp", "ebp", "rbp"},
	regRSP: {"spl", "sp", "esp", "rsp"},
	regR8:  {"r8b", "r8w", "r8d", "r8"},
	regR9:  {"r9b", "r9w", "r9d", "r9"},
	regR10: {"r10b", "r10w", "r10d", "r10"},
	regR11: {"r11b", "r11w", "r11d", "r11"},
	regR12: {"r12b", "r12w", "r12d", "r12"},
	regR13: {"r13b", "r13w", "r13d", "r13"},
	regR14: {"r14b", "r14w", "r14d", "r14"},
	regR15: {"r15b", "r15w", "r15d", "r15"},
}

func sizeIndex(size int) int {
	switch size {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	default:
		return 3
	}
}

// name renders reg at the given operand size.
func (reg gpRegister) name(size int) string {
	return gpNames[reg][sizeIndex(size)]
}
