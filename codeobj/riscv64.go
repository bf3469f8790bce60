package codeobj

import (
	"debug/elf"
	"debug/pe"
	"fmt"
)

func init() {
	// RISC-V has no Mach-O flavour.
	Register(&archFactory{
		arch:     "riscv64",
		elfMach:  elf.EM_RISCV,
		coffMach: pe.IMAGE_FILE_MACHINE_RISCV64,
		classify: classifyRISCV64,
	})
}

func classifyRISCV64(format Format, typ uint32, _ bool) (string, RelocKind) {
	if format != FormatELF {
		return fmt.Sprintf("type %d", typ), RelocOther
	}

	name := elf.R_RISCV(typ).String()
	switch elf.R_RISCV(typ) {
	case elf.R_RISCV_CALL, elf.R_RISCV_CALL_PLT, elf.R_RISCV_BRANCH,
		elf.R_RISCV_JAL, elf.R_RISCV_RVC_BRANCH, elf.R_RISCV_RVC_JUMP,
		elf.R_RISCV_PCREL_HI20, elf.R_RISCV_PCREL_LO12_I, elf.R_RISCV_PCREL_LO12_S,
		elf.R_RISCV_32_PCREL:
		return name, RelocPCRel
	case elf.R_RISCV_GOT_HI20:
		return name, RelocGOT
	case elf.R_RISCV_32, elf.R_RISCV_64, elf.R_RISCV_HI20,
		elf.R_RISCV_LO12_I, elf.R_RISCV_LO12_S:
		return name, RelocAbsolute
	}

	return name, RelocOther
}
