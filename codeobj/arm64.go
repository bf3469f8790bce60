package codeobj

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
)

func init() {
	Register(&archFactory{
		arch:     "arm64",
		elfMach:  elf.EM_AARCH64,
		machoCPU: macho.CpuArm64,
		coffMach: pe.IMAGE_FILE_MACHINE_ARM64,
		classify: classifyARM64,
	})
}

// COFF ARM64 relocation types.  debug/pe does not name them.
const (
	coffARM64Absolute   = 0x0
	coffARM64Addr32     = 0x1
	coffARM64Addr32NB   = 0x2
	coffARM64Branch26   = 0x3
	coffARM64PageBase21 = 0x4
	coffARM64Rel21      = 0x5
	coffARM64PageOff12A = 0x6
	coffARM64PageOff12L = 0x7
	coffARM64Addr64     = 0xe
	coffARM64Branch19   = 0xf
	coffARM64Branch14   = 0x10
	coffARM64Rel32      = 0x11
)

func classifyARM64(format Format, typ uint32, _ bool) (string, RelocKind) {
	switch format {
	case FormatELF:
		name := elf.R_AARCH64(typ).String()
		switch elf.R_AARCH64(typ) {
		case elf.R_AARCH64_CALL26, elf.R_AARCH64_JUMP26,
			elf.R_AARCH64_ADR_PREL_PG_HI21, elf.R_AARCH64_ADR_PREL_LO21,
			elf.R_AARCH64_PREL16, elf.R_AARCH64_PREL32, elf.R_AARCH64_PREL64,
			elf.R_AARCH64_CONDBR19, elf.R_AARCH64_TSTBR14,
			elf.R_AARCH64_LD_PREL_LO19:
			return name, RelocPCRel
		case elf.R_AARCH64_ADR_GOT_PAGE, elf.R_AARCH64_LD64_GOT_LO12_NC:
			return name, RelocGOT
		case elf.R_AARCH64_ABS16, elf.R_AARCH64_ABS32, elf.R_AARCH64_ABS64,
			elf.R_AARCH64_MOVW_UABS_G0, elf.R_AARCH64_MOVW_UABS_G1,
			elf.R_AARCH64_MOVW_UABS_G2, elf.R_AARCH64_MOVW_UABS_G3:
			return name, RelocAbsolute
		}
		// The *_ABS_LO12_NC family only carries the page offset of an
		// ADRP pair and stays position independent.
		return name, RelocOther

	case FormatMachO:
		name := macho.RelocTypeARM64(typ).String()
		switch macho.RelocTypeARM64(typ) {
		case macho.ARM64_RELOC_BRANCH26, macho.ARM64_RELOC_PAGE21:
			return name, RelocPCRel
		case macho.ARM64_RELOC_GOT_LOAD_PAGE21, macho.ARM64_RELOC_GOT_LOAD_PAGEOFF12,
			macho.ARM64_RELOC_POINTER_TO_GOT:
			return name, RelocGOT
		case macho.ARM64_RELOC_UNSIGNED:
			return name, RelocAbsolute
		}
		return name, RelocOther

	case FormatCOFF:
		switch typ {
		case coffARM64Branch26:
			return "IMAGE_REL_ARM64_BRANCH26", RelocPCRel
		case coffARM64PageBase21:
			return "IMAGE_REL_ARM64_PAGEBASE_REL21", RelocPCRel
		case coffARM64Rel21:
			return "IMAGE_REL_ARM64_REL21", RelocPCRel
		case coffARM64Branch19:
			return "IMAGE_REL_ARM64_BRANCH19", RelocPCRel
		case coffARM64Branch14:
			return "IMAGE_REL_ARM64_BRANCH14", RelocPCRel
		case coffARM64Rel32:
			return "IMAGE_REL_ARM64_REL32", RelocPCRel
		case coffARM64Addr32:
			return "IMAGE_REL_ARM64_ADDR32", RelocAbsolute
		case coffARM64Addr64:
			return "IMAGE_REL_ARM64_ADDR64", RelocAbsolute
		case coffARM64Absolute:
			return "IMAGE_REL_ARM64_ABSOLUTE", RelocOther
		case coffARM64Addr32NB:
			return "IMAGE_REL_ARM64_ADDR32NB", RelocOther
		case coffARM64PageOff12A:
			return "IMAGE_REL_ARM64_PAGEOFFSET_12A", RelocOther
		case coffARM64PageOff12L:
			return "IMAGE_REL_ARM64_PAGEOFFSET_12L", RelocOther
		}
	}

	return fmt.Sprintf("type %d", typ), RelocOther
}
