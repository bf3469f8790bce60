package codeobj

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
)

func init() {
	Register(&archFactory{
		arch:     "amd64",
		elfMach:  elf.EM_X86_64,
		machoCPU: macho.CpuAmd64,
		coffMach: pe.IMAGE_FILE_MACHINE_AMD64,
		classify: classifyAMD64,
	})
}

// COFF AMD64 relocation types.  debug/pe does not name them.
const (
	coffAMD64Addr64   = 0x1
	coffAMD64Addr32   = 0x2
	coffAMD64Addr32NB = 0x3
	coffAMD64Rel32    = 0x4
	coffAMD64Rel32_1  = 0x5
	coffAMD64Rel32_2  = 0x6
	coffAMD64Rel32_3  = 0x7
	coffAMD64Rel32_4  = 0x8
	coffAMD64Rel32_5  = 0x9
	coffAMD64Section  = 0xa
	coffAMD64SecRel   = 0xb
)

func classifyAMD64(format Format, typ uint32, _ bool) (string, RelocKind) {
	switch format {
	case FormatELF:
		name := elf.R_X86_64(typ).String()
		switch elf.R_X86_64(typ) {
		case elf.R_X86_64_PC8, elf.R_X86_64_PC16, elf.R_X86_64_PC32,
			elf.R_X86_64_PC64, elf.R_X86_64_PLT32:
			return name, RelocPCRel
		case elf.R_X86_64_GOTPCREL, elf.R_X86_64_GOTPCRELX,
			elf.R_X86_64_REX_GOTPCRELX, elf.R_X86_64_GOTPCREL64,
			elf.R_X86_64_GOTPC32, elf.R_X86_64_GOTPC64:
			return name, RelocGOT
		case elf.R_X86_64_8, elf.R_X86_64_16, elf.R_X86_64_32,
			elf.R_X86_64_32S, elf.R_X86_64_64:
			return name, RelocAbsolute
		}
		return name, RelocOther

	case FormatMachO:
		name := macho.RelocTypeX86_64(typ).String()
		switch macho.RelocTypeX86_64(typ) {
		case macho.X86_64_RELOC_SIGNED, macho.X86_64_RELOC_BRANCH,
			macho.X86_64_RELOC_SIGNED_1, macho.X86_64_RELOC_SIGNED_2,
			macho.X86_64_RELOC_SIGNED_4:
			return name, RelocPCRel
		case macho.X86_64_RELOC_GOT_LOAD, macho.X86_64_RELOC_GOT:
			return name, RelocGOT
		case macho.X86_64_RELOC_UNSIGNED:
			return name, RelocAbsolute
		}
		return name, RelocOther

	case FormatCOFF:
		switch typ {
		case coffAMD64Addr64:
			return "IMAGE_REL_AMD64_ADDR64", RelocAbsolute
		case coffAMD64Addr32:
			return "IMAGE_REL_AMD64_ADDR32", RelocAbsolute
		case coffAMD64Addr32NB:
			return "IMAGE_REL_AMD64_ADDR32NB", RelocOther
		case coffAMD64Rel32:
			return "IMAGE_REL_AMD64_REL32", RelocPCRel
		case coffAMD64Rel32_1, coffAMD64Rel32_2, coffAMD64Rel32_3,
			coffAMD64Rel32_4, coffAMD64Rel32_5:
			return fmt.Sprintf("IMAGE_REL_AMD64_REL32_%d", typ-coffAMD64Rel32), RelocPCRel
		case coffAMD64Section:
			return "IMAGE_REL_AMD64_SECTION", RelocOther
		case coffAMD64SecRel:
			return "IMAGE_REL_AMD64_SECREL", RelocOther
		}
	}

	return fmt.Sprintf("type %d", typ), RelocOther
}
