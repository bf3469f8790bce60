package codeobj

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
)

func init() {
	Register(&archFactory{
		arch:     "x86",
		elfMach:  elf.EM_386,
		machoCPU: macho.Cpu386,
		coffMach: pe.IMAGE_FILE_MACHINE_I386,
		classify: classifyX86,
	})
}

// COFF i386 relocation types.
const (
	coffI386Dir32   = 0x6
	coffI386Dir32NB = 0x7
	coffI386Section = 0xa
	coffI386SecRel  = 0xb
	coffI386Rel32   = 0x14
)

func classifyX86(format Format, typ uint32, pcrel bool) (string, RelocKind) {
	switch format {
	case FormatELF:
		name := elf.R_386(typ).String()
		switch elf.R_386(typ) {
		case elf.R_386_PC32, elf.R_386_PLT32, elf.R_386_PC16, elf.R_386_PC8:
			return name, RelocPCRel
		case elf.R_386_GOT32, elf.R_386_GOT32X, elf.R_386_GOTOFF, elf.R_386_GOTPC:
			return name, RelocGOT
		case elf.R_386_32, elf.R_386_16, elf.R_386_8:
			return name, RelocAbsolute
		}
		return name, RelocOther

	case FormatMachO:
		name := macho.RelocTypeGeneric(typ).String()
		if macho.RelocTypeGeneric(typ) == macho.GENERIC_RELOC_VANILLA {
			// Vanilla relocations are absolute unless flagged pc-relative.
			if pcrel {
				return name, RelocPCRel
			}
			return name, RelocAbsolute
		}
		return name, RelocOther

	case FormatCOFF:
		switch typ {
		case coffI386Dir32:
			return "IMAGE_REL_I386_DIR32", RelocAbsolute
		case coffI386Rel32:
			return "IMAGE_REL_I386_REL32", RelocPCRel
		case coffI386Dir32NB:
			return "IMAGE_REL_I386_DIR32NB", RelocOther
		case coffI386Section:
			return "IMAGE_REL_I386_SECTION", RelocOther
		case coffI386SecRel:
			return "IMAGE_REL_I386_SECREL", RelocOther
		}
	}

	return fmt.Sprintf("type %d", typ), RelocOther
}
