package codeobj

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"

	"github.com/pkg/errors"
)

// classifier names a raw relocation type and sorts it into a kind.  pcrel is
// the format's own PC-relative flag where it has one (Mach-O).
type classifier func(format Format, typ uint32, pcrel bool) (string, RelocKind)

// archFactory is the Factory shared by all architectures: it only differs in
// the machine identifiers it accepts and in how it classifies relocations.
type archFactory struct {
	arch     string
	elfMach  elf.Machine
	machoCPU macho.Cpu
	coffMach uint16
	classify classifier
}

func (a *archFactory) Arch() string {
	return a.arch
}

func (a *archFactory) New(name string, image []byte) (*Object, error) {
	format, err := detectFormat(image)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s", name)
	}

	obj := &Object{Name: name, Arch: a.arch, Format: format, image: image}

	switch format {
	case FormatELF:
		err = a.parseELF(obj)
	case FormatMachO:
		err = a.parseMachO(obj)
	case FormatCOFF:
		err = a.parseCOFF(obj)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "building %s", name)
	}

	return obj, nil
}

// detectFormat sniffs the container format from the leading magic.
func detectFormat(image []byte) (Format, error) {
	if len(image) < 4 {
		return 0, errors.New("image too short to be an object")
	}

	switch {
	case bytes.HasPrefix(image, []byte(elf.ELFMAG)):
		return FormatELF, nil
	case bytes.HasPrefix(image, []byte{0xcf, 0xfa, 0xed, 0xfe}),
		bytes.HasPrefix(image, []byte{0xce, 0xfa, 0xed, 0xfe}),
		bytes.HasPrefix(image, []byte{0xfe, 0xed, 0xfa, 0xcf}),
		bytes.HasPrefix(image, []byte{0xfe, 0xed, 0xfa, 0xce}):
		return FormatMachO, nil
	}

	switch binary.LittleEndian.Uint16(image) {
	case pe.IMAGE_FILE_MACHINE_AMD64, pe.IMAGE_FILE_MACHINE_ARM64,
		pe.IMAGE_FILE_MACHINE_I386, pe.IMAGE_FILE_MACHINE_RISCV64:
		return FormatCOFF, nil
	}

	return 0, errors.Errorf("unrecognized object magic % x", image[:4])
}

// -----------------------------------------------------------------------------

func (a *archFactory) parseELF(obj *Object) error {
	f, err := elf.NewFile(bytes.NewReader(obj.image))
	if err != nil {
		return err
	}

	if f.Machine != a.elfMach {
		return errors.Errorf("ELF machine %s is not %s", f.Machine, a.arch)
	}

	syms, err := f.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return err
	}

	for _, s := range f.Sections {
		if s.Type == elf.SHT_NULL {
			continue
		}

		obj.Sections = append(obj.Sections, Section{
			Name:   s.Name,
			Addr:   s.Addr,
			Offset: s.Offset,
			Size:   s.Size,
			Exec:   s.Flags&elf.SHF_EXECINSTR != 0,
			NoBits: s.Type == elf.SHT_NOBITS,
		})
	}

	for _, sym := range syms {
		if sym.Section == elf.SHN_UNDEF || sym.Name == "" {
			continue
		}
		if st := elf.ST_TYPE(sym.Info); st == elf.STT_SECTION || st == elf.STT_FILE {
			continue
		}

		obj.Symbols = append(obj.Symbols, sym.Name)
	}

	for _, s := range f.Sections {
		if s.Type != elf.SHT_RELA && s.Type != elf.SHT_REL {
			continue
		}
		if int(s.Info) >= len(f.Sections) {
			return errors.Errorf("relocation section %s targets section %d", s.Name, s.Info)
		}

		data, err := s.Data()
		if err != nil {
			return err
		}

		relocs, err := a.decodeELFRelocs(f, syms, data, s.Type == elf.SHT_RELA)
		if err != nil {
			return errors.Wrapf(err, "decoding %s", s.Name)
		}

		target := f.Sections[s.Info].Name
		for i := range relocs {
			relocs[i].Section = target
		}
		obj.Relocs = append(obj.Relocs, relocs...)
	}

	return nil
}

// decodeELFRelocs decodes the raw entries of a REL or RELA section.
func (a *archFactory) decodeELFRelocs(f *elf.File, syms []elf.Symbol, data []byte, rela bool) ([]Reloc, error) {
	is64 := f.Class == elf.ELFCLASS64

	var entSize int
	switch {
	case is64 && rela:
		entSize = 24
	case is64:
		entSize = 16
	case rela:
		entSize = 12
	default:
		entSize = 8
	}

	if len(data)%entSize != 0 {
		return nil, errors.Errorf("size %d is not a multiple of %d", len(data), entSize)
	}

	bo := f.ByteOrder
	relocs := make([]Reloc, 0, len(data)/entSize)
	for off := 0; off < len(data); off += entSize {
		var (
			place  uint64
			symIdx uint32
			typ    uint32
		)

		if is64 {
			place = bo.Uint64(data[off:])
			info := bo.Uint64(data[off+8:])
			symIdx, typ = uint32(info>>32), uint32(info)
		} else {
			place = uint64(bo.Uint32(data[off:]))
			info := bo.Uint32(data[off+4:])
			symIdx, typ = info>>8, info&0xff
		}

		name, kind := a.classify(FormatELF, typ, false)
		relocs = append(relocs, Reloc{
			Offset:   place,
			Symbol:   elfSymbolName(f, syms, symIdx),
			Type:     typ,
			TypeName: name,
			Kind:     kind,
		})
	}

	return relocs, nil
}

// elfSymbolName resolves a symbol table index.  Section symbols are named
// after their section.  Symbols omits the null entry, hence the offset.
func elfSymbolName(f *elf.File, syms []elf.Symbol, idx uint32) string {
	if idx == 0 || int(idx) > len(syms) {
		return ""
	}

	sym := syms[idx-1]
	if elf.ST_TYPE(sym.Info) == elf.STT_SECTION && int(sym.Section) < len(f.Sections) {
		return f.Sections[sym.Section].Name
	}

	return sym.Name
}

// -----------------------------------------------------------------------------

const (
	machoPureInstructions = 0x80000000
	machoSomeInstructions = 0x400
	machoZeroFill         = 0x1
	machoSectionType      = 0xff
)

func (a *archFactory) parseMachO(obj *Object) error {
	f, err := macho.NewFile(bytes.NewReader(obj.image))
	if err != nil {
		return err
	}

	if a.machoCPU == 0 || f.Cpu != a.machoCPU {
		return errors.Errorf("Mach-O cpu %s is not %s", f.Cpu, a.arch)
	}

	for _, s := range f.Sections {
		obj.Sections = append(obj.Sections, Section{
			Name:   s.Seg + "," + s.Name,
			Addr:   s.Addr,
			Offset: uint64(s.Offset),
			Size:   s.Size,
			Exec:   s.Flags&(machoPureInstructions|machoSomeInstructions) != 0,
			NoBits: s.Flags&machoSectionType == machoZeroFill,
		})
	}

	if f.Symtab != nil {
		for _, sym := range f.Symtab.Syms {
			if sym.Sect != 0 && sym.Name != "" {
				obj.Symbols = append(obj.Symbols, sym.Name)
			}
		}
	}

	for i, s := range f.Sections {
		for _, r := range s.Relocs {
			name, kind := a.classify(FormatMachO, uint32(r.Type), r.Pcrel)

			var symbol string
			switch {
			case r.Extern && f.Symtab != nil && int(r.Value) < len(f.Symtab.Syms):
				symbol = f.Symtab.Syms[r.Value].Name
			case !r.Extern && r.Value > 0 && int(r.Value) <= len(f.Sections):
				// Section ordinals are 1-based.
				symbol = obj.Sections[r.Value-1].Name
			}

			obj.Relocs = append(obj.Relocs, Reloc{
				Section:  obj.Sections[i].Name,
				Offset:   uint64(r.Addr),
				Symbol:   symbol,
				Type:     uint32(r.Type),
				TypeName: name,
				Kind:     kind,
			})
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (a *archFactory) parseCOFF(obj *Object) error {
	f, err := pe.NewFile(bytes.NewReader(obj.image))
	if err != nil {
		return err
	}

	if a.coffMach == 0 || f.Machine != a.coffMach {
		return errors.Errorf("COFF machine %#x is not %s", f.Machine, a.arch)
	}

	for _, s := range f.Sections {
		obj.Sections = append(obj.Sections, Section{
			Name:   s.Name,
			Addr:   uint64(s.VirtualAddress),
			Offset: uint64(s.Offset),
			Size:   uint64(s.Size),
			Exec:   s.Characteristics&(pe.IMAGE_SCN_CNT_CODE|pe.IMAGE_SCN_MEM_EXECUTE) != 0,
			NoBits: s.Characteristics&pe.IMAGE_SCN_CNT_UNINITIALIZED_DATA != 0,
		})
	}

	for i := 0; i < len(f.COFFSymbols); i++ {
		sym := f.COFFSymbols[i]
		if sym.SectionNumber > 0 && sym.StorageClass == imageSymClassExternal {
			if name, err := sym.FullName(f.StringTable); err == nil {
				obj.Symbols = append(obj.Symbols, name)
			}
		}

		// Auxiliary records share the table but are not symbols.
		i += int(sym.NumberOfAuxSymbols)
	}

	for i, s := range f.Sections {
		for _, r := range s.Relocs {
			name, kind := a.classify(FormatCOFF, uint32(r.Type), false)

			var symbol string
			if int(r.SymbolTableIndex) < len(f.COFFSymbols) {
				symbol, _ = f.COFFSymbols[r.SymbolTableIndex].FullName(f.StringTable)
			}

			obj.Relocs = append(obj.Relocs, Reloc{
				Section:  obj.Sections[i].Name,
				Offset:   uint64(r.VirtualAddress),
				Symbol:   symbol,
				Type:     uint32(r.Type),
				TypeName: name,
				Kind:     kind,
			})
		}
	}

	return nil
}

const imageSymClassExternal = 2
