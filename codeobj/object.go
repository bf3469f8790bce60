package codeobj

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Format is the container format of a relocatable object.
type Format int

// Enumeration of object formats.
const (
	FormatELF Format = iota
	FormatMachO
	FormatCOFF
)

func (f Format) String() string {
	switch f {
	case FormatELF:
		return "ELF"
	case FormatMachO:
		return "Mach-O"
	case FormatCOFF:
		return "COFF"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// RelocKind groups relocation types by how they address their symbol.
type RelocKind int

// Enumeration of relocation kinds.
const (
	RelocPCRel    RelocKind = iota // Relative to the place being patched.
	RelocGOT                       // Through the global offset table.
	RelocAbsolute                  // Embeds an absolute address.
	RelocOther
)

func (k RelocKind) String() string {
	switch k {
	case RelocPCRel:
		return "pcrel"
	case RelocGOT:
		return "got"
	case RelocAbsolute:
		return "abs"
	default:
		return "other"
	}
}

// Section describes one section of an object.
type Section struct {
	Name   string
	Addr   uint64
	Offset uint64
	Size   uint64

	// Exec is set for sections holding machine instructions.
	Exec bool

	// NoBits is set for sections that occupy no space in the image.
	NoBits bool
}

// Reloc is a single relocation entry.
type Reloc struct {
	Section  string
	Offset   uint64
	Symbol   string
	Type     uint32
	TypeName string
	Kind     RelocKind
}

// Object is an in-memory relocatable object produced by the code generator.
// The image is kept verbatim: Bytes returns exactly what the backend emitted.
type Object struct {
	Name     string
	Arch     string
	Format   Format
	Sections []Section
	Relocs   []Reloc

	// Symbols holds the names of the symbols defined by the object.
	Symbols []string

	image []byte
}

// Bytes returns the raw object image.
func (o *Object) Bytes() []byte {
	return o.image
}

// Size returns the size of the object image in bytes.
func (o *Object) Size() int {
	return len(o.image)
}

// Section looks up a section by name.
func (o *Object) Section(name string) (Section, bool) {
	for _, s := range o.Sections {
		if s.Name == name {
			return s, true
		}
	}

	return Section{}, false
}

// SectionData returns the bytes of the named section inside the image.
func (o *Object) SectionData(name string) ([]byte, bool) {
	s, ok := o.Section(name)
	if !ok || s.NoBits || s.Offset+s.Size > uint64(len(o.image)) {
		return nil, false
	}

	return o.image[s.Offset : s.Offset+s.Size], true
}

// HasSymbol reports whether the object defines name.  Mach-O symbols carry a
// leading underscore which is accepted too.
func (o *Object) HasSymbol(name string) bool {
	for _, sym := range o.Symbols {
		if sym == name || sym == "_"+name {
			return true
		}
	}

	return false
}

// TextRelocs returns the relocations applied to executable sections.
func (o *Object) TextRelocs() []Reloc {
	exec := make(map[string]bool)
	for _, s := range o.Sections {
		if s.Exec {
			exec[s.Name] = true
		}
	}

	var relocs []Reloc
	for _, r := range o.Relocs {
		if exec[r.Section] {
			relocs = append(relocs, r)
		}
	}

	return relocs
}

// IsPIC reports whether the executable sections can be loaded at any address:
// none of their relocations embed an absolute address.
func (o *Object) IsPIC() bool {
	for _, r := range o.TextRelocs() {
		if r.Kind == RelocAbsolute {
			return false
		}
	}

	return true
}

// Summary renders a short human readable description of the object.
func (o *Object) Summary() string {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%s: %s %s, %d sections, %d relocations", o.Name, o.Arch, o.Format, len(o.Sections), len(o.Relocs))
	if o.IsPIC() {
		sb.WriteString(", position independent\n")
	} else {
		sb.WriteString(", absolute text relocations\n")
	}

	for _, r := range o.Relocs {
		fmt.Fprintf(sb, "%s+%#x %s %s (%s)\n", r.Section, r.Offset, r.TypeName, r.Symbol, r.Kind)
	}

	return sb.String()
}

// Dump writes a hex dump of every executable section to w.
func (o *Object) Dump(w io.Writer) error {
	for _, s := range o.Sections {
		if !s.Exec {
			continue
		}

		data, ok := o.SectionData(s.Name)
		if !ok {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s (%d bytes):\n", s.Name, len(data)); err != nil {
			return err
		}

		d := hex.Dumper(w)
		if _, err := d.Write(data); err != nil {
			return err
		}
		if err := d.Close(); err != nil {
			return err
		}
	}

	return nil
}
